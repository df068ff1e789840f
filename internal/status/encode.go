// internal/status/encode.go
package status

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Marshal serializes a snapshot as indented JSON.
// Non-ASCII text is kept as-is.
func Marshal(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("status: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses and validates a snapshot document.
// Unknown fields are ignored; missing counters stay nil and a missing
// device_id becomes DefaultDeviceID.
func Unmarshal(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("status: decode: %w", err)
	}
	if strings.TrimSpace(s.DeviceID) == "" {
		s.DeviceID = DefaultDeviceID
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// EncodeBlock converts a snapshot into a full status register block.
// Layout is protocol-locked.
// No IO. No side effects.
func EncodeBlock(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotStatusCode] = uint16(s.StatusCode)
	if s.IsAlert {
		regs[SlotAlert] = 1
	}
	regs[SlotBlinkCount] = clampCounter(s.BlinkCount)
	regs[SlotYawnCount] = clampCounter(s.YawnCount)
	regs[SlotHeadNodCount] = clampCounter(s.HeadNodCount)

	var unix uint32
	if sec := s.Timestamp.Unix(); sec > 0 && sec <= 0xFFFFFFFF {
		unix = uint32(sec)
	}
	regs[SlotUnixHi] = uint16(unix >> 16)
	regs[SlotUnixLo] = uint16(unix)

	// Slots 7..10 are RESERVED → left as zero

	name := EncodeDeviceName(s.DeviceID)
	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], name)

	return regs
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}

// Counters saturate at 65535; they MUST NOT wrap.
func clampCounter(p *int) uint16 {
	if p == nil || *p < 0 {
		return 0
	}
	if *p > 0xFFFF {
		return 0xFFFF
	}
	return uint16(*p)
}
