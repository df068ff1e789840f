// internal/sink/modbus/status_writer.go
package modbus

import (
	"context"
	"fmt"
	"time"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// endpointClient is the exact contract the sink uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
	Close() error
}

// Plan locates the status block inside the endpoint's holding registers.
type Plan struct {
	Endpoint string
	UnitID   uint8
	BaseSlot uint16 // block index; address = BaseSlot * SlotsPerDevice
}

// Sink delivers snapshots into a fatigue status block.
//
// The first successful delivery writes the full block (identity re-assert,
// device name included). Later deliveries write only the live slots that
// changed. Any failure re-arms the full write for the next delivery.
type Sink struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     []uint16
}

// New builds a sink over an already connected client.
func New(plan Plan, cli endpointClient) (*Sink, error) {
	if cli == nil {
		return nil, fmt.Errorf("sink modbus: missing client for endpoint %s", plan.Endpoint)
	}
	if int(plan.BaseSlot)*status.SlotsPerDevice > 0xFFFF-status.SlotsPerDevice {
		return nil, fmt.Errorf("sink modbus: base slot %d out of range", plan.BaseSlot)
	}
	return &Sink{plan: plan, cli: cli, needFull: true}, nil
}

// Dial connects to the plan's endpoint and builds the sink.
func Dial(plan Plan, timeout time.Duration) (*Sink, error) {
	cli, err := NewEndpointClient(ClientConfig{Endpoint: plan.Endpoint, Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("sink modbus: connect %s: %w", plan.Endpoint, err)
	}
	return New(plan, cli)
}

func (s *Sink) Name() string { return "modbus" }

func (s *Sink) Close() error { return s.cli.Close() }

// Deliver writes the snapshot. The context is not consulted: the
// transport's own timeout bounds the request.
func (s *Sink) Deliver(_ context.Context, snap status.Snapshot) error {
	regs := status.EncodeBlock(snap)
	base := s.baseAddr()

	// The device name is only asserted in full writes.
	if !s.needFull && !sameName(s.last, regs) {
		s.needFull = true
	}

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if s.needFull {
		if err := s.cli.WriteRegisters(s.plan.UnitID, base, regs); err != nil {
			s.needFull = true
			return fmt.Errorf("sink modbus: full block write failed: %w", err)
		}
		s.needFull = false
		s.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Live slots only, as one contiguous span covering the changes
	// ------------------------------------------------------------
	first, last := -1, -1
	for i := status.SlotStatusCode; i <= status.SlotUnixLo; i++ {
		if s.last[i] != regs[i] {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil
	}

	if err := s.cli.WriteRegisters(s.plan.UnitID, base+uint16(first), regs[first:last+1]); err != nil {
		// A partial failure leaves the block in doubt; rewrite it fully next time.
		s.needFull = true
		return fmt.Errorf("sink modbus: slots %d-%d write failed: %w", first, last, err)
	}
	copy(s.last[first:last+1], regs[first:last+1])
	return nil
}

func (s *Sink) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return s.plan.BaseSlot * status.SlotsPerDevice
}

func sameName(a, b []uint16) bool {
	for i := status.SlotDeviceNameStart; i <= status.SlotDeviceNameEnd; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
