// internal/status/constants.go
package status

// Fatigue status block layout constants.
// These values define the register protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotStatusCode holds the fatigue status code (0..2).
const SlotStatusCode = 0

// SlotAlert holds 1 when the status is an alert, else 0.
const SlotAlert = 1

// SlotBlinkCount holds the blink counter (0 when absent).
const SlotBlinkCount = 2

// SlotYawnCount holds the yawn counter (0 when absent).
const SlotYawnCount = 3

// SlotHeadNodCount holds the head nod counter (0 when absent).
const SlotHeadNodCount = 4

// SlotUnixHi and SlotUnixLo hold the snapshot time in unix seconds, big-endian word order.
const SlotUnixHi = 5
const SlotUnixLo = 6

// ---- RESERVED RANGE ----

// Slots 7–10 are reserved for future use.
const SlotReservedStart = 7
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// DefaultDeviceID is used when a snapshot is built without a device id.
const DefaultDeviceID = "default_device"
