package eeg

import "sync/atomic"

// AdcConfig is the effective configuration a Driver reports through
// GetConfig (spec.md §6).
type AdcConfig struct {
	SensorID     string
	SampleRate   uint32
	Channels     []uint8
	ChannelNames []string
	Gain         float32
	VRef         float32
	ADCBits      uint8
	BatchSize    int
}

// DriverStatusKind discriminates the variant returned by Driver.GetStatus.
type DriverStatusKind int

const (
	StatusNotInitialized DriverStatusKind = iota
	StatusStopped
	StatusRunning
	StatusOk
	StatusError
)

func (k DriverStatusKind) String() string {
	switch k {
	case StatusNotInitialized:
		return "not_initialized"
	case StatusStopped:
		return "stopped"
	case StatusRunning:
		return "running"
	case StatusOk:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// DriverStatus is a cheap status probe result (spec.md §6).
type DriverStatus struct {
	Kind    DriverStatusKind
	Message string // populated when Kind == StatusError
}

// BridgeMsg is what a Driver's Acquire loop posts to its output queue:
// either a data batch or a fault. The bridge forwarder (see Bridge)
// converts Data messages into pool-backed RtPacket values before handing
// them to the executor.
type BridgeMsg struct {
	IsError bool
	Data    OwnedPacket
	Err     *SensorError
}

// Driver is the contract an acquisition source must satisfy to be a
// pipeline input (spec.md §6). Initialize is idempotent; Shutdown is
// called at most once.
type Driver interface {
	// Initialize brings the hardware into a known state. Calling it more
	// than once without an intervening Shutdown must be safe.
	Initialize() *DriverError

	// Acquire blocks, emitting one BridgeMsg per batch onto out with
	// strictly increasing timestamps, until stopFlag is observed true.
	// It returns when acquisition has stopped, with err set if it
	// stopped because of a fault rather than the stop flag.
	Acquire(out chan<- BridgeMsg, stopFlag *atomic.Bool) error

	// GetStatus is a cheap, non-blocking status probe.
	GetStatus() DriverStatus

	// GetConfig returns the driver's current effective configuration.
	GetConfig() AdcConfig

	// Shutdown releases the hardware. Called at most once.
	Shutdown() *DriverError
}
