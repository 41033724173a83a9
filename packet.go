package eeg

import "sync/atomic"

// PacketKind discriminates the variant held by an RtPacket or OwnedPacket.
type PacketKind uint8

const (
	// KindRawI32 holds raw ADC codes, one int32 per sample per channel.
	KindRawI32 PacketKind = iota
	// KindVoltage holds converted float32 volts, same layout as RawI32.
	KindVoltage
	// KindRawAndVoltage holds (raw, voltage) pairs. Declared for
	// completeness; no built-in stage produces it (spec.md §9).
	KindRawAndVoltage
)

func (k PacketKind) String() string {
	switch k {
	case KindRawI32:
		return "RawI32"
	case KindVoltage:
		return "Voltage"
	case KindRawAndVoltage:
		return "RawAndVoltage"
	default:
		return "Unknown"
	}
}

// RawVoltage is one element of the RawAndVoltage variant's buffer.
type RawVoltage struct {
	Raw     int32
	Voltage float32
}

// PacketHeader describes one batch of samples. BatchSize * NumChannels
// must equal the length of the underlying sample buffer for every packet
// (Testable Property 1).
type PacketHeader struct {
	// SourceID identifies the acquisition source that originally produced
	// this batch, distinct from the name of whichever stage most recently
	// stamped or forwarded it (eeg_types/src/data.rs, over the narrower
	// pipeline/src/data.rs header that lacks this field).
	SourceID string

	TsNs        int64
	BatchSize   uint32
	NumChannels uint32
	Meta        *SensorMeta
}

// RtPacket is the tagged-union runtime packet. Exactly one of I32, F32, or
// Pair is populated, selected by Kind. A packet is reference-counted:
// Retain bumps the count when a handle is kept beyond the scope it was
// received in (rare; pass-through is the common case and does not need
// Retain), Release drops it and, on the last release, returns the
// underlying buffer to its Pool queue.
//
// RtPacket is never mutated after construction; a transformation always
// produces a new RtPacket over a new (or freshly acquired) buffer.
type RtPacket struct {
	Header PacketHeader
	Kind   PacketKind

	I32  []int32
	F32  []float32
	Pair []RawVoltage

	refs    int32
	release func()
}

// NewRawI32Packet constructs a RawI32 RtPacket over buf, registering
// release as the function to call when the last handle is dropped.
func NewRawI32Packet(header PacketHeader, buf []int32, release func()) *RtPacket {
	return &RtPacket{Header: header, Kind: KindRawI32, I32: buf, refs: 1, release: release}
}

// NewVoltagePacket constructs a Voltage RtPacket over buf.
func NewVoltagePacket(header PacketHeader, buf []float32, release func()) *RtPacket {
	return &RtPacket{Header: header, Kind: KindVoltage, F32: buf, refs: 1, release: release}
}

// NewRawAndVoltagePacket constructs a RawAndVoltage RtPacket over buf.
func NewRawAndVoltagePacket(header PacketHeader, buf []RawVoltage, release func()) *RtPacket {
	return &RtPacket{Header: header, Kind: KindRawAndVoltage, Pair: buf, refs: 1, release: release}
}

// Retain increments the reference count and returns p, for the rare case
// where a handle is kept alive beyond the call that received it (e.g. a
// stage holding on to a packet after its tick has ended).
func (p *RtPacket) Retain() *RtPacket {
	atomic.AddInt32(&p.refs, 1)
	return p
}

// Release decrements the reference count. On the last release, the
// packet's buffer is returned to its pool. Release is idempotent-unsafe:
// callers must not Release a handle more than once per Retain/initial
// construction.
func (p *RtPacket) Release() {
	if atomic.AddInt32(&p.refs, -1) == 0 && p.release != nil {
		p.release()
	}
}

// Len returns the number of samples in the active buffer, regardless of
// kind.
func (p *RtPacket) Len() int {
	switch p.Kind {
	case KindRawI32:
		return len(p.I32)
	case KindVoltage:
		return len(p.F32)
	case KindRawAndVoltage:
		return len(p.Pair)
	default:
		return 0
	}
}
