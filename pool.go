package eeg

import "code.hybscloud.com/lfq"

// DefaultPoolCapacity is the per-element-type queue capacity used by
// NewPool. It is rounded up to a power of two by lfq itself.
const DefaultPoolCapacity = 4096

// Pool is the process-wide packet buffer pool: three lock-free queues of
// reusable buffers, one per element type (spec.md §4.1). Acquire returns
// a recycled buffer or allocates a new one when the queue is empty;
// Release clears and recycles a buffer, or drops it if the queue happens
// to be full (the queue never grows beyond its constructed capacity, so a
// full queue just means the garbage collector reclaims the buffer instead
// of the pool — "never shrinks" remains true for the steady-state case).
//
// Acquire/Release never lock: both operations bottom out in lfq's
// FAA-based SCQ algorithm, safe for many concurrent producers and
// consumers (hayabusa-cloud-lfq/doc.go).
type Pool struct {
	i32  *lfq.MPMC[[]int32]
	f32  *lfq.MPMC[[]float32]
	pair *lfq.MPMC[[]RawVoltage]
}

// NewPool constructs a Pool whose three queues each hold up to capacity
// recycled buffers.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	return &Pool{
		i32:  lfq.NewMPMC[[]int32](capacity),
		f32:  lfq.NewMPMC[[]float32](capacity),
		pair: lfq.NewMPMC[[]RawVoltage](capacity),
	}
}

// AcquireI32 returns a recycled []int32 buffer with capacity at least
// capacityHint, or allocates a new one. capacityHint is a minimum
// reservation, never a maximum: a larger recycled buffer is returned
// as-is.
func (p *Pool) AcquireI32(capacityHint int) []int32 {
	if buf, err := p.i32.Dequeue(); err == nil {
		if cap(buf) >= capacityHint {
			return buf[:0]
		}
	}
	return make([]int32, 0, capacityHint)
}

// ReleaseI32 clears buf and returns it to the i32 queue. If the queue is
// full, buf is simply dropped.
func (p *Pool) ReleaseI32(buf []int32) {
	buf = buf[:0]
	_ = p.i32.Enqueue(&buf)
}

// AcquireF32 is the float32 analog of AcquireI32.
func (p *Pool) AcquireF32(capacityHint int) []float32 {
	if buf, err := p.f32.Dequeue(); err == nil {
		if cap(buf) >= capacityHint {
			return buf[:0]
		}
	}
	return make([]float32, 0, capacityHint)
}

// ReleaseF32 is the float32 analog of ReleaseI32.
func (p *Pool) ReleaseF32(buf []float32) {
	buf = buf[:0]
	_ = p.f32.Enqueue(&buf)
}

// AcquirePair is the (int32,float32)-pair analog of AcquireI32.
func (p *Pool) AcquirePair(capacityHint int) []RawVoltage {
	if buf, err := p.pair.Dequeue(); err == nil {
		if cap(buf) >= capacityHint {
			return buf[:0]
		}
	}
	return make([]RawVoltage, 0, capacityHint)
}

// ReleasePair is the pair analog of ReleaseI32.
func (p *Pool) ReleasePair(buf []RawVoltage) {
	buf = buf[:0]
	_ = p.pair.Enqueue(&buf)
}
