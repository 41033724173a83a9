package eeg

// OwnedPacket is a deep-copied, serializable mirror of RtPacket used when
// crossing a thread boundary that is not pool-aware (the bridge) or when
// a packet must be serialized. Unlike RtPacket its sample slices are
// ordinary heap slices with no pool affiliation and no reference count.
type OwnedPacket struct {
	Header PacketHeader
	Kind   PacketKind

	I32  []int32
	F32  []float32
	Pair []RawVoltage
}

// ToOwned deep-copies p into an OwnedPacket. p is not consumed or
// released; the caller still owns p's handle afterwards.
func (p *RtPacket) ToOwned() OwnedPacket {
	o := OwnedPacket{Header: p.Header, Kind: p.Kind}
	switch p.Kind {
	case KindRawI32:
		o.I32 = append([]int32(nil), p.I32...)
	case KindVoltage:
		o.F32 = append([]float32(nil), p.F32...)
	case KindRawAndVoltage:
		o.Pair = append([]RawVoltage(nil), p.Pair...)
	}
	return o
}

// ToRuntime re-adopts a pool buffer for o's contents, returning a fresh
// RtPacket with refcount 1. The buffer is acquired from pool sized to the
// owned packet's sample count and the contents are copied in; the
// OwnedPacket itself is left untouched so o.ToRuntime(pool).ToOwned()
// equals o (Testable Property 4).
func (o OwnedPacket) ToRuntime(pool *Pool) *RtPacket {
	switch o.Kind {
	case KindRawI32:
		buf := pool.AcquireI32(len(o.I32))
		buf = append(buf[:0], o.I32...)
		return NewRawI32Packet(o.Header, buf, func() { pool.ReleaseI32(buf) })
	case KindVoltage:
		buf := pool.AcquireF32(len(o.F32))
		buf = append(buf[:0], o.F32...)
		return NewVoltagePacket(o.Header, buf, func() { pool.ReleaseF32(buf) })
	case KindRawAndVoltage:
		buf := pool.AcquirePair(len(o.Pair))
		buf = append(buf[:0], o.Pair...)
		return NewRawAndVoltagePacket(o.Header, buf, func() { pool.ReleasePair(buf) })
	default:
		return nil
	}
}

// Equal reports whether o and other carry identical header, kind and
// sample contents. Used by the OwnedPacket round-trip property test.
func (o OwnedPacket) Equal(other OwnedPacket) bool {
	if o.Kind != other.Kind {
		return false
	}
	if !sameHeader(o.Header, other.Header) {
		return false
	}
	switch o.Kind {
	case KindRawI32:
		return int32sEqual(o.I32, other.I32)
	case KindVoltage:
		return float32sEqual(o.F32, other.F32)
	case KindRawAndVoltage:
		if len(o.Pair) != len(other.Pair) {
			return false
		}
		for i := range o.Pair {
			if o.Pair[i] != other.Pair[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func sameHeader(a, b PacketHeader) bool {
	if a.SourceID != b.SourceID || a.TsNs != b.TsNs || a.BatchSize != b.BatchSize || a.NumChannels != b.NumChannels {
		return false
	}
	if (a.Meta == nil) != (b.Meta == nil) {
		return false
	}
	if a.Meta == nil {
		return true
	}
	return sameMeta(*a.Meta, *b.Meta)
}

// sameMeta compares two SensorMeta values field by field; SensorMeta
// carries a ChannelNames slice, so it is not comparable with ==.
func sameMeta(a, b SensorMeta) bool {
	if a.SensorID != b.SensorID || a.MetaRev != b.MetaRev || a.SchemaVer != b.SchemaVer ||
		a.SourceType != b.SourceType || a.VRef != b.VRef || a.ADCBits != b.ADCBits ||
		a.Gain != b.Gain || a.SampleRate != b.SampleRate || a.OffsetCode != b.OffsetCode ||
		a.IsTwosComplement != b.IsTwosComplement {
		return false
	}
	if len(a.ChannelNames) != len(b.ChannelNames) {
		return false
	}
	for i := range a.ChannelNames {
		if a.ChannelNames[i] != b.ChannelNames[i] {
			return false
		}
	}
	return true
}

func int32sEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float32sEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
