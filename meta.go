package eeg

// SensorMeta is the immutable, shared description of the stream a source
// is producing. A change to any field (most commonly gain, on an
// auto-ranging ADC) allocates a new SensorMeta and bumps MetaRev; existing
// headers keep pointing at the old instance. Stages detect a change by
// comparing MetaRev, never by comparing field values.
type SensorMeta struct {
	SensorID   string
	MetaRev    uint32
	SchemaVer  uint32
	SourceType string

	VRef             float32
	ADCBits          uint8
	Gain             float32
	SampleRate       uint32
	OffsetCode       int32
	IsTwosComplement bool

	ChannelNames []string
}

// DefaultSensorMeta returns a SensorMeta with the conventional defaults
// used across the example fixtures and the mock source: 24-bit two's
// complement samples, 4.5V reference, unity gain, 1kHz sample rate.
func DefaultSensorMeta() *SensorMeta {
	return &SensorMeta{
		MetaRev:          1,
		SchemaVer:        1,
		SourceType:       "unknown",
		VRef:             4.5,
		ADCBits:          24,
		Gain:             1.0,
		SampleRate:       1000,
		IsTwosComplement: true,
	}
}

// WithRevision returns a copy of m, with its own copy of ChannelNames,
// MetaRev bumped by one and mutator applied. Callers use this whenever a field (gain, sample rate,
// channel names) changes, so that every existing header referencing the
// old *SensorMeta remains valid and unmutated.
func (m *SensorMeta) WithRevision(mutate func(*SensorMeta)) *SensorMeta {
	next := *m
	next.MetaRev = m.MetaRev + 1
	if len(m.ChannelNames) > 0 {
		next.ChannelNames = append([]string(nil), m.ChannelNames...)
	}
	mutate(&next)
	return &next
}

// FullScale returns 2^(adc_bits-1), the divisor used by voltage conversion.
// Returns 0 if ADCBits < 2 (the caller must treat this as BadParam).
func (m *SensorMeta) FullScale() float64 {
	if m.ADCBits < 2 {
		return 0
	}
	return float64(int64(1) << (m.ADCBits - 1))
}
