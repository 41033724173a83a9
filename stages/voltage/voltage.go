// Package voltage implements the voltage-conversion stage: RawI32 in,
// Voltage out (spec.md §4.8).
package voltage

import (
	eeg "github.com/go-eeg/pipeline"
)

const scratchScaleKey = "voltage.scale"
const scratchMetaRevKey = "voltage.metaRev"

// Stage converts raw ADC codes to volts. For each raw sample r it emits
// (r - offset_code) * (vref/gain) / 2^(adc_bits-1) as float32; the
// offset_code term is the SPEC_FULL.md supplement over spec.md's literal
// formula and is a no-op when offset_code is zero, which is the default
// and the case exercised by spec.md §8 scenario B.
type Stage struct {
	id string
}

// New returns a voltage-conversion Stage with the given graph-local id.
func New(id string) *Stage { return &Stage{id: id} }

func (s *Stage) ID() string { return s.id }

func (s *Stage) Process(in *eeg.RtPacket, ctx *eeg.StageContext) (*eeg.RtPacket, *eeg.StageError) {
	if in == nil || in.Kind != eeg.KindRawI32 {
		return nil, nil
	}

	meta := in.Header.Meta
	if meta == nil {
		return nil, eeg.NewStageError(s.id, eeg.BadParam, "packet has no SensorMeta")
	}
	if meta.ADCBits < 2 {
		return nil, eeg.NewStageError(s.id, eeg.BadParam, "adc_bits must be >= 2, got %d", meta.ADCBits)
	}
	if meta.Gain == 0 {
		return nil, eeg.NewStageError(s.id, eeg.BadParam, "gain must not be zero")
	}

	scale := s.scaleFor(meta, ctx)

	out := ctx.Pool.AcquireF32(len(in.I32))
	for _, raw := range in.I32 {
		v := (float64(raw) - float64(meta.OffsetCode)) * scale
		out = append(out, float32(v))
	}

	outPkt := eeg.NewVoltagePacket(in.Header, out, func() { ctx.Pool.ReleaseF32(out) })
	return outPkt, nil
}

func (s *Stage) Control(cmd eeg.ControlCommand, ctx *eeg.StageContext) *eeg.StageError {
	return nil
}

// scaleFor returns vref/gain/2^(adc_bits-1), recomputing it only when
// meta.MetaRev has changed since the last call (spec.md §4.8).
func (s *Stage) scaleFor(meta *eeg.SensorMeta, ctx *eeg.StageContext) float64 {
	if cachedRev, ok := ctx.Scratch(scratchMetaRevKey); ok && cachedRev.(uint32) == meta.MetaRev {
		cachedScale, _ := ctx.Scratch(scratchScaleKey)
		return cachedScale.(float64)
	}

	scale := float64(meta.VRef) / float64(meta.Gain) / meta.FullScale()
	ctx.SetScratch(scratchMetaRevKey, meta.MetaRev)
	ctx.SetScratch(scratchScaleKey, scale)
	return scale
}

// Factory constructs voltage Stages. Registered under type name
// "voltage".
type Factory struct{}

func (Factory) Create(cfg eeg.StageConfig, initCtx *eeg.StageInitCtx) (eeg.Stage, *eeg.StageError) {
	return New(cfg.Name), nil
}

func (Factory) ParamsSchema() string { return "" }
