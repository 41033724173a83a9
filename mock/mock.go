// Package mock implements a deterministic multi-channel waveform source
// satisfying eeg.Driver (spec.md §4.7), grounded on
// original_source/crates/sensors/src/mock_eeg/driver.rs and on
// hztools-go-sdr/mock/mock.go's pattern of giving the mock implementation
// its own subpackage rather than living in the root package.
package mock

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	eeg "github.com/go-eeg/pipeline"
	"github.com/go-eeg/pipeline/internal/elog"
)

// hardwareLocked simulates the single-SPI-bus exclusivity a real ADC
// would enforce: at most one mock Driver may be initialized at a time,
// mirroring mock_eeg/driver.rs's process-wide HARDWARE_LOCK.
var (
	hardwareMu     sync.Mutex
	hardwareLocked bool
)

var finalizerLog = elog.New().With("mock")

// Config configures a mock Driver.
type Config struct {
	SensorID     string
	SampleRate   uint32
	Channels     []uint8
	ChannelNames []string
	Gain         float32
	VRef         float32
	ADCBits      uint8
	BatchSize    int
}

func (c Config) validate() *eeg.DriverError {
	if len(c.Channels) == 0 {
		return &eeg.DriverError{Kind: eeg.ConfigurationError, Message: "mock driver requires at least one channel"}
	}
	seen := make(map[uint8]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if ch > 31 {
			return &eeg.DriverError{Kind: eeg.ConfigurationError, Message: "mock driver supports channels 0-31"}
		}
		if seen[ch] {
			return &eeg.DriverError{Kind: eeg.ConfigurationError, Message: fmt.Sprintf("duplicate channel index %d", ch)}
		}
		seen[ch] = true
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1000
	}
	if c.VRef == 0 {
		c.VRef = 4.5
	}
	if c.ADCBits == 0 {
		c.ADCBits = 24
	}
	if c.Gain == 0 {
		c.Gain = 1.0
	}
	return c
}

// Driver is a deterministic mock eeg.Driver implementation.
type Driver struct {
	cfg  Config
	meta *eeg.SensorMeta

	mu          sync.Mutex
	initialized bool
	status      eeg.DriverStatus
}

// New validates cfg and returns an unstarted Driver. Construction
// constraints: channel count >= 1, no duplicate channel indices, channel
// index <= 31 (spec.md §4.7).
func New(cfg Config) (*Driver, *eeg.DriverError) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	d := &Driver{
		cfg: cfg,
		meta: &eeg.SensorMeta{
			SensorID:         cfg.SensorID,
			MetaRev:          1,
			SchemaVer:        1,
			SourceType:       "mock",
			VRef:             cfg.VRef,
			ADCBits:          cfg.ADCBits,
			Gain:             cfg.Gain,
			SampleRate:       cfg.SampleRate,
			IsTwosComplement: true,
			ChannelNames:     cfg.ChannelNames,
		},
		status: eeg.DriverStatus{Kind: eeg.StatusNotInitialized},
	}

	runtimeSetFinalizer(d)
	return d, nil
}

// Initialize claims the simulated hardware lock. Idempotent: calling it
// again while already initialized is a no-op. A second, distinct Driver
// instance attempting to initialize concurrently fails HardwareNotFound,
// mirroring a real ADC rejecting a second session on a claimed SPI bus.
func (d *Driver) Initialize() *eeg.DriverError {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}

	hardwareMu.Lock()
	defer hardwareMu.Unlock()
	if hardwareLocked {
		return &eeg.DriverError{Kind: eeg.HardwareNotFound, Message: "mock hardware already claimed by another driver instance"}
	}
	hardwareLocked = true
	d.initialized = true
	d.status = eeg.DriverStatus{Kind: eeg.StatusStopped}
	return nil
}

// Shutdown releases the simulated hardware lock. Safe to call more than
// once; only the first call while initialized has an effect.
func (d *Driver) Shutdown() *eeg.DriverError {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil
	}

	hardwareMu.Lock()
	hardwareLocked = false
	hardwareMu.Unlock()

	d.initialized = false
	d.status = eeg.DriverStatus{Kind: eeg.StatusNotInitialized}
	return nil
}

// GetStatus returns the last status recorded by Initialize, Acquire or
// Shutdown.
func (d *Driver) GetStatus() eeg.DriverStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// GetConfig returns the driver's effective configuration.
func (d *Driver) GetConfig() eeg.AdcConfig {
	return eeg.AdcConfig{
		SensorID:     d.cfg.SensorID,
		SampleRate:   d.cfg.SampleRate,
		Channels:     d.cfg.Channels,
		ChannelNames: d.cfg.ChannelNames,
		Gain:         d.cfg.Gain,
		VRef:         d.cfg.VRef,
		ADCBits:      d.cfg.ADCBits,
		BatchSize:    d.cfg.BatchSize,
	}
}

// Acquire generates one batch per tick until stopFlag is set, checked
// between batches (spec.md §4.7). The first packet's timestamp is
// captured once from the wall clock at the start of acquisition;
// subsequent timestamps advance by exactly batch_size * 1e9/sample_rate
// ns computed from a monotonically incrementing batch counter, never by
// re-sampling the clock, so there is no drift and no dependency on sleep
// jitter.
func (d *Driver) Acquire(out chan<- eeg.BridgeMsg, stopFlag *atomic.Bool) error {
	d.mu.Lock()
	d.status = eeg.DriverStatus{Kind: eeg.StatusRunning}
	d.mu.Unlock()

	channels := d.cfg.Channels
	numChannels := uint32(len(channels))
	batchSize := uint32(d.cfg.BatchSize)
	sampleIntervalNs := int64(1e9 / float64(d.cfg.SampleRate))
	batchDuration := time.Duration(int64(batchSize) * sampleIntervalNs)

	startTsNs := time.Now().UnixNano()
	var batchIndex int64
	var sampleCounter int64

	for !stopFlag.Load() {
		tsNs := startTsNs + batchIndex*int64(batchSize)*sampleIntervalNs

		buf := make([]int32, 0, int(batchSize*numChannels))
		for tick := uint32(0); tick < batchSize; tick++ {
			absIdx := sampleCounter + int64(tick)
			for ci, ch := range channels {
				buf = append(buf, sampleValue(absIdx, int(ch), ci))
			}
		}

		header := eeg.PacketHeader{
			SourceID:    d.cfg.SensorID,
			TsNs:        tsNs,
			BatchSize:   batchSize,
			NumChannels: numChannels,
			Meta:        d.meta,
		}
		out <- eeg.BridgeMsg{Data: eeg.OwnedPacket{Header: header, Kind: eeg.KindRawI32, I32: buf}}

		sampleCounter += int64(batchSize)
		batchIndex++

		time.Sleep(batchDuration)
	}

	d.mu.Lock()
	d.status = eeg.DriverStatus{Kind: eeg.StatusStopped}
	d.mu.Unlock()
	return nil
}

// sampleValue is a deterministic function of absolute sample index and
// channel ordinal: a sum of two sinusoids at different frequencies plus
// bounded pseudo-noise, scaled to plausible 24-bit ADC codes (spec.md
// §4.7).
func sampleValue(absIdx int64, channelIndex int, channelOrdinal int) int32 {
	t := float64(absIdx) / 1000.0
	phase := float64(channelOrdinal) * 0.37
	v := 2_000_000*math.Sin(2*math.Pi*10*t+phase) +
		800_000*math.Sin(2*math.Pi*23*t+phase*2) +
		pseudoNoise(absIdx, channelIndex)
	return int32(v)
}

// pseudoNoise is a bounded, deterministic hash-based function of
// (absIdx, channel) — not a seeded PRNG, so two runs with identical
// configuration produce byte-identical output, which the waveform
// sinusoids alone would not guarantee to look "noisy".
func pseudoNoise(absIdx int64, channel int) float64 {
	x := uint64(absIdx)*2654435761 + uint64(channel)*40503
	x ^= x >> 13
	x *= 0x2545F4914F6CDD1D
	x ^= x >> 17
	return float64(x%20001) - 10000
}
