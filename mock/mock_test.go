package mock_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eeg "github.com/go-eeg/pipeline"
	"github.com/go-eeg/pipeline/mock"
)

func TestNewValidatesChannels(t *testing.T) {
	_, derr := mock.New(mock.Config{Channels: nil})
	require.NotNil(t, derr)
	assert.Equal(t, eeg.ConfigurationError, derr.Kind)

	_, derr = mock.New(mock.Config{Channels: []uint8{0, 0}})
	require.NotNil(t, derr)

	_, derr = mock.New(mock.Config{Channels: []uint8{32}})
	require.NotNil(t, derr)

	d, derr := mock.New(mock.Config{Channels: []uint8{0, 1}})
	require.Nil(t, derr)
	require.NotNil(t, d)
}

func TestInitializeEnforcesHardwareExclusivity(t *testing.T) {
	d1, _ := mock.New(mock.Config{Channels: []uint8{0}})
	d2, _ := mock.New(mock.Config{Channels: []uint8{0}})

	require.Nil(t, d1.Initialize())
	defer d1.Shutdown()

	derr := d2.Initialize()
	require.NotNil(t, derr, "a second driver must not be able to claim the simulated hardware lock")
	assert.Equal(t, eeg.HardwareNotFound, derr.Kind)

	require.Nil(t, d1.Shutdown())
	require.Nil(t, d2.Initialize())
	require.Nil(t, d2.Shutdown())
}

func TestInitializeIsIdempotent(t *testing.T) {
	d, _ := mock.New(mock.Config{Channels: []uint8{0}})
	require.Nil(t, d.Initialize())
	require.Nil(t, d.Initialize())
	require.Nil(t, d.Shutdown())
}

func TestAcquireProducesStrictlyIncreasingTimestamps(t *testing.T) {
	d, _ := mock.New(mock.Config{
		Channels:   []uint8{0, 1},
		SampleRate: 1000,
		BatchSize:  4,
	})
	require.Nil(t, d.Initialize())
	defer d.Shutdown()

	out := make(chan eeg.BridgeMsg, 8)
	var stopFlag atomic.Bool
	done := make(chan error, 1)
	go func() { done <- d.Acquire(out, &stopFlag) }()

	var lastTs int64 = -1
	var lastMeta *eeg.SensorMeta
	for i := 0; i < 5; i++ {
		msg := <-out
		require.False(t, msg.IsError)
		require.Equal(t, eeg.KindRawI32, msg.Data.Kind)
		require.Len(t, msg.Data.I32, 4*2)

		assert.Greater(t, msg.Data.Header.TsNs, lastTs)
		lastTs = msg.Data.Header.TsNs

		if lastMeta != nil {
			assert.Same(t, lastMeta, msg.Data.Header.Meta, "meta pointer must be stable across batches absent a meta change")
		}
		lastMeta = msg.Data.Header.Meta
	}

	stopFlag.Store(true)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire did not stop after stopFlag was set")
	}
}

func TestSampleValuesAreDeterministic(t *testing.T) {
	cfg := mock.Config{Channels: []uint8{0}, SampleRate: 1000, BatchSize: 4}
	d1, _ := mock.New(cfg)
	d2, _ := mock.New(cfg)

	firstBatch := func(d *mock.Driver) eeg.BridgeMsg {
		out := make(chan eeg.BridgeMsg, 1)
		var stop atomic.Bool
		done := make(chan error, 1)
		go func() { done <- d.Acquire(out, &stop) }()
		m := <-out
		stop.Store(true)
		<-done
		return m
	}

	// Only one mock driver may hold the simulated hardware lock at a
	// time, so the two drivers run one after the other.
	require.Nil(t, d1.Initialize())
	m1 := firstBatch(d1)
	require.Nil(t, d1.Shutdown())
	require.Nil(t, d2.Initialize())
	m2 := firstBatch(d2)
	require.Nil(t, d2.Shutdown())

	assert.Equal(t, m1.Data.I32, m2.Data.I32, "two driver instances with identical config must be byte-identical")
}
