// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package eeg_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eeg "github.com/go-eeg/pipeline"
)

// passThroughSink records every packet it sees; used in place of the
// websocket sink so the test does not need a BroadcastHub.
type passThroughSink struct {
	id  string
	got chan *eeg.RtPacket
}

func (s *passThroughSink) ID() string { return s.id }
func (s *passThroughSink) Process(in *eeg.RtPacket, ctx *eeg.StageContext) (*eeg.RtPacket, *eeg.StageError) {
	s.got <- in
	return in, nil
}
func (s *passThroughSink) Control(cmd eeg.ControlCommand, ctx *eeg.StageContext) *eeg.StageError {
	return nil
}

type sinkFactory struct{ sink *passThroughSink }

func (f sinkFactory) Create(cfg eeg.StageConfig, initCtx *eeg.StageInitCtx) (eeg.Stage, *eeg.StageError) {
	return f.sink, nil
}
func (sinkFactory) ParamsSchema() string { return "" }

func TestEndToEndMinimalPassThrough(t *testing.T) {
	sink := &passThroughSink{id: "sink", got: make(chan *eeg.RtPacket, 16)}
	registry := eeg.NewStageRegistry()
	require.NoError(t, registry.Register("source", eeg.SourceFactory{}))
	require.NoError(t, registry.Register("sink", sinkFactory{sink: sink}))

	cfg := eeg.SystemConfig{
		Stages: []eeg.StageConfig{
			{Name: "mock", StageType: "source"},
			{Name: "voltage_echo", StageType: "sink", Inputs: []string{"mock"}},
		},
	}

	pool := eeg.NewPool(64)
	initCtx := &eeg.StageInitCtx{Pool: pool}
	graph, perr := eeg.BuildGraph(cfg, registry, initCtx)
	require.Nil(t, perr)

	exec := eeg.NewExecutor(graph, registry, initCtx, nil)
	stopFlag := &atomic.Bool{}
	exec.StopFlag = stopFlag

	dataCh := make(chan *eeg.RtPacket, 16)
	ctrlCh := make(chan eeg.ControlCommand)
	eventCh := make(chan eeg.PipelineEvent, 16)

	runDone := make(chan error, 1)
	go func() { runDone <- exec.Run(dataCh, ctrlCh, eventCh) }()

	const nBatches = 10
	var lastTs int64 = -1
	for i := 0; i < nBatches; i++ {
		buf := pool.AcquireI32(4)
		buf = append(buf, 1, 2, 3, 4)
		ts := int64(i) * 4_000_000
		pkt := eeg.NewRawI32Packet(eeg.PacketHeader{SourceID: "mock", TsNs: ts, BatchSize: 4, NumChannels: 1}, buf, func() { pool.ReleaseI32(buf) })
		dataCh <- pkt
	}

	for i := 0; i < nBatches; i++ {
		select {
		case got := <-sink.got:
			assert.Greater(t, got.Header.TsNs, lastTs)
			if i > 0 {
				assert.Equal(t, int64(4_000_000), got.Header.TsNs-lastTs, "must advance by batch_size*sample_interval exactly")
			}
			lastTs = got.Header.TsNs
		case <-time.After(time.Second):
			t.Fatalf("did not receive packet %d at the sink", i)
		}
	}

	close(ctrlCh)
	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("executor did not shut down after control channel closed")
	}
}

func TestExecutorGracefulShutdownEmitsAckAndStopsData(t *testing.T) {
	registry := eeg.NewStageRegistry()
	require.NoError(t, registry.Register("source", eeg.SourceFactory{}))
	require.NoError(t, registry.Register("echo", eeg.EchoFactory{}))

	cfg := eeg.SystemConfig{
		Stages: []eeg.StageConfig{
			{Name: "mock", StageType: "source"},
			{Name: "sink", StageType: "echo", Inputs: []string{"mock"}},
		},
	}

	pool := eeg.NewPool(16)
	initCtx := &eeg.StageInitCtx{Pool: pool}
	graph, perr := eeg.BuildGraph(cfg, registry, initCtx)
	require.Nil(t, perr)

	exec := eeg.NewExecutor(graph, registry, initCtx, nil)
	stopFlag := &atomic.Bool{}
	exec.StopFlag = stopFlag

	dataCh := make(chan *eeg.RtPacket, 4)
	ctrlCh := make(chan eeg.ControlCommand, 1)
	eventCh := make(chan eeg.PipelineEvent, 4)

	runDone := make(chan error, 1)
	go func() { runDone <- exec.Run(dataCh, ctrlCh, eventCh) }()

	ctrlCh <- eeg.ControlCommand{Kind: eeg.CmdShutdown}

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("executor did not return after Shutdown")
	}

	assert.True(t, stopFlag.Load())

	select {
	case ev := <-eventCh:
		assert.Equal(t, eeg.EvtShutdownAck, ev.Kind)
	default:
		t.Fatal("expected a ShutdownAck event")
	}
}
