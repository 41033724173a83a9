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

// gatedDriver emits n batches, blocking before the last one until release is
// closed, so a test can hold a batch "in flight" inside Bridge.Run for as
// long as it wants.
type gatedDriver struct {
	n       int
	release chan struct{}
}

func (d *gatedDriver) Initialize() *eeg.DriverError { return nil }

func (d *gatedDriver) Acquire(out chan<- eeg.BridgeMsg, stopFlag *atomic.Bool) error {
	for i := 0; i < d.n; i++ {
		if i == d.n-1 {
			<-d.release
		}
		out <- eeg.BridgeMsg{Data: eeg.OwnedPacket{
			Header: eeg.PacketHeader{SourceID: "g", TsNs: int64(i) * 1000, BatchSize: 1, NumChannels: 1},
			Kind:   eeg.KindRawI32,
			I32:    []int32{int32(i)},
		}}
	}
	return nil
}

func (d *gatedDriver) GetStatus() eeg.DriverStatus { return eeg.DriverStatus{Kind: eeg.StatusOk} }
func (d *gatedDriver) GetConfig() eeg.AdcConfig    { return eeg.AdcConfig{} }
func (d *gatedDriver) Shutdown() *eeg.DriverError  { return nil }

func TestRunPipelineWaitsForBridgeBeforeFlushing(t *testing.T) {
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

	driver := &gatedDriver{n: 2, release: make(chan struct{})}
	bridge := eeg.NewBridge(driver, pool, nil)
	exec := eeg.NewExecutor(graph, registry, initCtx, nil)

	ctrlCh := make(chan eeg.ControlCommand, 1)
	eventCh := make(chan eeg.PipelineEvent, 4)

	runDone := make(chan error, 1)
	go func() { runDone <- eeg.RunPipeline(bridge, exec, ctrlCh, eventCh) }()

	ctrlCh <- eeg.ControlCommand{Kind: eeg.CmdShutdown}

	// The second (final) batch is still gated inside Acquire, so the
	// executor must not have flushed and acknowledged shutdown yet, even
	// though dataCh is momentarily empty and Shutdown has been observed.
	time.Sleep(50 * time.Millisecond)
	select {
	case ev := <-eventCh:
		t.Fatalf("executor flushed before the bridge returned: %+v", ev)
	default:
	}

	close(driver.release)

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunPipeline did not return after the bridge was released")
	}

	var sawAck bool
	for {
		select {
		case ev := <-eventCh:
			if ev.Kind == eeg.EvtShutdownAck {
				sawAck = true
			}
		default:
			assert.True(t, sawAck, "expected a ShutdownAck event after the bridge joined")
			return
		}
	}
}
