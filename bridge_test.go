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

// countingDriver emits exactly n batches of one sample each, then returns.
type countingDriver struct {
	n             int
	initCalls     int32
	shutdownCalls int32
}

func (d *countingDriver) Initialize() *eeg.DriverError {
	atomic.AddInt32(&d.initCalls, 1)
	return nil
}

func (d *countingDriver) Acquire(out chan<- eeg.BridgeMsg, stopFlag *atomic.Bool) error {
	for i := 0; i < d.n; i++ {
		if stopFlag.Load() {
			break
		}
		out <- eeg.BridgeMsg{Data: eeg.OwnedPacket{
			Header: eeg.PacketHeader{SourceID: "c", TsNs: int64(i) * 1000, BatchSize: 1, NumChannels: 1},
			Kind:   eeg.KindRawI32,
			I32:    []int32{int32(i)},
		}}
	}
	return nil
}

func (d *countingDriver) GetStatus() eeg.DriverStatus { return eeg.DriverStatus{Kind: eeg.StatusOk} }
func (d *countingDriver) GetConfig() eeg.AdcConfig    { return eeg.AdcConfig{} }
func (d *countingDriver) Shutdown() *eeg.DriverError {
	atomic.AddInt32(&d.shutdownCalls, 1)
	return nil
}

func TestBridgeForwardsBatchesAndShutsDownDriver(t *testing.T) {
	driver := &countingDriver{n: 3}
	pool := eeg.NewPool(8)
	bridge := eeg.NewBridge(driver, pool, nil)

	dataCh := make(chan *eeg.RtPacket, 8)
	done := make(chan error, 1)
	go func() { done <- bridge.Run(dataCh) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bridge.Run did not return")
	}

	require.Len(t, dataCh, 3)
	assert.Equal(t, int32(1), driver.initCalls)
	assert.Equal(t, int32(1), driver.shutdownCalls)

	var lastTs int64 = -1
	for i := 0; i < 3; i++ {
		pkt := <-dataCh
		assert.Greater(t, pkt.Header.TsNs, lastTs)
		lastTs = pkt.Header.TsNs
	}
}
