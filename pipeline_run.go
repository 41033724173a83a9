package eeg

import "sync/atomic"

// RunPipeline wires a Bridge and an Executor into the single producer/
// consumer pair spec.md §4.6 and §5 describe: one stop flag shared between
// them, and a data channel the executor will not flush past until the
// bridge's forwarder has actually returned. Without the second part, a
// Shutdown observed while dataCh is momentarily empty could flush and emit
// ShutdownAck while the bridge is still blocked mid-send on an in-flight
// batch, silently dropping it.
//
// RunPipeline blocks until both the executor and the bridge have returned.
func RunPipeline(bridge *Bridge, exec *Executor, ctrlCh <-chan ControlCommand, eventCh chan<- PipelineEvent) error {
	stopFlag := &atomic.Bool{}
	bridge.SetStopFlag(stopFlag)
	exec.StopFlag = stopFlag

	dataCh := make(chan *RtPacket, bridgeQueueCapacity)
	bridgeDone := make(chan struct{})
	bridgeErr := make(chan error, 1)

	go func() {
		defer close(bridgeDone)
		defer close(dataCh)
		bridgeErr <- bridge.Run(dataCh)
	}()
	exec.BridgeDone = bridgeDone

	execErr := exec.Run(dataCh, ctrlCh, eventCh)
	if berr := <-bridgeErr; berr != nil && execErr == nil {
		return berr
	}
	return execErr
}
