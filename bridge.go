package eeg

import (
	"sync/atomic"

	"github.com/go-eeg/pipeline/internal/elog"
	"github.com/google/uuid"
)

// bridgeQueueCapacity sizes the channel between the driver's acquisition
// goroutine and the forwarder. spec.md §4.6 describes the driver's own
// queue as unbounded; in Go a literal unbounded channel does not exist,
// so a generously sized buffer stands in for it — the driver's own
// internal rate limiting (one batch per sample-interval) keeps it from
// ever filling in practice, and backpressure still propagates correctly
// through the forwarder's blocking send into the executor's data channel
// once it does.
const bridgeQueueCapacity = 256

// Bridge adapts a synchronous Driver's acquisition loop into the
// asynchronous Executor (spec.md §4.6). A dedicated goroutine runs
// Driver.Acquire; Run itself is the forwarder, converting each OwnedPacket
// into a pool-backed RtPacket and handing it to the executor's data
// channel, blocking (and thereby propagating backpressure) if that
// channel is full.
type Bridge struct {
	driver    Driver
	pool      *Pool
	sessionID uuid.UUID
	log       *elog.Logger
	stopFlag  *atomic.Bool
}

// NewBridge returns a Bridge wrapping driver, using pool to adopt buffers
// for incoming OwnedPacket batches. A private stop flag is allocated by
// default; call SetStopFlag (or use RunPipeline, which does this for you)
// to share one flag with the Executor driving the same dataCh.
func NewBridge(driver Driver, pool *Pool, log *elog.Logger) *Bridge {
	if log == nil {
		log = elog.New()
	}
	return &Bridge{driver: driver, pool: pool, sessionID: uuid.New(), log: log, stopFlag: &atomic.Bool{}}
}

// StopFlag returns the atomic flag the driver's Acquire loop consults
// between batches.
func (b *Bridge) StopFlag() *atomic.Bool { return b.stopFlag }

// SetStopFlag replaces the flag the driver's Acquire loop consults with
// flag, so it can be shared with the Executor.StopFlag on the other end of
// dataCh. Must be called before Run.
func (b *Bridge) SetStopFlag(flag *atomic.Bool) { b.stopFlag = flag }

// Run initializes the driver, starts its acquisition loop on its own
// goroutine, and forwards every resulting batch into dataCh until the
// driver returns. It shuts the driver down before returning. Errors
// surfaced by the driver mid-acquisition are reported as SensorError log
// lines rather than aborting the forward loop, since a single bad batch
// does not necessarily mean the driver has stopped producing.
func (b *Bridge) Run(dataCh chan<- *RtPacket) error {
	if derr := b.driver.Initialize(); derr != nil {
		return derr
	}
	defer func() {
		if derr := b.driver.Shutdown(); derr != nil {
			b.log.Errorf("bridge %s: shutdown: %v", b.sessionID, derr)
		}
	}()

	bridgeCh := make(chan BridgeMsg, bridgeQueueCapacity)
	acquireErr := make(chan error, 1)

	go func() {
		acquireErr <- b.driver.Acquire(bridgeCh, b.stopFlag)
		close(bridgeCh)
	}()

	for msg := range bridgeCh {
		if msg.IsError {
			b.log.Errorf("bridge %s: sensor error: %v", b.sessionID, msg.Err)
			continue
		}
		pkt := msg.Data.ToRuntime(b.pool)
		dataCh <- pkt
	}

	return <-acquireErr
}
