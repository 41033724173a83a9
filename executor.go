package eeg

import (
	"sync/atomic"
	"time"

	"github.com/go-eeg/pipeline/internal/elog"
	"github.com/google/uuid"
)

// pollInterval is the upper bound the executor waits for a message on
// either input channel before looping again, solely so drain liveness can
// be re-checked periodically (spec.md §4.5, §5).
const pollInterval = 2 * time.Millisecond

// Executor is the single-consumer loop that owns a PipelineGraph
// (spec.md §4.5). It is single-threaded by construction: Run must be
// called from one goroutine and does all stage dispatch itself.
type Executor struct {
	registry *StageRegistry
	initCtx  *StageInitCtx
	graph    *PipelineGraph
	log      *elog.Logger
	runID    uuid.UUID

	// StopFlag, if set, is stored true the moment a Shutdown command is
	// observed, before any further draining happens — the bridge's
	// acquisition loop consults the same flag between batches (spec.md
	// §4.6).
	StopFlag *atomic.Bool

	// BridgeDone, if set, must be closed by whatever feeds dataCh once it
	// will never send to dataCh again (e.g. a Bridge's Run has returned).
	// The executor will not flush and emit ShutdownAck until this closes,
	// even once draining is true and dataCh is momentarily empty —
	// otherwise a packet the bridge is mid-send on could be dropped by a
	// flush that raced ahead of it (spec.md §4.6, §5). Left nil, draining
	// is gated on dataCh emptiness alone, as when fed directly with no
	// Bridge in between.
	BridgeDone <-chan struct{}
}

// NewExecutor returns an Executor ready to run graph. registry and
// initCtx are retained so a Reconfigure command can rebuild the graph
// from a new SystemConfig.
func NewExecutor(graph *PipelineGraph, registry *StageRegistry, initCtx *StageInitCtx, log *elog.Logger) *Executor {
	if log == nil {
		log = elog.New()
	}
	return &Executor{
		registry: registry,
		initCtx:  initCtx,
		graph:    graph,
		log:      log,
		runID:    uuid.New(),
	}
}

// RunID returns the UUID minted for this Executor instance, included in
// every PipelineFailed event and failure log line for correlation.
func (e *Executor) RunID() uuid.UUID { return e.runID }

// Run is the executor main loop (spec.md §4.5). It returns nil after a
// clean Shutdown/drain/flush, or a non-nil error if a stage reported
// Fatal/BadConfig/UnsupportedReconfig (or panicked), in which case the
// loop exits immediately without flushing.
func (e *Executor) Run(dataCh <-chan *RtPacket, ctrlCh <-chan ControlCommand, eventCh chan<- PipelineEvent) error {
	stageCtx := &StageContext{Pool: e.initCtx.Pool, Events: eventCh, Log: e.log}
	draining := false

	for {
		if draining && len(dataCh) == 0 && e.bridgeJoined() {
			e.flushAndAck(eventCh)
			return nil
		}

		select {
		case cmd, ok := <-ctrlCh:
			if !ok {
				draining = true
				continue
			}
			if cmd.Kind == CmdShutdown {
				draining = true
				if e.StopFlag != nil {
					e.StopFlag.Store(true)
				}
			}
			if err := e.handleControl(cmd, stageCtx, eventCh); err != nil {
				return err
			}

		case pkt, ok := <-dataCh:
			if !ok {
				draining = true
				continue
			}
			if err := e.runTick(pkt, stageCtx, eventCh); err != nil {
				return err
			}

		case <-time.After(pollInterval):
			// Liveness tick: nothing arrived, loop back around to
			// re-check the drain-idle condition above.
		}
	}
}

// bridgeJoined reports whether it is safe to flush: either no BridgeDone
// was wired (dataCh has no Bridge feeding it), or it has been closed.
func (e *Executor) bridgeJoined() bool {
	if e.BridgeDone == nil {
		return true
	}
	select {
	case <-e.BridgeDone:
		return true
	default:
		return false
	}
}

func (e *Executor) runTick(pkt *RtPacket, ctx *StageContext, eventCh chan<- PipelineEvent) *StageError {
	serr := e.safePush(pkt, ctx)
	if serr == nil {
		return nil
	}
	e.publishFailure(serr, eventCh)
	return serr
}

// safePush recovers a panic inside graph.Push and converts it to a Fatal
// StageError, matching spec.md §4.5's "or panicking" clause. Any packets
// already produced earlier in the tick are left for the garbage
// collector rather than meticulously unwound — the executor is about to
// exit entirely on a Fatal, so there is no steady-state leak.
func (e *Executor) safePush(pkt *RtPacket, ctx *StageContext) (serr *StageError) {
	defer func() {
		if r := recover(); r != nil {
			pkt.Release()
			serr = NewStageError("", Fatal, "panic: %v", r)
		}
	}()
	return e.graph.Push(pkt, ctx)
}

func (e *Executor) handleControl(cmd ControlCommand, ctx *StageContext, eventCh chan<- PipelineEvent) *StageError {
	// CmdReconfigure swaps e.graph directly and returns here, rather than
	// falling through to graph.Dispatch below like every other command
	// kind: no built-in stage implements live-reconfigure today (see
	// DESIGN.md), so there is nothing yet for a Dispatch to deliver this
	// to on the new graph.
	if cmd.Kind == CmdReconfigure && cmd.Config != nil {
		newGraph, perr := BuildGraph(*cmd.Config, e.registry, e.initCtx)
		if perr != nil {
			// A control-plane error is reported, not fatal (spec.md §7):
			// the executor keeps running the graph it already has.
			e.log.Errorf("run %s: reconfigure rejected: %v", e.runID, perr)
			e.emit(eventCh, PipelineEvent{Kind: EvtPipelineFailed, Error: perr.Error(), RunID: e.runID.String()})
			return nil
		}
		e.graph = newGraph
		return nil
	}

	errs := e.graph.Dispatch(cmd, ctx)
	for stageName, serr := range errs {
		switch serr.Kind {
		case Fatal, BadConfig, UnsupportedReconfig:
			e.publishFailure(serr, eventCh)
			return serr
		default:
			e.log.Errorf("stage %s control error: %v", stageName, serr)
		}
	}

	return nil
}

func (e *Executor) flushAndAck(eventCh chan<- PipelineEvent) {
	if errs := e.graph.Flush(); errs != nil {
		for name, err := range errs {
			e.log.Errorf("flush stage %s: %v", name, err)
		}
	}
	e.emit(eventCh, PipelineEvent{Kind: EvtShutdownAck, RunID: e.runID.String()})
}

func (e *Executor) publishFailure(serr *StageError, eventCh chan<- PipelineEvent) {
	e.log.Errorf("run %s: pipeline failed: %v", e.runID, serr)
	e.emit(eventCh, PipelineEvent{Kind: EvtPipelineFailed, Error: serr.Error(), RunID: e.runID.String()})
}

func (e *Executor) emit(ch chan<- PipelineEvent, ev PipelineEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
