package eeg

import "github.com/go-eeg/pipeline/internal/elog"

// Stage is a node in the pipeline graph. A Stage has a stable, graph-local
// id, consumes at most one input packet per tick and may emit zero or one
// output packet, and answers control commands on demand. Per-stage state
// is exclusively owned by the stage; a Stage is never given access to any
// other stage's state (spec.md §4.2, §5).
type Stage interface {
	// ID returns this stage's unique graph-local name.
	ID() string

	// Process is called at most once per input packet, synchronously, on
	// the executor's single goroutine. Returning (nil, nil) drops the
	// packet. The returned *StageError's Kind governs whether the
	// executor logs-and-continues or fails the whole pipeline (§7).
	Process(in *RtPacket, ctx *StageContext) (*RtPacket, *StageError)

	// Control is called once per dispatched ControlCommand, in
	// topological order across all stages. A stage that does not
	// recognize cmd returns nil.
	Control(cmd ControlCommand, ctx *StageContext) *StageError
}

// Drains is implemented by stages that buffer output and need an
// explicit flush when the executor drains (CSV writers, network sinks).
// A Stage may additionally implement Drains; the executor type-asserts
// for it.
type Drains interface {
	Flush() error
}

// StageContext is passed to every Process and Control call. It gives a
// stage an event emitter, the packet pool, a per-stage scratch area and a
// logger — and nothing else: stages cannot reach each other through ctx.
// Log is the executor's logger, shared by every stage; it is not scoped
// to the calling stage's id.
type StageContext struct {
	Pool   *Pool
	Events chan<- PipelineEvent
	Log    *elog.Logger

	currentStage string
	scratch      map[string]interface{}
}

// forStage scopes subsequent Scratch/SetScratch calls to id. The executor
// calls this immediately before invoking a stage's Process or Control,
// since all stages share one StageContext instance — without this, two
// stages choosing the same scratch key name would collide.
func (c *StageContext) forStage(id string) {
	c.currentStage = id
}

func (c *StageContext) scratchKey(key string) string {
	return c.currentStage + "\x00" + key
}

// Scratch returns the calling stage's private value stored under key, and
// whether it was present. Stages use this instead of package-level state
// to keep per-stage data exclusively theirs without widening the Stage
// interface for every small piece of retained state (e.g. the voltage
// stage's cached scale factor).
func (c *StageContext) Scratch(key string) (interface{}, bool) {
	v, ok := c.scratch[c.scratchKey(key)]
	return v, ok
}

// SetScratch stores a value under key, private to the calling stage.
func (c *StageContext) SetScratch(key string, value interface{}) {
	if c.scratch == nil {
		c.scratch = map[string]interface{}{}
	}
	c.scratch[c.scratchKey(key)] = value
}

// Emit sends ev to the control plane's event channel without blocking
// indefinitely if nobody is listening; a full or nil channel silently
// drops the event rather than stalling the executor loop.
func (c *StageContext) Emit(ev PipelineEvent) {
	if c.Events == nil {
		return
	}
	select {
	case c.Events <- ev:
	default:
	}
}

// StageInitCtx is passed to a StageFactory at construction time — distinct
// from StageContext, which is passed on every Process/Control call. It
// carries resources a stage needs once, at build time, such as the
// broadcast hub a websocket-framing sink posts frames to.
type StageInitCtx struct {
	Pool      *Pool
	Broadcast BroadcastHub
	Log       *elog.Logger
}
