// Package teststate implements a pass-through stage whose only purpose is
// to answer SetTestState control commands, so integration tests can
// exercise the control plane without a stage that has any other
// observable side effect. Grounded on
// original_source/crates/pipeline/src/stages/test_stage.rs's
// StatefulTestStage.
package teststate

import (
	eeg "github.com/go-eeg/pipeline"
)

// Stage passes packets through unchanged and tracks a single uint32 set
// by CmdSetTestState, emitting EvtTestStateChanged for every such command,
// including one that sets the value it already holds.
type Stage struct {
	id    string
	state uint32
}

// New returns a teststate Stage with the given graph-local id.
func New(id string) *Stage { return &Stage{id: id} }

func (s *Stage) ID() string { return s.id }

func (s *Stage) Process(in *eeg.RtPacket, ctx *eeg.StageContext) (*eeg.RtPacket, *eeg.StageError) {
	return in, nil
}

func (s *Stage) Control(cmd eeg.ControlCommand, ctx *eeg.StageContext) *eeg.StageError {
	if cmd.Kind != eeg.CmdSetTestState {
		return nil
	}
	s.state = cmd.TestState
	ctx.Emit(eeg.PipelineEvent{Kind: eeg.EvtTestStateChanged, TestState: s.state})
	return nil
}

// State returns the stage's last-set test state, for tests that inspect
// the stage directly rather than listening on the event channel.
func (s *Stage) State() uint32 { return s.state }

// Factory constructs teststate Stages. Registered under type name
// "test_state".
type Factory struct{}

func (Factory) Create(cfg eeg.StageConfig, initCtx *eeg.StageInitCtx) (eeg.Stage, *eeg.StageError) {
	return New(cfg.Name), nil
}

func (Factory) ParamsSchema() string { return "" }
