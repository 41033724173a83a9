package eeg

import "encoding/json"

// CommandKind discriminates the variant carried by a ControlCommand.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdPause
	CmdResume
	CmdShutdown
	CmdStartRecording
	CmdStopRecording
	CmdReconfigure
	CmdSetParameter
	CmdSetTestState
	CmdCustom
)

func (k CommandKind) String() string {
	switch k {
	case CmdStart:
		return "start"
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdShutdown:
		return "shutdown"
	case CmdStartRecording:
		return "start_recording"
	case CmdStopRecording:
		return "stop_recording"
	case CmdReconfigure:
		return "reconfigure"
	case CmdSetParameter:
		return "set_parameter"
	case CmdSetTestState:
		return "set_test_state"
	case CmdCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ControlCommand is a tagged value sent down the executor's control
// channel (spec.md §6). Only the fields relevant to Kind are populated;
// this is the idiomatic Go rendering of the original tagged-enum control
// command (control.rs), which Go expresses as one struct with a
// discriminant rather than a sum type.
type ControlCommand struct {
	Kind CommandKind

	// Reconfigure
	Config *SystemConfig

	// SetParameter
	TargetStage string
	Parameters  json.RawMessage

	// SetTestState
	TestState uint32

	// Custom
	CustomName string
	CustomData json.RawMessage
}

// EventKind discriminates the variant carried by a PipelineEvent.
type EventKind int

const (
	EvtShutdownAck EventKind = iota
	EvtPipelineFailed
	EvtSourceReady
	EvtTestStateChanged
	EvtStage
)

func (k EventKind) String() string {
	switch k {
	case EvtShutdownAck:
		return "shutdown_ack"
	case EvtPipelineFailed:
		return "pipeline_failed"
	case EvtSourceReady:
		return "source_ready"
	case EvtTestStateChanged:
		return "test_state_changed"
	case EvtStage:
		return "stage_event"
	default:
		return "unknown"
	}
}

// PipelineEvent is a tagged value emitted by the executor or a stage back
// to the control plane (spec.md §6).
type PipelineEvent struct {
	Kind EventKind

	// PipelineFailed
	Error string
	RunID string

	// SourceReady
	Meta *SensorMeta

	// TestStateChanged
	TestState uint32

	// EvtStage: a catch-all for stage-specific events.
	StageID   string
	EventName string
	EventData json.RawMessage
}
