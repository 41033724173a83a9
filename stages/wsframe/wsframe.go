// Package wsframe implements the websocket-framing sink: a pass-through
// stage whose side effect is publishing a binary data frame (and, on a
// meta_rev transition, a meta_update message) to a BroadcastHub topic
// (spec.md §4.8).
package wsframe

import (
	"encoding/json"

	eeg "github.com/go-eeg/pipeline"
)

type params struct {
	Topic string `json:"topic"`
}

// Stage publishes a framed copy of every packet it sees to hub under
// topic, then passes the packet through unchanged.
type Stage struct {
	id    string
	topic string
	hub   eeg.BroadcastHub

	lastMetaRev uint32
	sawMeta     bool
}

// New returns a wsframe Stage publishing to hub under topic.
func New(id, topic string, hub eeg.BroadcastHub) *Stage {
	return &Stage{id: id, topic: topic, hub: hub}
}

func (s *Stage) ID() string { return s.id }

func (s *Stage) Process(in *eeg.RtPacket, ctx *eeg.StageContext) (*eeg.RtPacket, *eeg.StageError) {
	if in == nil {
		return nil, nil
	}
	if in.Kind != eeg.KindRawI32 && in.Kind != eeg.KindVoltage {
		return nil, eeg.NewStageError(s.id, eeg.BadParam, "websocket sink does not support packet kind %s", in.Kind)
	}

	if s.hub == nil {
		return nil, eeg.NewStageError(s.id, eeg.NotReady, "no broadcast hub bound")
	}

	var metaRev uint32
	if in.Header.Meta != nil {
		metaRev = in.Header.Meta.MetaRev
	}
	if !s.sawMeta || metaRev != s.lastMetaRev {
		msg, err := encodeMetaUpdate(s.topic, in.Header.Meta)
		if err != nil {
			return nil, eeg.WrapStageError(s.id, eeg.Json, err)
		}
		s.hub.Publish(s.topic, msg)
		s.lastMetaRev = metaRev
		s.sawMeta = true
	}

	frame, err := encodeDataFrame(s.topic, in)
	if err != nil {
		if serr, ok := err.(*eeg.StageError); ok {
			return nil, serr
		}
		return nil, eeg.WrapStageError(s.id, eeg.Json, err)
	}
	s.hub.Publish(s.topic, frame)

	return in, nil
}

func (s *Stage) Control(cmd eeg.ControlCommand, ctx *eeg.StageContext) *eeg.StageError {
	return nil
}

// Factory constructs wsframe Stages from params field "topic" (defaulting
// to the stage's own name if absent). Registered under type name
// "ws_frame".
type Factory struct{}

func (Factory) Create(cfg eeg.StageConfig, initCtx *eeg.StageInitCtx) (eeg.Stage, *eeg.StageError) {
	topic := cfg.Name
	if len(cfg.Params) > 0 {
		var p params
		if err := json.Unmarshal(cfg.Params, &p); err != nil {
			return nil, eeg.WrapStageError(cfg.Name, eeg.BadConfig, err)
		}
		if p.Topic != "" {
			topic = p.Topic
		}
	}

	var hub eeg.BroadcastHub
	if initCtx != nil {
		hub = initCtx.Broadcast
	}
	return New(cfg.Name, topic, hub), nil
}

func (Factory) ParamsSchema() string {
	return `{"type":"object","properties":{"topic":{"type":"string"}}}`
}
