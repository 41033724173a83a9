package teststate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eeg "github.com/go-eeg/pipeline"
	"github.com/go-eeg/pipeline/stages/teststate"
)

func TestTestStateControlEmitsEvent(t *testing.T) {
	s := teststate.New("ts")
	events := make(chan eeg.PipelineEvent, 1)
	ctx := &eeg.StageContext{Events: events}

	serr := s.Control(eeg.ControlCommand{Kind: eeg.CmdSetTestState, TestState: 7}, ctx)
	require.Nil(t, serr)
	assert.Equal(t, uint32(7), s.State())

	select {
	case ev := <-events:
		assert.Equal(t, eeg.EvtTestStateChanged, ev.Kind)
		assert.Equal(t, uint32(7), ev.TestState)
	default:
		t.Fatal("expected a TestStateChanged event")
	}
}

func TestTestStateIgnoresOtherCommands(t *testing.T) {
	s := teststate.New("ts")
	ctx := &eeg.StageContext{}

	serr := s.Control(eeg.ControlCommand{Kind: eeg.CmdPause}, ctx)
	assert.Nil(t, serr)
	assert.Equal(t, uint32(0), s.State())
}

func TestTestStatePassesPacketsThrough(t *testing.T) {
	s := teststate.New("ts")
	pkt := &eeg.RtPacket{}
	out, serr := s.Process(pkt, &eeg.StageContext{})
	assert.Nil(t, serr)
	assert.Same(t, pkt, out)
}
