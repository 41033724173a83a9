// Package stages wires the built-in stage factories (source, echo,
// voltage, ws_frame, test_state) into a StageRegistry. It exists so that
// callers assembling a pipeline don't need to import every stage
// subpackage by hand, and so the root eeg package — which the stage
// subpackages import — never has to import them back.
package stages

import (
	eeg "github.com/go-eeg/pipeline"
	"github.com/go-eeg/pipeline/stages/teststate"
	"github.com/go-eeg/pipeline/stages/voltage"
	"github.com/go-eeg/pipeline/stages/wsframe"
)

// RegisterBuiltins registers every stage type shipped with this module
// into r. Callers that need only a subset, or want to register additional
// third-party stage types, can call StageRegistry.Register directly
// instead.
func RegisterBuiltins(r *eeg.StageRegistry) error {
	types := []struct {
		name    string
		factory eeg.StageFactory
	}{
		{"source", eeg.SourceFactory{}},
		{"echo", eeg.EchoFactory{}},
		{"voltage", voltage.Factory{}},
		{"ws_frame", wsframe.Factory{}},
		{"test_state", teststate.Factory{}},
	}
	for _, t := range types {
		if err := r.Register(t.name, t.factory); err != nil {
			return err
		}
	}
	return nil
}
