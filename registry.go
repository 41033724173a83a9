package eeg

import (
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// StageFactory constructs a Stage from its StageConfig. A factory may
// optionally supply a JSON Schema describing cfg.Params's expected shape;
// when non-empty, the graph builder compiles and validates against it
// before calling Create, so malformed params fail BuildGraph with an
// InvalidConfiguration PipelineError before the stage is even constructed (spec.md §4.3, supplemented per SPEC_FULL.md).
type StageFactory interface {
	Create(cfg StageConfig, initCtx *StageInitCtx) (Stage, *StageError)

	// ParamsSchema returns a JSON Schema document (as a string) for
	// cfg.Params, or "" to skip validation entirely.
	ParamsSchema() string
}

// StageRegistry maps a stage type name to its factory. It is populated
// once, before any graph is built, and is immutable thereafter (spec.md
// §4.3).
type StageRegistry struct {
	mu        sync.RWMutex
	factories map[string]StageFactory
	schemas   map[string]*jsonschema.Schema
}

// NewStageRegistry returns an empty StageRegistry.
func NewStageRegistry() *StageRegistry {
	return &StageRegistry{
		factories: map[string]StageFactory{},
		schemas:   map[string]*jsonschema.Schema{},
	}
}

// Register adds factory under stageType. Registering the same type name
// twice replaces the previous factory; callers are expected to register
// once at process startup before any graph is built.
func (r *StageRegistry) Register(stageType string, factory StageFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[stageType] = factory
	delete(r.schemas, stageType)
	if raw := factory.ParamsSchema(); raw != "" {
		sch, err := jsonschema.CompileString(stageType+".schema.json", raw)
		if err != nil {
			return newPipelineError(InvalidConfiguration, stageType, "compiling params schema: %v", err)
		}
		r.schemas[stageType] = sch
	}
	return nil
}

// lookup returns the factory for stageType and its compiled schema, if
// any.
func (r *StageRegistry) lookup(stageType string) (StageFactory, *jsonschema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[stageType]
	return f, r.schemas[stageType], ok
}

// validateParams runs cfg.Params against stageType's compiled schema, if
// one is registered. A nil/empty Params with a registered schema is
// validated as `{}`.
func (r *StageRegistry) validateParams(stageType string, schema *jsonschema.Schema, params json.RawMessage) error {
	if schema == nil {
		return nil
	}
	raw := params
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}
