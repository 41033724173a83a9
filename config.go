package eeg

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// StageConfig is one entry of SystemConfig.Stages (spec.md §6). Params is
// left as a RawMessage so a StageFactory can unmarshal it into whatever
// shape it expects, optionally after validating it against a JSON Schema
// (see StageFactory.ParamsSchema).
type StageConfig struct {
	Name      string          `yaml:"name" json:"name"`
	StageType string          `yaml:"type" json:"type"`
	Params    json.RawMessage `yaml:"params" json:"params"`
	Inputs    []string        `yaml:"inputs" json:"inputs"`
	Outputs   []string        `yaml:"outputs" json:"outputs"`
}

// UnmarshalYAML decodes StageConfig by hand because yaml.v3 dispatches a
// mapping node purely by the destination's reflect.Kind, and never special
// cases Slice the way encoding/json special-cases RawMessage. Left to the
// default decoder, a nested "params:" mapping (the documented shape; see
// spec.md §6) would hit a type error against a []byte field. Params is
// decoded generically and re-encoded through encoding/json instead, so the
// result is identical to what ParseSystemConfigJSON would have produced.
func (s *StageConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name      string    `yaml:"name"`
		StageType string    `yaml:"type"`
		Params    yaml.Node `yaml:"params"`
		Inputs    []string  `yaml:"inputs"`
		Outputs   []string  `yaml:"outputs"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	s.Name = raw.Name
	s.StageType = raw.StageType
	s.Inputs = raw.Inputs
	s.Outputs = raw.Outputs

	if raw.Params.Kind == 0 {
		s.Params = nil
		return nil
	}
	var generic interface{}
	if err := raw.Params.Decode(&generic); err != nil {
		return err
	}
	encoded, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	s.Params = encoded
	return nil
}

// SystemConfig is the top-level pipeline configuration document,
// decodable from either YAML or JSON (spec.md §6).
type SystemConfig struct {
	Version  string                 `yaml:"version" json:"version"`
	Metadata map[string]interface{} `yaml:"metadata" json:"metadata"`
	Stages   []StageConfig          `yaml:"stages" json:"stages"`
}

// ParseSystemConfigYAML decodes a YAML pipeline document into a
// SystemConfig.
func ParseSystemConfigYAML(data []byte) (*SystemConfig, error) {
	var cfg SystemConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, newPipelineError(SerializationFailure, "", "decoding system config: %v", err)
	}
	return &cfg, nil
}

// ParseSystemConfigJSON decodes a JSON pipeline document into a
// SystemConfig.
func ParseSystemConfigJSON(data []byte) (*SystemConfig, error) {
	var cfg SystemConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, newPipelineError(SerializationFailure, "", "decoding system config: %v", err)
	}
	return &cfg, nil
}
