package eeg

// IngestStage is the generic no-op "graph source" stage: it declares no
// input, so the executor feeds it the tick's just-arrived packet
// directly (spec.md §4.5), and it re-emits that packet unchanged. A
// pipeline's source entry (e.g. the "mock" stage in scenario A of
// spec.md §8) is typically one of these, named after the acquisition
// source it fronts.
type IngestStage struct {
	id string
}

// NewIngestStage returns an IngestStage with the given graph-local id.
func NewIngestStage(id string) *IngestStage { return &IngestStage{id: id} }

func (s *IngestStage) ID() string { return s.id }

func (s *IngestStage) Process(in *RtPacket, ctx *StageContext) (*RtPacket, *StageError) {
	return in, nil
}

func (s *IngestStage) Control(cmd ControlCommand, ctx *StageContext) *StageError {
	return nil
}

// SourceFactory constructs an IngestStage. Registered under type name
// "source".
type SourceFactory struct{}

func (SourceFactory) Create(cfg StageConfig, initCtx *StageInitCtx) (Stage, *StageError) {
	return NewIngestStage(cfg.Name), nil
}

func (SourceFactory) ParamsSchema() string { return "" }

// EchoStage is a generic pass-through sink with no side effects, useful
// as a terminal stage in tests that only need to observe that packets
// reached the end of the graph unmodified (spec.md §8 scenario A's
// "voltage_echo").
type EchoStage struct {
	id string
}

// NewEchoStage returns an EchoStage with the given graph-local id.
func NewEchoStage(id string) *EchoStage { return &EchoStage{id: id} }

func (s *EchoStage) ID() string { return s.id }

func (s *EchoStage) Process(in *RtPacket, ctx *StageContext) (*RtPacket, *StageError) {
	return in, nil
}

func (s *EchoStage) Control(cmd ControlCommand, ctx *StageContext) *StageError {
	return nil
}

// EchoFactory constructs an EchoStage. Registered under type name "echo".
type EchoFactory struct{}

func (EchoFactory) Create(cfg StageConfig, initCtx *StageInitCtx) (Stage, *StageError) {
	return NewEchoStage(cfg.Name), nil
}

func (EchoFactory) ParamsSchema() string { return "" }
