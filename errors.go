package eeg

import "fmt"

// StageErrorKind classifies a data-plane error returned by a Stage's
// Process or Control methods.
type StageErrorKind int

const (
	// BadParam means a SetParameter command carried a malformed value.
	BadParam StageErrorKind = iota
	// BadConfig means the stage's initial configuration was malformed.
	BadConfig
	// NotReady means a required external resource is not yet bound.
	NotReady
	// Fatal means the error is non-recoverable; the executor treats this
	// as a panic-equivalent and triggers failure reporting.
	Fatal
	// UnsupportedReconfig means this stage cannot live-reconfigure; a full
	// tear-down and rebuild is required.
	UnsupportedReconfig
	// Busy means the specific operation should be retried by the caller;
	// the executor does not retry transparently.
	Busy
	// QueueClosed means a downstream queue the stage posts to has closed.
	QueueClosed
	// Io wraps a transport-level I/O failure.
	Io
	// Json wraps a JSON marshal/unmarshal failure.
	Json
	// SendError wraps a failure to hand a value to another goroutine.
	SendError
	// Backpressure means a downstream consumer could not accept a value in
	// time and the packet was dropped; see spec.md §7 (log and continue).
	Backpressure
)

func (k StageErrorKind) String() string {
	switch k {
	case BadParam:
		return "bad_param"
	case BadConfig:
		return "bad_config"
	case NotReady:
		return "not_ready"
	case Fatal:
		return "fatal"
	case UnsupportedReconfig:
		return "unsupported_reconfig"
	case Busy:
		return "busy"
	case QueueClosed:
		return "queue_closed"
	case Io:
		return "io"
	case Json:
		return "json"
	case SendError:
		return "send_error"
	case Backpressure:
		return "backpressure"
	default:
		return "unknown"
	}
}

// StageError is returned by Stage.Process and Stage.Control. It carries a
// Kind used by the executor to decide drop-and-continue versus pipeline
// failure (see Executor), and is comparable via errors.Is against the Kind
// sentinels below.
type StageError struct {
	Kind    StageErrorKind
	Stage   string
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("stage %s: %s: %s", e.Stage, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, eeg.ErrFatal) style checks against a kind
// sentinel without callers needing to type-assert *StageError themselves.
func (e *StageError) Is(target error) bool {
	sentinel, ok := target.(kindSentinel)
	if !ok {
		return false
	}
	return e.Kind == sentinel.kind
}

type kindSentinel struct{ kind StageErrorKind }

func (s kindSentinel) Error() string { return s.kind.String() }

var (
	ErrBadParam             error = kindSentinel{BadParam}
	ErrBadConfig            error = kindSentinel{BadConfig}
	ErrNotReady             error = kindSentinel{NotReady}
	ErrFatal                error = kindSentinel{Fatal}
	ErrUnsupportedReconfig  error = kindSentinel{UnsupportedReconfig}
	ErrBusy                 error = kindSentinel{Busy}
	ErrQueueClosed          error = kindSentinel{QueueClosed}
	ErrStageIo              error = kindSentinel{Io}
	ErrStageJson            error = kindSentinel{Json}
	ErrStageSend            error = kindSentinel{SendError}
	ErrBackpressure         error = kindSentinel{Backpressure}
)

// NewStageError constructs a *StageError for the given stage and kind.
func NewStageError(stage string, kind StageErrorKind, format string, args ...interface{}) *StageError {
	return &StageError{Stage: stage, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapStageError wraps cause under the given kind, preserving it for
// errors.Unwrap.
func WrapStageError(stage string, kind StageErrorKind, cause error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Message: cause.Error(), Cause: cause}
}

// PipelineErrorKind classifies control-plane errors. Control-plane errors
// are reported to the caller and never kill a running pipeline.
type PipelineErrorKind int

const (
	StageNotFound PipelineErrorKind = iota
	CircularDependency
	DuplicateStageName
	InvalidConfiguration
	ChannelSendFailure
	AlreadyRunning
	StageLocked
	SerializationFailure
)

func (k PipelineErrorKind) String() string {
	switch k {
	case StageNotFound:
		return "stage_not_found"
	case CircularDependency:
		return "circular_dependency"
	case DuplicateStageName:
		return "duplicate_stage_name"
	case InvalidConfiguration:
		return "invalid_configuration"
	case ChannelSendFailure:
		return "channel_send_failure"
	case AlreadyRunning:
		return "already_running"
	case StageLocked:
		return "stage_locked"
	case SerializationFailure:
		return "serialization_failure"
	default:
		return "unknown"
	}
}

// PipelineError is returned by graph-construction and control-plane
// operations (BuildGraph, StageRegistry.Register, config parsing,
// reconfiguration).
type PipelineError struct {
	Kind    PipelineErrorKind
	Subject string // stage name or other offending identifier, when applicable
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("pipeline: %s (%s): %s", e.Kind, e.Subject, e.Message)
	}
	return fmt.Sprintf("pipeline: %s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

func newPipelineError(kind PipelineErrorKind, subject, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// FromStageError converts a data-plane StageError into the control-plane
// PipelineError used when a stage error must be reported upward (e.g. a
// Fatal during Build-time stage construction).
func FromStageError(stage string, err *StageError) *PipelineError {
	return &PipelineError{
		Kind:    InvalidConfiguration,
		Subject: stage,
		Message: err.Error(),
		Cause:   err,
	}
}

// SensorErrorKind classifies a fault reported by a Driver's acquisition
// loop through a BridgeMsg.
type SensorErrorKind int

const (
	HardwareFault SensorErrorKind = iota
	BufferOverrun
	Disconnected
	DriverFault
)

func (k SensorErrorKind) String() string {
	switch k {
	case HardwareFault:
		return "hardware_fault"
	case BufferOverrun:
		return "buffer_overrun"
	case Disconnected:
		return "disconnected"
	case DriverFault:
		return "driver_fault"
	default:
		return "unknown"
	}
}

// SensorError is the error payload of BridgeMsg's Error variant.
type SensorError struct {
	Kind    SensorErrorKind
	Message string
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("sensor: %s: %s", e.Kind, e.Message)
}

// DriverErrorKind classifies a failure from Driver.Initialize.
type DriverErrorKind int

const (
	ConfigurationError DriverErrorKind = iota
	SpiError
	HardwareNotFound
)

func (k DriverErrorKind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration_error"
	case SpiError:
		return "spi_error"
	case HardwareNotFound:
		return "hardware_not_found"
	default:
		return "unknown"
	}
}

// DriverError is returned by Driver.Initialize and Driver.Shutdown.
type DriverError struct {
	Kind    DriverErrorKind
	Message string
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver: %s: %s", e.Kind, e.Message)
}
