package sstv

import "time"

// DiagnosticLevel is the severity of an EmittedDiagnostic event.
type DiagnosticLevel int

const (
	DiagDebug DiagnosticLevel = iota
	DiagInfo
	DiagWarning
	DiagError
)

func (l DiagnosticLevel) String() string {
	switch l {
	case DiagDebug:
		return "Debug"
	case DiagInfo:
		return "Info"
	case DiagWarning:
		return "Warning"
	case DiagError:
		return "Error"
	default:
		return "Unknown"
	}
}

// DiagnosticCategory groups an EmittedDiagnostic by the subsystem that
// produced it.
type DiagnosticCategory int

const (
	CategorySync DiagnosticCategory = iota
	CategoryDemodulation
	CategoryDecoding
	CategoryTiming
	CategoryGeneral
)

func (c DiagnosticCategory) String() string {
	switch c {
	case CategorySync:
		return "Sync"
	case CategoryDemodulation:
		return "Demodulation"
	case CategoryDecoding:
		return "Decoding"
	case CategoryTiming:
		return "Timing"
	case CategoryGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// Diagnostic is the payload of an EmittedDiagnostic event.
type Diagnostic struct {
	Level     DiagnosticLevel
	Category  DiagnosticCategory
	Message   string
	KVData    map[string]any
	Timestamp time.Time
}

// Observer receives fire-and-forget, synchronous lifecycle events from a
// Controller, per spec.md 6. All methods are invoked on the goroutine
// that called push_samples/decode_all; an Observer must not assume it
// is called from anywhere else, and the controller tolerates arbitrary
// work inside an Observer method between events.
//
// Embed NoopObserver to implement only the events a caller cares about,
// the way the teacher's AudioExtension implementations only fill in the
// interface methods they need.
type Observer interface {
	BeganVisDetection()
	DetectedVisCode(code byte, modeName string)
	FailedVisDetection()
	LockedSync(confidence float32)
	LostSync()
	DecodedLine(lineNumber, totalLines uint32)
	UpdatedProgress(progress float32)
	CompletedImage(snapshot []float32)
	ChangedState(newState DecoderState)
	EncounteredError(err *DecoderError)
	EmittedDiagnostic(d Diagnostic)
}

// NoopObserver implements Observer with empty methods. Embed it in a
// partial observer to avoid having to stub out events you don't care
// about.
type NoopObserver struct{}

func (NoopObserver) BeganVisDetection()                     {}
func (NoopObserver) DetectedVisCode(code byte, name string) {}
func (NoopObserver) FailedVisDetection()                    {}
func (NoopObserver) LockedSync(confidence float32)          {}
func (NoopObserver) LostSync()                              {}
func (NoopObserver) DecodedLine(line, total uint32)         {}
func (NoopObserver) UpdatedProgress(progress float32)       {}
func (NoopObserver) CompletedImage(snapshot []float32)      {}
func (NoopObserver) ChangedState(newState DecoderState)     {}
func (NoopObserver) EncounteredError(err *DecoderError)     {}
func (NoopObserver) EmittedDiagnostic(d Diagnostic)         {}
