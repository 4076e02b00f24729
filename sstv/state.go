package sstv

import "fmt"

// StateKind identifies which variant of DecoderState is active.
type StateKind int

const (
	StateIdle StateKind = iota
	StateDetectingVis
	StateSearchingSync
	StateSyncLocked
	StateDecoding
	StateSyncLost
	StateComplete
	StateError
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "Idle"
	case StateDetectingVis:
		return "DetectingVis"
	case StateSearchingSync:
		return "SearchingSync"
	case StateSyncLocked:
		return "SyncLocked"
	case StateDecoding:
		return "Decoding"
	case StateSyncLost:
		return "SyncLost"
	case StateComplete:
		return "Complete"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// DecoderState is a tagged variant of the decoder's lifecycle position,
// per spec.md 3. Exactly one field group is meaningful for a given Kind;
// zero values in the others carry no information.
type DecoderState struct {
	Kind StateKind

	// SyncLocked
	Confidence float64

	// Decoding, SyncLost
	Line       int
	TotalLines int

	// Error
	Err *DecoderError
}

func (s DecoderState) String() string {
	switch s.Kind {
	case StateSyncLocked:
		return fmt.Sprintf("SyncLocked{confidence=%.3f}", s.Confidence)
	case StateDecoding:
		return fmt.Sprintf("Decoding{line=%d, total=%d}", s.Line, s.TotalLines)
	case StateSyncLost:
		return fmt.Sprintf("SyncLost{at_line=%d}", s.Line)
	case StateError:
		if s.Err != nil {
			return fmt.Sprintf("Error{%s}", s.Err.Error())
		}
		return "Error{}"
	default:
		return s.Kind.String()
	}
}

// ErrorKind identifies which variant of DecoderError occurred.
type ErrorKind int

const (
	ErrSyncNotFound ErrorKind = iota
	ErrSyncLost
	ErrEndOfStream
	ErrUnknownMode
	ErrInvalidSampleRate
	ErrInsufficientSamples
)

// DecoderError is a tagged-variant error, per spec.md 3 and 7. Only the
// fields relevant to Kind are populated.
type DecoderError struct {
	Kind ErrorKind

	AtLine int // SyncLost

	LinesDecoded int // EndOfStream
	TotalLines   int // EndOfStream

	ModeName string // UnknownMode

	SampleRate int // InvalidSampleRate
}

func (e *DecoderError) Error() string {
	switch e.Kind {
	case ErrSyncNotFound:
		return "sync not found"
	case ErrSyncLost:
		return fmt.Sprintf("sync lost at line %d", e.AtLine)
	case ErrEndOfStream:
		return fmt.Sprintf("end of stream: decoded %d of %d lines", e.LinesDecoded, e.TotalLines)
	case ErrUnknownMode:
		return fmt.Sprintf("unknown mode: %q", e.ModeName)
	case ErrInvalidSampleRate:
		return fmt.Sprintf("invalid sample rate: %d", e.SampleRate)
	case ErrInsufficientSamples:
		return "insufficient samples for a finished image"
	default:
		return "unknown decoder error"
	}
}
