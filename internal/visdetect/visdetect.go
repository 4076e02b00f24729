// Package visdetect implements the VIS Detector: it scans a demodulated
// frequency stream for the leader tone, break/start bit, and eight data
// bits that identify the transmitted SSTV mode.
//
// Grounded on the responsibility of audio_extensions/sstv/vis.go (scan
// buffered audio, return a code/mode/start-sample), but the detection
// algorithm itself is the averaged-frequency bit classifier this engine's
// specification prescribes rather than the teacher's FFT-bin/Gaussian-
// interpolation approach.
package visdetect

import (
	"log"
	"math"

	"github.com/kevinnz/sstv-mel/internal/modes"
)

const (
	// CenterFreq is the leader-tone frequency, shared with the FM
	// demodulator's local-oscillator centre.
	CenterFreq = 1900.0

	leaderToleranceHz = 100.0
	leaderMs          = 300.0
	breakStartMs      = 30.0
	bitMs             = 30.0
	bitToleranceHz    = 50.0
	zeroBitHz         = 1100.0
	oneBitHz          = 1300.0

	maxScanSeconds = 30
	maxAttempts    = 5
)

// Result is what the VIS Detector emits for one detection pass.
type Result struct {
	Found       bool
	VISCode     byte
	ModeName    string
	ReportOnly  bool // true if the code is known but not decodable
	StartSample int
}

// Detect scans freq (a full demodulated frequency stream) for a VIS
// header, returning a "not found" Result rather than an error when none
// is located. It never mutates freq.
//
// logger is optional: a nil logger makes Detect completely silent, so
// the engine's "never writes to stderr" contract holds by default; the
// caller opts into the teacher's log.Printf-style tracing by supplying
// one.
func Detect(freq []float64, sampleRate float64, logger *log.Logger) Result {
	limit := int(maxScanSeconds * sampleRate)
	if limit > len(freq) {
		limit = len(freq)
	}

	leaderSamples := int(leaderMs * sampleRate / 1000.0)
	breakStartSamples := int(breakStartMs * sampleRate / 1000.0)
	bitSamples := int(bitMs * sampleRate / 1000.0)

	searchFrom := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		runStart, ok := findLeaderRun(freq, searchFrom, limit, leaderSamples)
		if !ok {
			break
		}

		dataStart := runStart + leaderSamples + breakStartSamples
		code, ok := decodeBits(freq, dataStart, bitSamples)
		searchFrom = runStart + leaderSamples
		if !ok {
			logf(logger, "[SSTV VIS] attempt %d: leader at %d, ambiguous data bits", attempt, runStart)
			continue
		}

		if d, known := modes.ByVIS(code); known {
			logf(logger, "[SSTV VIS] decoded VIS 0x%02X (%s) at sample %d", code, d.Name, runStart)
			return Result{Found: true, VISCode: code, ModeName: d.Name, StartSample: runStart}
		}
		if name, known := modes.ReportOnlyName(code); known {
			logf(logger, "[SSTV VIS] decoded report-only VIS 0x%02X (%s) at sample %d", code, name, runStart)
			return Result{Found: true, VISCode: code, ModeName: name, ReportOnly: true, StartSample: runStart}
		}
		logf(logger, "[SSTV VIS] attempt %d: unrecognised VIS code 0x%02X at sample %d", attempt, code, runStart)
	}

	return Result{Found: false}
}

func findLeaderRun(freq []float64, from, limit, leaderSamples int) (int, bool) {
	runStart := -1
	runLen := 0
	for i := from; i < limit; i++ {
		if math.Abs(freq[i]-CenterFreq) <= leaderToleranceHz {
			if runLen == 0 {
				runStart = i
			}
			runLen++
			if runLen >= leaderSamples {
				return runStart, true
			}
		} else {
			runLen = 0
			runStart = -1
		}
	}
	return 0, false
}

func decodeBits(freq []float64, dataStart, bitSamples int) (byte, bool) {
	if dataStart < 0 || bitSamples <= 0 || dataStart+8*bitSamples > len(freq) {
		return 0, false
	}

	var code byte
	for i := 0; i < 8; i++ {
		start := dataStart + i*bitSamples
		end := start + bitSamples
		avg := average(freq[start:end])

		switch {
		case math.Abs(avg-zeroBitHz) <= bitToleranceHz:
			// bit i is 0; nothing to set.
		case math.Abs(avg-oneBitHz) <= bitToleranceHz:
			code |= 1 << uint(i)
		default:
			return 0, false
		}
	}
	return code, true
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
