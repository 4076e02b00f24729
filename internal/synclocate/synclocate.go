// Package synclocate implements the Signal Locator: it finds the sample
// index of the first image-frame sync pulse after the VIS header and
// reports a confidence in the lock.
//
// Grounded on the responsibility of audio_extensions/sstv/sync.go (locate
// the frame-sync anchor, report confidence) but not its Hough-transform
// slant-correction algorithm, which this package's density-based search
// supersedes per the engine's own specification.
package synclocate

import (
	"log"
	"math"
)

const (
	skipSeconds = 3.0
	stepMs      = 1.0

	framesToExamine  = 10
	earlyAcceptRun   = 6
	minAcceptedValid = 3

	syncDurationMs     = 20.0
	syncToleranceHz    = 150.0
	syncDensityThresh  = 0.4
	syncStride         = 20
	videoOffsetSamples = 50
	videoStride        = 100
	videoWindowLen     = 1000
	videoLowHz         = 1400
	videoHighHz        = 2400
	videoMinHits       = 5
	videoTotalPoints   = 10

	// Fine-tune window, per spec.md 9's note that these are empirical
	// and should be overridable per mode if future modes need it.
	fineTuneWindow     = 500
	fineTuneStep       = 10
	backwardBlock      = 50
	backwardDensityMin = 0.4
)

// Result is the Signal Locator's output for one search.
type Result struct {
	Found       bool
	StartSample int
	Confidence  float64
}

// Locate searches freq for the first image-frame sync pulse, per
// spec.md 4.4's seven-step algorithm. logger is optional; a nil logger
// makes Locate completely silent, matching the engine's default
// never-writes-to-stderr contract.
func Locate(freq []float64, sampleRate, frameSamples, syncHz float64, logger *log.Logger) Result {
	skip := int(skipSeconds * sampleRate)
	if skip >= len(freq) {
		return Result{Found: false}
	}

	step := int(stepMs * sampleRate / 1000.0)
	if step < 1 {
		step = 1
	}

	// Upper bound leaves enough room to examine up to framesToExamine
	// consecutive frames without running past the end of the stream.
	upperBound := len(freq) - int(frameSamples)*framesToExamine
	if upperBound < skip {
		upperBound = skip
	}

	syncSamples := int(syncDurationMs * sampleRate / 1000.0)

	bestStart := -1
	bestValid := 0
	bestScore := -1.0

	for start := skip; start < upperBound; start += step {
		validRun := 0
		score := 0.0
		for f := 0; f < framesToExamine; f++ {
			frameStart := start + f*int(frameSamples)
			if frameStart+int(frameSamples) > len(freq) {
				break
			}
			ok, frameScore := frameValid(freq, frameStart, syncSamples, syncHz)
			if !ok {
				break
			}
			validRun++
			score += frameScore
		}

		if validRun >= earlyAcceptRun {
			confidence := float64(validRun) / float64(framesToExamine)
			logf(logger, "[SSTV Sync] early accept at sample %d, %d/%d valid frames", start, validRun, framesToExamine)
			return finalize(freq, sampleRate, start, syncSamples, syncHz, confidence)
		}

		if validRun > bestValid || (validRun == bestValid && score > bestScore) {
			bestValid = validRun
			bestScore = score
			bestStart = start
		}
	}

	if bestValid < minAcceptedValid {
		logf(logger, "[SSTV Sync] no acceptable sync found (best %d/%d valid frames)", bestValid, framesToExamine)
		return Result{Found: false}
	}

	confidence := float64(bestValid) / float64(framesToExamine)
	logf(logger, "[SSTV Sync] best-tracked accept at sample %d, %d/%d valid frames", bestStart, bestValid, framesToExamine)
	return finalize(freq, sampleRate, bestStart, syncSamples, syncHz, confidence)
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

func finalize(freq []float64, sampleRate float64, start, syncSamples int, syncHz, confidence float64) Result {
	tuned := fineTune(freq, start, syncSamples, syncHz)
	return Result{Found: true, StartSample: tuned, Confidence: confidence}
}

// frameValid implements spec.md 4.4 step 3's two sub-conditions.
func frameValid(freq []float64, frameStart, syncSamples int, syncHz float64) (bool, float64) {
	density := sampledDensity(freq, frameStart, syncSamples, syncStride, syncHz, syncToleranceHz)
	if density < syncDensityThresh {
		return false, density
	}

	videoStart := frameStart + syncSamples + videoOffsetSamples
	hits := 0
	for i := 0; i < videoTotalPoints; i++ {
		idx := videoStart + i*videoStride
		if idx >= len(freq) {
			break
		}
		f := freq[idx]
		if f >= videoLowHz && f <= videoHighHz {
			hits++
		}
	}
	if hits < videoMinHits {
		return false, density
	}
	return true, density + float64(hits)/float64(videoTotalPoints)
}

// sampledDensity returns the fraction of a stride-subsampled window of
// length n starting at start that lies within tolerance of targetHz.
func sampledDensity(freq []float64, start, n, stride int, targetHz, toleranceHz float64) float64 {
	hits := 0
	total := 0
	for i := 0; i < n; i += stride {
		idx := start + i
		if idx >= len(freq) {
			break
		}
		total++
		if math.Abs(freq[idx]-targetHz) <= toleranceHz {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func fineTune(freq []float64, accepted, syncSamples int, syncHz float64) int {
	best := accepted
	bestDensity := sampledDensity(freq, accepted, syncSamples, syncStride, syncHz, syncToleranceHz)

	for delta := -fineTuneWindow; delta <= fineTuneWindow; delta += fineTuneStep {
		pos := accepted + delta
		if pos < 0 || pos+syncSamples > len(freq) {
			continue
		}
		d := sampledDensity(freq, pos, syncSamples, syncStride, syncHz, syncToleranceHz)
		if d > bestDensity {
			bestDensity = d
			best = pos
		}
	}

	cur := best
	for {
		prev := cur - backwardBlock
		if prev < 0 {
			break
		}
		d := sampledDensity(freq, prev, syncSamples, syncStride, syncHz, syncToleranceHz)
		if d < backwardDensityMin {
			break
		}
		cur = prev
	}
	return cur
}
