package demod

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
)

/*
 * FIR Lowpass Design
 *
 * The teacher's own decoders hand-roll their Hann windows a sample at a
 * time (audio_extensions/sstv/vis.go, audio_extensions/wefax's 17-tap
 * hard-coded ACfax coefficients). spec.md 4.2 calls for a windowed-sinc
 * design instead of fixed coefficients, so this reaches for the windowing
 * function the teacher's own go.mod already pulls in for FFT work
 * (gonum.org/v1/gonum), applied the way the library intends: build the
 * ideal sinc response, then multiply by a library window instead of a
 * hand-written cosine loop.
 */

// designLowpassFIR returns a linear-phase, DC-normalised windowed-sinc
// lowpass filter with the given odd tap count and cutoff. As with any
// windowed-sinc design, cutoffHz is the half-amplitude (about -6 dB)
// point of the response.
func designLowpassFIR(numTaps int, cutoffHz, sampleRate float64) []float64 {
	if numTaps%2 == 0 {
		panic("demod: FIR tap count must be odd to preserve linear phase")
	}

	fc := cutoffHz / sampleRate // normalised cutoff, cycles/sample
	m := numTaps - 1
	taps := make([]float64, numTaps)
	for i := 0; i < numTaps; i++ {
		n := float64(i) - float64(m)/2
		if n == 0 {
			taps[i] = 2 * fc
		} else {
			taps[i] = math.Sin(2*math.Pi*fc*n) / (math.Pi * n)
		}
	}

	taps = window.Blackman(taps)

	// DC-normalise to unity gain.
	var sum float64
	for _, t := range taps {
		sum += t
	}
	if sum != 0 {
		for i := range taps {
			taps[i] /= sum
		}
	}
	return taps
}
