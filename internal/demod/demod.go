// Package demod implements the FM demodulator: quadrature mixing, FIR
// low-pass filtering and phase-difference discrimination that turn a
// real-valued audio stream into an instantaneous-frequency stream.
package demod

import "math"

const (
	// CenterFreq is the SSTV video-band centre frequency used as the local
	// oscillator frequency for quadrature downconversion.
	CenterFreq = 1900.0

	numTaps     = 127
	cutoffHz    = 1000.0
	magSqrGuard = 1e-10
)

// Demodulator converts accumulated audio samples into an
// instantaneous-frequency stream, one value per input sample. A
// Demodulator is stateless across calls: every call to Demodulate
// re-derives the whole frequency stream from the whole sample stream,
// matching the controller's "overwrite any previous frequencies" contract.
type Demodulator struct {
	sampleRate float64
	taps       []float64
}

// New builds a Demodulator for the given sample rate, deriving FIR taps
// once so repeated Demodulate calls don't redesign the filter.
func New(sampleRate float64) *Demodulator {
	return &Demodulator{
		sampleRate: sampleRate,
		taps:       designLowpassFIR(numTaps, cutoffHz, sampleRate),
	}
}

// Demodulate returns one instantaneous-frequency value (Hz) per input
// sample. The result always has the same length as samples.
func (d *Demodulator) Demodulate(samples []float64) []float64 {
	n := len(samples)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	w := 2 * math.Pi * CenterFreq / d.sampleRate
	i := make([]float64, n)
	q := make([]float64, n)
	for k := 0; k < n; k++ {
		phase := w * float64(k)
		s := samples[k]
		i[k] = s * math.Cos(phase)
		q[k] = -s * math.Sin(phase)
	}

	iFilt := firFilter(i, d.taps)
	qFilt := firFilter(q, d.taps)

	taps := len(d.taps)
	groupDelay := (taps - 1) / 2
	warmupEnd := taps - 1 // raw[j] is only meaningful once j >= warmupEnd

	raw := make([]float64, n)
	validFrom, validTo := -1, -1
	for j := 1; j < n; j++ {
		cross := iFilt[j-1]*qFilt[j] - qFilt[j-1]*iFilt[j]
		dot := iFilt[j-1]*iFilt[j] + qFilt[j-1]*qFilt[j]
		magSqr := dot*dot + cross*cross

		var f float64
		if magSqr < magSqrGuard {
			f = CenterFreq
		} else {
			dphi := math.Atan2(cross, dot)
			f = CenterFreq + dphi*d.sampleRate/(2*math.Pi)
		}
		raw[j] = f

		if j >= warmupEnd {
			if validFrom == -1 {
				validFrom = j
			}
			validTo = j
		}
	}

	if validFrom == -1 {
		// The block is shorter than the filter's warm-up; there is no
		// meaningful measurement anywhere in it.
		for k := range out {
			out[k] = CenterFreq
		}
		return out
	}

	firstVal := raw[validFrom]
	lastVal := raw[validTo]

	for k := 0; k < n; k++ {
		j := k + groupDelay
		switch {
		case j < validFrom:
			out[k] = firstVal
		case j > validTo:
			out[k] = lastVal
		default:
			out[k] = raw[j]
		}
	}
	return out
}

// firFilter applies a causal, zero-history-padded FIR convolution.
func firFilter(x, taps []float64) []float64 {
	n := len(x)
	m := len(taps)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for k := 0; k < m; k++ {
			xi := i - k
			if xi < 0 {
				break
			}
			sum += taps[k] * x[xi]
		}
		y[i] = sum
	}
	return y
}
