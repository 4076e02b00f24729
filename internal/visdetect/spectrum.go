package visdetect

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// DiagnosticSpectrum returns the magnitude spectrum of a leading window
// of raw audio samples, for the opt-in EmittedDiagnostic event the
// controller fires on a failed VIS detection. It is not used by the
// detection algorithm itself, which operates entirely on the
// already-demodulated frequency stream.
//
// Grounded on audio_extensions/sstv/fft.go, which wraps the same
// gonum.org/v1/gonum/dsp/fourier package for its own FFT-bin VIS
// detector.
func DiagnosticSpectrum(samples []float64, windowSize int) []float64 {
	if windowSize <= 0 || windowSize > len(samples) {
		windowSize = len(samples)
	}
	if windowSize == 0 {
		return nil
	}

	fft := fourier.NewFFT(windowSize)
	coeffs := fft.Coefficients(nil, samples[:windowSize])

	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}
