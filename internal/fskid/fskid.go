// Package fskid decodes the 6-bit, 45.45-baud FSK callsign ID that many
// real SSTV transmissions append after the image.
//
// Grounded directly on audio_extensions/sstv/fsk_id.go: same bit-reversal
// table, same 1900 Hz=1/2100 Hz=0 convention, same 0x20 0x2A preamble and
// 0x01 terminator. The teacher detects bits via an FFT over raw PCM; this
// package instead classifies bits from the already-demodulated frequency
// stream the rest of the engine produces, since by the time a decode
// completes that stream already exists and a second FFT pass would be
// redundant.
package fskid

import "math"

const (
	baudHz     = 45.45
	bitMs      = 1000.0 / baudHz // ~22ms
	oneHz      = 1900.0
	zeroHz     = 2100.0
	toleranceHz = 100.0

	preamble0 = 0x20
	preamble1 = 0x2A
	terminator = 0x01
	maxChars   = 10
)

// bitRev reverses a 6-bit value, exactly as the teacher's lookup table.
var bitRev = [64]uint8{
	0x00, 0x20, 0x10, 0x30, 0x08, 0x28, 0x18, 0x38,
	0x04, 0x24, 0x14, 0x34, 0x0c, 0x2c, 0x1c, 0x3c,
	0x02, 0x22, 0x12, 0x32, 0x0a, 0x2a, 0x1a, 0x3a,
	0x06, 0x26, 0x16, 0x36, 0x0e, 0x2e, 0x1e, 0x3e,
	0x01, 0x21, 0x11, 0x31, 0x09, 0x29, 0x19, 0x39,
	0x05, 0x25, 0x15, 0x35, 0x0d, 0x2d, 0x1d, 0x3d,
	0x03, 0x23, 0x13, 0x33, 0x0b, 0x2b, 0x1b, 0x3b,
	0x07, 0x27, 0x17, 0x37, 0x0f, 0x2f, 0x1f, 0x3f,
}

// Decode attempts to find and decode an FSK callsign trailer in freq
// starting at startSample. It is best-effort: ok is false whenever the
// preamble, a clean bit stream, or a terminator cannot be found, and the
// caller should treat that as "no callsign", never as an error.
func Decode(freq []float64, startSample int, sampleRate int) (string, bool) {
	if startSample < 0 || startSample >= len(freq) {
		return "", false
	}

	bitSamples := int(bitMs * float64(sampleRate) / 1000.0)
	if bitSamples <= 0 {
		return "", false
	}

	bits := readBits(freq, startSample, bitSamples)
	if len(bits) < 12 {
		return "", false
	}

	// Search every bit-alignment offset for the two-byte preamble; real
	// transmissions don't guarantee startSample lands on a byte boundary.
	for offset := 0; offset < 6 && offset+12 <= len(bits); offset++ {
		bytes := packBytes(bits[offset:])
		if len(bytes) < 2 || bytes[0] != preamble0 || bytes[1] != preamble1 {
			continue
		}

		var out []byte
		for i := 2; i < len(bytes) && len(out) < maxChars; i++ {
			if bytes[i] == terminator {
				if len(out) == 0 {
					return "", false
				}
				return string(out), true
			}
			out = append(out, bytes[i]+0x20)
		}
		return "", false // ran out of bits before the terminator
	}

	return "", false
}

// readBits classifies one bit per bitSamples-wide window, averaging
// frequency the same way the VIS detector classifies its data bits.
// Classification stops at the first ambiguous window.
func readBits(freq []float64, start, bitSamples int) []uint8 {
	var bits []uint8
	for pos := start; pos+bitSamples <= len(freq); pos += bitSamples {
		avg := average(freq[pos : pos+bitSamples])
		switch {
		case math.Abs(avg-oneHz) <= toleranceHz:
			bits = append(bits, 1)
		case math.Abs(avg-zeroHz) <= toleranceHz:
			bits = append(bits, 0)
		default:
			return bits
		}
	}
	return bits
}

// packBytes groups bits into 6-bit, LSB-first, bit-reversed bytes.
func packBytes(bits []uint8) []uint8 {
	n := len(bits) / 6
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		var v uint8
		for b := 0; b < 6; b++ {
			if bits[i*6+b] != 0 {
				v |= 1 << uint(b)
			}
		}
		out[i] = bitRev[v]
	}
	return out
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
