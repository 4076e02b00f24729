package modes

import "math"

// FrameOptions carries the host-facing DecodingOptions fields the
// decode routine needs, kept as a standalone struct so this package
// never imports the root sstv package (which imports modes).
type FrameOptions struct {
	PhaseOffsetMs  float64
	SkewMsPerLine  float64
}

// lineOffsetSamples implements spec.md 4.5's line_offset(n), converted
// to a sample count.
func (o FrameOptions) lineOffsetSamples(n int, sampleRate float64) float64 {
	ms := o.PhaseOffsetMs + float64(n)*o.SkewMsPerLine
	return ms * sampleRate / 1000.0
}

// DecodeFrame decodes frame index k of desc starting at sample start
// (absolute index into freq), returning lines_per_frame RGB rows
// (each 3*width float32s). ok is false if the frame window runs past
// the end of freq, in which case the caller should wait for more
// samples (streaming) or stop (batch).
func DecodeFrame(desc Descriptor, freq []float64, sampleRate float64, start float64, k int, opts FrameOptions) (rows [][]float32, ok bool) {
	frameSamples := desc.FrameSamples(sampleRate)
	frameStart := start + float64(k)*frameSamples
	frameEnd := frameStart + frameSamples
	if frameEnd > float64(len(freq)) {
		return nil, false
	}

	switch desc.Family {
	case FamilyPD:
		return decodePDFrame(desc, freq, sampleRate, frameStart, k, opts), true
	case FamilyRobot36:
		return decodeRobot36Frame(desc, freq, sampleRate, frameStart, k, opts), true
	default:
		return nil, false
	}
}

// DecodeLine is the legacy single-line accessor: it decodes the frame
// containing lineIndex and returns just that line's row, bit-identical
// to the frame-based pathway per spec.md 4.5.
func DecodeLine(desc Descriptor, freq []float64, sampleRate, start float64, lineIndex int, opts FrameOptions) ([]float32, bool) {
	k := lineIndex / desc.LinesPer
	rows, ok := DecodeFrame(desc, freq, sampleRate, start, k, opts)
	if !ok {
		return nil, false
	}
	r := lineIndex % desc.LinesPer
	if r < 0 || r >= len(rows) {
		return nil, false
	}
	return rows[r], true
}

func msToSamples(ms, sampleRate float64) float64 {
	return ms * sampleRate / 1000.0
}

// sampleComponent implements spec.md 4.5's time-based component
// decoding: pos(i), clamp, linear interpolation.
func sampleComponent(freq []float64, s0, s1, offsetSamples float64, width int) []float64 {
	out := make([]float64, width)
	maxIdx := float64(len(freq) - 1)
	span := s1 - s0
	for i := 0; i < width; i++ {
		pos := s0 + offsetSamples + (float64(i)+0.5)*span/float64(width)
		if pos < 0 {
			pos = 0
		}
		if pos > maxIdx {
			pos = maxIdx
		}
		lo := int(math.Floor(pos))
		hi := lo + 1
		if hi > len(freq)-1 {
			hi = len(freq) - 1
		}
		t := pos - float64(lo)
		out[i] = (1-t)*freq[lo] + t*freq[hi]
	}
	return out
}

// mapChannel implements spec.md 4.5's luminance/chrominance mapping:
// y = clamp((f - black) / (white - black), 0, 1).
func mapChannel(freqs []float64, black, white float64) []float64 {
	out := make([]float64, len(freqs))
	span := white - black
	for i, f := range freqs {
		v := (f - black) / span
		out[i] = clamp01(v)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func averageOffsets(a, b float64) float64 {
	return (a + b) / 2
}

// ycbcrToRGBRow converts a row of width pixels from (y, cb, cr) to RGB
// using ITU-R BT.601 coefficients, per spec.md 4.5.
func ycbcrToRGBRow(y, cb, cr []float64, width int) []float32 {
	row := make([]float32, width*3)
	for i := 0; i < width; i++ {
		yy := y[i]
		cbb := cb[i] - 0.5
		crr := cr[i] - 0.5

		r := yy + 1.402*crr
		g := yy - 0.344136*cbb - 0.714136*crr
		b := yy + 1.772*cbb

		row[i*3+0] = float32(clamp01(r))
		row[i*3+1] = float32(clamp01(g))
		row[i*3+2] = float32(clamp01(b))
	}
	return row
}

func decodePDFrame(desc Descriptor, freq []float64, sampleRate, frameStart float64, k int, opts FrameOptions) [][]float32 {
	sync := msToSamples(desc.SyncMs, sampleRate)
	porch := msToSamples(desc.PorchMs, sampleRate)
	comp := msToSamples(desc.CompMs, sampleRate)

	y0Start := frameStart + sync + porch
	crStart := y0Start + comp
	cbStart := crStart + comp
	y1Start := cbStart + comp

	evenOffset := opts.lineOffsetSamples(2*k, sampleRate)
	oddOffset := opts.lineOffsetSamples(2*k+1, sampleRate)
	chromaOffset := averageOffsets(evenOffset, oddOffset)

	y0 := mapChannel(sampleComponent(freq, y0Start, y0Start+comp, evenOffset, desc.Width), desc.BlackHz, desc.WhiteHz)
	cr := mapChannel(sampleComponent(freq, crStart, crStart+comp, chromaOffset, desc.Width), desc.BlackHz, desc.WhiteHz)
	cb := mapChannel(sampleComponent(freq, cbStart, cbStart+comp, chromaOffset, desc.Width), desc.BlackHz, desc.WhiteHz)
	y1 := mapChannel(sampleComponent(freq, y1Start, y1Start+comp, oddOffset, desc.Width), desc.BlackHz, desc.WhiteHz)

	return [][]float32{
		ycbcrToRGBRow(y0, cb, cr, desc.Width),
		ycbcrToRGBRow(y1, cb, cr, desc.Width),
	}
}

func decodeRobot36Frame(desc Descriptor, freq []float64, sampleRate, frameStart float64, k int, opts FrameOptions) [][]float32 {
	sync := msToSamples(desc.SyncMs, sampleRate)
	porch := msToSamples(desc.PorchMs, sampleRate)
	yDur := msToSamples(desc.YMs, sampleRate)
	sep := msToSamples(desc.SepMs, sampleRate)
	cporch := msToSamples(desc.ChromaPorchMs, sampleRate)
	chroma := msToSamples(desc.ChromaMs, sampleRate)

	halfLine := sync + porch + yDur + sep + cporch + chroma
	lineAStart := frameStart
	lineBStart := frameStart + halfLine

	y0Start := lineAStart + sync + porch
	crStart := y0Start + yDur + sep + cporch

	y1Start := lineBStart + sync + porch
	cbStart := y1Start + yDur + sep + cporch

	evenOffset := opts.lineOffsetSamples(2*k, sampleRate)
	oddOffset := opts.lineOffsetSamples(2*k+1, sampleRate)
	chromaOffset := averageOffsets(evenOffset, oddOffset)

	y0 := mapChannel(sampleComponent(freq, y0Start, y0Start+yDur, evenOffset, desc.Width), desc.BlackHz, desc.WhiteHz)
	cr := mapChannel(sampleComponent(freq, crStart, crStart+chroma, chromaOffset, desc.Width), desc.BlackHz, desc.WhiteHz)
	y1 := mapChannel(sampleComponent(freq, y1Start, y1Start+yDur, oddOffset, desc.Width), desc.BlackHz, desc.WhiteHz)
	cb := mapChannel(sampleComponent(freq, cbStart, cbStart+chroma, chromaOffset, desc.Width), desc.BlackHz, desc.WhiteHz)

	return [][]float32{
		ycbcrToRGBRow(y0, cb, cr, desc.Width),
		ycbcrToRGBRow(y1, cb, cr, desc.Width),
	}
}
