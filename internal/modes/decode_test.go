package modes

import "testing"

const sampleRate = 48000.0

func constFreq(n int, hz float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = hz
	}
	return out
}

func TestByVISKnownCodes(t *testing.T) {
	cases := map[byte]string{0x5F: "PD120", 0x60: "PD180", 0x08: "Robot36"}
	for code, want := range cases {
		d, ok := ByVIS(code)
		if !ok || d.Name != want {
			t.Errorf("ByVIS(0x%02X) = %+v, %v; want %s", code, d, ok, want)
		}
	}
	if _, ok := ByVIS(0xFF); ok {
		t.Error("ByVIS(0xFF) should not match any decodable mode")
	}
}

func TestByNameCaseInsensitive(t *testing.T) {
	for _, name := range []string{"pd120", "PD120", "Pd120"} {
		if d, ok := ByName(name); !ok || d.VISCode != 0x5F {
			t.Errorf("ByName(%q) failed", name)
		}
	}
}

func TestReportOnlyVISCodes(t *testing.T) {
	cases := map[byte]string{0x61: "PD240", 0x5D: "PD50", 0x62: "PD160"}
	for code, want := range cases {
		name, ok := ReportOnlyName(code)
		if !ok || name != want {
			t.Errorf("ReportOnlyName(0x%02X) = %q, %v; want %s", code, name, ok, want)
		}
	}
	if _, ok := ReportOnlyName(0x5F); ok {
		t.Error("0x5F is decodable, should not appear in report-only table")
	}
}

// scenario 1: constant mid-gray PD120 frame.
func TestDecodeFramePD120MidGray(t *testing.T) {
	desc, _ := ByVIS(0x5F)
	n := int(desc.FrameSamples(sampleRate)) + 10
	freq := constFreq(n, 1900)
	// paint the sync region at sync frequency.
	syncSamples := int(msToSamples(desc.SyncMs, sampleRate))
	for i := 0; i < syncSamples; i++ {
		freq[i] = desc.SyncHz
	}

	rows, ok := DecodeFrame(desc, freq, sampleRate, 0, 0, FrameOptions{})
	if !ok {
		t.Fatal("expected frame to decode")
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for r, row := range rows {
		if len(row) != desc.Width*3 {
			t.Fatalf("row %d: len %d, want %d", r, len(row), desc.Width*3)
		}
		for i, v := range row {
			if v < 0.48 || v > 0.52 {
				t.Fatalf("row %d channel %d = %v, want within 0.02 of 0.5", r, i, v)
			}
		}
	}
}

// scenario 2: black-luminance PD180 frame.
func TestDecodeFramePD180Black(t *testing.T) {
	desc, _ := ByVIS(0x60)
	n := int(desc.FrameSamples(sampleRate)) + 10
	freq := constFreq(n, 1900) // chroma neutral everywhere first

	sync := int(msToSamples(desc.SyncMs, sampleRate))
	porch := int(msToSamples(desc.PorchMs, sampleRate))
	comp := int(msToSamples(desc.CompMs, sampleRate))

	for i := 0; i < sync; i++ {
		freq[i] = desc.SyncHz
	}
	// Y0 and Y1 at black frequency (1500 Hz); Cr/Cb stay at 1900 Hz.
	y0start := sync + porch
	for i := y0start; i < y0start+comp; i++ {
		freq[i] = 1500
	}
	y1start := y0start + 3*comp
	for i := y1start; i < y1start+comp; i++ {
		freq[i] = 1500
	}

	rows, ok := DecodeFrame(desc, freq, sampleRate, 0, 0, FrameOptions{})
	if !ok {
		t.Fatal("expected frame to decode")
	}
	for r, row := range rows {
		for i, v := range row {
			if v >= 0.5 {
				t.Fatalf("row %d channel %d = %v, want strictly below 0.5", r, i, v)
			}
		}
	}
}

// scenario 3: white-even, black-odd Robot36 frame.
func TestDecodeFrameRobot36Contrast(t *testing.T) {
	desc, _ := ByVIS(0x08)
	n := int(desc.FrameSamples(sampleRate)) + 10
	freq := constFreq(n, 1900)

	sync := int(msToSamples(desc.SyncMs, sampleRate))
	porch := int(msToSamples(desc.PorchMs, sampleRate))
	yDur := int(msToSamples(desc.YMs, sampleRate))
	sep := int(msToSamples(desc.SepMs, sampleRate))
	cporch := int(msToSamples(desc.ChromaPorchMs, sampleRate))
	chroma := int(msToSamples(desc.ChromaMs, sampleRate))
	halfLine := sync + porch + yDur + sep + cporch + chroma

	y0start := sync + porch
	for i := y0start; i < y0start+yDur; i++ {
		freq[i] = 2300 // white
	}
	y1start := halfLine + sync + porch
	for i := y1start; i < y1start+yDur; i++ {
		freq[i] = 1500 // black
	}

	rows, ok := DecodeFrame(desc, freq, sampleRate, 0, 0, FrameOptions{})
	if !ok {
		t.Fatal("expected frame to decode")
	}
	for i, v := range rows[0] {
		if v < 0.9 {
			t.Fatalf("row 0 channel %d = %v, want >= 0.9", i, v)
		}
	}
	for i, v := range rows[1] {
		if v > 0.1 {
			t.Fatalf("row 1 channel %d = %v, want <= 0.1", i, v)
		}
	}
}

func TestDecodeFrameFalseWhenWindowExceedsStream(t *testing.T) {
	desc, _ := ByVIS(0x5F)
	freq := constFreq(10, 1900) // far too short
	if _, ok := DecodeFrame(desc, freq, sampleRate, 0, 0, FrameOptions{}); ok {
		t.Fatal("expected decode to fail on insufficient samples")
	}
}

func TestDecodeLineMatchesFrameBasedPathway(t *testing.T) {
	desc, _ := ByVIS(0x5F)
	n := int(desc.FrameSamples(sampleRate))*2 + 10
	freq := constFreq(n, 1900)

	rows, ok := DecodeFrame(desc, freq, sampleRate, 0, 1, FrameOptions{})
	if !ok {
		t.Fatal("expected frame 1 to decode")
	}
	line2, ok := DecodeLine(desc, freq, sampleRate, 0, 2, FrameOptions{})
	if !ok {
		t.Fatal("expected line 2 to decode")
	}
	line3, ok := DecodeLine(desc, freq, sampleRate, 0, 3, FrameOptions{})
	if !ok {
		t.Fatal("expected line 3 to decode")
	}
	for i := range rows[0] {
		if rows[0][i] != line2[i] || rows[1][i] != line3[i] {
			t.Fatalf("DecodeLine diverged from DecodeFrame at channel %d", i)
		}
	}
}

func TestColourRoundTripGrayIsIdentity(t *testing.T) {
	y := []float64{0.0, 0.25, 0.5, 0.75, 1.0}
	cb := []float64{0.5, 0.5, 0.5, 0.5, 0.5}
	cr := []float64{0.5, 0.5, 0.5, 0.5, 0.5}
	row := ycbcrToRGBRow(y, cb, cr, len(y))
	for i := 0; i < len(y); i++ {
		r, g, b := row[i*3+0], row[i*3+1], row[i*3+2]
		want := float32(y[i])
		const tol = 0.01
		if abs32(r-want) > tol || abs32(g-want) > tol || abs32(b-want) > tol {
			t.Errorf("pixel %d: got (%v,%v,%v), want all %v", i, r, g, b, want)
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestMapChannelBoundaryClamps(t *testing.T) {
	freqs := []float64{1000, 1500, 1900, 2300, 3000}
	out := mapChannel(freqs, 1500, 2300)
	if out[0] != 0 {
		t.Errorf("below black should clamp to 0, got %v", out[0])
	}
	if out[1] != 0 {
		t.Errorf("at black should be exactly 0, got %v", out[1])
	}
	if out[3] != 1 {
		t.Errorf("at white should be exactly 1, got %v", out[3])
	}
	if out[4] != 1 {
		t.Errorf("above white should clamp to 1, got %v", out[4])
	}
}
