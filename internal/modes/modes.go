// Package modes holds the SSTV mode descriptor table and the generic
// per-frame decode routine that every mode shares. A tagged-variant
// Descriptor plus one parameterised decode routine replaces the
// virtual-dispatch-per-mode shape the teacher's sstv extension uses for
// its much larger mode table (audio_extensions/sstv/modes.go), keeping
// the pixel loop free of interface indirection.
package modes

import "strings"

// Family selects which frame-layout the generic decoder applies.
type Family int

const (
	// FamilyPD covers the PD-series modes: sync, porch, then four
	// equal-length components (Y0, Cr, Cb, Y1) sharing chroma across a
	// pair of output lines.
	FamilyPD Family = iota
	// FamilyRobot36 covers Robot36's two-back-to-back-half-lines layout
	// with 4:2:0-paired chroma.
	FamilyRobot36
)

// Descriptor is a value record describing one concrete SSTV mode.
type Descriptor struct {
	Name      string
	VISCode   byte
	Family    Family
	Width     int
	Height    int
	LinesPer  int // lines written per decoded frame (1 or 2)
	FrameMs   float64
	SyncMs    float64
	PorchMs   float64

	// FamilyPD only: duration of each of Y0, Cr, Cb, Y1 (all equal).
	CompMs float64

	// FamilyRobot36 only.
	YMs          float64
	SepMs        float64
	ChromaPorchMs float64
	ChromaMs     float64

	SyncHz       float64
	BlackHz      float64
	WhiteHz      float64
	ChromaZeroHz float64 // documentation only for Robot36; derives from Black/White
}

// Registry is the full set of decodable modes, bit-exact to spec.md's
// table. Order matters only for iteration determinism in tests.
var Registry = []Descriptor{
	{
		Name: "PD120", VISCode: 0x5F, Family: FamilyPD,
		Width: 640, Height: 496, LinesPer: 2,
		FrameMs: 508.48, SyncMs: 20.0, PorchMs: 2.08, CompMs: 121.6,
		SyncHz: 1200, BlackHz: 1500, WhiteHz: 2300,
	},
	{
		Name: "PD180", VISCode: 0x60, Family: FamilyPD,
		Width: 640, Height: 496, LinesPer: 2,
		FrameMs: 754.29, SyncMs: 20.0, PorchMs: 2.0, CompMs: 183.07,
		SyncHz: 1200, BlackHz: 1500, WhiteHz: 2300,
	},
	{
		Name: "Robot36", VISCode: 0x08, Family: FamilyRobot36,
		Width: 320, Height: 240, LinesPer: 2,
		FrameMs: 300.0, SyncMs: 9.0, PorchMs: 3.0,
		YMs: 88.0, SepMs: 4.5, ChromaPorchMs: 1.5, ChromaMs: 44.0,
		SyncHz: 1200, BlackHz: 1500, WhiteHz: 2300, ChromaZeroHz: 1900,
	},
}

// reportOnlyVIS maps VIS codes spec.md says "may be recognised for
// reporting" but are not decodable by any Descriptor in Registry.
// Grounded on audio_extensions/sstv/modes.go's VIS table for these
// exact byte values.
var reportOnlyVIS = map[byte]string{
	0x61: "PD240",
	0x5D: "PD50",
	0x62: "PD160",
}

// ByVIS looks up a decodable mode by its 7-bit VIS code.
func ByVIS(code byte) (Descriptor, bool) {
	for _, d := range Registry {
		if d.VISCode == code {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ByName looks up a decodable mode by name, case-insensitive.
func ByName(name string) (Descriptor, bool) {
	for _, d := range Registry {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ReportOnlyName returns the human-readable name for a known-but-
// undecodable VIS code, for DetectedVisCode reporting only.
func ReportOnlyName(code byte) (string, bool) {
	name, ok := reportOnlyVIS[code]
	return name, ok
}

// FrameSamples returns the number of audio samples spanned by one frame
// at the given sample rate.
func (d Descriptor) FrameSamples(sampleRate float64) float64 {
	return d.FrameMs * sampleRate / 1000.0
}

// NumFrames is the number of frames needed to cover the whole image.
func (d Descriptor) NumFrames() int {
	return d.Height / d.LinesPer
}
