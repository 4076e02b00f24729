package sstv

import "testing"

func TestDownmixInt16Mono(t *testing.T) {
	frames := []int16{0, 16384, -32768, 32767}
	got := DownmixInt16(frames, 1)

	want := []float64{0, 0.5, -1.0, 32767.0 / 32768.0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDownmixInt16Stereo(t *testing.T) {
	// Two frames of stereo: (L=0, R=16384), (L=-32768, R=0)
	frames := []int16{0, 16384, -32768, 0}
	got := DownmixInt16(frames, 2)

	want := []float64{
		(0.0 + 0.5) / 2,
		(-1.0 + 0.0) / 2,
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDownmixUint8Mono(t *testing.T) {
	frames := []uint8{0, 128, 255}
	got := DownmixUint8(frames, 1)

	want := []float64{-1.0, 0.0, 127.0 / 128.0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDownmixUint8MultiChannelAverages(t *testing.T) {
	// One frame, 4 channels: 0, 128, 128, 255 -> averages to (−1+0+0+0.9921875)/4
	frames := []uint8{0, 128, 128, 255}
	got := DownmixUint8(frames, 4)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := (-1.0 + 0.0 + 0.0 + 127.0/128.0) / 4
	if got[0] != want {
		t.Errorf("got %v, want %v", got[0], want)
	}
}

func TestDownmixFloat32PassesThroughMono(t *testing.T) {
	frames := []float32{-1, -0.5, 0, 0.5, 1}
	got := DownmixFloat32(frames, 1)

	if len(got) != len(frames) {
		t.Fatalf("len = %d, want %d", len(got), len(frames))
	}
	for i, f := range frames {
		if got[i] != float64(f) {
			t.Errorf("sample %d = %v, want %v", i, got[i], f)
		}
	}
}

func TestDownmixFloat32StereoAverages(t *testing.T) {
	frames := []float32{1.0, -1.0, 0.5, 0.5}
	got := DownmixFloat32(frames, 2)

	want := []float64{0.0, 0.5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDownmixFloat64PassesThroughUnchanged(t *testing.T) {
	frames := []float64{-1, 0, 1}
	got := DownmixFloat64(frames, 1)

	if len(got) != len(frames) {
		t.Fatalf("len = %d, want %d", len(got), len(frames))
	}
	for i, f := range frames {
		if got[i] != f {
			t.Errorf("sample %d = %v, want %v", i, got[i], f)
		}
	}
}

func TestDownmixFloat64MultiChannelAverages(t *testing.T) {
	frames := []float64{0, 1, 2, -1, 0, 1}
	got := DownmixFloat64(frames, 3)

	want := []float64{1.0, 0.0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSampleIntakePushAccumulatesAndResetTruncates(t *testing.T) {
	s := newSampleIntake()
	s.push([]float64{1, 2, 3})
	s.push([]float64{4, 5})

	if s.len() != 5 {
		t.Fatalf("len() = %d, want 5", s.len())
	}

	view := s.view()
	want := []float64{1, 2, 3, 4, 5}
	for i := range want {
		if view[i] != want[i] {
			t.Errorf("view[%d] = %v, want %v", i, view[i], want[i])
		}
	}

	s.reset()
	if s.len() != 0 {
		t.Fatalf("after reset: len() = %d, want 0", s.len())
	}
}
