package sstv

import "testing"

func TestSetPhaseOffsetMsClampsToRange(t *testing.T) {
	var o DecodingOptions
	o.SetPhaseOffsetMs(75.0)
	if got := o.PhaseOffsetMs(); got != 50.0 {
		t.Fatalf("PhaseOffsetMs() = %v, want 50.0", got)
	}

	o.SetPhaseOffsetMs(-75.0)
	if got := o.PhaseOffsetMs(); got != -50.0 {
		t.Fatalf("PhaseOffsetMs() = %v, want -50.0", got)
	}

	o.SetPhaseOffsetMs(10.0)
	if got := o.PhaseOffsetMs(); got != 10.0 {
		t.Fatalf("in-range value was altered: PhaseOffsetMs() = %v, want 10.0", got)
	}
}

func TestSetSkewMsPerLineClampsToRange(t *testing.T) {
	var o DecodingOptions
	o.SetSkewMsPerLine(5.0)
	if got := o.SkewMsPerLine(); got != 1.0 {
		t.Fatalf("SkewMsPerLine() = %v, want 1.0", got)
	}

	o.SetSkewMsPerLine(-5.0)
	if got := o.SkewMsPerLine(); got != -1.0 {
		t.Fatalf("SkewMsPerLine() = %v, want -1.0", got)
	}
}

func TestSetSyncRecoveryThresholdClampsToRange(t *testing.T) {
	var o DecodingOptions
	o.SetSyncRecoveryThreshold(2.0)
	if got := o.SyncRecoveryThreshold(); got != 1.0 {
		t.Fatalf("SyncRecoveryThreshold() = %v, want 1.0", got)
	}

	o.SetSyncRecoveryThreshold(-2.0)
	if got := o.SyncRecoveryThreshold(); got != 0.0 {
		t.Fatalf("SyncRecoveryThreshold() = %v, want 0.0", got)
	}
}

func TestDefaultDecodingOptions(t *testing.T) {
	o := DefaultDecodingOptions()
	if o.PhaseOffsetMs() != 0.0 {
		t.Errorf("default PhaseOffsetMs = %v, want 0.0", o.PhaseOffsetMs())
	}
	if o.SkewMsPerLine() != 0.0 {
		t.Errorf("default SkewMsPerLine = %v, want 0.0", o.SkewMsPerLine())
	}
	if o.SyncRecoveryThreshold() != 0.5 {
		t.Errorf("default SyncRecoveryThreshold = %v, want 0.5", o.SyncRecoveryThreshold())
	}
}

func TestDecodingOptionsYAMLRoundTrip(t *testing.T) {
	var want DecodingOptions
	want.SetPhaseOffsetMs(12.5)
	want.SetSkewMsPerLine(-0.25)
	want.SetSyncRecoveryThreshold(0.75)

	data, err := want.ToYAML()
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}

	got, err := ParseDecodingOptionsYAML(data)
	if err != nil {
		t.Fatalf("ParseDecodingOptionsYAML: %v", err)
	}

	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestParseDecodingOptionsYAMLClampsOutOfRangeValues(t *testing.T) {
	data := []byte("phase_offset_ms: 500\nskew_ms_per_line: -3\nsync_recovery_threshold: 1.5\n")

	got, err := ParseDecodingOptionsYAML(data)
	if err != nil {
		t.Fatalf("ParseDecodingOptionsYAML: %v", err)
	}

	if got.PhaseOffsetMs() != 50.0 {
		t.Errorf("PhaseOffsetMs() = %v, want 50.0 (clamped)", got.PhaseOffsetMs())
	}
	if got.SkewMsPerLine() != -1.0 {
		t.Errorf("SkewMsPerLine() = %v, want -1.0 (clamped)", got.SkewMsPerLine())
	}
	if got.SyncRecoveryThreshold() != 1.0 {
		t.Errorf("SyncRecoveryThreshold() = %v, want 1.0 (clamped)", got.SyncRecoveryThreshold())
	}
}

func TestParseDecodingOptionsYAMLRejectsGarbage(t *testing.T) {
	_, err := ParseDecodingOptionsYAML([]byte("not: [valid, yaml: structure"))
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
