package sstv

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

/*
 * Decoding Options
 *
 * Follows the MarshalYAML/UnmarshalYAML-on-a-plain-struct idiom of the
 * teacher's decoder_config.go: yaml tags on a flat struct, no generated
 * code. Unlike decoder_config.go's DecoderMode (a string enum), every
 * field here is already a plain float64, so the custom methods exist
 * only to apply clamping on the way in, both from direct mutation and
 * from YAML deserialization.
 */

const (
	minPhaseOffsetMs = -50.0
	maxPhaseOffsetMs = 50.0

	minSkewMsPerLine = -1.0
	maxSkewMsPerLine = 1.0

	minSyncRecoveryThreshold = 0.0
	maxSyncRecoveryThreshold = 1.0
)

// DecodingOptions configures how the mode decoder maps frequency to
// pixels. Out-of-range assignments are silently clamped, per spec.md 3.
type DecodingOptions struct {
	phaseOffsetMs         float64
	skewMsPerLine         float64
	syncRecoveryThreshold float64
}

// DefaultDecodingOptions returns the spec.md 6 default option set.
func DefaultDecodingOptions() DecodingOptions {
	return DecodingOptions{
		phaseOffsetMs:         0.0,
		skewMsPerLine:         0.0,
		syncRecoveryThreshold: 0.5,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PhaseOffsetMs returns the configured horizontal shift, in ms.
func (o DecodingOptions) PhaseOffsetMs() float64 { return o.phaseOffsetMs }

// SetPhaseOffsetMs sets the horizontal shift, clamped to [-50, 50].
func (o *DecodingOptions) SetPhaseOffsetMs(ms float64) {
	o.phaseOffsetMs = clamp(ms, minPhaseOffsetMs, maxPhaseOffsetMs)
}

// SkewMsPerLine returns the configured per-line phase increment, in ms.
func (o DecodingOptions) SkewMsPerLine() float64 { return o.skewMsPerLine }

// SetSkewMsPerLine sets the per-line phase increment, clamped to [-1, 1].
func (o *DecodingOptions) SetSkewMsPerLine(ms float64) {
	o.skewMsPerLine = clamp(ms, minSkewMsPerLine, maxSkewMsPerLine)
}

// SyncRecoveryThreshold returns the configured mid-decode retry limit.
func (o DecodingOptions) SyncRecoveryThreshold() float64 { return o.syncRecoveryThreshold }

// SetSyncRecoveryThreshold sets the retry limit, clamped to [0, 1].
func (o *DecodingOptions) SetSyncRecoveryThreshold(v float64) {
	o.syncRecoveryThreshold = clamp(v, minSyncRecoveryThreshold, maxSyncRecoveryThreshold)
}

// decodingOptionsYAML mirrors DecodingOptions with exported, tagged
// fields for (de)serialization; DecodingOptions itself keeps its fields
// unexported so every mutation path goes through the clamping setters.
type decodingOptionsYAML struct {
	PhaseOffsetMs         float64 `yaml:"phase_offset_ms"`
	SkewMsPerLine         float64 `yaml:"skew_ms_per_line"`
	SyncRecoveryThreshold float64 `yaml:"sync_recovery_threshold"`
}

// MarshalYAML implements yaml.Marshaler for DecodingOptions.
func (o DecodingOptions) MarshalYAML() (interface{}, error) {
	return decodingOptionsYAML{
		PhaseOffsetMs:         o.phaseOffsetMs,
		SkewMsPerLine:         o.skewMsPerLine,
		SyncRecoveryThreshold: o.syncRecoveryThreshold,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler for DecodingOptions,
// clamping every field exactly as the programmatic setters do.
func (o *DecodingOptions) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw decodingOptionsYAML
	if err := unmarshal(&raw); err != nil {
		return err
	}
	o.SetPhaseOffsetMs(raw.PhaseOffsetMs)
	o.SetSkewMsPerLine(raw.SkewMsPerLine)
	o.SetSyncRecoveryThreshold(raw.SyncRecoveryThreshold)
	return nil
}

// ParseDecodingOptionsYAML loads a DecodingOptions from a YAML document,
// for a host CLI reading a config file (out of CORE scope, but the type
// and its round trip live here).
func ParseDecodingOptionsYAML(data []byte) (DecodingOptions, error) {
	var o DecodingOptions
	if err := yaml.Unmarshal(data, &o); err != nil {
		return DecodingOptions{}, fmt.Errorf("sstv: parsing decoding options: %w", err)
	}
	return o, nil
}

// ToYAML serializes o as a YAML document.
func (o DecodingOptions) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("sstv: marshaling decoding options: %w", err)
	}
	return data, nil
}
