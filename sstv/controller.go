package sstv

/*
 * Decode Controller
 *
 * Wraps audio intake, FM demodulation, VIS detection, signal location
 * and mode decoding behind one state machine, mirroring the shape of the
 * teacher's SSTVDecoder.decodeLoop (audio_extensions/sstv/decoder.go):
 * a push-driven loop that advances as far as buffered data allows and
 * reports progress through callbacks. The teacher's loop runs on a
 * dedicated goroutine reading off a channel; this one runs synchronously
 * on the caller's goroutine, per the engine's single-threaded cooperative
 * scheduling contract, so two Controllers never need to coordinate.
 */

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kevinnz/sstv-mel/internal/demod"
	"github.com/kevinnz/sstv-mel/internal/fskid"
	"github.com/kevinnz/sstv-mel/internal/modes"
	"github.com/kevinnz/sstv-mel/internal/pixelbuf"
	"github.com/kevinnz/sstv-mel/internal/synclocate"
	"github.com/kevinnz/sstv-mel/internal/visdetect"
)

const (
	minSampleRate = 8000.0
	maxSampleRate = 192000.0

	minVisSeconds      = 2.0
	syncSearchBaseSecs = 3.0
	syncEpsilon        = 1e-9

	progressAtDetectingVis  = 0.05
	progressAtSearchingSync = 0.1
	progressAtSyncLocked    = 0.15
	progressDecodingSpan    = 0.85

	progressEveryNLines = 10

	// diagnosticSpectrumWindow is the sample count analysed for the
	// magnitude spectrum attached to a failed-VIS-detection diagnostic.
	diagnosticSpectrumWindow = 4096
)

// Controller is the decode engine's top-level entry point: it accumulates
// pushed samples and drives VIS detection, sync location and mode
// decoding forward as far as the data on hand permits.
type Controller struct {
	sampleRate  float64
	intake      *sampleIntake
	demodulator *demod.Demodulator
	freq        []float64

	state   DecoderState
	mode    modes.Descriptor
	hasMode bool

	haveSignalStart bool
	signalStart     int
	nextFrameIndex  int

	// lastSyncAttemptSamples remembers how many samples were buffered at
	// the last SearchingSync attempt, so a sync-loss retry that finds no
	// new data since then stops instead of spinning forever re-running
	// the same failing Locate call within one PushSamples invocation.
	lastSyncAttemptSamples int

	pixels  *pixelbuf.Buffer
	options DecodingOptions

	observer  Observer
	logger    *log.Logger
	sessionID uuid.UUID
	metrics   *Metrics

	callsign     string
	haveCallsign bool
}

// ControllerOption configures optional Controller collaborators.
type ControllerOption func(*Controller)

// WithObserver attaches an Observer to receive lifecycle events. Without
// one, events are silently dropped via NoopObserver.
func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) { c.observer = o }
}

// WithLogger enables the teacher's log.Printf-style tracing inside the
// VIS detector and signal locator. Without one, those stages are silent,
// matching the engine's own never-writes-to-stderr contract.
func WithLogger(l *log.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics attaches Prometheus instrumentation. Without one, metrics
// calls are no-ops.
func WithMetrics(m *Metrics) ControllerOption {
	return func(c *Controller) { c.metrics = m }
}

// NewController builds a Controller that runs VIS detection on the first
// sufficiently large batch of pushed samples.
func NewController(sampleRate float64, opts ...ControllerOption) (*Controller, error) {
	return newController(sampleRate, nil, opts)
}

// NewControllerWithMode builds a Controller with VIS detection skipped;
// modeOrName must resolve via resolveMode (a modes.Descriptor, a mode
// name, or a VIS code byte).
func NewControllerWithMode(modeOrName any, sampleRate float64, opts ...ControllerOption) (*Controller, error) {
	desc, err := resolveMode(modeOrName)
	if err != nil {
		return nil, err
	}
	return newController(sampleRate, &desc, opts)
}

func newController(sampleRate float64, forced *modes.Descriptor, opts []ControllerOption) (*Controller, error) {
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return nil, &DecoderError{Kind: ErrInvalidSampleRate, SampleRate: int(sampleRate)}
	}

	c := &Controller{
		sampleRate:             sampleRate,
		intake:                 newSampleIntake(),
		demodulator:            demod.New(sampleRate),
		options:                DefaultDecodingOptions(),
		observer:               NoopObserver{},
		sessionID:              newSessionID(),
		state:                  DecoderState{Kind: StateIdle},
		lastSyncAttemptSamples: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if forced != nil {
		c.applyMode(*forced)
	}
	return c, nil
}

// resolveMode resolves a modes.Descriptor, a case-insensitive mode name,
// or a VIS code byte into a concrete Descriptor.
func resolveMode(modeOrName any) (modes.Descriptor, error) {
	switch v := modeOrName.(type) {
	case modes.Descriptor:
		return v, nil
	case string:
		d, ok := modes.ByName(v)
		if !ok {
			return modes.Descriptor{}, &DecoderError{Kind: ErrUnknownMode, ModeName: v}
		}
		return d, nil
	case byte:
		d, ok := modes.ByVIS(v)
		if !ok {
			return modes.Descriptor{}, &DecoderError{Kind: ErrUnknownMode, ModeName: fmt.Sprintf("VIS 0x%02X", v)}
		}
		return d, nil
	default:
		return modes.Descriptor{}, &DecoderError{Kind: ErrUnknownMode, ModeName: fmt.Sprintf("%v", v)}
	}
}

// applyMode installs desc as the active mode and allocates a fresh,
// zero-initialised pixel buffer sized to it.
func (c *Controller) applyMode(desc modes.Descriptor) {
	c.mode = desc
	c.hasMode = true
	c.pixels = pixelbuf.New(desc.Width, desc.Height)
	c.nextFrameIndex = 0
}

func (c *Controller) fallbackToDefaultMode() {
	desc, _ := modes.ByName("PD120")
	c.applyMode(desc)
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() DecoderState { return c.state }

// Pixels returns the current (possibly partial) pixel buffer, or nil
// while no mode is set (before one is forced or detected, and after
// Reset).
func (c *Controller) Pixels() *pixelbuf.Buffer { return c.pixels }

// Options returns a copy of the controller's decoding options.
func (c *Controller) Options() DecodingOptions { return c.options }

// SetOptions replaces the controller's decoding options, clamped as
// usual by DecodingOptions' own setters having already been applied by
// the caller.
func (c *Controller) SetOptions(o DecodingOptions) { c.options = o }

// Callsign returns the FSK callsign ID decoded after the image
// completed, if one was found.
func (c *Controller) Callsign() (string, bool) { return c.callsign, c.haveCallsign }

func (c *Controller) setState(s DecoderState) {
	changed := s.Kind != c.state.Kind
	c.state = s
	if changed {
		c.observer.ChangedState(s)
	}
}

func (c *Controller) resetCore(preserveMode bool) {
	c.intake.reset()
	c.freq = nil
	c.haveSignalStart = false
	c.signalStart = 0
	c.nextFrameIndex = 0
	c.callsign = ""
	c.haveCallsign = false
	c.lastSyncAttemptSamples = -1
	c.state = DecoderState{Kind: StateIdle}

	if !preserveMode || !c.hasMode {
		c.hasMode = false
		c.mode = modes.Descriptor{}
		c.pixels = nil
		return
	}
	c.pixels = pixelbuf.New(c.mode.Width, c.mode.Height)
}

// Reset clears all accumulated data, frequencies, mode and state,
// returning to Idle. Sample rate, observer and decoding options survive.
// Idempotent.
func (c *Controller) Reset() {
	c.resetCore(false)
}

// ResetKeepingMode is Reset but keeps the currently configured mode (if
// any) and its freshly zeroed pixel buffer.
func (c *Controller) ResetKeepingMode() {
	c.resetCore(true)
}

// SetMode forces a mode, resetting every other piece of state except
// sample rate and observer — including decoding options, which return
// to their defaults (only sample rate and observer are exempted by
// spec.md's wording).
func (c *Controller) SetMode(modeOrName any) error {
	desc, err := resolveMode(modeOrName)
	if err != nil {
		return err
	}
	c.resetCore(false)
	c.options = DefaultDecodingOptions()
	c.applyMode(desc)
	return nil
}

// PushSamples appends samples and drives the state machine forward as
// far as currently-buffered data permits, firing observer events
// synchronously on this goroutine.
func (c *Controller) PushSamples(samples []float64) {
	started := time.Now()
	c.intake.push(samples)
	c.refreshFreq()
	for c.tick() {
	}
	c.metrics.observeDecodeDuration(time.Since(started).Seconds())
}

// refreshFreq re-derives the frequency stream from the whole buffered
// sample stream, overwriting whatever was there before. The Demodulator
// is stateless across calls, so this keeps c.freq current for every
// stage — including Decoding, which otherwise would never see samples
// pushed after sync lock.
func (c *Controller) refreshFreq() {
	if c.intake.len() == 0 {
		return
	}
	c.freq = c.demodulator.Demodulate(c.intake.view())
}

// DecodeAll wraps a reset + PushSamples + result extraction for one-shot
// use: it returns the final pixel buffer on Complete, the terminal error
// on Error, and a resource error alongside whatever partial buffer exists
// if the audio ran out before an image finished — EndOfStream if at least
// one line was ever written, InsufficientSamples if decoding never
// produced a line at all. A mode set by NewControllerWithMode or SetMode
// survives the reset, so a forced-mode Controller can be reused across
// repeated DecodeAll calls; an auto-detecting Controller runs VIS
// detection fresh each time, same as Reset would leave it.
func (c *Controller) DecodeAll(samples []float64) (*pixelbuf.Buffer, error) {
	c.resetCore(c.hasMode)
	c.PushSamples(samples)

	switch c.state.Kind {
	case StateComplete:
		return c.pixels, nil
	case StateError:
		return c.pixels, c.state.Err
	default:
		if lw := c.linesWritten(); lw > 0 {
			return c.pixels, &DecoderError{Kind: ErrEndOfStream, LinesDecoded: lw, TotalLines: c.mode.Height}
		}
		return c.pixels, &DecoderError{Kind: ErrInsufficientSamples}
	}
}

// Progress returns the overall-progress scalar described by spec.md 4.6.
func (c *Controller) Progress() float32 {
	switch c.state.Kind {
	case StateIdle:
		return 0
	case StateDetectingVis:
		return progressAtDetectingVis
	case StateSearchingSync:
		return progressAtSearchingSync
	case StateSyncLocked:
		return progressAtSyncLocked
	case StateDecoding:
		if c.mode.Height == 0 {
			return progressAtSyncLocked
		}
		frac := float64(c.state.Line) / float64(c.mode.Height)
		return float32(progressAtSyncLocked + progressDecodingSpan*frac)
	case StateComplete:
		return 1.0
	case StateError:
		if c.mode.Height == 0 || c.pixels == nil {
			return 0
		}
		p := float64(c.pixels.LinesWritten()) / float64(c.mode.Height)
		if p > 1 {
			p = 1
		}
		return float32(p)
	default:
		return 0
	}
}

// tick performs one state-dependent step of the driver loop and reports
// whether it made forward progress (and so should be called again).
func (c *Controller) tick() bool {
	switch c.state.Kind {
	case StateIdle:
		return c.enterDetectOrSync()
	case StateDetectingVis:
		return c.tickDetectingVis()
	case StateSearchingSync:
		return c.tickSearchingSync()
	case StateSyncLocked:
		return c.tickSyncLocked()
	case StateDecoding:
		return c.tickDecoding()
	case StateSyncLost:
		return c.tickSyncLost()
	default:
		return false // Complete, Error: terminal
	}
}

func (c *Controller) enterDetectOrSync() bool {
	if c.hasMode {
		c.setState(DecoderState{Kind: StateSearchingSync})
		return true
	}
	c.setState(DecoderState{Kind: StateDetectingVis})
	c.observer.BeganVisDetection()
	return true
}

func (c *Controller) tickDetectingVis() bool {
	minSamples := int(minVisSeconds * c.sampleRate)
	if c.intake.len() < minSamples {
		return false
	}

	result := visdetect.Detect(c.freq, c.sampleRate, c.logger)
	if result.Found && !result.ReportOnly {
		desc, ok := modes.ByVIS(result.VISCode)
		if ok {
			c.applyMode(desc)
			c.observer.DetectedVisCode(result.VISCode, desc.Name)
			c.setState(DecoderState{Kind: StateSearchingSync})
			return true
		}
	}

	c.metrics.incVisFailures()
	c.observer.FailedVisDetection()

	spectrum := visdetect.DiagnosticSpectrum(c.intake.view(), diagnosticSpectrumWindow)
	if result.Found && result.ReportOnly {
		c.observer.EmittedDiagnostic(newDiagnostic(c.sessionID, DiagInfo, CategoryDecoding,
			fmt.Sprintf("recognised VIS code 0x%02X (%s) is report-only; no decoder available", result.VISCode, result.ModeName),
			map[string]any{"spectrum": spectrum}))
	} else {
		c.observer.EmittedDiagnostic(newDiagnostic(c.sessionID, DiagWarning, CategoryDecoding,
			"VIS header not found; falling back to default mode",
			map[string]any{"spectrum": spectrum}))
	}
	c.fallbackToDefaultMode()
	c.setState(DecoderState{Kind: StateSearchingSync})
	return true
}

func (c *Controller) tickSearchingSync() bool {
	frameSeconds := c.mode.FrameMs / 1000.0
	needed := int((syncSearchBaseSecs + 10*frameSeconds) * c.sampleRate)
	available := c.intake.len()
	if available < needed {
		return false
	}
	if available == c.lastSyncAttemptSamples {
		// No new samples since the last failed attempt: retrying now
		// would just reproduce the same failure forever.
		return false
	}
	c.lastSyncAttemptSamples = available

	frameSamples := c.mode.FrameSamples(c.sampleRate)
	result := synclocate.Locate(c.freq, c.sampleRate, frameSamples, c.mode.SyncHz, c.logger)

	if result.Confidence < syncEpsilon {
		c.metrics.incSyncLosses()
		c.observer.LostSync()
		c.setState(DecoderState{Kind: StateSyncLost, Line: c.linesWritten(), TotalLines: c.mode.Height})
		return true
	}

	c.signalStart = result.StartSample
	c.haveSignalStart = true
	c.observer.LockedSync(float32(result.Confidence))
	c.setState(DecoderState{Kind: StateSyncLocked, Confidence: result.Confidence})
	return true
}

func (c *Controller) tickSyncLocked() bool {
	c.nextFrameIndex = 0
	c.setState(DecoderState{Kind: StateDecoding, Line: c.linesWritten(), TotalLines: c.mode.Height})
	return true
}

func (c *Controller) linesWritten() int {
	if c.pixels == nil {
		return 0
	}
	return c.pixels.LinesWritten()
}

func (c *Controller) tickDecoding() bool {
	advanced := false
	opts := modes.FrameOptions{PhaseOffsetMs: c.options.phaseOffsetMs, SkewMsPerLine: c.options.skewMsPerLine}

	for {
		rows, ok := modes.DecodeFrame(c.mode, c.freq, c.sampleRate, float64(c.signalStart), c.nextFrameIndex, opts)
		if !ok {
			return advanced
		}
		c.nextFrameIndex++
		c.metrics.incFramesDecoded()
		advanced = true

		for _, row := range rows {
			y := c.pixels.LinesWritten()
			if y >= c.mode.Height {
				break
			}
			c.pixels.WriteRow(y, row)
			c.metrics.incLinesDecoded()

			lw := y + 1
			c.observer.DecodedLine(uint32(y), uint32(c.mode.Height))
			c.setState(DecoderState{Kind: StateDecoding, Line: lw, TotalLines: c.mode.Height})
			if lw%progressEveryNLines == 0 || lw >= c.mode.Height {
				c.observer.UpdatedProgress(c.Progress())
			}
		}

		if c.pixels.LinesWritten() >= c.mode.Height {
			c.completeDecode()
			return true
		}
	}
}

func (c *Controller) completeDecode() {
	c.setState(DecoderState{Kind: StateComplete})
	snapshot := c.pixels.Snapshot()
	c.observer.CompletedImage(snapshot)
	c.observer.UpdatedProgress(1.0)
	c.detectCallsign()
}

// detectCallsign best-effort-decodes an FSK callsign trailer appearing
// after the last decoded frame. Failure is silent: not every
// transmission carries one.
func (c *Controller) detectCallsign() {
	imageSamples := int(c.mode.FrameSamples(c.sampleRate)) * c.mode.NumFrames()
	searchFrom := c.signalStart + imageSamples

	name, ok := fskid.Decode(c.freq, searchFrom, int(c.sampleRate))
	if !ok {
		return
	}
	c.callsign = name
	c.haveCallsign = true
	c.observer.EmittedDiagnostic(newDiagnostic(c.sessionID, DiagInfo, CategoryDecoding,
		fmt.Sprintf("decoded FSK callsign id: %s", name), nil))
}

func (c *Controller) tickSyncLost() bool {
	atLine := c.state.Line
	threshold := c.options.syncRecoveryThreshold * float64(c.mode.Height)

	if float64(atLine) < threshold {
		c.haveSignalStart = false
		c.setState(DecoderState{Kind: StateSearchingSync})
		return true
	}

	err := &DecoderError{Kind: ErrSyncLost, AtLine: atLine}
	c.setState(DecoderState{Kind: StateError, Err: err})
	c.observer.EncounteredError(err)
	return true
}
