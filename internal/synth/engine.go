package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// Config carries the engine's construction parameters, already defaulted by
// the public constructor.
type Config struct {
	Logger          contracts.Logger
	Notes           []contracts.Note
	Envelope        contracts.Envelope
	SampleRate      int
	MaxPolyphony    int
	MasterVolume    float64
	NoteDurationSec float64
}

// Engine is the tone scheduler and mixer. It owns the note registry, the
// voice pool and the master gain stage, and turns trigger requests into
// voices with sample-accurate envelope breakpoints.
//
// The engine clock is the number of samples rendered so far. Control methods
// and Render serialize on one mutex: gesture handling programs voices
// declaratively and the output backend's goroutine advances the clock. Voice
// teardown happens when that clock passes a voice's scheduled stop — inside
// the render path itself, never on a wall-clock timer that could drift from
// the audible envelope.
type Engine struct {
	logger   contracts.Logger
	registry *Registry

	mu           sync.Mutex
	env          contracts.Envelope
	noteDuration float64
	master       *MasterGain
	pool         *VoicePool
	sampleRate   int
	clock        int64
	started      bool

	subMu       sync.Mutex
	nextSub     int
	subscribers map[int]func(contracts.NoteEvent)
}

// NewEngine builds an engine from a config.
func NewEngine(cfg Config) (*Engine, error) {
	registry, err := NewRegistry(cfg.Notes)
	if err != nil {
		return nil, err
	}
	if err := validateEnvelope(cfg.Envelope); err != nil {
		return nil, err
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.NoteDurationSec <= 0 {
		return nil, fmt.Errorf("note duration must be positive, got %v", cfg.NoteDurationSec)
	}
	pool := NewVoicePool(cfg.Logger, DefaultPolyphony)
	if err := pool.SetMax(cfg.MaxPolyphony); err != nil {
		return nil, err
	}

	return &Engine{
		logger:       cfg.Logger,
		registry:     registry,
		env:          cfg.Envelope,
		noteDuration: cfg.NoteDurationSec,
		master:       NewMasterGain(cfg.SampleRate, cfg.MasterVolume),
		pool:         pool,
		sampleRate:   cfg.SampleRate,
		subscribers:  make(map[int]func(contracts.NoteEvent)),
	}, nil
}

// Registry exposes the engine's note table.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// SampleRate returns the render sample rate in hertz.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Start marks the synthesis backend as running. Triggers before Start fail
// with ErrNotInitialized.
func (e *Engine) Start() {
	e.mu.Lock()
	e.started = true
	e.mu.Unlock()
	e.logger.Info("synthesis engine started",
		e.logger.Field().Int("sampleRate", e.sampleRate))
}

// Stop silences every voice and marks the backend as stopped.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.started = false
	e.stopAllLocked()
	e.mu.Unlock()
}

// Trigger plays the note at the given registry index for the engine's
// configured note duration and emits the note-triggered notification.
func (e *Engine) Trigger(noteIndex int) (*Voice, error) {
	note, ok := e.registry.NoteAt(noteIndex)
	if !ok {
		e.logger.Warn("trigger rejected: invalid note index",
			e.logger.Field().Int("noteIndex", noteIndex))
		return nil, fmt.Errorf("%w: %d", contracts.ErrInvalidIndex, noteIndex)
	}

	e.mu.Lock()
	voice, err := e.triggerLocked(note.FrequencyHz, e.noteDuration)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.notify(contracts.NoteEvent{Index: noteIndex, Note: note, Timestamp: time.Now()})
	return voice, nil
}

// TriggerFrequency plays an arbitrary frequency for an explicit duration,
// bypassing the registry. No note-triggered notification is emitted because
// there is no registry index to report.
func (e *Engine) TriggerFrequency(freqHz, durationSec float64) (*Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.triggerLocked(freqHz, durationSec)
}

// triggerLocked admits and schedules one voice. Caller holds e.mu.
func (e *Engine) triggerLocked(freqHz, durationSec float64) (*Voice, error) {
	if !e.started {
		e.logger.Warn("trigger dropped: engine not started")
		return nil, contracts.ErrNotInitialized
	}
	if !e.pool.Admit() {
		return nil, contracts.ErrPolyphonyExceeded
	}
	voice, err := newVoice(freqHz, durationSec, e.env, e.sampleRate, e.clock)
	if err != nil {
		e.logger.Error("voice construction failed",
			e.logger.Field().Float64("frequencyHz", freqHz),
			e.logger.Field().Float64("durationSec", durationSec),
			e.logger.Field().Error("error", err))
		return nil, err
	}
	e.pool.Add(voice)
	return voice, nil
}

// StopAll immediately silences and disposes every active voice.
func (e *Engine) StopAll() {
	e.mu.Lock()
	e.stopAllLocked()
	e.mu.Unlock()
}

func (e *Engine) stopAllLocked() {
	var stopped []*Voice
	e.pool.Each(func(v *Voice) {
		stopped = append(stopped, v)
	})
	for _, v := range stopped {
		e.pool.Remove(v)
	}
}

// ActiveVoices returns the number of voices currently in the pool.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Len()
}

// SetVolume updates the master gain target; out-of-range input is clamped.
func (e *Engine) SetVolume(level float64) {
	e.mu.Lock()
	e.master.SetLevel(level)
	e.mu.Unlock()
}

// Volume returns the last-set master gain target.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master.Level()
}

// SetMaxPolyphony updates the concurrent-voice bound (1..50).
func (e *Engine) SetMaxPolyphony(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.SetMax(n)
}

// MaxPolyphony returns the current concurrent-voice bound.
func (e *Engine) MaxPolyphony() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Max()
}

// SetEnvelope replaces the envelope used for subsequently triggered notes.
// Voices already sounding keep the breakpoints captured at their trigger.
func (e *Engine) SetEnvelope(env contracts.Envelope) error {
	if err := validateEnvelope(env); err != nil {
		return err
	}
	e.mu.Lock()
	e.env = env
	e.mu.Unlock()
	return nil
}

// Envelope returns the current envelope configuration.
func (e *Engine) Envelope() contracts.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.env
}

// NoteDuration returns the sustain duration used by index-level triggers.
func (e *Engine) NoteDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.noteDuration
}

// Subscribe registers a note-triggered observer. The returned function
// removes it. Observers run on the triggering goroutine and must not block.
func (e *Engine) Subscribe(fn func(contracts.NoteEvent)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subscribers, id)
		e.subMu.Unlock()
	}
}

// notify fans the event out to all subscribers, outside the engine lock.
func (e *Engine) notify(ev contracts.NoteEvent) {
	e.subMu.Lock()
	fns := make([]func(contracts.NoteEvent), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Render fills buf with mixed mono samples and advances the engine clock by
// len(buf). Voices whose scheduled stop has passed are removed from the pool
// before returning; that completion sweep is the sole cleanup path.
func (e *Engine) Render(buf []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range buf {
		var sum float64
		e.pool.Each(func(v *Voice) {
			sum += v.renderSample(e.clock)
		})
		buf[i] = float32(sum * e.master.step())
		e.clock++
	}

	var done []*Voice
	e.pool.Each(func(v *Voice) {
		if v.finished(e.clock) {
			done = append(done, v)
		}
	})
	for _, v := range done {
		e.pool.Remove(v)
	}
}
