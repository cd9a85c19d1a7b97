package keytone

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/keytone/internal/sequence"
	"github.com/leandrodaf/keytone/internal/synth"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// instrument composes the synthesis engine, the sequence recorder and the
// audio output into the public Instrument surface. The recorder stays
// subscribed to the engine's note-triggered notification for its whole life;
// it captures events only while in the Recording state, and playback
// re-invokes Trigger so replayed notes flow through the identical path as
// live gestures.
type instrument struct {
	logger   contracts.Logger
	engine   *synth.Engine
	recorder *sequence.Recorder

	outputName  string
	unsubscribe func()

	mu     sync.Mutex
	output contracts.AudioOutput
}

func newInstrument(options *contracts.InstrumentOptions) (*instrument, error) {
	engine, err := synth.NewEngine(synth.Config{
		Logger:          options.Logger,
		Notes:           options.Notes,
		Envelope:        *options.Envelope,
		SampleRate:      options.SampleRate,
		MaxPolyphony:    options.MaxPolyphony,
		MasterVolume:    *options.MasterVolume,
		NoteDurationSec: options.NoteDurationSec,
	})
	if err != nil {
		return nil, err
	}

	inst := &instrument{
		logger:     options.Logger,
		engine:     engine,
		outputName: options.Output,
	}

	inst.recorder = sequence.NewRecorder(
		options.Logger,
		func(noteIndex int) error {
			_, err := inst.Trigger(noteIndex)
			return err
		},
		engine.Registry().IsValidIndex,
	)
	if err := inst.recorder.SetMaxLength(options.MaxSequenceLength); err != nil {
		return nil, err
	}

	inst.unsubscribe = engine.Subscribe(func(ev contracts.NoteEvent) {
		inst.recorder.RecordEvent(ev.Index, ev.Timestamp)
	})

	return inst, nil
}

// Start opens the configured audio output and marks the engine as running.
func (i *instrument) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.output != nil {
		i.logger.Warn("instrument already started")
		return nil
	}

	out, err := newOutput(i.outputName, i.engine)
	if err != nil {
		return fmt.Errorf("cannot initialize %q output: %w", i.outputName, err)
	}
	if err := out.Start(); err != nil {
		_ = out.Close()
		return fmt.Errorf("cannot start %q output: %w", i.outputName, err)
	}

	i.output = out
	i.engine.Start()
	return nil
}

// Close stops playback and recording, silences all voices and releases the
// audio output.
func (i *instrument) Close() error {
	i.recorder.Stop()
	i.recorder.StopRecording()
	i.unsubscribe()
	i.engine.Stop()

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.output == nil {
		return nil
	}
	out := i.output
	i.output = nil
	if err := out.Close(); err != nil {
		return fmt.Errorf("cannot close %q output: %w", i.outputName, err)
	}
	return nil
}

func (i *instrument) Trigger(noteIndex int) (contracts.VoiceHandle, error) {
	voice, err := i.engine.Trigger(noteIndex)
	if err != nil {
		return nil, err
	}
	return voice, nil
}

func (i *instrument) TriggerFrequency(freqHz, durationSec float64) (contracts.VoiceHandle, error) {
	voice, err := i.engine.TriggerFrequency(freqHz, durationSec)
	if err != nil {
		return nil, err
	}
	return voice, nil
}

func (i *instrument) StopAll() {
	i.engine.StopAll()
}

func (i *instrument) ActiveVoices() int {
	return i.engine.ActiveVoices()
}

func (i *instrument) IsValidIndex(idx int) bool {
	return i.engine.Registry().IsValidIndex(idx)
}

func (i *instrument) NoteAt(idx int) (contracts.Note, bool) {
	return i.engine.Registry().NoteAt(idx)
}

func (i *instrument) IndexForSymbol(symbol string) (int, bool) {
	return i.engine.Registry().IndexForSymbol(symbol)
}

func (i *instrument) NoteCount() int {
	return i.engine.Registry().Count()
}

func (i *instrument) SetVolume(level float64) {
	i.engine.SetVolume(level)
}

func (i *instrument) Volume() float64 {
	return i.engine.Volume()
}

func (i *instrument) SetMaxPolyphony(n int) error {
	return i.engine.SetMaxPolyphony(n)
}

func (i *instrument) MaxPolyphony() int {
	return i.engine.MaxPolyphony()
}

func (i *instrument) SetEnvelope(env contracts.Envelope) error {
	return i.engine.SetEnvelope(env)
}

func (i *instrument) Envelope() contracts.Envelope {
	return i.engine.Envelope()
}

func (i *instrument) Subscribe(fn func(contracts.NoteEvent)) func() {
	return i.engine.Subscribe(fn)
}

func (i *instrument) StartRecording() error {
	return i.recorder.StartRecording()
}

func (i *instrument) StopRecording() {
	i.recorder.StopRecording()
}

func (i *instrument) Play() error {
	return i.recorder.Play()
}

func (i *instrument) StopPlayback() {
	i.recorder.Stop()
}

func (i *instrument) ClearSequence() error {
	return i.recorder.Clear()
}

func (i *instrument) SequenceLen() int {
	return i.recorder.Len()
}

func (i *instrument) RecorderState() contracts.RecorderState {
	return i.recorder.State()
}

func (i *instrument) SetMaxSequenceLength(n int) error {
	return i.recorder.SetMaxLength(n)
}

func (i *instrument) ExportSequence() ([]byte, error) {
	return i.recorder.Export()
}

func (i *instrument) ImportSequence(data []byte) error {
	return i.recorder.Import(data)
}
