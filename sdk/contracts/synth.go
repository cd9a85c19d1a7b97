package contracts

import "time"

// Note is an immutable (name, frequency) pair from the instrument's note
// table. Notes are index-addressed and ordered by ascending pitch.
type Note struct {
	Name        string  // Note name, e.g. "C4".
	FrequencyHz float64 // Fundamental frequency in hertz.
}

// Envelope describes the four-phase amplitude shape applied to every voice.
// It is read at trigger time: changing it affects subsequently triggered
// notes only, never voices already sounding.
type Envelope struct {
	AttackSec    float64 // Ramp 0 -> 1 over this many seconds from trigger.
	DecaySec     float64 // Ramp 1 -> SustainLevel over this many seconds.
	SustainLevel float64 // Held level in [0, 1] until the note duration elapses.
	ReleaseSec   float64 // Ramp SustainLevel -> 0 after the note duration.
}

// DefaultEnvelope returns the stock piano-like envelope: a 5 ms attack,
// 100 ms decay to a 0.30 sustain, and a 1.2 s release tail.
func DefaultEnvelope() Envelope {
	return Envelope{
		AttackSec:    0.005,
		DecaySec:     0.1,
		SustainLevel: 0.3,
		ReleaseSec:   1.2,
	}
}

// NoteEvent is the note-triggered notification emitted on every successful
// trigger, consumed by visual-feedback collaborators and the recorder.
type NoteEvent struct {
	Index     int       // Registry index of the triggered note.
	Note      Note      // Note metadata at that index.
	Timestamp time.Time // Wall-clock time of the trigger.
}

// VoiceHandle is a read-only view of one in-flight voice. The voice itself is
// owned exclusively by the engine's voice pool; the handle stays valid after
// the voice completes but then reports Active() == false.
type VoiceHandle interface {
	// Frequency returns the voice's oscillator frequency in hertz.
	Frequency() float64
	// Active reports whether the voice is still sounding (or scheduled to).
	Active() bool
	// Lifetime returns the total scheduled duration from trigger to the end
	// of the release ramp.
	Lifetime() time.Duration
	// GainAt returns the scheduled amplitude at the given offset from trigger
	// time, per the envelope breakpoints captured when the voice was created.
	GainAt(sinceTrigger time.Duration) float64
}

// RecorderState is the recorder's position in its Idle/Recording/Playing
// state machine. Recording and Playing are mutually exclusive.
type RecorderState int

const (
	// RecorderIdle means the recorder is neither capturing nor replaying.
	RecorderIdle RecorderState = iota
	// RecorderRecording means triggered notes are being appended to the sequence.
	RecorderRecording
	// RecorderPlaying means the recorded sequence is being replayed.
	RecorderPlaying
)

// String returns the state name for logs.
func (s RecorderState) String() string {
	switch s {
	case RecorderIdle:
		return "idle"
	case RecorderRecording:
		return "recording"
	case RecorderPlaying:
		return "playing"
	}
	return "unknown"
}

// SequenceEvent is one recorded trigger: a note index and its offset in
// milliseconds from the start of the recording. This is also the wire format
// used by sequence export and import.
type SequenceEvent struct {
	NoteIndex int `json:"noteIndex"`
	DelayMs   int `json:"delayMs"`
}

// SampleSource produces mixed audio for an output backend. Render fills buf
// with mono float32 samples in [-1, 1] and advances the engine clock by
// len(buf) samples. It is safe to call from the output's own goroutine.
type SampleSource interface {
	Render(buf []float32)
	SampleRate() int
}

// AudioOutput is a playback backend pulling samples from a SampleSource on
// its own realtime goroutine.
type AudioOutput interface {
	// Start begins pulling and playing samples. It must be called once.
	Start() error
	// Close stops playback and releases the device.
	Close() error
}

// Instrument is the engine's public surface, consumed by a host UI shell.
// All methods are safe for concurrent use.
type Instrument interface {
	// Start initializes the audio output. Triggers before Start fail with
	// ErrNotInitialized.
	Start() error
	// Close stops playback, silences all voices and releases the output.
	Close() error

	// Trigger plays the note at the given registry index for the configured
	// default duration. The returned handle describes the scheduled voice.
	Trigger(noteIndex int) (VoiceHandle, error)
	// TriggerFrequency plays an arbitrary frequency for an explicit duration,
	// bypassing the registry. Frequency and duration must be positive.
	TriggerFrequency(freqHz, durationSec float64) (VoiceHandle, error)
	// StopAll immediately silences and disposes every active voice.
	StopAll()
	// ActiveVoices returns the number of voices currently admitted.
	ActiveVoices() int

	// IsValidIndex reports whether i addresses a note in the registry.
	IsValidIndex(i int) bool
	// NoteAt returns the note at index i, or ok == false when out of range.
	NoteAt(i int) (Note, bool)
	// IndexForSymbol resolves a symbolic key (tolerant of case and shifted
	// glyph variants) to a note index, or ok == false when unmapped.
	IndexForSymbol(symbol string) (int, bool)
	// NoteCount returns the number of entries in the note table.
	NoteCount() int

	// SetVolume sets the master gain target in [0, 1]; out-of-range values
	// are clamped. The transition is smoothed to avoid audible clicks.
	SetVolume(level float64)
	// Volume returns the last-set master gain target.
	Volume() float64
	// SetMaxPolyphony bounds the number of concurrent voices (1..50).
	SetMaxPolyphony(n int) error
	// MaxPolyphony returns the current concurrent-voice bound.
	MaxPolyphony() int
	// SetEnvelope replaces the envelope used for subsequently triggered notes.
	SetEnvelope(env Envelope) error
	// Envelope returns the current envelope configuration.
	Envelope() Envelope

	// Subscribe registers a note-triggered observer and returns its
	// unsubscribe function. Observers run on the triggering goroutine and
	// must not block.
	Subscribe(fn func(NoteEvent)) (unsubscribe func())

	// StartRecording clears the prior sequence and begins capturing triggers.
	StartRecording() error
	// StopRecording ends capture; a no-op when not recording.
	StopRecording()
	// Play replays the recorded sequence through the live trigger path.
	// It returns immediately; replay proceeds on its own goroutine.
	Play() error
	// StopPlayback cancels an in-progress replay. Voices already triggered
	// keep sounding per their own envelopes.
	StopPlayback()
	// ClearSequence discards the recorded sequence. Valid only when idle.
	ClearSequence() error
	// SequenceLen returns the number of recorded events.
	SequenceLen() int
	// RecorderState returns the recorder's current state.
	RecorderState() RecorderState
	// SetMaxSequenceLength bounds the recorded sequence (1..500).
	SetMaxSequenceLength(n int) error
	// ExportSequence serializes the sequence as a JSON array of
	// {noteIndex, delayMs} records in chronological order.
	ExportSequence() ([]byte, error)
	// ImportSequence replaces the sequence from JSON produced by
	// ExportSequence. Validation is atomic: any malformed record rejects the
	// whole payload with ErrInvalidSequence.
	ImportSequence(data []byte) error
}
