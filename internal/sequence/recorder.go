package sequence

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// Sequence capacity bounds accepted by SetMaxLength.
const (
	MinSequenceLength     = 1
	MaxSequenceLength     = 500
	DefaultSequenceLength = 100
)

// TriggerFunc re-invokes the live trigger path for one note index during
// playback, so replayed notes carry the same audio and visual side effects
// as the original performance.
type TriggerFunc func(noteIndex int) error

// Recorder captures (note index, delay) pairs relative to a recording epoch
// and replays them through the trigger path at reconstructed offsets.
//
// States follow Idle -> Recording -> Idle and Idle -> Playing -> Idle;
// Recording and Playing are mutually exclusive. Invalid transitions are
// no-ops with a warning, never fatal.
type Recorder struct {
	logger  contracts.Logger
	trigger TriggerFunc
	isValid func(noteIndex int) bool
	now     func() time.Time

	mu          sync.Mutex
	state       contracts.RecorderState
	events      []contracts.SequenceEvent
	maxLen      int
	recordStart time.Time
	cancel      chan struct{}
}

// NewRecorder creates an idle recorder. isValid guards imported note indices
// and may be nil to skip range validation.
func NewRecorder(logger contracts.Logger, trigger TriggerFunc, isValid func(int) bool) *Recorder {
	return &Recorder{
		logger:  logger,
		trigger: trigger,
		isValid: isValid,
		now:     time.Now,
		maxLen:  DefaultSequenceLength,
	}
}

// State returns the recorder's current state.
func (r *Recorder) State() contracts.RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// SetMaxLength bounds the recorded sequence to n events (1..500).
func (r *Recorder) SetMaxLength(n int) error {
	if n < MinSequenceLength || n > MaxSequenceLength {
		return fmt.Errorf("max sequence length must be in [%d, %d], got %d", MinSequenceLength, MaxSequenceLength, n)
	}
	r.mu.Lock()
	r.maxLen = n
	r.mu.Unlock()
	return nil
}

// StartRecording clears the prior sequence, captures the recording epoch and
// enters the Recording state. Valid only from Idle.
func (r *Recorder) StartRecording() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != contracts.RecorderIdle {
		r.logger.Warn("start recording ignored",
			r.logger.Field().String("state", r.state.String()))
		return fmt.Errorf("%w: cannot start recording while %s", contracts.ErrInvalidState, r.state)
	}
	r.events = nil
	r.recordStart = r.now()
	r.state = contracts.RecorderRecording
	r.logger.Info("recording started")
	return nil
}

// RecordEvent appends one triggered note with its offset from the recording
// epoch. Outside the Recording state it is ignored, so the recorder can stay
// permanently subscribed to the note-triggered notification. Reaching the
// configured capacity stops the recording rather than silently dropping
// further events.
func (r *Recorder) RecordEvent(noteIndex int, timestamp time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != contracts.RecorderRecording {
		return
	}
	delay := timestamp.Sub(r.recordStart).Milliseconds()
	if delay < 0 {
		delay = 0
	}
	r.events = append(r.events, contracts.SequenceEvent{NoteIndex: noteIndex, DelayMs: int(delay)})
	if len(r.events) >= r.maxLen {
		r.state = contracts.RecorderIdle
		r.logger.Info("sequence capacity reached, recording stopped",
			r.logger.Field().Int("events", len(r.events)))
	}
}

// StopRecording returns to Idle. A no-op when not recording.
func (r *Recorder) StopRecording() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != contracts.RecorderRecording {
		return
	}
	r.state = contracts.RecorderIdle
	r.logger.Info("recording stopped",
		r.logger.Field().Int("events", len(r.events)))
}

// Play replays the recorded sequence on its own goroutine, waiting out each
// event's original offset before re-invoking the trigger path. Valid only
// from Idle with a non-empty sequence. Cancellation via Stop is observed
// before every wait and before every trigger.
func (r *Recorder) Play() error {
	r.mu.Lock()
	if r.state != contracts.RecorderIdle {
		r.logger.Warn("play ignored",
			r.logger.Field().String("state", r.state.String()))
		r.mu.Unlock()
		return fmt.Errorf("%w: cannot play while %s", contracts.ErrInvalidState, r.state)
	}
	if len(r.events) == 0 {
		r.logger.Warn("play ignored: sequence is empty")
		r.mu.Unlock()
		return fmt.Errorf("%w: sequence is empty", contracts.ErrInvalidState)
	}

	events := make([]contracts.SequenceEvent, len(r.events))
	copy(events, r.events)
	cancel := make(chan struct{})
	r.cancel = cancel
	r.state = contracts.RecorderPlaying
	r.mu.Unlock()

	r.logger.Info("playback started",
		r.logger.Field().Int("events", len(events)))
	go r.playLoop(events, cancel)
	return nil
}

func (r *Recorder) playLoop(events []contracts.SequenceEvent, cancel chan struct{}) {
	start := r.now()
	for _, ev := range events {
		target := start.Add(time.Duration(ev.DelayMs) * time.Millisecond)
		if wait := target.Sub(r.now()); wait > 0 {
			select {
			case <-cancel:
				return
			case <-time.After(wait):
			}
		}
		select {
		case <-cancel:
			return
		default:
		}
		if err := r.trigger(ev.NoteIndex); err != nil {
			// A denied or failed trigger skews only this note; the rest of
			// the sequence still plays.
			r.logger.Warn("playback trigger dropped",
				r.logger.Field().Int("noteIndex", ev.NoteIndex),
				r.logger.Field().Error("error", err))
		}
	}

	r.mu.Lock()
	if r.state == contracts.RecorderPlaying && r.cancel == cancel {
		r.state = contracts.RecorderIdle
		r.cancel = nil
	}
	r.mu.Unlock()
	r.logger.Info("playback finished")
}

// Stop cancels an in-progress playback and returns to Idle immediately.
// Notes already triggered keep sounding per their own scheduled envelopes.
// A no-op when not playing.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != contracts.RecorderPlaying {
		return
	}
	close(r.cancel)
	r.cancel = nil
	r.state = contracts.RecorderIdle
	r.logger.Info("playback cancelled")
}

// Clear discards the recorded sequence. Valid only from Idle.
func (r *Recorder) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != contracts.RecorderIdle {
		r.logger.Warn("clear ignored",
			r.logger.Field().String("state", r.state.String()))
		return fmt.Errorf("%w: cannot clear while %s", contracts.ErrInvalidState, r.state)
	}
	r.events = nil
	return nil
}
