package sequence

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/keytone/internal/logger"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// triggerProbe records the indices replayed through the trigger path.
type triggerProbe struct {
	mu      sync.Mutex
	indices []int
}

func (p *triggerProbe) trigger(noteIndex int) error {
	p.mu.Lock()
	p.indices = append(p.indices, noteIndex)
	p.mu.Unlock()
	return nil
}

func (p *triggerProbe) triggered() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.indices))
	copy(out, p.indices)
	return out
}

func validIndex(i int) bool { return i >= 0 && i < 11 }

func newTestRecorder(t *testing.T) (*Recorder, *triggerProbe) {
	t.Helper()
	probe := &triggerProbe{}
	return NewRecorder(logger.NewNopLogger(), probe.trigger, validIndex), probe
}

// waitIdle polls until the recorder leaves the Playing state.
func waitIdle(t *testing.T, r *Recorder) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.State() == contracts.RecorderPlaying {
		if time.Now().After(deadline) {
			t.Fatal("recorder did not return to idle")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRecordingCapturesRelativeDelays(t *testing.T) {
	r, _ := newTestRecorder(t)
	epoch := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return epoch }

	if err := r.StartRecording(); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if got := r.State(); got != contracts.RecorderRecording {
		t.Fatalf("State() = %v, want recording", got)
	}

	r.RecordEvent(0, epoch)
	r.RecordEvent(4, epoch.Add(50*time.Millisecond))
	r.RecordEvent(7, epoch.Add(200*time.Millisecond))
	r.StopRecording()

	data, err := r.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := `[{"noteIndex":0,"delayMs":0},{"noteIndex":4,"delayMs":50},{"noteIndex":7,"delayMs":200}]`
	if string(data) != want {
		t.Errorf("Export() = %s, want %s", data, want)
	}

	// Importing into a fresh recorder reproduces the identical sequence.
	fresh, _ := newTestRecorder(t)
	if err := fresh.Import(data); err != nil {
		t.Fatalf("Import: %v", err)
	}
	round, err := fresh.Export()
	if err != nil {
		t.Fatalf("Export after import: %v", err)
	}
	if string(round) != want {
		t.Errorf("round-tripped sequence = %s, want %s", round, want)
	}
}

func TestStartRecordingClearsPriorSequence(t *testing.T) {
	r, _ := newTestRecorder(t)
	now := time.Now()

	r.StartRecording()
	r.RecordEvent(1, now)
	r.RecordEvent(2, now)
	r.StopRecording()
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	r.StartRecording()
	if r.Len() != 0 {
		t.Errorf("Len() = %d after restart, want 0", r.Len())
	}
}

func TestStartRecordingOnlyFromIdle(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.StartRecording()
	if err := r.StartRecording(); !errors.Is(err, contracts.ErrInvalidState) {
		t.Errorf("second StartRecording = %v, want ErrInvalidState", err)
	}
	if got := r.State(); got != contracts.RecorderRecording {
		t.Errorf("State() = %v after rejected start, want recording", got)
	}
}

func TestPlayWhileRecordingIsRejected(t *testing.T) {
	r, probe := newTestRecorder(t)
	r.StartRecording()
	r.RecordEvent(0, time.Now())

	if err := r.Play(); !errors.Is(err, contracts.ErrInvalidState) {
		t.Errorf("Play while recording = %v, want ErrInvalidState", err)
	}
	if got := r.State(); got != contracts.RecorderRecording {
		t.Errorf("State() = %v after rejected play, want recording", got)
	}
	if len(probe.triggered()) != 0 {
		t.Error("rejected play must not trigger notes")
	}
}

func TestMaxLengthAutoStopsRecording(t *testing.T) {
	r, _ := newTestRecorder(t)
	if err := r.SetMaxLength(3); err != nil {
		t.Fatalf("SetMaxLength: %v", err)
	}
	now := time.Now()

	r.StartRecording()
	for i := 0; i < 3; i++ {
		r.RecordEvent(i, now.Add(time.Duration(i)*time.Millisecond))
	}
	if got := r.State(); got != contracts.RecorderIdle {
		t.Fatalf("State() = %v at capacity, want idle", got)
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	// A further event before a new StartRecording has no effect.
	r.RecordEvent(9, now.Add(time.Second))
	if r.Len() != 3 {
		t.Errorf("Len() = %d after post-capacity event, want 3", r.Len())
	}
}

func TestSetMaxLengthBounds(t *testing.T) {
	r, _ := newTestRecorder(t)
	for _, n := range []int{0, -1, 501} {
		if err := r.SetMaxLength(n); err == nil {
			t.Errorf("SetMaxLength(%d) should be rejected", n)
		}
	}
	for _, n := range []int{1, 500} {
		if err := r.SetMaxLength(n); err != nil {
			t.Errorf("SetMaxLength(%d) = %v, want nil", n, err)
		}
	}
}

func TestRecordEventIgnoredWhenIdle(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.RecordEvent(0, time.Now())
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (events outside Recording are ignored)", r.Len())
	}
}

func TestStopRecordingIsNoopWhenIdle(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.StopRecording()
	if got := r.State(); got != contracts.RecorderIdle {
		t.Errorf("State() = %v, want idle", got)
	}
}

func TestPlayReplaysInOrder(t *testing.T) {
	r, probe := newTestRecorder(t)
	now := time.Now()

	r.StartRecording()
	r.RecordEvent(2, now)
	r.RecordEvent(5, now.Add(10*time.Millisecond))
	r.RecordEvent(8, now.Add(20*time.Millisecond))
	r.StopRecording()

	if err := r.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	waitIdle(t, r)

	got := probe.triggered()
	want := []int{2, 5, 8}
	if len(got) != len(want) {
		t.Fatalf("triggered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("triggered %v, want %v", got, want)
		}
	}
}

func TestPlayEmptySequenceIsRejected(t *testing.T) {
	r, _ := newTestRecorder(t)
	if err := r.Play(); !errors.Is(err, contracts.ErrInvalidState) {
		t.Errorf("Play on empty sequence = %v, want ErrInvalidState", err)
	}
	if got := r.State(); got != contracts.RecorderIdle {
		t.Errorf("State() = %v, want idle", got)
	}
}

func TestStopCancelsPlayback(t *testing.T) {
	r, probe := newTestRecorder(t)
	now := time.Now()

	r.StartRecording()
	r.RecordEvent(0, now)
	r.RecordEvent(1, now.Add(5*time.Second))
	r.StopRecording()

	if err := r.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	// Let the first, immediate event fire before cancelling the long wait.
	deadline := time.Now().Add(time.Second)
	for len(probe.triggered()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first event never fired")
		}
		time.Sleep(time.Millisecond)
	}

	r.Stop()
	if got := r.State(); got != contracts.RecorderIdle {
		t.Errorf("State() = %v after Stop, want idle", got)
	}
	time.Sleep(20 * time.Millisecond)
	if got := probe.triggered(); len(got) != 1 {
		t.Errorf("triggered %v after cancellation, want just the first event", got)
	}

	// The sequence survives cancellation and can be replayed.
	if r.Len() != 2 {
		t.Errorf("Len() = %d after cancelled playback, want 2", r.Len())
	}
}

func TestStopIsNoopWhenNotPlaying(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.Stop()
	if got := r.State(); got != contracts.RecorderIdle {
		t.Errorf("State() = %v, want idle", got)
	}
}

func TestPlaybackContinuesPastFailedTriggers(t *testing.T) {
	var calls int
	var mu sync.Mutex
	trigger := func(noteIndex int) error {
		mu.Lock()
		calls++
		mu.Unlock()
		if noteIndex == 1 {
			return contracts.ErrPolyphonyExceeded
		}
		return nil
	}
	r := NewRecorder(logger.NewNopLogger(), trigger, validIndex)
	now := time.Now()

	r.StartRecording()
	r.RecordEvent(0, now)
	r.RecordEvent(1, now.Add(time.Millisecond))
	r.RecordEvent(2, now.Add(2*time.Millisecond))
	r.StopRecording()

	if err := r.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	waitIdle(t, r)

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Errorf("trigger called %d times, want 3 (a dropped note must not abort playback)", calls)
	}
}

func TestClearOnlyWhenIdle(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.StartRecording()
	r.RecordEvent(0, time.Now())

	if err := r.Clear(); !errors.Is(err, contracts.ErrInvalidState) {
		t.Errorf("Clear while recording = %v, want ErrInvalidState", err)
	}
	r.StopRecording()

	if err := r.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", r.Len())
	}
}

func TestClockSkewClampsToZeroDelay(t *testing.T) {
	// A timestamp before the recording epoch cannot happen from the live
	// trigger path, but if the host's clock skews the delay clamps to zero
	// instead of going negative.
	r, _ := newTestRecorder(t)
	epoch := time.Now()
	r.now = func() time.Time { return epoch }

	r.StartRecording()
	r.RecordEvent(0, epoch.Add(-time.Second))
	r.StopRecording()

	data, err := r.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if want := `[{"noteIndex":0,"delayMs":0}]`; string(data) != want {
		t.Errorf("Export() = %s, want %s", data, want)
	}
}
