package synth

import (
	"math"
	"testing"
)

func TestMasterGainClampsLevels(t *testing.T) {
	m := NewMasterGain(44100, DefaultMasterVolume)
	if m.Level() != DefaultMasterVolume {
		t.Fatalf("initial level = %v, want %v", m.Level(), DefaultMasterVolume)
	}

	m.SetLevel(1.5)
	if m.Level() != 1.0 {
		t.Errorf("level after SetLevel(1.5) = %v, want 1.0", m.Level())
	}
	m.SetLevel(-0.2)
	if m.Level() != 0 {
		t.Errorf("level after SetLevel(-0.2) = %v, want 0", m.Level())
	}

	if g := NewMasterGain(44100, 2.0); g.Level() != 1.0 {
		t.Errorf("initial level 2.0 not clamped: %v", g.Level())
	}
}

func TestMasterGainSmoothsTransitions(t *testing.T) {
	m := NewMasterGain(44100, 0)
	m.SetLevel(1.0)

	// The smoothed gain approaches the target monotonically, never jumping.
	prev := 0.0
	for i := 0; i < 441; i++ { // 10 ms
		level := m.step()
		if level < prev || level > 1.0 {
			t.Fatalf("smoothed level not monotonic in [0, 1]: %v after %v", level, prev)
		}
		if step := level - prev; step > 0.01 {
			t.Fatalf("level jumped by %v in one sample", step)
		}
		prev = level
	}
	// One 10 ms time constant covers ~63% of the transition.
	if prev < 0.5 || prev > 0.8 {
		t.Errorf("level after one time constant = %v, want ~0.63", prev)
	}

	for i := 0; i < 5*441; i++ {
		prev = m.step()
	}
	if math.Abs(prev-1.0) > 0.01 {
		t.Errorf("level did not settle at target: %v", prev)
	}
}
