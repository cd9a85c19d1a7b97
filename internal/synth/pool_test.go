package synth

import (
	"testing"

	"github.com/leandrodaf/keytone/internal/logger"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

func testVoice(t *testing.T) *Voice {
	t.Helper()
	v, err := newVoice(440, 1.0, contracts.DefaultEnvelope(), 44100, 0)
	if err != nil {
		t.Fatalf("newVoice: %v", err)
	}
	return v
}

func TestPoolAdmission(t *testing.T) {
	p := NewVoicePool(logger.NewNopLogger(), 2)

	for i := 0; i < 2; i++ {
		if !p.Admit() {
			t.Fatalf("admission %d denied below the cap", i)
		}
		p.Add(testVoice(t))
	}
	if p.Admit() {
		t.Error("admission granted at the cap")
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestPoolMembershipByIdentity(t *testing.T) {
	p := NewVoicePool(logger.NewNopLogger(), DefaultPolyphony)
	v := testVoice(t)

	p.Add(v)
	p.Add(v)
	if p.Len() != 1 {
		t.Errorf("Len() = %d after double add, want 1", p.Len())
	}

	p.Remove(v)
	if p.Len() != 0 {
		t.Errorf("Len() = %d (after remove), want 0", p.Len())
	}
	if v.Active() {
		t.Error("removed voice should be disposed")
	}
	p.Remove(v) // idempotent
	if p.Len() != 0 {
		t.Errorf("Len() = %d after double remove, want 0", p.Len())
	}
}

func TestPoolSetMaxBounds(t *testing.T) {
	p := NewVoicePool(logger.NewNopLogger(), DefaultPolyphony)

	for _, n := range []int{0, -5, 51, 1000} {
		if err := p.SetMax(n); err == nil {
			t.Errorf("SetMax(%d) should be rejected", n)
		}
	}
	if p.Max() != DefaultPolyphony {
		t.Errorf("Max() = %d after rejected sets, want %d", p.Max(), DefaultPolyphony)
	}
	if err := p.SetMax(5); err != nil {
		t.Fatalf("SetMax(5): %v", err)
	}
	if p.Max() != 5 {
		t.Errorf("Max() = %d, want 5", p.Max())
	}
}

func TestPoolShrinkingMaxDrainsNaturally(t *testing.T) {
	// Lowering the cap below the active count denies new admissions but does
	// not evict voices already sounding.
	p := NewVoicePool(logger.NewNopLogger(), 3)
	voices := []*Voice{testVoice(t), testVoice(t), testVoice(t)}
	for _, v := range voices {
		p.Add(v)
	}

	if err := p.SetMax(1); err != nil {
		t.Fatalf("SetMax(1): %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d after lowering the cap, want 3", p.Len())
	}
	if p.Admit() {
		t.Error("admission granted above the lowered cap")
	}

	p.Remove(voices[0])
	p.Remove(voices[1])
	p.Remove(voices[2])
	if !p.Admit() {
		t.Error("admission denied after the pool drained")
	}
}

func TestPoolEach(t *testing.T) {
	p := NewVoicePool(logger.NewNopLogger(), DefaultPolyphony)
	for i := 0; i < 4; i++ {
		p.Add(testVoice(t))
	}

	var visited int
	p.Each(func(*Voice) { visited++ })
	if visited != 4 {
		t.Errorf("Each visited %d voices, want 4", visited)
	}
}
