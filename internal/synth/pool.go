package synth

import (
	"fmt"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// Polyphony bounds accepted by SetMax.
const (
	MinPolyphony     = 1
	MaxPolyphony     = 50
	DefaultPolyphony = 20
)

// VoicePool tracks the set of concurrently sounding voices and gates
// admission of new ones. Membership is keyed by voice identity, so a voice
// can never appear twice, and removal is idempotent. The newest trigger is
// rejected when the pool is full; older voices are never stolen.
//
// The pool is not internally synchronized: the engine mutates it only under
// its own lock, from Trigger (insert) and from the render clock's completion
// sweep (remove).
type VoicePool struct {
	logger contracts.Logger
	max    int
	voices map[*Voice]struct{}
}

// NewVoicePool creates an empty pool with the given concurrent-voice bound.
func NewVoicePool(logger contracts.Logger, max int) *VoicePool {
	return &VoicePool{
		logger: logger,
		max:    max,
		voices: make(map[*Voice]struct{}),
	}
}

// Admit reports whether one more voice may start sounding. A denied
// admission is logged and the caller must not create the voice.
func (p *VoicePool) Admit() bool {
	if len(p.voices) >= p.max {
		p.logger.Warn("voice admission denied",
			p.logger.Field().Int("active", len(p.voices)),
			p.logger.Field().Int("maxPolyphony", p.max))
		return false
	}
	return true
}

// Add inserts a voice into the active set.
func (p *VoicePool) Add(v *Voice) {
	p.voices[v] = struct{}{}
}

// Remove takes a voice out of the active set and silences it. Safe to call
// more than once for the same voice.
func (p *VoicePool) Remove(v *Voice) {
	v.dispose()
	delete(p.voices, v)
}

// Len returns the number of active voices.
func (p *VoicePool) Len() int {
	return len(p.voices)
}

// Max returns the current concurrent-voice bound.
func (p *VoicePool) Max() int {
	return p.max
}

// SetMax updates the concurrent-voice bound. Values outside 1..50 are
// rejected. Voices already sounding are unaffected even if they exceed the
// new bound; they drain naturally.
func (p *VoicePool) SetMax(n int) error {
	if n < MinPolyphony || n > MaxPolyphony {
		return fmt.Errorf("max polyphony must be in [%d, %d], got %d", MinPolyphony, MaxPolyphony, n)
	}
	p.max = n
	return nil
}

// Each calls fn for every active voice.
func (p *VoicePool) Each(fn func(*Voice)) {
	for v := range p.voices {
		fn(v)
	}
}
