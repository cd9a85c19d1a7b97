package synth

import "math"

// DefaultMasterVolume is the master gain target applied at startup.
const DefaultMasterVolume = 0.7

// masterSmoothingSec is the time constant of the gain transition. Roughly
// 10 ms keeps volume changes click-free without feeling laggy.
const masterSmoothingSec = 0.010

// MasterGain is the single shared volume stage every voice routes through.
// There is exactly one instance per engine, created at construction and never
// replaced. Level changes approach the target exponentially, one pole per
// sample, instead of jumping.
type MasterGain struct {
	target float64
	level  float64
	alpha  float64
}

// NewMasterGain creates the master stage for the given sample rate, already
// settled at the initial level.
func NewMasterGain(sampleRate int, initial float64) *MasterGain {
	initial = clampUnit(initial)
	return &MasterGain{
		target: initial,
		level:  initial,
		alpha:  1 - math.Exp(-1/(masterSmoothingSec*float64(sampleRate))),
	}
}

// SetLevel updates the gain target. Out-of-range input is clamped to [0, 1],
// not rejected.
func (m *MasterGain) SetLevel(level float64) {
	m.target = clampUnit(level)
}

// Level returns the last-set gain target.
func (m *MasterGain) Level() float64 {
	return m.target
}

// step advances the smoothed gain by one sample and returns it. Must be
// called under the engine lock.
func (m *MasterGain) step() float64 {
	m.level += m.alpha * (m.target - m.level)
	return m.level
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
