package synth

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// Voice is one in-flight sounding note: a sine oscillator plus a per-voice
// gain whose amplitude breakpoints are scheduled, in absolute sample time, at
// construction. The voice pool owns the voice from admission until the render
// clock passes stopSample; the breakpoints themselves are immutable, so the
// handle methods are safe without the engine lock.
type Voice struct {
	freqHz      float64
	sampleRate  float64
	durationSec float64
	env         contracts.Envelope // snapshot at trigger time

	// Envelope breakpoints as absolute engine-clock samples.
	startSample  int64
	attackEnd    int64
	decayEnd     int64
	releaseStart int64
	stopSample   int64

	phase float64 // oscillator phase in [0, 1), mutated only under the engine lock
	live  atomic.Bool
}

// newVoice constructs a voice and schedules its envelope relative to the
// given engine-clock sample.
func newVoice(freqHz, durationSec float64, env contracts.Envelope, sampleRate int, now int64) (*Voice, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("%w: frequency must be positive, got %v", contracts.ErrSynthesisFailure, freqHz)
	}
	if durationSec <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %v", contracts.ErrSynthesisFailure, durationSec)
	}
	if err := validateEnvelope(env); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrSynthesisFailure, err)
	}

	fs := float64(sampleRate)
	v := &Voice{
		freqHz:       freqHz,
		sampleRate:   fs,
		durationSec:  durationSec,
		env:          env,
		startSample:  now,
		attackEnd:    now + secondsToSamples(env.AttackSec, fs),
		decayEnd:     now + secondsToSamples(env.AttackSec+env.DecaySec, fs),
		releaseStart: now + secondsToSamples(durationSec, fs),
		stopSample:   now + secondsToSamples(durationSec+env.ReleaseSec, fs),
	}
	v.live.Store(true)
	return v, nil
}

func secondsToSamples(sec, sampleRate float64) int64 {
	return int64(math.Round(sec * sampleRate))
}

// Frequency returns the oscillator frequency in hertz.
func (v *Voice) Frequency() float64 {
	return v.freqHz
}

// Active reports whether the voice is still sounding or scheduled to sound.
func (v *Voice) Active() bool {
	return v.live.Load()
}

// Lifetime returns the total scheduled duration from trigger to the end of
// the release ramp.
func (v *Voice) Lifetime() time.Duration {
	return time.Duration((v.durationSec + v.env.ReleaseSec) * float64(time.Second))
}

// GainAt returns the scheduled per-voice amplitude at the given offset from
// trigger time.
func (v *Voice) GainAt(sinceTrigger time.Duration) float64 {
	s := v.startSample + secondsToSamples(sinceTrigger.Seconds(), v.sampleRate)
	return v.gainAtSample(s)
}

// gainAtSample evaluates the piecewise-linear envelope at an absolute clock
// sample. The release ramp starts from whatever level the attack/decay/
// sustain shape reaches at releaseStart, so a duration shorter than
// attack+decay still releases without a discontinuity.
func (v *Voice) gainAtSample(s int64) float64 {
	if s < v.startSample || s >= v.stopSample {
		return 0
	}
	if s < v.releaseStart {
		return v.sustainShapeAt(s)
	}
	from := v.sustainShapeAt(v.releaseStart)
	span := float64(v.stopSample - v.releaseStart)
	return from * (1 - float64(s-v.releaseStart)/span)
}

// sustainShapeAt evaluates the attack/decay/sustain portion, ignoring release.
func (v *Voice) sustainShapeAt(s int64) float64 {
	switch {
	case s < v.startSample:
		return 0
	case s < v.attackEnd:
		return float64(s-v.startSample) / float64(v.attackEnd-v.startSample)
	case s < v.decayEnd:
		t := float64(s-v.attackEnd) / float64(v.decayEnd-v.attackEnd)
		return 1 + (v.env.SustainLevel-1)*t
	default:
		return v.env.SustainLevel
	}
}

// renderSample produces the voice's output for the given clock sample and
// advances the oscillator. Must be called under the engine lock.
func (v *Voice) renderSample(clock int64) float64 {
	if !v.live.Load() || clock < v.startSample || clock >= v.stopSample {
		return 0
	}
	sample := math.Sin(2 * math.Pi * v.phase)
	v.phase += v.freqHz / v.sampleRate
	if v.phase >= 1 {
		v.phase -= 1
	}
	return sample * v.gainAtSample(clock)
}

// finished reports whether the render clock has passed the scheduled stop.
func (v *Voice) finished(clock int64) bool {
	return clock >= v.stopSample
}

// dispose silences the voice immediately. Idempotent.
func (v *Voice) dispose() {
	v.live.Store(false)
}
