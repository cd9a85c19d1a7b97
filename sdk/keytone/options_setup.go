package keytone

import (
	"github.com/leandrodaf/keytone/internal/logger"
	"github.com/leandrodaf/keytone/internal/sequence"
	"github.com/leandrodaf/keytone/internal/synth"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// Engine defaults applied when options are not explicitly provided.
const (
	DefaultSampleRate      = 44100
	DefaultOutput          = "oto"
	DefaultNoteDurationSec = 2.0
)

// applyDefaultOptions sets default values for InstrumentOptions if not
// explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can
// modify InstrumentOptions.
//
// Returns:
//   - contracts.InstrumentOptions: The finalized options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.InstrumentOptions, error) {
	options := &contracts.InstrumentOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.SampleRate == 0 {
		options.SampleRate = DefaultSampleRate
	}
	if options.Output == "" {
		options.Output = DefaultOutput
	}
	if options.Envelope == nil {
		env := contracts.DefaultEnvelope()
		options.Envelope = &env
	}
	if options.MaxPolyphony == 0 {
		options.MaxPolyphony = synth.DefaultPolyphony
	}
	if options.MasterVolume == nil {
		level := synth.DefaultMasterVolume
		options.MasterVolume = &level
	}
	if options.NoteDurationSec == 0 {
		options.NoteDurationSec = DefaultNoteDurationSec
	}
	if options.MaxSequenceLength == 0 {
		options.MaxSequenceLength = sequence.DefaultSequenceLength
	}
	if options.Notes == nil {
		options.Notes = synth.DefaultNotes()
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
