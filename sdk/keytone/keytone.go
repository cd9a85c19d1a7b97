package keytone

import (
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// New creates a new instrument with the specified options. It applies default
// options, builds the synthesis engine and the sequence recorder, and wires
// the recorder into the engine's note-triggered notification. The audio
// output itself is opened by Start, typically gated on a user gesture.
//
// opts ...contracts.Option: A variadic list of option functions to customize
// the instrument configuration.
//
// Returns:
//   - contracts.Instrument: An instance of the instrument.
//   - error: An error, if any occurred during construction.
func New(opts ...contracts.Option) (contracts.Instrument, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	return newInstrument(&options)
}
