package keytone

import (
	"fmt"

	"github.com/leandrodaf/keytone/internal/output"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// outputInitializers maps output names to corresponding backend initializers.
var outputInitializers = map[string]func(contracts.SampleSource) (contracts.AudioOutput, error){
	"oto":       output.NewOto,       // Default cross-platform output.
	"portaudio": output.NewPortAudio, // PortAudio output.
	"null":      output.NewNull,      // Headless output; advances the clock, discards samples.
}

// newOutput initializes an audio output backend by name, returning
// ErrUnknownOutput when no backend is registered under that name.
//
// name string: The backend name from the instrument options.
// source contracts.SampleSource: The engine the backend pulls samples from.
//
// Returns:
//   - contracts.AudioOutput: An instance of the output backend.
//   - error: An error if the name is unknown or initialization fails.
func newOutput(name string, source contracts.SampleSource) (contracts.AudioOutput, error) {
	if initializer, exists := outputInitializers[name]; exists {
		return initializer(source)
	}
	return nil, fmt.Errorf("%w: %s", contracts.ErrUnknownOutput, name)
}
