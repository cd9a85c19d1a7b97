package output

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// portaudioFramesPerBuffer is the callback block size.
const portaudioFramesPerBuffer = 512

// PortAudio plays the engine's output through the default PortAudio device.
// The stream callback runs on PortAudio's realtime thread and renders the
// source directly into the output block.
type PortAudio struct {
	stream *portaudio.Stream
}

// NewPortAudio initializes PortAudio and opens a mono output stream at the
// source's sample rate.
func NewPortAudio(source contracts.SampleSource) (contracts.AudioOutput, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("cannot initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(
		0, 1,
		float64(source.SampleRate()),
		portaudioFramesPerBuffer,
		func(out []float32) {
			source.Render(out)
		},
	)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("cannot open portaudio stream: %w", err)
	}

	return &PortAudio{stream: stream}, nil
}

// Start begins playback.
func (p *PortAudio) Start() error {
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("cannot start portaudio stream: %w", err)
	}
	return nil
}

// Close stops the stream and shuts PortAudio down.
func (p *PortAudio) Close() error {
	if err := p.stream.Stop(); err != nil {
		_ = p.stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("cannot stop portaudio stream: %w", err)
	}
	if err := p.stream.Close(); err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("cannot close portaudio stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("cannot terminate portaudio: %w", err)
	}
	return nil
}
