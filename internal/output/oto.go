package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// otoBufferDuration trades a little latency for glitch-free playout.
const otoBufferDuration = 20 * time.Millisecond

// Oto plays the engine's output through an ebitengine/oto v3 context. The oto
// player pulls samples on its own realtime goroutine by reading from
// otoReader, which renders the source on demand.
type Oto struct {
	ctx    *oto.Context
	player *oto.Player
}

// otoReader adapts a SampleSource to the io.Reader the oto player consumes,
// encoding rendered float32 samples as little-endian bytes.
type otoReader struct {
	source contracts.SampleSource
	buf    []float32
}

// NewOto opens the default audio device for mono float32 playback at the
// source's sample rate.
func NewOto(source contracts.SampleSource) (contracts.AudioOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   source.SampleRate(),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferDuration,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready

	return &Oto{
		ctx:    ctx,
		player: ctx.NewPlayer(&otoReader{source: source}),
	}, nil
}

// Start begins playback.
func (o *Oto) Start() error {
	o.player.Play()
	return nil
}

// Close stops playback and releases the player.
func (o *Oto) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Read renders len(p)/4 samples and encodes them as float32 little-endian.
func (r *otoReader) Read(p []byte) (int, error) {
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	samples := r.buf[:n]
	r.source.Render(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}
