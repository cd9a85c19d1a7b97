package output

import (
	"sync"
	"time"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// nullTick is how often the null output pumps the source.
const nullTick = 10 * time.Millisecond

// Null is a headless output: it advances the source's clock in real time on a
// ticker and discards the rendered samples. Useful for hosts without an audio
// device and for exercising the engine in CI.
type Null struct {
	source contracts.SampleSource
	done   chan struct{}
	once   sync.Once
}

// NewNull creates a silent output for the source.
func NewNull(source contracts.SampleSource) (contracts.AudioOutput, error) {
	return &Null{
		source: source,
		done:   make(chan struct{}),
	}, nil
}

// Start begins pumping the source on a background goroutine.
func (n *Null) Start() error {
	buf := make([]float32, n.source.SampleRate()/100)
	go func() {
		ticker := time.NewTicker(nullTick)
		defer ticker.Stop()
		for {
			select {
			case <-n.done:
				return
			case <-ticker.C:
				n.source.Render(buf)
			}
		}
	}()
	return nil
}

// Close stops the pump.
func (n *Null) Close() error {
	n.once.Do(func() { close(n.done) })
	return nil
}
