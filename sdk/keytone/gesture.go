package keytone

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/keytone/internal/gesture/gesturedarwin"
	"github.com/leandrodaf/keytone/internal/gesture/gesturewindows"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no MIDI gesture
// source.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// gestureClientName identifies the instrument to the platform MIDI service.
const gestureClientName = "Keytone Instrument"

// gestureInitializers maps OS names to corresponding gesture source initializers.
var gestureInitializers = map[string]func(contracts.Logger, string) (contracts.GestureSource, error){
	"darwin":  gesturedarwin.NewGestureSource,  // macOS (Darwin) CoreMIDI source.
	"windows": gesturewindows.NewGestureSource, // Windows winmm source.
}

// NewGestureSource initializes a MIDI-hardware gesture source for the current
// operating system. It supports macOS (Darwin) and Windows, returning
// ErrUnsupportedOS otherwise.
//
// log contracts.Logger: Logger for the source; pass the instrument's logger.
//
// Returns:
//   - contracts.GestureSource: An instance of the gesture source.
//   - error: An error if the operating system is unsupported or if
//     initialization fails.
func NewGestureSource(log contracts.Logger) (contracts.GestureSource, error) {
	if initializer, exists := gestureInitializers[runtime.GOOS]; exists {
		return initializer(log, gestureClientName)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

// whiteKeyIndex maps the MIDI key numbers of the white keys C4..F5 to their
// registry indices, matching the built-in note table.
var whiteKeyIndex = map[byte]int{
	60: 0,  // C4
	62: 1,  // D4
	64: 2,  // E4
	65: 3,  // F4
	67: 4,  // G4
	69: 5,  // A4
	71: 6,  // B4
	72: 7,  // C5
	74: 8,  // D5
	76: 9,  // E5
	77: 10, // F5
}

// BindGestures starts forwarding key-down gestures from the source to the
// instrument's trigger path, so hardware performance, replayed sequences and
// host-shell input all take the identical route. Keys outside the note table
// are ignored. The returned stop function halts forwarding and the source.
func BindGestures(source contracts.GestureSource, inst contracts.Instrument, log contracts.Logger) (stop func()) {
	events := make(chan contracts.Gesture, 128)
	done := make(chan struct{})
	source.StartCapture(events)

	go func() {
		for {
			select {
			case <-done:
				return
			case g := <-events:
				if g.Kind != contracts.KeyDown {
					continue
				}
				idx, ok := whiteKeyIndex[g.Key]
				if !ok {
					continue
				}
				if _, err := inst.Trigger(idx); err != nil {
					log.Warn("gesture trigger dropped",
						log.Field().Int("noteIndex", idx),
						log.Field().Error("error", err))
				}
			}
		}
	}()

	return func() {
		if err := source.Stop(); err != nil {
			log.Error("failed to stop gesture source",
				log.Field().Error("error", err))
		}
		close(done)
	}
}
