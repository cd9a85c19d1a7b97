//go:build darwin
// +build darwin

package gesturedarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/keytone/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for gesture capture on macOS.
var (
	ErrNoDevices       = errors.New("no MIDI input devices found")
	ErrInvalidDevice   = errors.New("invalid MIDI input device")
	ErrConnectionError = errors.New("error connecting to MIDI input device")
	ErrCreateInputPort = errors.New("error creating input port")
)

// internalPortConnection is an interface for disconnecting from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Source captures key gestures from MIDI hardware on Darwin (macOS) via
// CoreMIDI. Raw packets are normalized to KeyDown/KeyUp gestures; a note-on
// with zero velocity counts as a release, and all non-key messages are
// dropped at the source.
type Source struct {
	logger       contracts.Logger
	eventChannel atomic.Value // Atomic storage for the gesture channel.
	client       coremidi.Client
	inputPort    coremidi.InputPort
	portConn     internalPortConnection
	mu           sync.Mutex
	capturing    bool
	wg           sync.WaitGroup
	stopOnce     sync.Once
}

// NewGestureSource initializes a CoreMIDI-backed gesture source.
func NewGestureSource(logger contracts.Logger, clientName string) (contracts.GestureSource, error) {
	client, err := coremidi.NewClient(clientName)
	if err != nil {
		return nil, err
	}
	logger.Info("gesture source created",
		logger.Field().String("clientName", clientName))

	return &Source{
		logger: logger,
		client: client,
	}, nil
}

// ListDevices retrieves the available MIDI input devices.
func (s *Source) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		s.logger.Warn(ErrNoDevices.Error())
		return nil, ErrNoDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects to the MIDI input device with the given ID,
// disconnecting from any previously selected device first.
func (s *Source) SelectDevice(deviceID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		s.logger.Error(ErrInvalidDevice.Error())
		return ErrInvalidDevice
	}

	if s.portConn != nil {
		s.portConn.Disconnect()
		s.portConn = nil
	}

	source := sources[deviceID]
	s.logger.Info("gesture device selected",
		s.logger.Field().Int("deviceID", deviceID),
		s.logger.Field().String("deviceName", source.Name()))

	s.inputPort, err = coremidi.NewInputPort(s.client, "Input Port", s.handlePacket)
	if err != nil {
		s.logger.Error(ErrCreateInputPort.Error())
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	s.portConn, err = s.inputPort.Connect(source)
	if err != nil {
		s.logger.Error(ErrConnectionError.Error())
		return fmt.Errorf("%w: %v", ErrConnectionError, err)
	}

	s.logger.Info("gesture device connected")
	return nil
}

// handlePacket normalizes one incoming MIDI packet into a key gesture and
// forwards it to the capture channel without blocking.
func (s *Source) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	s.wg.Add(1)
	defer s.wg.Done()

	eventChannel, _ := s.eventChannel.Load().(chan contracts.Gesture)
	if eventChannel == nil {
		s.logger.Warn("gesture channel not initialized")
		return
	}

	if len(packet.Data) < 3 {
		s.logger.Warn("incomplete MIDI packet dropped")
		return
	}

	gesture, ok := normalize(packet.Data[0], packet.Data[1], packet.Data[2])
	if !ok {
		return
	}

	select {
	case eventChannel <- gesture:
	default:
		s.logger.Warn("gesture buffer full; dropping event")
	}
}

// normalize converts a raw status/key/velocity triple into a gesture. Only
// key messages pass; a note-on with zero velocity becomes a release.
func normalize(status, key, velocity byte) (contracts.Gesture, bool) {
	kind := contracts.GestureKind(status & 0xF0)
	switch kind {
	case contracts.KeyDown:
		if velocity == 0 {
			kind = contracts.KeyUp
		}
	case contracts.KeyUp:
	default:
		return contracts.Gesture{}, false
	}
	return contracts.Gesture{
		Timestamp: uint64(time.Now().UTC().UnixNano()),
		Kind:      kind,
		Key:       key,
		Pressure:  velocity,
	}, true
}

// StartCapture begins forwarding gestures to the given channel. Any ongoing
// capture is stopped first.
func (s *Source) StartCapture(eventChannel chan contracts.Gesture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eventChannel == nil {
		s.logger.Error("StartCapture called with nil channel")
		return
	}

	if s.capturing {
		s.logger.Warn("capture already started; replacing gesture channel")
	}

	s.logger.Info("gesture capture started")
	s.eventChannel.Store(eventChannel)
	s.capturing = true
}

// Stop halts capture, disconnects the device, and waits for in-flight packet
// handling to finish. Safe to call more than once.
func (s *Source) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping gesture capture")
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.capturing {
			s.capturing = false

			if s.portConn != nil {
				s.portConn.Disconnect()
				s.portConn = nil
			}

			// Swap in a dummy channel so late packets never hit a closed one.
			s.eventChannel.Store(make(chan contracts.Gesture))

			s.logger.Info("gesture capture stopped")
			s.wg.Wait()
		}
	})
	return nil
}
