//go:build windows
// +build windows

package gesturewindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/keytone/sdk/contracts"
	"golang.org/x/sys/windows"
)

// HMIDIIN is a winmm MIDI input device handle.
type HMIDIIN windows.Handle

// Constants for callback flags.
const (
	CALLBACK_FUNCTION = 0x00030000 // The callback parameter is a function.
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status.
)

// Constants for MIDI input messages.
const (
	MIM_OPEN      = 0x3C1 // Device opened.
	MIM_CLOSE     = 0x3C2 // Device closed.
	MIM_DATA      = 0x3C3 // Data received.
	MIM_ERROR     = 0x3C5 // Input error.
	MIM_LONGERROR = 0x3C6 // Long message error.
	MIM_MOREDATA  = 0x3CC // More data available.
)

// midiInCaps mirrors the winmm MIDIINCAPSW structure.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Source captures key gestures from MIDI hardware on Windows via winmm.
type Source struct {
	logger       contracts.Logger
	eventChannel atomic.Value
	handle       HMIDIIN
	portConn     bool
	mu           sync.Mutex
	callback     uintptr
}

// Load the winmm.dll library and required functions.
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// NewGestureSource creates a winmm-backed gesture source. The clientName is
// accepted for interface parity; winmm has no client identity.
func NewGestureSource(logger contracts.Logger, clientName string) (contracts.GestureSource, error) {
	logger.Info("gesture source created for Windows")
	return &Source{logger: logger}, nil
}

// ListDevices lists the available MIDI input devices.
func (s *Source) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		s.logger.Warn("no MIDI input devices found")
		return nil, errors.New("no MIDI input devices found")
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			s.logger.Warn(fmt.Sprintf("failed to get information for MIDI device %d", i))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens the MIDI input device with the given ID.
func (s *Source) SelectDevice(deviceID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.portConn {
		if err := s.stopCapture(); err != nil {
			return fmt.Errorf("failed to stop previous capture: %w", err)
		}
	}

	s.callback = windows.NewCallback(midiInCallback)
	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&s.handle)),
		uintptr(deviceID),
		s.callback,
		uintptr(unsafe.Pointer(s)),
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		s.logger.Error(fmt.Sprintf("failed to open MIDI device %d: %v", deviceID, err))
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	s.portConn = true
	s.logger.Info(fmt.Sprintf("MIDI device %d connected", deviceID))
	return nil
}

// StartCapture begins forwarding gestures to the given channel.
func (s *Source) StartCapture(eventChannel chan contracts.Gesture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.portConn {
		s.logger.Error("cannot start capture: no device selected")
		return
	}

	if _, ok := s.eventChannel.Load().(chan contracts.Gesture); ok {
		s.logger.Warn("capture already started")
		return
	}

	s.eventChannel.Store(eventChannel)

	if s.handle == 0 {
		s.logger.Error("invalid MIDI device handle")
		return
	}

	r1, _, err := procMidiInStart.Call(uintptr(s.handle))
	if r1 != 0 {
		s.logger.Error(fmt.Sprintf("failed to start capture: %v", err))
		return
	}

	s.logger.Info("gesture capture started")
}

// midiInCallback normalizes incoming winmm messages into key gestures.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	s := (*Source)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		s.logger.Info("MIDI device opened")
	case MIM_CLOSE:
		s.logger.Info("MIDI device closed")
	case MIM_DATA:
		if dwParam2 == 0 {
			return 0
		}

		status := byte(dwParam1 & 0xFF)
		key := byte((dwParam1 >> 8) & 0xFF)
		velocity := byte((dwParam1 >> 16) & 0xFF)

		kind := contracts.GestureKind(status & 0xF0)
		switch kind {
		case contracts.KeyDown:
			if velocity == 0 {
				kind = contracts.KeyUp
			}
		case contracts.KeyUp:
		default:
			return 0
		}

		gesture := contracts.Gesture{
			Timestamp: uint64(time.Now().UTC().UnixNano()),
			Kind:      kind,
			Key:       key,
			Pressure:  velocity,
		}

		if ch, ok := s.eventChannel.Load().(chan contracts.Gesture); ok && ch != nil {
			select {
			case ch <- gesture:
			default:
				s.logger.Warn("gesture channel is full; event discarded")
			}
		}
	case MIM_ERROR, MIM_LONGERROR:
		s.logger.Error(fmt.Sprintf("MIDI input error: msg=0x%X", wMsg))
	case MIM_MOREDATA:
		s.logger.Debug("received MIM_MOREDATA message; ignored")
	default:
		s.logger.Warn(fmt.Sprintf("unknown MIDI message: 0x%X", wMsg))
	}

	return 0
}

// Stop terminates gesture capture and closes the device.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.portConn {
		s.logger.Warn("no MIDI device is connected")
		return nil
	}

	if err := s.stopCapture(); err != nil {
		return fmt.Errorf("failed to stop capture: %w", err)
	}
	s.logger.Info("gesture capture stopped and device closed")
	return nil
}

// stopCapture stops the capture and releases resources.
func (s *Source) stopCapture() error {
	if s.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	r1, _, err := procMidiInStop.Call(uintptr(s.handle))
	if r1 != 0 {
		s.logger.Error(fmt.Sprintf("failed to stop capture: %v", err))
		return err
	}

	r1, _, err = procMidiInClose.Call(uintptr(s.handle))
	if r1 != 0 {
		s.logger.Error(fmt.Sprintf("failed to close MIDI device: %v", err))
		return err
	}

	s.portConn = false
	s.handle = 0
	s.eventChannel.Store((chan contracts.Gesture)(nil))
	return nil
}
