//go:build !darwin
// +build !darwin

package gesturedarwin

import (
	"fmt"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

type dummyGestureSource struct {
	logger contracts.Logger
}

// NewGestureSource initializes a dummy gesture source for non-macOS systems.
func NewGestureSource(logger contracts.Logger, clientName string) (contracts.GestureSource, error) {
	logger.Info("using dummy gesture source for non-macOS system")
	return &dummyGestureSource{logger: logger}, nil
}

// ListDevices logs a warning and reports that gesture capture is unavailable.
func (s *dummyGestureSource) ListDevices() ([]contracts.DeviceInfo, error) {
	s.logger.Warn("ListDevices called on dummy gesture source")
	return nil, fmt.Errorf("MIDI gesture capture is not available on this platform")
}

// SelectDevice logs a warning and reports that gesture capture is unavailable.
func (s *dummyGestureSource) SelectDevice(deviceID int) error {
	s.logger.Warn("SelectDevice called on dummy gesture source")
	return fmt.Errorf("MIDI gesture capture is not available on this platform")
}

// StartCapture logs a warning; no gestures are ever delivered.
func (s *dummyGestureSource) StartCapture(eventChannel chan contracts.Gesture) {
	s.logger.Warn("StartCapture called on dummy gesture source")
}

// Stop logs a warning and succeeds.
func (s *dummyGestureSource) Stop() error {
	s.logger.Warn("Stop called on dummy gesture source")
	return nil
}
