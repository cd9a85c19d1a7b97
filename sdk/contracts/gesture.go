package contracts

// GestureKind represents the kinds of hardware key gestures a source reports.
type GestureKind byte

const (
	// KeyDown is a key press gesture (MIDI Note On, 0x90).
	KeyDown GestureKind = 0x90
	// KeyUp is a key release gesture (MIDI Note Off, 0x80).
	KeyUp GestureKind = 0x80
)

// Gesture is one hardware key event captured from a MIDI device.
type Gesture struct {
	Timestamp uint64      // Capture time in nanoseconds since the Unix epoch.
	Kind      GestureKind // Press or release.
	Key       byte        // MIDI key number (0-127).
	Pressure  byte        // Key velocity (0-127); 0 on release.
}

// DeviceInfo contains information about a gesture input device.
type DeviceInfo struct {
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
	EntityName   string // Name of the entity to which the device belongs.
}

// GestureSource defines an interface for hardware gesture capture.
type GestureSource interface {
	Stop() error                           // Stops capture and releases resources.
	ListDevices() ([]DeviceInfo, error)    // Lists all available input devices.
	SelectDevice(deviceID int) error       // Selects an input device by its ID.
	StartCapture(eventChannel chan Gesture) // Starts capture, sending gestures to the channel.
}
