package contracts

// InstrumentOptions defines the configuration options for the instrument engine.
type InstrumentOptions struct {
	Logger            Logger    // Logger for engine events and errors.
	LogLevel          LogLevel  // Level of logging to use.
	SampleRate        int       // Render sample rate in hertz.
	Output            string    // Audio output backend name ("oto", "portaudio", "null").
	Envelope          *Envelope // Initial amplitude envelope.
	MaxPolyphony      int       // Maximum concurrent voices (1..50).
	MasterVolume      *float64  // Initial master gain target in [0, 1].
	NoteDurationSec   float64   // Sustain duration for index-level triggers.
	MaxSequenceLength int       // Recorded sequence capacity (1..500).
	Notes             []Note    // Custom note table; defaults to the built-in 11-key table.
}

// Option is a function that modifies InstrumentOptions.
type Option func(*InstrumentOptions)

// WithLogger sets the logger for the instrument engine.
func WithLogger(l Logger) Option {
	return func(opts *InstrumentOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the instrument engine.
func WithLogLevel(level LogLevel) Option {
	return func(opts *InstrumentOptions) {
		opts.LogLevel = level
	}
}

// WithSampleRate sets the render sample rate in hertz.
func WithSampleRate(rate int) Option {
	return func(opts *InstrumentOptions) {
		opts.SampleRate = rate
	}
}

// WithOutput selects the audio output backend by name.
func WithOutput(name string) Option {
	return func(opts *InstrumentOptions) {
		opts.Output = name
	}
}

// WithEnvelope sets the initial amplitude envelope.
func WithEnvelope(env Envelope) Option {
	return func(opts *InstrumentOptions) {
		opts.Envelope = &env
	}
}

// WithMaxPolyphony sets the maximum number of concurrent voices.
func WithMaxPolyphony(n int) Option {
	return func(opts *InstrumentOptions) {
		opts.MaxPolyphony = n
	}
}

// WithMasterVolume sets the initial master gain target.
func WithMasterVolume(level float64) Option {
	return func(opts *InstrumentOptions) {
		opts.MasterVolume = &level
	}
}

// WithNoteDuration sets the sustain duration, in seconds, used by
// index-level triggers.
func WithNoteDuration(seconds float64) Option {
	return func(opts *InstrumentOptions) {
		opts.NoteDurationSec = seconds
	}
}

// WithMaxSequenceLength sets the recorded sequence capacity.
func WithMaxSequenceLength(n int) Option {
	return func(opts *InstrumentOptions) {
		opts.MaxSequenceLength = n
	}
}

// WithNotes replaces the built-in note table. Frequencies must be positive
// and strictly increasing by index.
func WithNotes(notes []Note) Option {
	return func(opts *InstrumentOptions) {
		opts.Notes = notes
	}
}
