package keytone

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leandrodaf/keytone/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// Config is the YAML instrument configuration a host shell may ship next to
// its binary. Zero-valued fields fall back to the same defaults as the
// corresponding options.
type Config struct {
	SampleRate        int      `yaml:"sample_rate,omitempty"`
	Output            string   `yaml:"output,omitempty"`
	MasterVolume      *float64 `yaml:"master_volume,omitempty"`
	MaxPolyphony      int      `yaml:"max_polyphony,omitempty"`
	NoteDurationSec   float64  `yaml:"note_duration_sec,omitempty"`
	MaxSequenceLength int      `yaml:"max_sequence_length,omitempty"`

	Envelope *EnvelopeConfig `yaml:"envelope,omitempty"`
	Notes    []NoteConfig    `yaml:"notes,omitempty"`
}

// EnvelopeConfig is the YAML form of an amplitude envelope.
type EnvelopeConfig struct {
	AttackSec    float64 `yaml:"attack_sec"`
	DecaySec     float64 `yaml:"decay_sec"`
	SustainLevel float64 `yaml:"sustain_level"`
	ReleaseSec   float64 `yaml:"release_sec"`
}

// NoteConfig is the YAML form of one note table entry.
type NoteConfig struct {
	Name        string  `yaml:"name"`
	FrequencyHz float64 `yaml:"frequency_hz"`
}

// LoadConfig reads and parses an instrument configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data. Unknown fields are rejected so
// typos surface instead of silently falling back to defaults.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SampleRate < 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Output != "" {
		if _, ok := outputInitializers[c.Output]; !ok {
			return fmt.Errorf("%w: %s", contracts.ErrUnknownOutput, c.Output)
		}
	}
	if c.MasterVolume != nil && (*c.MasterVolume < 0 || *c.MasterVolume > 1) {
		return fmt.Errorf("master_volume must be in [0, 1], got %v", *c.MasterVolume)
	}
	if c.NoteDurationSec < 0 {
		return fmt.Errorf("note_duration_sec must be positive, got %v", c.NoteDurationSec)
	}
	return nil
}

// Options converts the config into the option list New consumes. Polyphony,
// sequence and note-table bounds are validated by the constructor itself.
func (c Config) Options() []contracts.Option {
	var opts []contracts.Option
	if c.SampleRate != 0 {
		opts = append(opts, contracts.WithSampleRate(c.SampleRate))
	}
	if c.Output != "" {
		opts = append(opts, contracts.WithOutput(c.Output))
	}
	if c.MasterVolume != nil {
		opts = append(opts, contracts.WithMasterVolume(*c.MasterVolume))
	}
	if c.MaxPolyphony != 0 {
		opts = append(opts, contracts.WithMaxPolyphony(c.MaxPolyphony))
	}
	if c.NoteDurationSec != 0 {
		opts = append(opts, contracts.WithNoteDuration(c.NoteDurationSec))
	}
	if c.MaxSequenceLength != 0 {
		opts = append(opts, contracts.WithMaxSequenceLength(c.MaxSequenceLength))
	}
	if c.Envelope != nil {
		opts = append(opts, contracts.WithEnvelope(contracts.Envelope{
			AttackSec:    c.Envelope.AttackSec,
			DecaySec:     c.Envelope.DecaySec,
			SustainLevel: c.Envelope.SustainLevel,
			ReleaseSec:   c.Envelope.ReleaseSec,
		}))
	}
	if len(c.Notes) > 0 {
		notes := make([]contracts.Note, len(c.Notes))
		for i, n := range c.Notes {
			notes[i] = contracts.Note{Name: n.Name, FrequencyHz: n.FrequencyHz}
		}
		opts = append(opts, contracts.WithNotes(notes))
	}
	return opts
}
