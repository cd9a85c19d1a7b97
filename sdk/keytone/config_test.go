package keytone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leandrodaf/keytone/internal/logger"
	"github.com/leandrodaf/keytone/sdk/contracts"
)

const sampleConfig = `
sample_rate: 48000
output: "null"
master_volume: 0.5
max_polyphony: 8
note_duration_sec: 1.5
max_sequence_length: 50
envelope:
  attack_sec: 0.01
  decay_sec: 0.2
  sustain_level: 0.4
  release_sec: 0.8
notes:
  - name: "A3"
    frequency_hz: 220
  - name: "A4"
    frequency_hz: 440
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.SampleRate)
	}
	if cfg.Output != "null" {
		t.Errorf("Output = %q, want null", cfg.Output)
	}
	if cfg.MasterVolume == nil || *cfg.MasterVolume != 0.5 {
		t.Errorf("MasterVolume = %v, want 0.5", cfg.MasterVolume)
	}
	if cfg.Envelope == nil || cfg.Envelope.SustainLevel != 0.4 {
		t.Errorf("Envelope = %+v, want sustain 0.4", cfg.Envelope)
	}
	if len(cfg.Notes) != 2 || cfg.Notes[1].FrequencyHz != 440 {
		t.Errorf("Notes = %+v, want A3/A4", cfg.Notes)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("ParseConfig(nil): %v", err)
	}
	if len(cfg.Options()) != 0 {
		t.Errorf("empty config produced %d options, want 0", len(cfg.Options()))
	}
}

func TestParseConfigRejections(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not yaml", `{{{`},
		{"unknown field", `sampel_rate: 48000`},
		{"unknown output", `output: "jack"`},
		{"volume above one", `master_volume: 1.5`},
		{"negative volume", `master_volume: -0.1`},
		{"negative sample rate", `sample_rate: -1`},
		{"negative note duration", `note_duration_sec: -2`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tc.data)); err == nil {
				t.Errorf("ParseConfig(%q) should be rejected", tc.data)
			}
		})
	}
}

func TestConfigOptionsFeedConstructor(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	opts := append(cfg.Options(), contracts.WithLogger(logger.NewNopLogger()))
	inst, err := New(opts...)
	if err != nil {
		t.Fatalf("New from config: %v", err)
	}
	defer inst.Close()

	if got := inst.Volume(); got != 0.5 {
		t.Errorf("Volume() = %v, want 0.5", got)
	}
	if got := inst.MaxPolyphony(); got != 8 {
		t.Errorf("MaxPolyphony() = %d, want 8", got)
	}
	if got := inst.NoteCount(); got != 2 {
		t.Errorf("NoteCount() = %d, want 2", got)
	}
	if got := inst.Envelope().DecaySec; got != 0.2 {
		t.Errorf("Envelope().DecaySec = %v, want 0.2", got)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keytone.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxSequenceLength != 50 {
		t.Errorf("MaxSequenceLength = %d, want 50", cfg.MaxSequenceLength)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing config file should be an error")
	}
}
