package synth

import (
	"fmt"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// validateEnvelope checks the bounds of an envelope configuration. Phase
// times must be positive and the sustain level must sit in [0, 1].
func validateEnvelope(env contracts.Envelope) error {
	if env.AttackSec <= 0 {
		return fmt.Errorf("envelope attack must be positive, got %v", env.AttackSec)
	}
	if env.DecaySec <= 0 {
		return fmt.Errorf("envelope decay must be positive, got %v", env.DecaySec)
	}
	if env.ReleaseSec <= 0 {
		return fmt.Errorf("envelope release must be positive, got %v", env.ReleaseSec)
	}
	if env.SustainLevel < 0 || env.SustainLevel > 1 {
		return fmt.Errorf("envelope sustain must be in [0, 1], got %v", env.SustainLevel)
	}
	return nil
}
