package sequence

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// rawEvent mirrors the wire format with raw fields so that presence, numeric
// type and integer-ness can all be validated before anything is applied.
type rawEvent struct {
	NoteIndex *json.RawMessage `json:"noteIndex"`
	DelayMs   *json.RawMessage `json:"delayMs"`
}

// Export serializes the recorded sequence as a JSON array of
// {noteIndex, delayMs} records in chronological order.
func (r *Recorder) Export() ([]byte, error) {
	r.mu.Lock()
	events := make([]contracts.SequenceEvent, len(r.events))
	copy(events, r.events)
	r.mu.Unlock()
	return json.Marshal(events)
}

// Import replaces the recorded sequence from JSON produced by Export. Valid
// only from Idle. Validation is all-or-nothing: every record must carry both
// fields as integer JSON numbers, the note index must address the registry,
// and the delay must be non-negative — a single bad record rejects the whole
// payload and the prior sequence is kept.
//
// Live recording can never produce a negative delay, so negative imported
// delays are rejected rather than treated as "fire immediately"; zero is
// accepted.
func (r *Recorder) Import(data []byte) error {
	var raw []rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrInvalidSequence, err)
	}

	events := make([]contracts.SequenceEvent, 0, len(raw))
	for i, re := range raw {
		ev, err := r.validateRecord(i, re)
		if err != nil {
			return err
		}
		events = append(events, ev)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != contracts.RecorderIdle {
		r.logger.Warn("import ignored",
			r.logger.Field().String("state", r.state.String()))
		return fmt.Errorf("%w: cannot import while %s", contracts.ErrInvalidState, r.state)
	}
	if len(events) > r.maxLen {
		return fmt.Errorf("%w: %d events exceed the sequence capacity of %d", contracts.ErrInvalidSequence, len(events), r.maxLen)
	}
	r.events = events
	r.logger.Info("sequence imported",
		r.logger.Field().Int("events", len(events)))
	return nil
}

func (r *Recorder) validateRecord(i int, re rawEvent) (contracts.SequenceEvent, error) {
	idx, err := intField(re.NoteIndex)
	if err != nil {
		return contracts.SequenceEvent{}, fmt.Errorf("%w: record %d noteIndex %v", contracts.ErrInvalidSequence, i, err)
	}
	delay, err := intField(re.DelayMs)
	if err != nil {
		return contracts.SequenceEvent{}, fmt.Errorf("%w: record %d delayMs %v", contracts.ErrInvalidSequence, i, err)
	}
	if delay < 0 {
		return contracts.SequenceEvent{}, fmt.Errorf("%w: record %d has negative delay %d", contracts.ErrInvalidSequence, i, delay)
	}
	if idx < 0 || (r.isValid != nil && !r.isValid(idx)) {
		return contracts.SequenceEvent{}, fmt.Errorf("%w: record %d has invalid note index %d", contracts.ErrInvalidSequence, i, idx)
	}
	return contracts.SequenceEvent{NoteIndex: idx, DelayMs: delay}, nil
}

// intField decodes a required integer JSON number. Missing fields, non-number
// values (strings, booleans, nulls) and fractional numbers are all rejected.
func intField(raw *json.RawMessage) (int, error) {
	if raw == nil {
		return 0, fmt.Errorf("is missing")
	}
	if string(*raw) == "null" {
		// Unmarshal treats JSON null as a no-op, so guard it explicitly.
		return 0, fmt.Errorf("is not a number")
	}
	var f float64
	if err := json.Unmarshal(*raw, &f); err != nil {
		return 0, fmt.Errorf("is not a number")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("is not an integer")
	}
	return int(f), nil
}
