package synth

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

// homeRowSymbols are the symbolic keys bound to note indices 0..10, in index
// order. Shifted glyph variants resolve to the same index.
var homeRowSymbols = []string{"a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'"}

// shiftedVariants maps the shifted glyph of a physical key to its unshifted
// form. Letters are handled by lowercasing instead.
var shiftedVariants = map[string]string{
	":":  ";",
	"\"": "'",
}

// DefaultNotes returns the built-in note table: the eleven white keys from
// C4 to F5, ordered by ascending pitch.
func DefaultNotes() []contracts.Note {
	return []contracts.Note{
		{Name: "C4", FrequencyHz: 261.63},
		{Name: "D4", FrequencyHz: 293.66},
		{Name: "E4", FrequencyHz: 329.63},
		{Name: "F4", FrequencyHz: 349.23},
		{Name: "G4", FrequencyHz: 392.00},
		{Name: "A4", FrequencyHz: 440.00},
		{Name: "B4", FrequencyHz: 493.88},
		{Name: "C5", FrequencyHz: 523.25},
		{Name: "D5", FrequencyHz: 587.33},
		{Name: "E5", FrequencyHz: 659.25},
		{Name: "F5", FrequencyHz: 698.46},
	}
}

// Registry is the fixed, index-addressed note table plus the symbolic-key
// lookup. It is immutable after construction and safe for concurrent reads.
type Registry struct {
	notes   []contracts.Note
	symbols map[string]int
}

// NewRegistry builds a registry from the given table. Frequencies must be
// positive and strictly increasing by index.
func NewRegistry(notes []contracts.Note) (*Registry, error) {
	if len(notes) == 0 {
		return nil, fmt.Errorf("note table must not be empty")
	}
	prev := 0.0
	for i, n := range notes {
		if n.FrequencyHz <= prev {
			return nil, fmt.Errorf("note table frequencies must be positive and strictly increasing: index %d (%q, %.2f Hz)", i, n.Name, n.FrequencyHz)
		}
		prev = n.FrequencyHz
	}

	symbols := make(map[string]int, len(homeRowSymbols))
	for i, sym := range homeRowSymbols {
		if i >= len(notes) {
			break
		}
		symbols[sym] = i
	}

	table := make([]contracts.Note, len(notes))
	copy(table, notes)
	return &Registry{notes: table, symbols: symbols}, nil
}

// Count returns the number of notes in the table.
func (r *Registry) Count() int {
	return len(r.notes)
}

// IsValidIndex reports whether i addresses a note in the table.
func (r *Registry) IsValidIndex(i int) bool {
	return i >= 0 && i < len(r.notes)
}

// NoteAt returns the note at index i. Absent indices return ok == false,
// never an error.
func (r *Registry) NoteAt(i int) (contracts.Note, bool) {
	if !r.IsValidIndex(i) {
		return contracts.Note{}, false
	}
	return r.notes[i], true
}

// IndexForSymbol resolves a symbolic key to its note index. Lookup is
// case-insensitive and tolerant of shifted glyph variants, so "A" and "a"
// resolve alike, as do ":" and ";".
func (r *Registry) IndexForSymbol(symbol string) (int, bool) {
	sym := strings.ToLower(symbol)
	if base, ok := shiftedVariants[sym]; ok {
		sym = base
	}
	idx, ok := r.symbols[sym]
	return idx, ok
}
