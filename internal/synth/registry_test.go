package synth

import (
	"testing"

	"github.com/leandrodaf/keytone/sdk/contracts"
)

func TestDefaultNotesTable(t *testing.T) {
	notes := DefaultNotes()
	if len(notes) != 11 {
		t.Fatalf("expected 11 notes, got %d", len(notes))
	}
	if notes[0].Name != "C4" || notes[0].FrequencyHz != 261.63 {
		t.Errorf("unexpected first note: %+v", notes[0])
	}
	if notes[10].Name != "F5" || notes[10].FrequencyHz != 698.46 {
		t.Errorf("unexpected last note: %+v", notes[10])
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].FrequencyHz <= notes[i-1].FrequencyHz {
			t.Errorf("frequencies not ascending at index %d: %v <= %v", i, notes[i].FrequencyHz, notes[i-1].FrequencyHz)
		}
	}
}

func TestNewRegistryRejectsBadTables(t *testing.T) {
	cases := []struct {
		name  string
		notes []contracts.Note
	}{
		{"empty", nil},
		{"zero frequency", []contracts.Note{{Name: "X", FrequencyHz: 0}}},
		{"negative frequency", []contracts.Note{{Name: "X", FrequencyHz: -440}}},
		{"not increasing", []contracts.Note{
			{Name: "A4", FrequencyHz: 440},
			{Name: "C4", FrequencyHz: 261.63},
		}},
		{"duplicate frequency", []contracts.Note{
			{Name: "A4", FrequencyHz: 440},
			{Name: "A4b", FrequencyHz: 440},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRegistry(tc.notes); err == nil {
				t.Errorf("expected error for %s table", tc.name)
			}
		})
	}
}

func TestRegistryIndexBounds(t *testing.T) {
	r, err := NewRegistry(DefaultNotes())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if r.Count() != 11 {
		t.Fatalf("expected count 11, got %d", r.Count())
	}
	for _, idx := range []int{-1, 11, 100} {
		if r.IsValidIndex(idx) {
			t.Errorf("index %d should be invalid", idx)
		}
		if _, ok := r.NoteAt(idx); ok {
			t.Errorf("NoteAt(%d) should report ok == false", idx)
		}
	}
	for idx := 0; idx < 11; idx++ {
		if !r.IsValidIndex(idx) {
			t.Errorf("index %d should be valid", idx)
		}
	}
	if note, ok := r.NoteAt(5); !ok || note.Name != "A4" || note.FrequencyHz != 440.00 {
		t.Errorf("NoteAt(5) = %+v, %v; want A4 440 Hz", note, ok)
	}
}

func TestRegistrySymbolLookup(t *testing.T) {
	r, err := NewRegistry(DefaultNotes())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	cases := []struct {
		symbol string
		want   int
	}{
		{"a", 0},
		{"s", 1},
		{"d", 2},
		{"f", 3},
		{"g", 4},
		{"h", 5},
		{"j", 6},
		{"k", 7},
		{"l", 8},
		{";", 9},
		{"'", 10},
		// Case and shifted-glyph tolerance.
		{"A", 0},
		{"H", 5},
		{":", 9},
		{"\"", 10},
	}
	for _, tc := range cases {
		got, ok := r.IndexForSymbol(tc.symbol)
		if !ok || got != tc.want {
			t.Errorf("IndexForSymbol(%q) = %d, %v; want %d, true", tc.symbol, got, ok, tc.want)
		}
	}

	for _, sym := range []string{"q", "z", "1", " ", ""} {
		if _, ok := r.IndexForSymbol(sym); ok {
			t.Errorf("IndexForSymbol(%q) should report ok == false", sym)
		}
	}
}

func TestRegistrySymbolMapShrinksWithTable(t *testing.T) {
	notes := []contracts.Note{
		{Name: "C4", FrequencyHz: 261.63},
		{Name: "D4", FrequencyHz: 293.66},
	}
	r, err := NewRegistry(notes)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if idx, ok := r.IndexForSymbol("s"); !ok || idx != 1 {
		t.Errorf("IndexForSymbol(\"s\") = %d, %v; want 1, true", idx, ok)
	}
	if _, ok := r.IndexForSymbol("d"); ok {
		t.Error("symbol beyond the table should not resolve")
	}
}
