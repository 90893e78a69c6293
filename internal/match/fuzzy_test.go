package match

import (
	"math"
	"testing"
)

func TestScoreIdentity(t *testing.T) {
	names := []string{
		"Paracetamol 500mg Tab",
		"Complete Blood Count (CBC)",
		"ICU Charges",
		"x",
	}
	for _, n := range names {
		if got := Score(n, n); got != 1 {
			t.Errorf("Score(%q, %q) = %v, want 1", n, n, got)
		}
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	if got := Score("paracetamol", "PARACETAMOL"); got != 1 {
		t.Errorf("case-insensitive identity = %v, want 1", got)
	}
}

func TestScoreContainment(t *testing.T) {
	// "cbc" inside "cbc test": 3/8
	got := Score("CBC", "CBC Test")
	want := 3.0 / 8.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("containment score = %v, want %v", got, want)
	}
	// symmetric either direction
	if got2 := Score("CBC Test", "CBC"); math.Abs(got2-want) > 1e-9 {
		t.Errorf("reverse containment score = %v, want %v", got2, want)
	}
}

func TestScoreTokenOverlap(t *testing.T) {
	// query words: paracetamol, 500mg, tab; target words: tablet, paracetamol.
	// paracetamol hits, "tab" is contained in "tablet", 500mg misses: 2/3.
	got := Score("Paracetamol 500mg Tab", "Tablet Paracetamol")
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("token overlap score = %v, want %v", got, want)
	}
}

func TestScoreNoOverlap(t *testing.T) {
	if got := Score("Room Rent General Ward", "Paracetamol"); got != 0 {
		t.Errorf("disjoint names score = %v, want 0", got)
	}
}

func TestScoreEmpty(t *testing.T) {
	if Score("", "anything") != 0 || Score("anything", "") != 0 {
		t.Error("empty input must score 0")
	}
}

func TestScoreRange(t *testing.T) {
	pairs := [][2]string{
		{"Inj. Ceftriaxone 1g", "Ceftriaxone Injection 1gm"},
		{"OXYFLOXIN-100 TAB", "Ofloxacin 100mg Tablet"},
		{"CT Scan Head", "CT Scan (Head)"},
		{"a b c", "((("},
	}
	for _, p := range pairs {
		got := Score(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Score(%q, %q) = %v out of [0,1]", p[0], p[1], got)
		}
	}
}
