package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("rec")

	first := gen.Next()
	second := gen.Next()

	if first != "rec-1" || second != "rec-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	if got := NewIDGenerator("").Next(); got != "id-1" {
		t.Fatalf("default prefix identifier: %q", got)
	}
}

func TestIDGeneratorReset(t *testing.T) {
	gen := NewIDGenerator("note")
	_ = gen.Next()
	_ = gen.Next()
	gen.Reset()

	if next := gen.Next(); next != "note-1" {
		t.Fatalf("expected note-1 after reset, got %q", next)
	}
}
