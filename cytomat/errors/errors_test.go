package errors

import "testing"

func TestFromCodeKnown(t *testing.T) {
	err := FromCode("08")
	if _, ok := err.(*HandlerOccupiedError); !ok {
		t.Fatalf("FromCode(08) = %T, want *HandlerOccupiedError", err)
	}
	if err.Code() != "08" {
		t.Fatalf("Code() = %q, want 08", err.Code())
	}
}

func TestFromCodeUnknownPreservesCodeVerbatim(t *testing.T) {
	err := FromCode("47")
	u, ok := err.(*UnknownCytomatError)
	if !ok {
		t.Fatalf("FromCode(47) = %T, want *UnknownCytomatError", err)
	}
	if u.Code() != "47" {
		t.Fatalf("Code() = %q, want 47", u.Code())
	}
}
