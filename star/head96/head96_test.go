package head96

import "testing"

func TestMaskFromChannels(t *testing.T) {
	m, err := MaskFromChannels([]int{0, 63, 64, 95})
	if err != nil {
		t.Fatalf("MaskFromChannels: %v", err)
	}
	if !m.IsSet(0) || !m.IsSet(63) || !m.IsSet(64) || !m.IsSet(95) {
		t.Fatalf("mask = %+v, missing expected bits", m)
	}
	if m.Count() != 4 {
		t.Fatalf("count = %d, want 4", m.Count())
	}
}

func TestMaskFromChannelsOutOfRange(t *testing.T) {
	if _, err := MaskFromChannels([]int{96}); err == nil {
		t.Fatal("expected error for channel 96")
	}
}

func TestToTenthsRoundTrip(t *testing.T) {
	if got := ToTenths(12.3); got != 123 {
		t.Fatalf("ToTenths(12.3) = %d, want 123", got)
	}
	if got := FromTenths(123); got != 12.3 {
		t.Fatalf("FromTenths(123) = %v, want 12.3", got)
	}
}

func TestYEnvelopeLegacyVsCurrent(t *testing.T) {
	legacy := YEnvelopeFor(FirmwareVersion{Major: 1, Minor: 9})
	if legacy.MaxMMPerSec != 250 {
		t.Fatalf("legacy max = %v, want 250", legacy.MaxMMPerSec)
	}
	current := YEnvelopeFor(FirmwareVersion{Major: 2, Minor: 0})
	if current.MaxMMPerSec != 500 {
		t.Fatalf("current max = %v, want 500", current.MaxMMPerSec)
	}
}

func TestClampYSpeed(t *testing.T) {
	v := FirmwareVersion{Major: 1}
	if got := ClampYSpeed(v, 1000); got != 250 {
		t.Fatalf("ClampYSpeed over max = %v, want 250", got)
	}
	if got := ClampYSpeed(v, 1); got != 5 {
		t.Fatalf("ClampYSpeed under min = %v, want 5", got)
	}
}
