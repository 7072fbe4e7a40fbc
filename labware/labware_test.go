package labware

import "testing"

func TestEffectiveHeightAddsLidAllowance(t *testing.T) {
	lidded := Static{SZ: 14, Lidded: true}
	if got := EffectiveHeight(lidded); got != 17 {
		t.Fatalf("EffectiveHeight(lidded) = %v, want 17", got)
	}

	bare := Static{SZ: 14}
	if got := EffectiveHeight(bare); got != 14 {
		t.Fatalf("EffectiveHeight(bare) = %v, want 14", got)
	}
}

func TestStaticAbsoluteLocationCenter(t *testing.T) {
	s := Static{Loc: Coordinate{X: 10, Y: 20, Z: 5}, SX: 100, SY: 80, SZ: 14}
	got, err := s.AbsoluteLocation(AnchorCenter)
	if err != nil {
		t.Fatalf("AbsoluteLocation: %v", err)
	}
	want := Coordinate{X: 60, Y: 60, Z: 19}
	if got != want {
		t.Fatalf("AbsoluteLocation(center) = %+v, want %+v", got, want)
	}
}
