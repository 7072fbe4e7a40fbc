// Package autoload implements the STAR autoloader encoder/decoder
// (spec.md §4.12, component C12): track rail addressing (1-54), barcode
// symbology selection, deck-presence bitmask decoding, and LED indicator
// patterns.
package autoload

import (
	"fmt"
	"math/bits"
)

// MinRail and MaxRail bound the autoloader's physical track (spec.md
// §4.12): rail numbers are 1-indexed, matching the silkscreen on the
// instrument deck.
const (
	MinRail = 1
	MaxRail = 54
)

// ValidateRail rejects any rail number outside the physical track.
func ValidateRail(rail int) error {
	if rail < MinRail || rail > MaxRail {
		return fmt.Errorf("autoload: rail %d out of range [%d,%d]", rail, MinRail, MaxRail)
	}
	return nil
}

// BarcodeSymbology is one supported 1D barcode format, bit-selectable so
// a scan can be configured to recognize several at once.
type BarcodeSymbology int

const (
	SymCode128 BarcodeSymbology = 1 << iota
	SymCode39
	SymCodabar
	SymInterleaved2of5
	SymUPCA
)

// SymbologyMask packs a set of symbologies into the firmware's bitmask
// field.
func SymbologyMask(syms ...BarcodeSymbology) int {
	mask := 0
	for _, s := range syms {
		mask |= int(s)
	}
	return mask
}

// DeckPresence is a 54-bit "is there a carrier here" mask, one bit per
// rail, held in a single uint64 and counted with the same
// bits.OnesCount64 idiom as head96.Mask.
type DeckPresence struct {
	bits uint64 // rails 1-54 in bits 0-53
}

// DeckPresenceFromHex wraps the already-parsed value of the firmware's
// presence field (14 hex digits, big-endian, covering 56 bits of which
// only 54 are meaningful) as a DeckPresence; it does no string parsing.
func DeckPresenceFromHex(v uint64) DeckPresence {
	return DeckPresence{bits: v}
}

// Present reports whether a carrier is present at rail (1-54).
func (d DeckPresence) Present(rail int) bool {
	if rail < MinRail || rail > MaxRail {
		return false
	}
	return d.bits&(1<<uint(rail-1)) != 0
}

// Count returns the number of rails reporting a carrier present.
func (d DeckPresence) Count() int {
	return bits.OnesCount64(d.bits & ((1 << MaxRail) - 1))
}

// LEDPattern is a 54-bit per-rail indicator state; 0 off, 1 steady, and
// the firmware treats any other commanded value per-rail as "blink" —
// this module only ever sends 0/1 since blink timing isn't controllable
// over this interface.
type LEDPattern struct {
	bits uint64
}

// SetRail turns rail's indicator on (lit=true) or off.
func (p *LEDPattern) SetRail(rail int, lit bool) error {
	if err := ValidateRail(rail); err != nil {
		return err
	}
	bit := uint64(1) << uint(rail-1)
	if lit {
		p.bits |= bit
	} else {
		p.bits &^= bit
	}
	return nil
}

// HexString renders the pattern as the firmware's hex field (14 hex
// digits covering the 54 meaningful bits).
func (p LEDPattern) HexString() string {
	return fmt.Sprintf("%014X", p.bits)
}
