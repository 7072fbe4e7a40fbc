package iswap

import "github.com/labcore/labdrive/star/safety"

// MoveViaHotelUnsafe is the entry point for a plate move routed through a
// hotel slot instead of straight to the destination. It checks the hotel
// and destination coordinates against limits and returns the first
// failure; it encodes and sends no command. The firmware does not
// validate this path for the caller — it trusts the deck layout it was
// given — so this entry point is named and kept separate from the normal
// move operations (spec.md §9 design notes: isolate the one trajectory
// the driver cannot itself prove safe).
//
// Callers are responsible for having verified hotelX/hotelY/hotelZ is
// actually clear; safety.CheckPosition only confirms the coordinates
// themselves are within the instrument's travel limits, not that the slot
// is empty.
func MoveViaHotelUnsafe(limits safety.Limits, hotelX, hotelY, hotelZ, destX, destY, destZ float64) error {
	if err := safety.CheckPosition(limits, hotelX, hotelY, hotelZ); err != nil {
		return err
	}
	return safety.CheckPosition(limits, destX, destY, destZ)
}
