// Package safety implements the STAR safety gate (spec.md §4.8, component
// C8): the checks every motion-issuing operation in star/pip, star/head96
// and star/iswap must pass before a command is ever encoded, so that an
// invalid move is rejected client-side instead of relying on the firmware
// to refuse it.
package safety

import (
	"fmt"
	"strings"
)

// Limits describes one instrument's travel envelope, in millimeters, deck
// coordinates with origin at the front-left-bottom of the deck.
type Limits struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// DefaultLimits returns the travel envelope of a standard 8-channel STAR,
// conservative enough to reject anything outside the physical deck.
func DefaultLimits() Limits {
	return Limits{
		XMin: 0, XMax: 900,
		YMin: 0, YMax: 650,
		ZMin: 0, ZMax: 245,
	}
}

// MinChannelSpacingMM is the narrowest center-to-center pitch two adjacent
// channels may be commanded to without risking a physical collision
// (spec.md §4.8).
const MinChannelSpacingMM = 9.0

// OutOfRangeError reports a single axis value outside its configured
// limit.
type OutOfRangeError struct {
	Axis     string
	Value    float64
	Min, Max float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s=%.2f out of range [%.2f,%.2f]", e.Axis, e.Value, e.Min, e.Max)
}

// SafetyError aggregates every axis that failed a single bounds check,
// so a caller sees the full picture in one error instead of only the
// first offending axis (spec.md §4.8/§8: "a single SafetyError listing
// all offending axes").
type SafetyError struct {
	Violations []OutOfRangeError
}

func (e *SafetyError) Error() string {
	var parts []string
	for _, v := range e.Violations {
		parts = append(parts, v.Error())
	}
	return "safety: " + strings.Join(parts, "; ")
}

// CheckPosition validates a single absolute (x, y, z) target against l,
// reporting every out-of-range axis at once.
func CheckPosition(l Limits, x, y, z float64) error {
	var violations []OutOfRangeError
	if x < l.XMin || x > l.XMax {
		violations = append(violations, OutOfRangeError{"x", x, l.XMin, l.XMax})
	}
	if y < l.YMin || y > l.YMax {
		violations = append(violations, OutOfRangeError{"y", y, l.YMin, l.YMax})
	}
	if z < l.ZMin || z > l.ZMax {
		violations = append(violations, OutOfRangeError{"z", z, l.ZMin, l.ZMax})
	}
	if len(violations) == 0 {
		return nil
	}
	return &SafetyError{Violations: violations}
}

// CollisionError reports two channel targets closer together than
// MinChannelSpacingMM permits.
type CollisionError struct {
	ChannelA, ChannelB int
	SpacingMM          float64
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("safety: channels %d and %d are %.2fmm apart, minimum is %.2fmm",
		e.ChannelA, e.ChannelB, e.SpacingMM, MinChannelSpacingMM)
}

// CheckChannelSpacing validates that every pair of channels with a
// non-nil target in yPositions is at least MinChannelSpacingMM apart.
// A nil entry means that channel is not part of this move and is
// skipped. Channels are assumed ordered front-to-back, so only adjacent
// pairs need checking.
func CheckChannelSpacing(yPositions []*float64) error {
	last := -1
	var lastY float64
	for i, y := range yPositions {
		if y == nil {
			continue
		}
		if last >= 0 {
			spacing := *y - lastY
			if spacing < 0 {
				spacing = -spacing
			}
			if spacing < MinChannelSpacingMM {
				return &CollisionError{ChannelA: last, ChannelB: i, SpacingMM: spacing}
			}
		}
		last = i
		lastY = *y
	}
	return nil
}

// ErrISWAPNotParked is returned when an operation that requires the iSWAP
// arm clear of the channel gantry's travel path is attempted while the
// arm is not in its parked position (spec.md §4.8, §4.11).
var ErrISWAPNotParked = fmt.Errorf("safety: iSWAP arm must be parked before this move")

// CheckISWAPParked enforces the iSWAP-parked precondition.
func CheckISWAPParked(parked bool) error {
	if !parked {
		return ErrISWAPNotParked
	}
	return nil
}

// Head96Box is the box the 96-head module's A1 channel is physically
// confined to (spec.md §3/§4.8).
type Head96Box struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// DefaultHead96Box returns the A1 travel box spec.md §3 names:
// x ∈ [−271, 974], y ∈ [108, 560], z ∈ [180.5, 342.5] mm.
func DefaultHead96Box() Head96Box {
	return Head96Box{
		XMin: -271, XMax: 974,
		YMin: 108, YMax: 560,
		ZMin: 180.5, ZMax: 342.5,
	}
}

// CheckHead96Box validates a 96-head A1 target position against its
// travel box, reporting every out-of-range axis at once (spec.md
// §4.10, §8).
func CheckHead96Box(box Head96Box, x, y, z float64) error {
	var violations []OutOfRangeError
	if x < box.XMin || x > box.XMax {
		violations = append(violations, OutOfRangeError{"96-head x", x, box.XMin, box.XMax})
	}
	if y < box.YMin || y > box.YMax {
		violations = append(violations, OutOfRangeError{"96-head y", y, box.YMin, box.YMax})
	}
	if z < box.ZMin || z > box.ZMax {
		violations = append(violations, OutOfRangeError{"96-head z", z, box.ZMin, box.ZMax})
	}
	if len(violations) == 0 {
		return nil
	}
	return &SafetyError{Violations: violations}
}

// ErrBelowTipFloor is returned when a commanded Z depth would drive a tip
// below the configured floor for that channel.
type ErrBelowTipFloor struct {
	Channel     int
	EffectiveZ  float64
	FloorZ      float64
}

func (e *ErrBelowTipFloor) Error() string {
	return fmt.Sprintf("safety: channel %d would reach z=%.2f, below floor %.2f", e.Channel, e.EffectiveZ, e.FloorZ)
}

// CheckTipZFloor validates that a channel's tip, of the given length,
// descending to deckZ does not cross floorZ (spec.md §4.8, §4.9): the
// effective reach is deckZ minus the part of the tip that sticks out of
// the channel, i.e. the tip's length less its 8 mm fitting depth.
func CheckTipZFloor(channel int, deckZ, tipLengthMM, floorZ float64) error {
	const fittingDepthMM = 8.0
	effective := deckZ - (tipLengthMM - fittingDepthMM)
	if effective < floorZ {
		return &ErrBelowTipFloor{Channel: channel, EffectiveZ: effective, FloorZ: floorZ}
	}
	return nil
}

// Reachable reports whether a target (x, y, z) lies within l and, if a
// head96Box is supplied (non-nil), also within that box. This is the
// single go/no-go gate higher layers call before encoding a move.
func Reachable(l Limits, box *Head96Box, x, y, z float64) error {
	if err := CheckPosition(l, x, y, z); err != nil {
		return err
	}
	if box != nil {
		if err := CheckHead96Box(*box, x, y, z); err != nil {
			return err
		}
	}
	return nil
}
