// Package iswap implements the STAR iSWAP / CoRe gripper encoder
// (spec.md §4.11, component C11): grip width, rotation arithmetic,
// approach Z, and the single-pickup-slot invariant (the arm can only
// ever be holding one plate at a time).
package iswap

import (
	"fmt"
	"math"

	"github.com/labcore/labdrive/star/safety"
)

// GripState tracks whether the arm currently holds a plate — the
// single-pickup-slot invariant lives here rather than in star/state
// because it gates which operations are even valid to attempt, not just
// what they leave behind.
type GripState struct {
	holding bool
	plateID string
}

// Holding reports whether the arm currently holds a plate.
func (g GripState) Holding() bool { return g.holding }

// ErrAlreadyHolding is returned by Grip when the arm already holds a
// plate; ErrNotHolding is returned by Release when it does not.
var (
	ErrAlreadyHolding = fmt.Errorf("iswap: arm already holds a plate")
	ErrNotHolding     = fmt.Errorf("iswap: arm holds no plate")
)

// Grip records that the arm has picked up plateID, enforcing the
// single-pickup-slot invariant.
func (g *GripState) Grip(plateID string) error {
	if g.holding {
		return ErrAlreadyHolding
	}
	g.holding = true
	g.plateID = plateID
	return nil
}

// Release records that the arm has put down its plate.
func (g *GripState) Release() (string, error) {
	if !g.holding {
		return "", ErrNotHolding
	}
	id := g.plateID
	g.holding = false
	g.plateID = ""
	return id, nil
}

// GripDirection is the side of the plate the gripper jaws close on for a
// pick-up or drop (spec.md §4.11). Coded 1..4 in the order the spec's own
// enum lists them, since the wire grip-direction code for a drop is one
// of these values directly (spec.md §8 scenario 3: gripping BACK encodes
// as 3).
type GripDirection int

const (
	GripFront GripDirection = iota + 1
	GripRight
	GripBack
	GripLeft
)

// gripOvershootMM is the gripper's fixed jaw closing overshoot so the
// jaws actually clamp rather than just touch.
const gripOvershootMM = 1.5

// GripWidthMM computes the commanded grip width for a plate of the given
// footprint, gripping from direction (spec.md §4.11 step 1): FRONT/BACK
// grips close across the plate's x_size, RIGHT/LEFT grips across its
// y_size. The gripper's fixed closing overshoot is then applied.
func GripWidthMM(direction GripDirection, xSizeMM, ySizeMM float64) float64 {
	width := ySizeMM
	if direction == GripFront || direction == GripBack {
		width = xSizeMM
	}
	return width - gripOvershootMM
}

// rotationTable maps a (pickup, drop) grip-direction pair to the
// rotation, in degrees, a move between them applies to the plate
// (spec.md §4.11 step 2, the direction-pair table referenced in §8's
// end-to-end scenarios).
var rotationTable = map[[2]GripDirection]float64{
	{GripFront, GripRight}: 90, {GripRight, GripBack}: 90, {GripBack, GripLeft}: 90, {GripLeft, GripFront}: 90,
	{GripFront, GripBack}: 180, {GripBack, GripFront}: 180, {GripLeft, GripRight}: 180, {GripRight, GripLeft}: 180,
	{GripRight, GripFront}: 270, {GripBack, GripRight}: 270, {GripLeft, GripBack}: 270, {GripFront, GripLeft}: 270,
}

// RotationApplied returns the 0/90/180/270 degree rotation a move from
// pickup direction to drop direction applies to the plate.
func RotationApplied(pickup, drop GripDirection) float64 {
	if pickup == drop {
		return 0
	}
	return rotationTable[[2]GripDirection{pickup, drop}]
}

// NormalizeRotationDeg reduces a rotation to [0, 360).
func NormalizeRotationDeg(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// RotationDelta computes the shortest signed rotation, in degrees, from
// one heading to another (-180, 180].
func RotationDelta(fromDeg, toDeg float64) float64 {
	delta := NormalizeRotationDeg(toDeg) - NormalizeRotationDeg(fromDeg)
	if delta > 180 {
		delta -= 360
	} else if delta <= -180 {
		delta += 360
	}
	return delta
}

// NewPlateRotationDeg computes the plate's rotation relative to its new
// parent after a move (spec.md §4.11 step 3). The rotation the move
// applies is added to the plate's current local rotation to get its new
// absolute rotation; the destination's own absolute rotation is
// subtracted to get the rotation relative to the destination; the
// plate's current local rotation is subtracted once more because that
// rotation travels with the plate and so does not contribute to the
// *new* local figure.
func NewPlateRotationDeg(currentLocalRotationDeg float64, pickup, drop GripDirection, destinationAbsoluteRotationDeg float64) float64 {
	applied := RotationApplied(pickup, drop)
	afterMove := currentLocalRotationDeg + applied
	wrtDestination := afterMove - destinationAbsoluteRotationDeg
	local := wrtDestination - currentLocalRotationDeg
	return NormalizeRotationDeg(local)
}

// ApproachZMM computes the Z height the arm must reach to close (or
// open) the gripper on a resource at a destination (spec.md §4.11 step
// 4): the destination's top surface, plus the plate's own height, minus
// how far down from the plate's top the gripper engages it.
func ApproachZMM(destinationTopZMM, plateZMM, pickupDistanceFromTopMM float64) float64 {
	return destinationTopZMM + plateZMM - pickupDistanceFromTopMM
}

// CheckApproach validates an approach position against the safety gate
// before a move is encoded (spec.md §4.8, §4.11).
func CheckApproach(limits safety.Limits, x, y, destinationTopZMM, plateZMM, pickupDistanceFromTopMM float64) error {
	return safety.CheckPosition(limits, x, y, ApproachZMM(destinationTopZMM, plateZMM, pickupDistanceFromTopMM))
}
