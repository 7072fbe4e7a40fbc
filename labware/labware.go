// Package labware defines the contract this module consumes from the
// labware-geometry layer (plate/well/tiprack dimensional math, deck-layout
// serialization, tip-class liquid-handling parameters). That layer itself is
// out of scope for the core driver (spec.md §1) — this package is only the
// narrow interface the core needs in order to turn a caller's resource
// references into wire coordinates, plus a minimal in-module stand-in so the
// core can be exercised without a real labware package.
package labware

// Anchor selects which point of a resource's bounding box a coordinate is
// relative to.
type Anchor int

const (
	AnchorCenter Anchor = iota
	AnchorTopLeft
	AnchorBottomLeft
)

// Coordinate is a 3D point in millimeters, resource-local or absolute
// depending on context.
type Coordinate struct {
	X, Y, Z float64
}

// Add returns the element-wise sum.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// Resource is the minimal interface the core needs from any addressable
// labware object: a tip spot, a well, a plate, a carrier. See spec.md §6.1.
type Resource interface {
	// AbsoluteLocation returns the resource's absolute position in mm,
	// anchored as requested.
	AbsoluteLocation(anchor Anchor) (Coordinate, error)
	// SizeX, SizeY, SizeZ return the resource's absolute bounding-box size
	// in mm.
	SizeX() float64
	SizeY() float64
	SizeZ() float64
	// RotationZ returns the resource's absolute z-rotation in degrees,
	// always a multiple of 90 for anything the gripper can pick up.
	RotationZ() float64
	// HasLid reports whether the resource (a plate) currently has a lid
	// mounted; adds 3 mm to its effective stacking height when true.
	HasLid() bool
	// MaterialThicknessZ is the material thickness used when computing the
	// usable liquid height inside a container.
	MaterialThicknessZ() float64
}

// VolumeResource is implemented by containers whose liquid height can be
// converted to or from a held volume — only needed when a caller asks for
// auto-surface-following or height-probed aspirations (spec.md §6.1).
type VolumeResource interface {
	Resource
	HeightFromVolume(volumeUL float64) (float64, error)
	VolumeFromHeight(heightMM float64) (float64, error)
}

// Static is a fixed-position Resource, useful for tests and for any
// labware object whose geometry is known ahead of time rather than computed
// from a parent chain.
type Static struct {
	Loc         Coordinate
	SX, SY, SZ  float64
	RotZ        float64
	Lidded      bool
	MaterialZ   float64
}

var _ Resource = Static{}

func (s Static) AbsoluteLocation(anchor Anchor) (Coordinate, error) {
	switch anchor {
	case AnchorCenter:
		return s.Loc.Add(Coordinate{s.SX / 2, s.SY / 2, s.SZ}), nil
	default:
		return s.Loc, nil
	}
}

func (s Static) SizeX() float64             { return s.SX }
func (s Static) SizeY() float64             { return s.SY }
func (s Static) SizeZ() float64             { return s.SZ }
func (s Static) RotationZ() float64         { return s.RotZ }
func (s Static) HasLid() bool               { return s.Lidded }
func (s Static) MaterialThicknessZ() float64 { return s.MaterialZ }

// EffectiveHeight returns the resource's stacking height including the +3mm
// lid allowance spec.md §3 requires when assigning it to a Cytomat rack.
func EffectiveHeight(r Resource) float64 {
	if r.HasLid() {
		return r.SizeZ() + 3
	}
	return r.SizeZ()
}
