// Package pip implements the STAR pipetting channel operations (spec.md
// §4.9, component C9): tip pickup/discard, aspirate/dispense with liquid
// level detection, and the volume correction curve, all going through
// star/safety before anything is encoded and star/state once the reply
// confirms success.
package pip

import (
	"context"
	"fmt"

	"github.com/labcore/labdrive/star/errors"
	"github.com/labcore/labdrive/star/safety"
	"github.com/labcore/labdrive/star/state"
	"github.com/labcore/labdrive/star/telegram"
)

// LLDMode selects which liquid level detection method a channel uses
// during an aspirate (spec.md §4.9).
type LLDMode int

const (
	LLDOff LLDMode = iota
	LLDCapacitive
	LLDPressure
	LLDBoth
)

// DispenseMode is stored as the three independent booleans the caller
// actually reasons about; dispenseModeCode derives the single firmware
// integer from them (SPEC_FULL.md Open Question resolution: never round
// trip through a bare int in the public API).
type DispenseMode struct {
	Jet     bool
	BlowOut bool
	Empty   bool
}

// dispenseModeCode derives the firmware's dispense mode integer from the
// three flags (spec.md §4.9): an empty-tip dispense is always 4
// regardless of the other two flags; otherwise a jet dispense is 1 with
// blow-out or 0 without; otherwise (a regular surface/submerged
// dispense) it is 3 with blow-out or 2 without.
func dispenseModeCode(d DispenseMode) int {
	switch {
	case d.Empty:
		return 4
	case d.Jet:
		if d.BlowOut {
			return 1
		}
		return 0
	default:
		if d.BlowOut {
			return 3
		}
		return 2
	}
}

// CurvePoint is one (nominal, actual) calibration pair of the volume
// correction curve.
type CurvePoint struct {
	NominalUL float64
	ActualUL  float64
}

// CorrectVolume maps a requested nominal volume to the corrected volume
// the firmware should be told to aspirate, by linear interpolation over
// curve (sorted ascending by NominalUL). Volumes outside the curve's
// range are clamped to the nearest end point rather than extrapolated —
// the curve is only calibrated within its measured range.
func CorrectVolume(nominalUL float64, curve []CurvePoint) float64 {
	if len(curve) == 0 {
		return nominalUL
	}
	if nominalUL <= curve[0].NominalUL {
		return curve[0].ActualUL
	}
	last := curve[len(curve)-1]
	if nominalUL >= last.NominalUL {
		return last.ActualUL
	}
	for i := 1; i < len(curve); i++ {
		lo, hi := curve[i-1], curve[i]
		if nominalUL <= hi.NominalUL {
			span := hi.NominalUL - lo.NominalUL
			if span == 0 {
				return lo.ActualUL
			}
			frac := (nominalUL - lo.NominalUL) / span
			return lo.ActualUL + frac*(hi.ActualUL-lo.ActualUL)
		}
	}
	return last.ActualUL
}

// Sender is the minimal round-trip a pip operation needs: encode a
// command, send it, and decode the reply against a descriptor.
// star.Driver implements this over transport+telegram.
type Sender interface {
	SendCommand(ctx context.Context, module, verb string, fields func(*telegram.Encoder)) (*telegram.Response, error)
}

// Channels describes the subset of star/state this package needs,
// narrowed to keep pip decoupled from the concrete Channels type.
type Channels interface {
	Stage(i int, d state.Delta)
	CommitOnly(indices map[int]struct{})
	CommitAllPending()
	RollbackAllPending()
	Committed(i int) state.Channel
}

// PickupTips picks up tips on the given channels at the given (x, y, z)
// deck positions. positions must be the same length as channels.
// totalChannels is the instrument's full physical channel count (e.g. 8
// for an 8-channel head); channels holds a subset of physical channel
// indices in [0, totalChannels), which need not start at 0 or be
// contiguous.
func PickupTips(ctx context.Context, s Sender, ch Channels, limits safety.Limits, totalChannels int, channels []int, x, y, z []float64, tipType string) error {
	if len(channels) != len(x) || len(channels) != len(y) || len(channels) != len(z) {
		return fmt.Errorf("pip: channels/x/y/z length mismatch")
	}
	ySlots := make([]*float64, totalChannels)
	for i, c := range channels {
		if c < 0 || c >= totalChannels {
			return fmt.Errorf("pip: channel %d out of range [0,%d)", c, totalChannels)
		}
		if err := safety.CheckPosition(limits, x[i], y[i], z[i]); err != nil {
			return fmt.Errorf("pip: channel %d: %w", c, err)
		}
		yv := y[i]
		ySlots[c] = &yv
	}
	if err := safety.CheckChannelSpacing(ySlots); err != nil {
		return err
	}

	for _, c := range channels {
		ch.Stage(c, state.Delta{SetTip: true, HasTip: true, TipType: tipType})
	}

	resp, err := s.SendCommand(ctx, "C0", "TP", func(e *telegram.Encoder) {
		e.Ints("xp", 5, toInts(x))
		e.Ints("yp", 4, toInts(y))
		e.Ints("zp", 4, toInts(z))
	})
	return commitOrRollback(ch, resp, err)
}

// DiscardTips discards tips on the given channels.
func DiscardTips(ctx context.Context, s Sender, ch Channels, channels []int) error {
	for _, c := range channels {
		ch.Stage(c, state.Delta{SetTip: true, HasTip: false})
	}
	resp, err := s.SendCommand(ctx, "C0", "TR", func(e *telegram.Encoder) {
		e.Ints("tm", 1, onesMask(channels, 8))
	})
	return commitOrRollback(ch, resp, err)
}

// AspirateParams bundles one aspirate call's per-channel inputs.
type AspirateParams struct {
	Channels  []int
	VolumeUL  []float64
	LLD       LLDMode
	Curve     []CurvePoint
}

// Aspirate aspirates liquid on the given channels, applying the volume
// correction curve before encoding and staging the resulting channel
// volume deltas. A channelized firmware error commits only the channels
// that actually succeeded (spec.md §4.4, §4.6).
func Aspirate(ctx context.Context, s Sender, ch Channels, p AspirateParams) error {
	corrected := make([]float64, len(p.VolumeUL))
	for i, v := range p.VolumeUL {
		corrected[i] = CorrectVolume(v, p.Curve)
	}
	for i, c := range p.Channels {
		ch.Stage(c, state.Delta{AddVolumeUL: corrected[i]})
	}

	resp, err := s.SendCommand(ctx, "C0", "AS", func(e *telegram.Encoder) {
		e.Ints("av", 5, toIntsF(corrected))
		e.Raw("lm", lldCode(p.LLD))
	})
	return commitOrRollback(ch, resp, err)
}

// DispenseParams bundles one dispense call's per-channel inputs.
type DispenseParams struct {
	Channels []int
	VolumeUL []float64
	Mode     DispenseMode
}

// Dispense dispenses liquid on the given channels.
func Dispense(ctx context.Context, s Sender, ch Channels, p DispenseParams) error {
	for i, c := range p.Channels {
		ch.Stage(c, state.Delta{AddVolumeUL: -p.VolumeUL[i]})
	}

	resp, err := s.SendCommand(ctx, "C0", "DS", func(e *telegram.Encoder) {
		e.Ints("dv", 5, toIntsF(p.VolumeUL))
		e.Int("dm", 2, dispenseModeCode(p.Mode))
	})
	return commitOrRollback(ch, resp, err)
}

func lldCode(m LLDMode) string {
	switch m {
	case LLDCapacitive:
		return "1"
	case LLDPressure:
		return "2"
	case LLDBoth:
		return "3"
	default:
		return "0"
	}
}

func toInts(vs []float64) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v)
	}
	return out
}

func toIntsF(vs []float64) []int {
	// Firmware volume fields are tenths of a microliter.
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v * 10)
	}
	return out
}

func onesMask(channels []int, n int) []int {
	out := make([]int, n)
	for _, c := range channels {
		if c >= 0 && c < n {
			out[c] = 1
		}
	}
	return out
}

// commitOrRollback parses any module errors out of the reply, promotes
// them, and applies the channelized partial-commit rule; protocol-level
// errors (no reply, bad id) roll back everything staged.
func commitOrRollback(ch Channels, resp *telegram.Response, sendErr error) error {
	if sendErr != nil {
		ch.RollbackAllPending()
		return sendErr
	}

	entries, _ := errors.ParseModuleErrors(resp.Raw())
	promoted := errors.Promote(entries)
	if promoted == nil {
		ch.CommitAllPending()
		return nil
	}

	if ce, ok := promoted.(*errors.ChannelizedError); ok {
		ok := map[int]struct{}{}
		for i := 0; i < 64; i++ {
			if _, failed := ce.Errors[i]; !failed {
				ok[i] = struct{}{}
			}
		}
		ch.CommitOnly(ok)
		return promoted
	}

	ch.RollbackAllPending()
	return promoted
}
