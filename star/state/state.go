// Package state tracks per-channel pipetting state (spec.md §4.6,
// component C6): tip presence, aspirated volume, and LLD results, staged
// as pending deltas until a reply confirms the firmware actually performed
// the operation (spec.md §5, two-phase commit).
package state

import "github.com/labcore/labdrive/tracker"

// Channel is the committed state of one pipetting channel.
type Channel struct {
	HasTip      bool
	TipType     string
	VolumeUL    float64
	LastLLDMM   float64
	LLDDetected bool
}

// Delta describes one staged change to a Channel. Only the fields an
// operation actually touches are set; Apply leaves the rest untouched.
type Delta struct {
	SetTip      bool
	HasTip      bool
	TipType     string
	AddVolumeUL float64
	SetVolume   bool
	VolumeUL    float64
	SetLLD      bool
	LastLLDMM   float64
	LLDDetected bool
}

// Apply folds a Delta onto a committed Channel, producing the next
// committed value. It is pure so a Tracker[Channel, Delta] can use it
// directly for both pending preview and commit.
func Apply(c Channel, d Delta) Channel {
	if d.SetTip {
		c.HasTip = d.HasTip
		c.TipType = d.TipType
		if !d.HasTip {
			c.TipType = ""
			c.VolumeUL = 0
		}
	}
	if d.AddVolumeUL != 0 {
		c.VolumeUL += d.AddVolumeUL
	}
	if d.SetVolume {
		c.VolumeUL = d.VolumeUL
	}
	if d.SetLLD {
		c.LastLLDMM = d.LastLLDMM
		c.LLDDetected = d.LLDDetected
	}
	return c
}

// Channels tracks every physical channel on the instrument.
type Channels struct {
	tracks []*tracker.Tracker[Channel, Delta]
}

// NewChannels builds a Channels tracker for n channels, all starting
// empty (no tip, zero volume).
func NewChannels(n int) *Channels {
	cs := &Channels{tracks: make([]*tracker.Tracker[Channel, Delta], n)}
	for i := range cs.tracks {
		cs.tracks[i] = tracker.New(Channel{}, Apply)
	}
	return cs
}

// Len returns the number of channels tracked.
func (cs *Channels) Len() int { return len(cs.tracks) }

// Stage queues a delta for channel i without committing it.
func (cs *Channels) Stage(i int, d Delta) { cs.tracks[i].Stage(d) }

// Commit applies channel i's pending delta permanently.
func (cs *Channels) Commit(i int) { cs.tracks[i].Commit() }

// Rollback discards channel i's pending delta, leaving it unchanged.
func (cs *Channels) Rollback(i int) { cs.tracks[i].Rollback() }

// Committed returns channel i's last committed state.
func (cs *Channels) Committed(i int) Channel { return cs.tracks[i].Committed() }

// CommitOnly commits exactly the channels in indices and rolls back every
// other channel with a pending delta — the channelized-error partial
// commit spec.md §4.4/§4.6 requires: channels the firmware reports as
// failed must not have their staged delta applied.
func (cs *Channels) CommitOnly(indices map[int]struct{}) {
	for i, tr := range cs.tracks {
		if _, ok := tr.Pending(); !ok {
			continue
		}
		if _, keep := indices[i]; keep {
			tr.Commit()
		} else {
			tr.Rollback()
		}
	}
}

// CommitAllPending commits every channel with an outstanding staged delta.
func (cs *Channels) CommitAllPending() {
	for _, tr := range cs.tracks {
		if _, ok := tr.Pending(); ok {
			tr.Commit()
		}
	}
}

// RollbackAllPending discards every channel's outstanding staged delta.
func (cs *Channels) RollbackAllPending() {
	for _, tr := range cs.tracks {
		tr.Rollback()
	}
}
