package pip

import (
	"context"
	"testing"

	"github.com/labcore/labdrive/star/safety"
	"github.com/labcore/labdrive/star/state"
	"github.com/labcore/labdrive/star/telegram"
)

type fakeSender struct {
	replies []string
	sent    []string
	next    int
}

func (f *fakeSender) SendCommand(ctx context.Context, module, verb string, fields func(*telegram.Encoder)) (*telegram.Response, error) {
	ids := &telegram.IDGen{}
	e := telegram.NewCommand(module, verb)
	fields(e)
	b, _ := e.Encode(ids)
	f.sent = append(f.sent, string(b))

	resp := f.replies[f.next]
	f.next++
	return telegram.Decode("id####", resp)
}

func TestCorrectVolumeInterpolates(t *testing.T) {
	curve := []CurvePoint{{0, 0}, {100, 105}, {1000, 1040}}
	got := CorrectVolume(50, curve)
	want := 52.5
	if got != want {
		t.Fatalf("CorrectVolume(50) = %v, want %v", got, want)
	}
}

func TestCorrectVolumeClampsOutsideRange(t *testing.T) {
	curve := []CurvePoint{{10, 12}, {100, 105}}
	if got := CorrectVolume(1, curve); got != 12 {
		t.Fatalf("below range = %v, want 12", got)
	}
	if got := CorrectVolume(500, curve); got != 105 {
		t.Fatalf("above range = %v, want 105", got)
	}
}

func TestDispenseModeCode(t *testing.T) {
	cases := []struct {
		mode DispenseMode
		want int
	}{
		{DispenseMode{}, 2},
		{DispenseMode{Jet: true}, 0},
		{DispenseMode{BlowOut: true}, 3},
		{DispenseMode{Jet: true, BlowOut: true}, 1},
		{DispenseMode{Empty: true}, 4},
		{DispenseMode{Jet: true, BlowOut: true, Empty: true}, 4},
	}
	for _, c := range cases {
		if got := dispenseModeCode(c.mode); got != c.want {
			t.Errorf("dispenseModeCode(%+v) = %d, want %d", c.mode, got, c.want)
		}
	}
}

func TestAspirateChannelizedPartialCommit(t *testing.T) {
	ch := state.NewChannels(3)
	s := &fakeSender{replies: []string{"C0ASid0000er00/00 P101/71 P300/00"}}

	err := Aspirate(context.Background(), s, ch, AspirateParams{
		Channels: []int{0, 1, 2},
		VolumeUL: []float64{10, 10, 10},
	})
	if err == nil {
		t.Fatal("expected channelized error")
	}
	if ch.Committed(0).VolumeUL != 0 {
		t.Fatalf("channel 0 failed, must not commit, got %+v", ch.Committed(0))
	}
	if ch.Committed(2).VolumeUL == 0 {
		t.Fatal("channel 2 succeeded, should have committed")
	}
}

func TestPickupTipsOnChannelSubsetDoesNotPanic(t *testing.T) {
	ch := state.NewChannels(8)
	s := &fakeSender{replies: []string{"C0TPid0000er00/00"}}

	err := PickupTips(context.Background(), s, ch, safety.DefaultLimits(), 8,
		[]int{3}, []float64{100}, []float64{100}, []float64{100}, "std300")
	if err != nil {
		t.Fatalf("PickupTips on a single high-index channel = %v, want nil", err)
	}
	if !ch.Committed(3).HasTip {
		t.Fatalf("channel 3 = %+v, want HasTip", ch.Committed(3))
	}
}

func TestAspirateAllSucceedCommitsAll(t *testing.T) {
	ch := state.NewChannels(2)
	s := &fakeSender{replies: []string{"C0ASid0000er00/00"}}

	err := Aspirate(context.Background(), s, ch, AspirateParams{
		Channels: []int{0, 1},
		VolumeUL: []float64{5, 5},
	})
	if err != nil {
		t.Fatalf("Aspirate = %v, want nil", err)
	}
	if ch.Committed(0).VolumeUL != 5 || ch.Committed(1).VolumeUL != 5 {
		t.Fatalf("committed = %+v, %+v", ch.Committed(0), ch.Committed(1))
	}
}
