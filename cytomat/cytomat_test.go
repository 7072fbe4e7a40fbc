package cytomat

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/labcore/labdrive/clog"
	"github.com/labcore/labdrive/cytomat/errors"
	"github.com/labcore/labdrive/star/retry"
	"github.com/labcore/labdrive/transport"
)

func newTestDriver(t *testing.T, mock *transport.Mock) *Driver {
	t.Helper()
	d, err := New(mock, clog.NewLogger("test"), Config{
		Rack:          "rack-A",
		NumSlots:      10,
		InventoryPath: filepath.Join(t.TempDir(), "inventory.yaml"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.retryer = &retry.Policy{Attempts: 3, Delay: time.Millisecond, Log: d.log, Reinit: d.reinitialize}
	return d
}

// ch:bs -> bs 91 (spec.md §6.2 form): 0x91 = 1001 0001, so
// TransferStationOccupied (bit0), ErrorRegisterSet (bit4) and Busy
// (bit7) are set; everything else is clear.
func TestGetOverviewRegisterDecodesBits(t *testing.T) {
	mock := &transport.Mock{Responses: [][]byte{[]byte("bs 91\r")}}
	d := newTestDriver(t, mock)

	reg, err := d.GetOverviewRegister(context.Background())
	if err != nil {
		t.Fatalf("GetOverviewRegister: %v", err)
	}
	if !reg.TransferStationOccupied || !reg.ErrorRegisterSet || !reg.Busy {
		t.Fatalf("reg = %+v, want TransferStationOccupied+ErrorRegisterSet+Busy set", reg)
	}
	if reg.DoorOpen || reg.GateOpen || reg.HandlerOccupied || reg.WarningRegisterSet || reg.Ready {
		t.Fatalf("reg = %+v, want all other bits clear", reg)
	}
}

func TestTransferToStorageUpdatesInventory(t *testing.T) {
	mock := &transport.Mock{Responses: [][]byte{[]byte("ok 60\r")}}
	d := newTestDriver(t, mock)

	if err := d.TransferToStorage(context.Background(), 3); err != nil {
		t.Fatalf("TransferToStorage: %v", err)
	}
	sl, err := d.inv.At("rack-A", 3)
	if err != nil || !sl.Occupied {
		t.Fatalf("slot 3 = %+v, %v; want occupied", sl, err)
	}
}

// reinitialize's 3-step recovery sequence (spec.md §4.5) runs: ll:in,
// then a waitForIdle poll of ch:bs, then one more ch:bs to check the
// error register. Here the register comes back clear both times, so no
// rs:be reset is issued.
func reinitSequenceOK() [][]byte {
	return [][]byte{
		[]byte("ok 00\r"), // ll:in
		[]byte("bs 40\r"), // waitForIdle poll: ready, not busy
		[]byte("bs 40\r"), // error-register check: clear
	}
}

func TestSendCmdRetriesThenReinitializes(t *testing.T) {
	responses := [][]byte{[]byte("er 01\r"), []byte("er 01\r")} // busy, busy
	responses = append(responses, reinitSequenceOK()...)
	responses = append(responses, []byte("ok 60\r")) // final attempt succeeds
	mock := &transport.Mock{Responses: responses}
	d := newTestDriver(t, mock)

	_, err := d.sendCmd(context.Background(), "ch", "bs")
	if err != nil {
		t.Fatalf("sendCmd = %v, want nil after reinit recovers", err)
	}
}

func TestReinitializeResetsErrorRegisterWhenStillSet(t *testing.T) {
	d := newTestDriver(t, &transport.Mock{Responses: [][]byte{
		[]byte("ok 00\r"), // ll:in
		[]byte("bs 40\r"), // waitForIdle poll: not busy
		[]byte("bs 90\r"), // error-register check: ErrorRegisterSet still set (0x90)
		[]byte("ok 00\r"), // rs:be
	}})

	if err := d.reinitialize(context.Background()); err != nil {
		t.Fatalf("reinitialize: %v", err)
	}
}

func TestSendCmdExhaustsRetriesReturnsTypedError(t *testing.T) {
	responses := [][]byte{[]byte("er 08\r"), []byte("er 08\r")} // handler occupied, twice
	responses = append(responses, reinitSequenceOK()...)
	responses = append(responses, []byte("er 08\r")) // final attempt still fails
	mock := &transport.Mock{Responses: responses}
	d := newTestDriver(t, mock)

	_, err := d.sendCmd(context.Background(), "ch", "bs")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if _, ok := err.(*errors.HandlerOccupiedError); !ok {
		t.Fatalf("err = %T, want *errors.HandlerOccupiedError", err)
	}
}

func TestReadIncubationParameterParsesNominalAndActual(t *testing.T) {
	mock := &transport.Mock{Responses: [][]byte{[]byte("ic +37.0 +36.8\r")}}
	d := newTestDriver(t, mock)

	reading, err := d.ReadIncubationParameter(context.Background(), QueryTemperature)
	if err != nil {
		t.Fatalf("ReadIncubationParameter: %v", err)
	}
	if reading.NominalUL != 37.0 || reading.ActualUL != 36.8 {
		t.Fatalf("reading = %+v, want {37.0 36.8}", reading)
	}
}
