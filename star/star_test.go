package star

import (
	"context"
	"testing"

	"github.com/labcore/labdrive/clog"
	"github.com/labcore/labdrive/star/telegram"
	"github.com/labcore/labdrive/transport"
)

func TestSendCommandMatchesEchoedID(t *testing.T) {
	mock := &transport.Mock{Responses: [][]byte{[]byte("C0TPid0000er00/00\r\n")}}
	d := New(mock, clog.NewLogger("test"), nil)

	resp, err := d.SendCommand(context.Background(), "C0", "TP", func(e *telegram.Encoder) {
		e.Int("xp", 5, 1179)
	})
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	id, _ := resp.ID()
	if id != 0 {
		t.Fatalf("id = %d, want 0", id)
	}
}

func TestSendCommandIDMismatchIsProtocolError(t *testing.T) {
	mock := &transport.Mock{Responses: [][]byte{[]byte("C0TPid9999er00/00\r\n")}}
	d := New(mock, clog.NewLogger("test"), nil)
	d.retryer.Attempts = 1

	_, err := d.SendCommand(context.Background(), "C0", "TP", nil)
	if err == nil {
		t.Fatal("expected id mismatch error")
	}
	if _, ok := err.(*telegram.ProtocolError); !ok {
		t.Fatalf("err = %T, want *telegram.ProtocolError", err)
	}
}
