package telegram

import "testing"

func TestEncode(t *testing.T) {
	got := string(Encode("ch", "bs", "01"))
	want := "ch:bs 01\r"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeNoParams(t *testing.T) {
	got := string(Encode("rs", "bw"))
	want := "rs:bw\r"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

// ch:bs -> bs 40 (spec.md §6.2): a check-register reply echoes the verb
// as its key instead of "ok".
func TestDecodeVerbEcho(t *testing.T) {
	r, err := Decode("bs", "bs 40\r\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !r.OK || r.Payload != "40" {
		t.Fatalf("reply = %+v", r)
	}
}

// mv:ts 042 -> ok 60 (spec.md §6.2): an action reply's key is "ok".
func TestDecodeOK(t *testing.T) {
	r, err := Decode("ts", "ok 60\r\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !r.OK || r.Payload != "60" {
		t.Fatalf("reply = %+v", r)
	}
}

// mv:ts 099 -> er 05 (spec.md §6.2): an error reply's key is "er",
// regardless of which verb was sent.
func TestDecodeError(t *testing.T) {
	r, err := Decode("ts", "er 05\r\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.OK || r.Payload != "05" {
		t.Fatalf("reply = %+v", r)
	}
}

func TestDecodeWrongVerbIsFramingError(t *testing.T) {
	if _, err := Decode("bs", "ic 40\r\n"); err == nil {
		t.Fatal("expected error: key matches neither ok, er, nor the sent verb")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode("bs", "\r\n"); err == nil {
		t.Fatal("expected error for empty reply")
	}
}
