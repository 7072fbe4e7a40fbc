// Package telegram implements the Cytomat wire codec (spec.md §4.2,
// component C2): short ASCII telegrams of the form `<type>:<command>
// <params>`, terminated by a carriage return, with whitespace-separated
// replies whose first token is `ok`, the echoed verb, or `er`.
package telegram

import (
	"fmt"
	"strings"
)

// Terminator ends every Cytomat telegram on the wire.
const Terminator = "\r"

// Encode builds a command telegram: `<cmdType>:<verb>` followed by a
// space-joined parameter list if any are given.
func Encode(cmdType, verb string, params ...string) []byte {
	var b strings.Builder
	b.WriteString(cmdType)
	b.WriteByte(':')
	b.WriteString(verb)
	if len(params) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(params, " "))
	}
	b.WriteString(Terminator)
	return []byte(b.String())
}

// Reply is a decoded Cytomat response.
type Reply struct {
	OK      bool
	Payload string
	Raw     string
}

// Decode parses a raw reply line against the verb that was sent. A
// Cytomat reply has no colon: it is whitespace-separated, and its first
// token (the "key") is either `ok` for an action reply, the echoed verb
// for a check-register reply, or `er` for an error (spec.md §4.2, §6.2):
//
//	ch:bs  -> bs 40   (key echoes the verb "bs")
//	mv:ts 042 -> ok 60   (key is "ok")
//	mv:ts 099 -> er 05   (key is "er", payload is an error code for cytomat/errors)
//
// Anything else is a framing error: the instrument is expected to always
// lead with one of ok/er/verb.
func Decode(verb, raw string) (*Reply, error) {
	trimmed := strings.TrimRight(raw, "\r\n")
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return nil, fmt.Errorf("cytomat: empty reply")
	}
	key := fields[0]
	payload := strings.Join(fields[1:], " ")
	switch key {
	case "ok", verb:
		return &Reply{OK: true, Payload: payload, Raw: raw}, nil
	case "er":
		return &Reply{OK: false, Payload: payload, Raw: raw}, nil
	default:
		return nil, fmt.Errorf("cytomat: reply %q has neither ok, er nor verb %q as its first token", raw, verb)
	}
}
