// Package transport is the byte-level I/O layer (spec.md §4.1, component
// C1): open/close a serial link and move bytes across it with write and
// read timeouts, independent of either device's framing. Framing — where a
// telegram ends — is a codec-layer concern (spec.md §4.2); this package only
// knows how to read until a terminator appears or the deadline passes.
package transport

import (
	"context"
	"errors"
	"time"
)

// ErrNoResponse is raised when a read returns zero bytes within its
// deadline: spec.md §3 is explicit that this must never be mistaken for an
// empty success — "the instrument is off" is a distinct condition from "the
// instrument replied with nothing".
var ErrNoResponse = errors.New("transport: no response from instrument")

// ErrClosed is returned by any operation on a Transport after Close.
var ErrClosed = errors.New("transport: closed")

// Transport is the minimal contract every wire protocol in this module is
// built on.
type Transport interface {
	// Write sends p, bounded by timeout (0 uses the transport's configured
	// default).
	Write(ctx context.Context, p []byte, timeout time.Duration) error

	// ReadUntil accumulates bytes until the accumulated buffer ends with
	// term, or until timeout elapses (0 uses the transport's configured
	// default). If term is nil, ReadUntil instead reads until a read
	// returns no new bytes for one polling interval ("quiet"). The STAR
	// and Cytomat drivers both pass their telegram terminator.
	ReadUntil(ctx context.Context, term []byte, timeout time.Duration) ([]byte, error)

	// Close releases the underlying port. Idempotent.
	Close() error
}

// quietInterval is how long ReadUntil(nil, ...) waits for more bytes before
// deciding the instrument has gone quiet.
const quietInterval = 20 * time.Millisecond
