package telegram

import "fmt"

// ProtocolError reports a non-recoverable wire-framing failure: an id
// mismatch (NewIDMismatchError) or a reply missing its terminator
// (NewMissingTerminatorError). An undecodable reply is reported by Decode
// as a plain error, and a missing reply by the transport's ErrNoResponse.
// star.Driver retries none of these failures — the caller is expected to
// reset the connection.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("telegram: protocol error: %s", e.Reason)
}

// NewIDMismatchError reports a reply whose id does not match the
// outstanding request. This must never be silently discarded: the
// instrument may have started executing a stale command (spec.md §4.3).
func NewIDMismatchError(want, got int) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf("id mismatch: sent %04d, reply echoed %04d", want, got)}
}

// NewMissingTerminatorError reports a reply that never reached its
// terminator within the read deadline.
func NewMissingTerminatorError(partial string) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf("terminator missing, partial reply %q", partial)}
}
