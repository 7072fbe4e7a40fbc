// Package star ties the STAR components together into one driver: a
// caller invokes a typed operation (star/pip, star/head96, star/iswap,
// star/autoload), that layer validates against star/safety and consults
// star/state, Driver's SendCommand tags the command with an id
// (star/telegram.IDGen), encodes and sends it through star/retry's
// recovery policy over a transport.Transport, and decodes the reply —
// matching the control flow spec.md §2 describes end to end.
package star

import (
	"context"
	"fmt"

	"github.com/labcore/labdrive/clog"
	"github.com/labcore/labdrive/star/retry"
	"github.com/labcore/labdrive/star/telegram"
	"github.com/labcore/labdrive/transport"
)

// Driver is one STAR instrument connection.
type Driver struct {
	tp      transport.Transport
	log     clog.Clog
	ids     *telegram.IDGen
	retryer *retry.Policy
}

// New builds a Driver over an already-open transport. reinit, if non-nil,
// is invoked by the retry policy before its final attempt — typically an
// autoload/master re-initialization command.
func New(tp transport.Transport, log clog.Clog, reinit func(ctx context.Context) error) *Driver {
	d := &Driver{tp: tp, log: log, ids: &telegram.IDGen{}}
	d.retryer = retry.New(log)
	d.retryer.Reinit = reinit
	return d
}

// SendCommand builds one command via fields, sends it, and decodes only
// the reply's id field (descriptor "id####"); the caller is responsible
// for knowing which tags a given verb's reply carries and reads them from
// the response's Raw string. This layer only guarantees id correlation
// and timeout selection. A failed write is retried under the module's
// standard retry policy; once the command has been written, a read
// failure, an undecodable reply or an id mismatch is returned at once
// without resending, since the instrument may already be executing it.
func (d *Driver) SendCommand(ctx context.Context, module, verb string, fields func(*telegram.Encoder)) (*telegram.Response, error) {
	e := telegram.NewCommand(module, verb)
	if fields != nil {
		fields(e)
	}

	var resp *telegram.Response
	var final error // set when a failure must end the policy without a retry
	err := d.retryer.Do(ctx, func(ctx context.Context) error {
		cmd, id := e.Encode(d.ids)
		timeout := telegram.TimeoutFor(module + verb)

		if err := d.tp.Write(ctx, cmd, 0); err != nil {
			return fmt.Errorf("star: write: %w", err)
		}
		raw, err := d.tp.ReadUntil(ctx, []byte(telegram.Terminator), timeout)
		if err != nil {
			final = fmt.Errorf("star: read: %w", err)
			return nil
		}

		r, err := telegram.Decode("id####", string(raw))
		if err != nil {
			final = err
			return nil
		}
		gotID, err := r.ID()
		if err != nil {
			final = err
			return nil
		}
		if gotID != id {
			final = telegram.NewIDMismatchError(id, gotID)
			return nil
		}
		resp = r
		return nil
	})
	if final != nil {
		return nil, final
	}
	return resp, err
}
