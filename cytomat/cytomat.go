// Package cytomat implements the Cytomat plate-storage/incubator driver
// (spec.md §4.13, component C13): the state machine that sends telegrams
// over transport, retries and re-initializes on failure the way the
// original driver's _send_cmd loop does, polls the overview register,
// and exposes the complex storage/transfer/incubation/shaker commands.
package cytomat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labcore/labdrive/clog"
	"github.com/labcore/labdrive/cytomat/errors"
	"github.com/labcore/labdrive/cytomat/inventory"
	"github.com/labcore/labdrive/cytomat/telegram"
	"github.com/labcore/labdrive/star/retry"
	"github.com/labcore/labdrive/transport"
)

// OverviewRegister is the instrument's 8-bit status byte, one bool per
// bit (spec.md §3, §4.13), grounded on the original driver's
// get_overview_register / OverviewRegister bit table: bit0 transfer
// station occupied, bit1 door open, bit2 gate open, bit3 handler
// occupied, bit4 error register set, bit5 warning register set, bit6
// ready, bit7 busy.
type OverviewRegister struct {
	TransferStationOccupied bool
	DoorOpen                bool
	GateOpen                bool
	HandlerOccupied         bool
	ErrorRegisterSet        bool
	WarningRegisterSet      bool
	Ready                   bool
	Busy                    bool
}

// overviewFromByte decodes the raw status byte bit-for-bit.
func overviewFromByte(b byte) OverviewRegister {
	return OverviewRegister{
		TransferStationOccupied: b&(1<<0) != 0,
		DoorOpen:                b&(1<<1) != 0,
		GateOpen:                b&(1<<2) != 0,
		HandlerOccupied:         b&(1<<3) != 0,
		ErrorRegisterSet:        b&(1<<4) != 0,
		WarningRegisterSet:      b&(1<<5) != 0,
		Ready:                   b&(1<<6) != 0,
		Busy:                    b&(1<<7) != 0,
	}
}

// Driver is one Cytomat device connection.
type Driver struct {
	tp      transport.Transport
	log     clog.Clog
	retryer *retry.Policy
	inv     *inventory.State
	invPath string
	rack    string
}

// Config bundles what New needs beyond the transport itself.
type Config struct {
	// Rack is the name this driver's single rack is registered under in
	// its inventory file (a Cytomat addresses one rack per instrument).
	Rack         string
	NumSlots     int
	InventoryPath string
}

// New builds a Driver over an already-open transport. If cfg.InventoryPath
// names an existing file it is loaded; otherwise a fresh empty inventory
// is created for cfg.Rack/cfg.NumSlots.
func New(tp transport.Transport, log clog.Clog, cfg Config) (*Driver, error) {
	d := &Driver{tp: tp, log: log, invPath: cfg.InventoryPath, rack: cfg.Rack}
	d.retryer = retry.New(log)
	d.retryer.Reinit = d.reinitialize

	if cfg.InventoryPath != "" {
		if st, err := inventory.Load(cfg.InventoryPath); err == nil {
			d.inv = st
			if _, ok := d.inv.Racks[cfg.Rack]; !ok {
				d.inv.AddRack(cfg.Rack, cfg.NumSlots)
			}
			return d, nil
		}
	}
	d.inv = inventory.NewState()
	d.inv.AddRack(cfg.Rack, cfg.NumSlots)
	return d, nil
}

// sendCmd encodes and sends one telegram, applying the instrument's
// standard recovery policy: up to retry.DefaultAttempts tries, 5s apart,
// re-initializing before the last attempt (grounded on the original
// driver's _send_cmd retry loop).
func (d *Driver) sendCmd(ctx context.Context, cmdType, verb string, params ...string) (*telegram.Reply, error) {
	var reply *telegram.Reply
	err := d.retryer.Do(ctx, func(ctx context.Context) error {
		r, err := d.sendCmdOnce(ctx, cmdType, verb, params...)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})
	return reply, err
}

// reinitialize implements the last-attempt recovery sequence the
// original driver's _send_cmd runs before its final retry (spec.md
// §4.5): re-initialize, wait for the busy bit to clear, then read the
// error register and reset it if it is still set. Runs entirely through
// sendCmdOnce — it is called from inside the retry policy's own Do
// loop, so going through sendCmd (and therefore the policy) again would
// recurse.
func (d *Driver) reinitialize(ctx context.Context) error {
	if _, err := d.sendCmdOnce(ctx, "ll", "in"); err != nil {
		return fmt.Errorf("cytomat: reinitialize: initialize: %w", err)
	}
	if err := d.waitForIdle(ctx); err != nil {
		return fmt.Errorf("cytomat: reinitialize: %w", err)
	}
	reg, err := d.overviewOnce(ctx)
	if err != nil {
		return fmt.Errorf("cytomat: reinitialize: read overview register: %w", err)
	}
	if reg.ErrorRegisterSet {
		if _, err := d.sendCmdOnce(ctx, "rs", "be"); err != nil {
			return fmt.Errorf("cytomat: reinitialize: reset error register: %w", err)
		}
	}
	return nil
}

// maxIdlePolls bounds how long waitForIdle will poll before giving up,
// so a wedged instrument fails the reinitialize step instead of hanging
// it forever.
const (
	maxIdlePolls   = 60
	idlePollPeriod = 1 * time.Second
)

// waitForIdle polls the overview register at 1Hz until the busy bit
// clears (spec.md §4.5), respecting ctx cancellation.
func (d *Driver) waitForIdle(ctx context.Context) error {
	for i := 0; i < maxIdlePolls; i++ {
		reg, err := d.overviewOnce(ctx)
		if err != nil {
			return err
		}
		if !reg.Busy {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idlePollPeriod):
		}
	}
	return fmt.Errorf("cytomat: busy bit did not clear after %d polls", maxIdlePolls)
}

// overviewOnce queries and decodes the overview register without going
// through the retry policy.
func (d *Driver) overviewOnce(ctx context.Context) (OverviewRegister, error) {
	r, err := d.sendCmdOnce(ctx, "ch", "bs")
	if err != nil {
		return OverviewRegister{}, err
	}
	return parseOverview(r.Payload)
}

// parseOverview decodes the overview register's hex payload into its
// typed bit fields.
func parseOverview(payload string) (OverviewRegister, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(payload), 16, 8)
	if err != nil {
		return OverviewRegister{}, fmt.Errorf("cytomat: overview register %q not a byte: %w", payload, err)
	}
	return overviewFromByte(byte(n)), nil
}

// sendCmdOnce bypasses the retry policy: writes one telegram, reads and
// decodes its reply, and returns a typed error for an "er" reply.
func (d *Driver) sendCmdOnce(ctx context.Context, cmdType, verb string, params ...string) (*telegram.Reply, error) {
	cmd := telegram.Encode(cmdType, verb, params...)
	if err := d.tp.Write(ctx, cmd, 0); err != nil {
		return nil, fmt.Errorf("cytomat: write: %w", err)
	}
	raw, err := d.tp.ReadUntil(ctx, []byte(telegram.Terminator), 0)
	if err != nil {
		return nil, fmt.Errorf("cytomat: read: %w", err)
	}
	r, err := telegram.Decode(verb, string(raw))
	if err != nil {
		return nil, err
	}
	if !r.OK {
		return nil, errors.FromCode(r.Payload)
	}
	return r, nil
}

// Initialize runs the instrument's power-on initialization sequence
// (LOW_LEVEL_COMMAND.INITIALIZE, ll:in — not rs:in, which is reserved
// for register resets such as rs:be).
func (d *Driver) Initialize(ctx context.Context) error {
	_, err := d.sendCmd(ctx, "ll", "in")
	return err
}

// GetOverviewRegister polls and decodes the 8-bit status byte.
func (d *Driver) GetOverviewRegister(ctx context.Context) (OverviewRegister, error) {
	r, err := d.sendCmd(ctx, "ch", "bs")
	if err != nil {
		return OverviewRegister{}, err
	}
	return parseOverview(r.Payload)
}

// TransferToStorage moves the plate currently on the transfer station
// into the given storage slot, grounded on the original driver's
// action_transfer_to_storage. On success the inventory is updated and
// persisted if an inventory path was configured.
func (d *Driver) TransferToStorage(ctx context.Context, slot int) error {
	if _, err := d.sendCmd(ctx, "mv", "ts", strconv.Itoa(slot)); err != nil {
		return err
	}
	if err := d.inv.Occupy(d.rack, slot, ""); err != nil {
		return err
	}
	return d.persistInventory()
}

// TransferFromStorage moves a plate from the given storage slot onto the
// transfer station, grounded on the original driver's retrieve_plate.
func (d *Driver) TransferFromStorage(ctx context.Context, slot int) error {
	if _, err := d.sendCmd(ctx, "mv", "st", strconv.Itoa(slot)); err != nil {
		return err
	}
	if err := d.inv.Vacate(d.rack, slot); err != nil {
		return err
	}
	return d.persistInventory()
}

func (d *Driver) persistInventory() error {
	if d.invPath == "" {
		return nil
	}
	return d.inv.Save(d.invPath)
}

// IncubationQuery is one of the instrument's four environmental readouts
// (spec.md §4.13, grounded on the original driver's CytomatIncubationQuery:
// ic temperature, ih humidity, io O2, it CO2).
type IncubationQuery string

const (
	QueryTemperature IncubationQuery = "ic"
	QueryHumidity    IncubationQuery = "ih"
	QueryO2          IncubationQuery = "io"
	QueryCO2         IncubationQuery = "it"
)

// IncubationReading is one environmental sensor's nominal (configured
// set point) and actual (measured) value, grounded on the original
// driver's get_incubation_query, which always returns the pair.
type IncubationReading struct {
	NominalUL float64
	ActualUL  float64
}

// ReadIncubationParameter queries one environmental sensor
// (CHECK_REGISTER, cmd-type "ch") and parses its reply payload as two
// whitespace-separated floats, nominal then actual, each with any
// leading "+" stripped before parsing (grounded on the original
// driver's get_incubation_query).
func (d *Driver) ReadIncubationParameter(ctx context.Context, q IncubationQuery) (IncubationReading, error) {
	r, err := d.sendCmd(ctx, "ch", string(q))
	if err != nil {
		return IncubationReading{}, err
	}
	fields := strings.Fields(r.Payload)
	if len(fields) != 2 {
		return IncubationReading{}, fmt.Errorf("cytomat: incubation reading %q does not have two fields", r.Payload)
	}
	nominal, err := strconv.ParseFloat(strings.TrimPrefix(fields[0], "+"), 64)
	if err != nil {
		return IncubationReading{}, fmt.Errorf("cytomat: incubation nominal %q not numeric: %w", fields[0], err)
	}
	actual, err := strconv.ParseFloat(strings.TrimPrefix(fields[1], "+"), 64)
	if err != nil {
		return IncubationReading{}, fmt.Errorf("cytomat: incubation actual %q not numeric: %w", fields[1], err)
	}
	return IncubationReading{NominalUL: nominal, ActualUL: actual}, nil
}

// ShakerStation identifies which of the instrument's (up to two) shaker
// positions a shaker command addresses.
type ShakerStation int

const (
	ShakerStation1 ShakerStation = 1
	ShakerStation2 ShakerStation = 2
)

// StartShaker begins shaking the given station (CytomatComplexCommand
// "va", paired with LOW_LEVEL_COMMAND "ll").
func (d *Driver) StartShaker(ctx context.Context, station ShakerStation) error {
	_, err := d.sendCmd(ctx, "ll", "va", strconv.Itoa(int(station)))
	return err
}

// StopShaker stops the given station (CytomatComplexCommand "vd").
func (d *Driver) StopShaker(ctx context.Context, station ShakerStation) error {
	_, err := d.sendCmd(ctx, "ll", "vd", strconv.Itoa(int(station)))
	return err
}

// SetShakerSpeed sets the given station's shaker frequency via the
// SET_PARAMETER command "pb 20" (station 1) or "pb 21" (station 2),
// grounded on the original driver's set_shaker_frequency.
func (d *Driver) SetShakerSpeed(ctx context.Context, station ShakerStation, rpm int) error {
	param := "pb 20"
	if station == ShakerStation2 {
		param = "pb 21"
	}
	_, err := d.sendCmd(ctx, "se", param, fmt.Sprintf("%04d", rpm))
	return err
}

// Inventory exposes the driver's current in-memory inventory snapshot
// for read-only callers (diagnostics, cmd/labdrivectl).
func (d *Driver) Inventory() *inventory.State { return d.inv }
