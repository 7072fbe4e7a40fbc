// Command labdrivectl is a diagnostic REPL for exercising a Cytomat
// instrument over a serial link, in the teacher corpus's idiom of a
// thin getopt-parsed main plus a liner-driven interactive console. It has
// no STAR commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	"github.com/labcore/labdrive/clog"
	"github.com/labcore/labdrive/cytomat"
	"github.com/labcore/labdrive/transport"
)

func main() {
	optPort := getopt.StringLong("port", 'p', "/dev/ttyUSB0", "Serial port device")
	optBaud := getopt.IntLong("baud", 'b', transport.Baud9600, "Baud rate")
	optInventory := getopt.StringLong("inventory", 'i', "", "Inventory YAML file path")
	optRack := getopt.StringLong("rack", 'r', "rack-A", "Rack name")
	optSlots := getopt.IntLong("slots", 's', 10, "Number of storage slots")
	optHelp := getopt.BoolLong("help", 'h', "Show help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	log := clog.NewLogger("labdrivectl: ")
	log.LogMode(true)

	cfg := transport.Config{Port: *optPort, Baud: *optBaud}
	if err := cfg.Valid(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid transport config: %v\n", err)
		os.Exit(1)
	}

	port, err := transport.OpenSerialPort(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open port: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	drv, err := cytomat.New(port, log, cytomat.Config{
		Rack:          *optRack,
		NumSlots:      *optSlots,
		InventoryPath: *optInventory,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "driver init: %v\n", err)
		os.Exit(1)
	}

	runConsole(drv)
}

func runConsole(drv *cytomat.Driver) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(in string) []string {
		return completeCommand(in)
	})

	ctx := context.Background()
	for {
		cmd, err := line.Prompt("labdrive> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}
		line.AppendHistory(cmd)

		if quit := dispatch(ctx, drv, cmd); quit {
			return
		}
	}
}

var commands = []string{"status", "transfer-to", "transfer-from", "temp", "humidity", "quit"}

func completeCommand(prefix string) []string {
	var out []string
	for _, c := range commands {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}
