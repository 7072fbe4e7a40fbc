package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/labcore/labdrive/cytomat"
)

// dispatch runs one console line against drv, returning true if the
// console should exit.
func dispatch(ctx context.Context, drv *cytomat.Driver, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true

	case "status":
		reg, err := drv.GetOverviewRegister(ctx)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Printf("ready=%v busy=%v error=%v door-open=%v transfer-occupied=%v\n",
			reg.Ready, reg.Busy, reg.ErrorRegisterSet, reg.DoorOpen, reg.TransferStationOccupied)

	case "transfer-to":
		slot, err := requireSlot(fields)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		if err := drv.TransferToStorage(ctx, slot); err != nil {
			fmt.Println("error:", err)
		}

	case "transfer-from":
		slot, err := requireSlot(fields)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		if err := drv.TransferFromStorage(ctx, slot); err != nil {
			fmt.Println("error:", err)
		}

	case "temp":
		v, err := drv.ReadIncubationParameter(ctx, cytomat.QueryTemperature)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Printf("temperature: nominal=%.1f C actual=%.1f C\n", v.NominalUL, v.ActualUL)

	case "humidity":
		v, err := drv.ReadIncubationParameter(ctx, cytomat.QueryHumidity)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Printf("humidity: nominal=%.1f %% actual=%.1f %%\n", v.NominalUL, v.ActualUL)

	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func requireSlot(fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("usage: %s <slot>", fields[0])
	}
	return strconv.Atoi(fields[1])
}
