// Package errors implements the Cytomat error code table (spec.md §4.4,
// component C4), grounded directly on the original driver's error_map: a
// fixed table of two-digit codes to typed errors. Codes the table doesn't
// recognize decode to UnknownCytomatError with the raw code preserved
// verbatim (SPEC_FULL.md Open Question resolution) rather than guessed at.
package errors

import "fmt"

// CytomatError is the common interface every typed error in this package
// satisfies, so callers can type-switch without enumerating every
// concrete type.
type CytomatError interface {
	error
	Code() string
}

type baseError struct {
	code string
	msg  string
}

func (e *baseError) Code() string  { return e.code }
func (e *baseError) Error() string { return fmt.Sprintf("cytomat: %s (code %s)", e.msg, e.code) }

// Concrete error kinds, one per entry in table below. Each is a distinct
// type (not just a Kind enum) so callers can errors.As a specific failure
// mode without string-comparing codes.
type (
	BusyError                       struct{ baseError }
	CommandUnknownError             struct{ baseError }
	TelegramStructureError          struct{ baseError }
	IncorrectParameterError         struct{ baseError }
	UnknownLocationError            struct{ baseError }
	IncorrectHandlerPositionError   struct{ baseError }
	ShovelExtendedError             struct{ baseError }
	HandlerOccupiedError            struct{ baseError }
	HandlerEmptyError               struct{ baseError }
	TransferStationEmptyError       struct{ baseError }
	TransferStationOccupiedError    struct{ baseError }
	TransferStationPositionError    struct{ baseError }
	LiftDoorNotConfiguredError      struct{ baseError }
	LiftDoorNotOpenError            struct{ baseError }
	MemoryAccessError               struct{ baseError }
	UnauthorizedAccessError         struct{ baseError }
)

// UnknownCytomatError is returned for any code outside the table below;
// it still satisfies CytomatError so callers can always call Code().
type UnknownCytomatError struct{ baseError }

// table maps a two-digit firmware code to a constructor for its typed
// error. Built directly from the original driver's error_map.
var table = map[string]func(code, msg string) CytomatError{
	"01": func(c, m string) CytomatError { return &BusyError{baseError{c, m}} },
	"02": func(c, m string) CytomatError { return &CommandUnknownError{baseError{c, m}} },
	"03": func(c, m string) CytomatError { return &TelegramStructureError{baseError{c, m}} },
	"04": func(c, m string) CytomatError { return &IncorrectParameterError{baseError{c, m}} },
	"05": func(c, m string) CytomatError { return &UnknownLocationError{baseError{c, m}} },
	"06": func(c, m string) CytomatError { return &IncorrectHandlerPositionError{baseError{c, m}} },
	"07": func(c, m string) CytomatError { return &ShovelExtendedError{baseError{c, m}} },
	"08": func(c, m string) CytomatError { return &HandlerOccupiedError{baseError{c, m}} },
	"09": func(c, m string) CytomatError { return &HandlerEmptyError{baseError{c, m}} },
	"10": func(c, m string) CytomatError { return &TransferStationEmptyError{baseError{c, m}} },
	"11": func(c, m string) CytomatError { return &TransferStationOccupiedError{baseError{c, m}} },
	"12": func(c, m string) CytomatError { return &TransferStationPositionError{baseError{c, m}} },
	"13": func(c, m string) CytomatError { return &LiftDoorNotConfiguredError{baseError{c, m}} },
	"14": func(c, m string) CytomatError { return &LiftDoorNotOpenError{baseError{c, m}} },
	"15": func(c, m string) CytomatError { return &MemoryAccessError{baseError{c, m}} },
	"16": func(c, m string) CytomatError { return &UnauthorizedAccessError{baseError{c, m}} },
}

var messages = map[string]string{
	"01": "device busy",
	"02": "command unknown",
	"03": "telegram structure error",
	"04": "incorrect parameter",
	"05": "unknown storage location",
	"06": "incorrect handler position",
	"07": "shovel extended",
	"08": "handler occupied",
	"09": "handler empty",
	"10": "transfer station empty",
	"11": "transfer station occupied",
	"12": "transfer station position error",
	"13": "lift door not configured",
	"14": "lift door not open",
	"15": "memory access error",
	"16": "unauthorized access",
}

// FromCode builds the typed error for a firmware error code, or an
// UnknownCytomatError if the code isn't in the table.
func FromCode(code string) CytomatError {
	if ctor, ok := table[code]; ok {
		return ctor(code, messages[code])
	}
	return &UnknownCytomatError{baseError{code, "unrecognized error code"}}
}
