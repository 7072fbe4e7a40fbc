// Package errors implements the STAR error decoder (spec.md §4.4, §7,
// component C4): parsing the `er##/##` master block and the per-module
// `XX##/##` substrings a firmware reply may carry, mapping each
// (module, code) pair to a typed error, aggregating across modules, and
// promoting a handful of known trace codes to library-level error types.
//
// The design deliberately keeps parsing (ParseModuleErrors) and promotion
// (Promote) as two separate, independently testable steps (spec.md §9).
package errors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ModuleError is one parsed (module, code, trace) triple plus the raw
// fragment it came from. Module is "" for the master block (`er##/##`).
type ModuleError struct {
	Module string
	Code   string
	Trace  string
	Raw    string
}

// OK reports whether this entry represents "no error" (code 00).
func (m ModuleError) OK() bool { return m.Code == "00" }

var moduleErrRe = regexp.MustCompile(`(er|[A-Z][A-Z0-9])(\d{2})/(\d{2})`)

// ParseModuleErrors is a total function: given any string, it returns an
// ordered list of (module, code, trace, raw) tuples plus the unparsed
// residue, never erroring. The master block's module name is reported as
// the empty string.
func ParseModuleErrors(s string) ([]ModuleError, string) {
	idx := moduleErrRe.FindAllStringSubmatchIndex(s, -1)
	if idx == nil {
		return nil, s
	}

	var out []ModuleError
	var residue strings.Builder
	last := 0
	for _, m := range idx {
		start, end := m[0], m[1]
		residue.WriteString(s[last:start])
		last = end

		module := s[m[2]:m[3]]
		if module == "er" {
			module = ""
		}
		out = append(out, ModuleError{
			Module: module,
			Code:   s[m[4]:m[5]],
			Trace:  s[m[6]:m[7]],
			Raw:    s[start:end],
		})
	}
	residue.WriteString(s[last:])
	return out, residue.String()
}

// Dedup drops the master entry when it carries the shared slave-error code
// 99 and at least one failing (non-00) slave entry is present (spec.md
// §4.4): "99" at the
// master means "see the per-module errors", so keeping both would
// double-report.
func Dedup(errs []ModuleError) []ModuleError {
	hasSlave := false
	for _, e := range errs {
		if e.Module != "" && !e.OK() {
			hasSlave = true
			break
		}
	}
	if !hasSlave {
		return errs
	}
	out := errs[:0:0]
	for _, e := range errs {
		if e.Module == "" && e.Code == "99" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// channelSuffixes is the firmware's own base-16-like digit alphabet for
// channel modules "P1".."PG" — not true hex (it runs 1..G, 16 symbols),
// so it gets its own lookup rather than strconv.ParseInt(..., 16, ...).
const channelSuffixes = "123456789ABCDEFG"

// ChannelIndex returns the 0-indexed channel number for a "P<n>" module
// name, and whether it is in fact a channel module.
func ChannelIndex(module string) (int, bool) {
	if len(module) != 2 || module[0] != 'P' {
		return 0, false
	}
	i := strings.IndexByte(channelSuffixes, module[1])
	if i < 0 {
		return 0, false
	}
	return i, true
}

// FirmwareError is a single typed firmware error (spec.md §7 tier 1): a
// (module, trace code, raw) payload classified against the known kind
// table, or KindUnknown with the raw code preserved verbatim if the
// firmware reports something this table doesn't recognize (spec.md §9
// Open Questions: never guess intent for sparsely documented codes).
type FirmwareError struct {
	Module string
	Code   string
	Trace  string
	Kind   Kind
	Raw    string
}

func (e *FirmwareError) Error() string {
	mod := e.Module
	if mod == "" {
		mod = "master"
	}
	if e.Kind == KindUnknown {
		return fmt.Sprintf("star: %s: unrecognized error %s/%s (%s)", mod, e.Code, e.Trace, e.Raw)
	}
	return fmt.Sprintf("star: %s: %s (%s)", mod, e.Kind, e.Raw)
}

// Kind enumerates the firmware error classes this module recognizes.
// Codes outside this table decode to KindUnknown with Code/Trace intact —
// per spec.md §9 this module never invents meaning for undocumented codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindCommandSyntax
	KindHardware
	KindNotInitialized
	KindNoTip
	KindTipAlreadyFitted
	KindTipTooFewDiscarded
	KindClotDetected
	KindTooLittleLiquid
	KindTooLittleVolume
	KindVolumeOverflow
	KindPositionNotReachable
	KindYPositionOutOfRange
	KindZPositionOutOfRange
	KindArmCollision
	KindBarcodeUnreadable
	KindPlateNotGripped
	KindPlateAlreadyGripped
	KindInitializationFailed
	KindLLDNotDetected
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindCommandSyntax:        "command syntax error",
	KindHardware:             "hardware error",
	KindNotInitialized:       "module not initialized",
	KindNoTip:                "no tip on channel",
	KindTipAlreadyFitted:     "tip already fitted",
	KindTipTooFewDiscarded:   "not all tips discarded",
	KindClotDetected:         "clot detected",
	KindTooLittleLiquid:      "too little liquid",
	KindTooLittleVolume:      "too little volume",
	KindVolumeOverflow:       "volume overflow",
	KindPositionNotReachable: "position not reachable",
	KindYPositionOutOfRange:  "Y position out of range",
	KindZPositionOutOfRange:  "Z position out of range",
	KindArmCollision:         "arm collision detected",
	KindBarcodeUnreadable:    "barcode unreadable",
	KindPlateNotGripped:      "plate not gripped",
	KindPlateAlreadyGripped:  "gripper already holds a plate",
	KindInitializationFailed: "initialization failed",
	KindLLDNotDetected:       "liquid level not detected",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// codeTable maps a firmware error code (the first `##` of `XX##/##`) to a
// Kind. The same code means the same thing regardless of which module
// reports it, which matches how the firmware actually assigns them.
var codeTable = map[string]Kind{
	"01": KindCommandSyntax,
	"02": KindHardware,
	"03": KindNotInitialized,
	"04": KindPositionNotReachable,
	"05": KindYPositionOutOfRange,
	"06": KindZPositionOutOfRange,
	"07": KindArmCollision,
	"08": KindNoTip,
	"09": KindTipAlreadyFitted,
	"10": KindTipTooFewDiscarded,
	"11": KindClotDetected,
	"12": KindVolumeOverflow,
	"13": KindBarcodeUnreadable,
	"14": KindPlateNotGripped,
	"15": KindPlateAlreadyGripped,
	"16": KindInitializationFailed,
	"17": KindLLDNotDetected,
}

// traceTable holds the specific slave trace codes spec.md §4.4 requires to
// be promoted to library-level error types, regardless of what the leading
// code digit said.
var traceTable = map[string]Kind{
	"70": KindTooLittleLiquid,
	"71": KindTooLittleLiquid,
	"54": KindTooLittleVolume,
	"75": KindNoTip,
}

// Classify turns one parsed ModuleError into a FirmwareError, applying the
// trace-code promotions of spec.md §4.4 before falling back to the
// code table.
func Classify(m ModuleError) *FirmwareError {
	kind, ok := traceTable[m.Trace]
	if !ok {
		kind, ok = codeTable[m.Code]
	}
	if !ok {
		kind = KindUnknown
	}
	return &FirmwareError{Module: m.Module, Code: m.Code, Trace: m.Trace, Kind: kind, Raw: m.Raw}
}

// ChannelizedError maps 0-indexed channel numbers to their sub-error,
// produced when every failing module in an aggregate is a channel module
// (spec.md §4.4). Callers use it to commit partial success: non-failing
// channels roll forward, only the channels named here roll back.
type ChannelizedError struct {
	Errors map[int]*FirmwareError
}

func (e *ChannelizedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for ch, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("channel %d: %v", ch, fe))
	}
	return "star: channelized error: " + strings.Join(parts, "; ")
}

// AggregateError is the non-channelized fallback: one or more module
// failures that are not all channel modules.
type AggregateError struct {
	Errors []*FirmwareError
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Error()
	}
	return "star: " + strings.Join(parts, "; ")
}

// Promote takes the raw parsed entries from a reply, drops the successful
// (code 00) ones and the deduplicated shared-99 master entry, and builds
// either a *ChannelizedError (every failure is a channel module), an
// *AggregateError (mixed), or nil (no failures at all).
func Promote(raw []ModuleError) error {
	entries := Dedup(raw)

	var failing []ModuleError
	for _, e := range entries {
		if !e.OK() {
			failing = append(failing, e)
		}
	}
	if len(failing) == 0 {
		return nil
	}

	allChannels := true
	for _, e := range failing {
		if _, ok := ChannelIndex(e.Module); !ok {
			allChannels = false
			break
		}
	}

	if allChannels {
		ce := &ChannelizedError{Errors: map[int]*FirmwareError{}}
		for _, e := range failing {
			idx, _ := ChannelIndex(e.Module)
			ce.Errors[idx] = Classify(e)
		}
		return ce
	}

	ae := &AggregateError{}
	for _, e := range failing {
		ae.Errors = append(ae.Errors, Classify(e))
	}
	return ae
}

// ParseCode is a small helper for callers that already have a bare two
// digit code string and want its numeric value (used by tests and by
// higher layers translating a firmware code into a diagnostic).
func ParseCode(code string) (int, error) {
	return strconv.Atoi(code)
}
