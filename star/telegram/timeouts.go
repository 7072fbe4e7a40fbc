package telegram

import "time"

// Per-verb read timeouts, spec.md §6.3. The codec is the right layer to
// hold this table because some replies (autoload init, LLD probes) may not
// arrive promptly and a caller should not have to know that.
const (
	DefaultTimeout       = 30 * time.Second
	TipTimeout           = 120 * time.Second
	AspirateTimeout      = 300 * time.Second
	AutoloadInitTimeout  = 120 * time.Second
	LiquidLevelProbeTimeout = 120 * time.Second
)

// verbTimeouts maps a `<module><verb>` command code to its read timeout.
// Verbs not listed use DefaultTimeout.
var verbTimeouts = map[string]time.Duration{
	"C0TP": TipTimeout, // pick up tips
	"C0TR": TipTimeout, // discard tips
	"C0AS": AspirateTimeout,
	"C0DS": AspirateTimeout,
	"C0ZL": LiquidLevelProbeTimeout, // cLLD probe
	"C0ZE": LiquidLevelProbeTimeout, // pLLD probe
	"I0RZ": AutoloadInitTimeout,     // autoload initialize
}

// TimeoutFor returns the read timeout for the given module+verb code.
func TimeoutFor(moduleVerb string) time.Duration {
	if d, ok := verbTimeouts[moduleVerb]; ok {
		return d
	}
	return DefaultTimeout
}
