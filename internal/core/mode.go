// internal/core/mode.go
package core

import "fmt"

// Mode identifies which credential context a request executes against.
// Paper trades settle against a sandboxed account; live trades settle with
// real money. Every gateway result carries the mode it ran under so a caller
// can never mistake one for the other.
type Mode string

const (
	// ModePaper is simulated trading against the sandbox account.
	ModePaper Mode = "paper"
	// ModeLive is real-money trading.
	ModeLive Mode = "live"
)

// ParseMode validates a mode string. The empty string is rejected here;
// single-credential deployments that want a default resolve it in the
// credential store, not by parsing.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePaper:
		return ModePaper, nil
	case ModeLive:
		return ModeLive, nil
	default:
		return "", WrapError(ErrModeInvalid, fmt.Errorf("unrecognized mode %q", s))
	}
}

// Valid reports whether m is one of the two recognized modes.
func (m Mode) Valid() bool {
	return m == ModePaper || m == ModeLive
}

func (m Mode) String() string {
	return string(m)
}
