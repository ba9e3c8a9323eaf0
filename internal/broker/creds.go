// Package broker implements the dual-mode brokerage gateway: credential
// resolution, endpoint routing, order payload construction, the HTTP
// transport, and normalization of upstream responses. All state of record
// lives on the remote brokerage; the gateway holds only read-only
// configuration and is safe for concurrent use.
package broker

import (
	"fmt"

	"github.com/quantrail/brokergate/internal/core"
)

// Credentials is one brokerage API key pair, scoped to exactly one mode.
type Credentials struct {
	Mode      core.Mode
	APIKey    string
	SecretKey string
}

// CredentialStore holds the configured key pairs, at most one per mode.
// A mode with no pair is unusable: resolution fails, it never falls back
// to the other mode's keys.
type CredentialStore struct {
	pairs map[core.Mode]Credentials
}

// NewCredentialStore builds a store from the configured pairs. Pairs with an
// invalid mode or a missing key half are rejected; duplicate modes are
// rejected. A store with zero pairs is legal to build but every resolution
// against it fails.
func NewCredentialStore(pairs ...Credentials) (*CredentialStore, error) {
	store := &CredentialStore{pairs: make(map[core.Mode]Credentials, len(pairs))}
	for _, p := range pairs {
		if !p.Mode.Valid() {
			return nil, core.WrapError(core.ErrModeInvalid,
				fmt.Errorf("credential pair has mode %q", p.Mode))
		}
		if p.APIKey == "" || p.SecretKey == "" {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s credentials: api key and secret key must both be set", p.Mode))
		}
		if _, dup := store.pairs[p.Mode]; dup {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("duplicate credential pair for mode %s", p.Mode))
		}
		store.pairs[p.Mode] = p
	}
	return store, nil
}

// DualMode reports whether both paper and live pairs are configured.
func (s *CredentialStore) DualMode() bool {
	return len(s.pairs) == 2
}

// Resolve returns the pair for the given mode, or ErrConfigMissing when no
// pair is configured for it. No side effects, no network.
func (s *CredentialStore) Resolve(mode core.Mode) (Credentials, error) {
	if !mode.Valid() {
		return Credentials{}, core.WrapError(core.ErrModeInvalid,
			fmt.Errorf("unrecognized mode %q", mode))
	}
	creds, ok := s.pairs[mode]
	if !ok {
		return Credentials{}, core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("no %s credentials configured", mode))
	}
	return creds, nil
}

// ResolveRequest resolves a caller-supplied mode string. Single-pair stores
// may default an absent mode to their only configured mode; a dual-mode
// store requires the mode explicitly. Defaulting across accounts would risk
// executing against the wrong one, so a blank mode with two pairs is a
// usage error, never a silent choice.
func (s *CredentialStore) ResolveRequest(mode string) (Credentials, error) {
	if mode == "" {
		switch len(s.pairs) {
		case 0:
			return Credentials{}, core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("no brokerage credentials configured"))
		case 1:
			for _, creds := range s.pairs {
				return creds, nil
			}
		}
		return Credentials{}, core.WrapError(core.ErrModeInvalid,
			fmt.Errorf("mode is required when both paper and live credentials are configured"))
	}

	parsed, err := core.ParseMode(mode)
	if err != nil {
		return Credentials{}, err
	}
	return s.Resolve(parsed)
}
