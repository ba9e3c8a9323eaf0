package broker

import (
	"net/url"
	"strings"

	"github.com/quantrail/brokergate/internal/core"
)

// Endpoints holds the three upstream base URLs. Trading operations route to
// the paper or live base per mode. Market-data operations always route to
// the shared data base regardless of mode: market data is identical across
// modes, and callers may rely on that.
type Endpoints struct {
	PaperTrading string
	LiveTrading  string
	MarketData   string
}

// Trading returns the mode-specific trading base URL.
func (e Endpoints) Trading(mode core.Mode) string {
	if mode == core.ModeLive {
		return e.LiveTrading
	}
	return e.PaperTrading
}

// Data returns the shared market-data base URL.
func (e Endpoints) Data() string {
	return e.MarketData
}

// buildURL joins a base URL, a path, and optional query parameters.
// Pure string assembly; no error cases beyond what the transport reports.
func buildURL(base, path string, params url.Values) string {
	u := strings.TrimSuffix(base, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
