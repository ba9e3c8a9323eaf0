package broker

import (
	"net/url"
	"testing"

	"github.com/quantrail/brokergate/internal/core"
)

func testEndpoints() Endpoints {
	return Endpoints{
		PaperTrading: "https://paper.example.com",
		LiveTrading:  "https://live.example.com",
		MarketData:   "https://data.example.com",
	}
}

func TestEndpoints_TradingDiffersByMode(t *testing.T) {
	e := testEndpoints()
	paper := e.Trading(core.ModePaper)
	live := e.Trading(core.ModeLive)

	if paper == live {
		t.Fatal("paper and live trading operations must never target the same base URL")
	}
	if paper != "https://paper.example.com" {
		t.Errorf("unexpected paper base: %s", paper)
	}
	if live != "https://live.example.com" {
		t.Errorf("unexpected live base: %s", live)
	}
}

func TestEndpoints_DataSharedAcrossModes(t *testing.T) {
	e := testEndpoints()
	// Market data is deliberately identical regardless of mode.
	if e.Data() != "https://data.example.com" {
		t.Errorf("unexpected data base: %s", e.Data())
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		path   string
		params url.Values
		want   string
	}{
		{"no params", "https://x.example.com", "/v2/account", nil, "https://x.example.com/v2/account"},
		{"trailing slash trimmed", "https://x.example.com/", "/v2/clock", nil, "https://x.example.com/v2/clock"},
		{"params encoded", "https://x.example.com", "/v2/stocks/snapshots",
			url.Values{"symbols": {"AAPL,MSFT"}}, "https://x.example.com/v2/stocks/snapshots?symbols=AAPL%2CMSFT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := buildURL(tc.base, tc.path, tc.params)
			if got != tc.want {
				t.Errorf("buildURL = %s, want %s", got, tc.want)
			}
		})
	}
}
