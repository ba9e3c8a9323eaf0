package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/quantrail/brokergate/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTransport counts calls without touching the network.
type countingTransport struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingTransport) Do(ctx context.Context, method, rawurl string, creds Credentials, body, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// newTestGateway wires a gateway against three fake upstream hosts: paper
// trading, live trading, and shared market data.
func newTestGateway(t *testing.T, paper, live, data http.Handler, opts ...Option) *Gateway {
	t.Helper()

	paperSrv := httptest.NewServer(paper)
	liveSrv := httptest.NewServer(live)
	dataSrv := httptest.NewServer(data)
	t.Cleanup(paperSrv.Close)
	t.Cleanup(liveSrv.Close)
	t.Cleanup(dataSrv.Close)

	store, err := NewCredentialStore(
		Credentials{Mode: core.ModePaper, APIKey: "PKTEST", SecretKey: "paper-secret"},
		Credentials{Mode: core.ModeLive, APIKey: "AKLIVE", SecretKey: "live-secret"},
	)
	require.NoError(t, err)

	endpoints := Endpoints{
		PaperTrading: paperSrv.URL,
		LiveTrading:  liveSrv.URL,
		MarketData:   dataSrv.URL,
	}
	return New(store, endpoints, append(opts, WithTimeout(5*time.Second))...)
}

func jsonHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

const accountBody = `{
	"id": "acct-1",
	"account_number": "PA3ABC",
	"status": "ACTIVE",
	"currency": "USD",
	"equity": "103250.27",
	"cash": "41000.10",
	"buying_power": "206500.54",
	"daytrade_count": 1,
	"pattern_day_trader": false
}`

func TestGateway_GetAccount_ModeRoutingAndTagging(t *testing.T) {
	var paperHits, liveHits int
	paper := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paperHits++
		assert.Equal(t, "PKTEST", r.Header.Get("APCA-API-KEY-ID"))
		w.Write([]byte(accountBody))
	})
	live := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		liveHits++
		assert.Equal(t, "AKLIVE", r.Header.Get("APCA-API-KEY-ID"))
		w.Write([]byte(accountBody))
	})

	g := newTestGateway(t, paper, live, jsonHandler(200, `{}`))

	acct, err := g.GetAccount(context.Background(), "paper")
	require.NoError(t, err)
	assert.Equal(t, core.ModePaper, acct.Mode)
	assert.Equal(t, "103250.27", acct.Equity, "monetary fields stay decimal strings")

	acct, err = g.GetAccount(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, core.ModeLive, acct.Mode)

	assert.Equal(t, 1, paperHits)
	assert.Equal(t, 1, liveHits)
}

func TestGateway_MarketDataSharedAcrossModes(t *testing.T) {
	var dataPaths []string
	data := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dataPaths = append(dataPaths, r.URL.String())
		w.Write([]byte(`{"latestTrade":{"p":189.5,"s":100,"t":"2026-08-28T14:00:00Z"}}`))
	})
	trading := jsonHandler(200, `{}`)

	g := newTestGateway(t, trading, trading, data)

	snapPaper, err := g.GetSnapshot(context.Background(), "paper", "AAPL")
	require.NoError(t, err)
	snapLive, err := g.GetSnapshot(context.Background(), "live", "AAPL")
	require.NoError(t, err)

	// Identical outbound URLs under either mode; only the tag differs.
	require.Len(t, dataPaths, 2)
	assert.Equal(t, dataPaths[0], dataPaths[1])
	assert.Equal(t, core.ModePaper, snapPaper.Mode)
	assert.Equal(t, core.ModeLive, snapLive.Mode)
	assert.Equal(t, 189.5, snapPaper.LatestTrade.Price)
}

func TestGateway_PlaceOrder_RoundTrip(t *testing.T) {
	paper := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/orders", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "AAPL", payload["symbol"])
		assert.Equal(t, "10", payload["qty"])
		assert.Equal(t, "limit", payload["type"])
		assert.Equal(t, "189.50", payload["limit_price"])

		w.Write([]byte(`{
			"id": "ord-1",
			"client_order_id": "cid-1",
			"symbol": "AAPL",
			"side": "buy",
			"type": "limit",
			"qty": "10",
			"limit_price": "189.50",
			"status": "new",
			"created_at": "2026-08-28T14:00:00Z",
			"submitted_at": "2026-08-28T14:00:00Z"
		}`))
	})

	g := newTestGateway(t, paper, jsonHandler(500, `{}`), jsonHandler(200, `{}`))

	order, err := g.PlaceOrder(context.Background(), "paper", OrderSpec{
		Symbol:     "AAPL",
		Side:       SideBuy,
		Qty:        dec("10"),
		Type:       TypeLimit,
		LimitPrice: dec("189.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, core.ModePaper, order.Mode)
	assert.Equal(t, "new", order.Status)
	require.NotNil(t, order.LimitPrice)
	assert.Equal(t, "189.50", *order.LimitPrice)
	assert.Nil(t, order.FilledAt)
}

func TestGateway_PlaceOrder_ValidationBeforeNetwork(t *testing.T) {
	tr := &countingTransport{}
	store, err := NewCredentialStore(
		Credentials{Mode: core.ModePaper, APIKey: "PKTEST", SecretKey: "paper-secret"},
	)
	require.NoError(t, err)
	g := New(store, testEndpoints(), WithTransport(tr))

	// Invalid spec: no network call is made.
	_, err = g.PlaceOrder(context.Background(), "paper", OrderSpec{Symbol: "AAPL", Side: SideBuy})
	require.ErrorIs(t, err, core.ErrOrderInvalid)
	assert.Equal(t, 0, tr.count())

	// Unconfigured mode: fails before any network call.
	_, err = g.PlaceOrder(context.Background(), "live", OrderSpec{Symbol: "AAPL", Side: SideBuy, Qty: dec("1")})
	require.ErrorIs(t, err, core.ErrConfigMissing)
	assert.Equal(t, 0, tr.count())

	// Valid call reaches the transport exactly once.
	_, _ = g.PlaceOrder(context.Background(), "paper", OrderSpec{Symbol: "AAPL", Side: SideBuy, Qty: dec("1")})
	assert.Equal(t, 1, tr.count())
}

func TestGateway_CancelOrder_NoContent(t *testing.T) {
	paper := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v2/orders/ord-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	g := newTestGateway(t, paper, jsonHandler(500, `{}`), jsonHandler(200, `{}`))
	err := g.CancelOrder(context.Background(), "paper", "ord-1")
	assert.NoError(t, err, "204 is an empty success, not an error")
}

func TestGateway_RemoteErrorSurfacesVerbatim(t *testing.T) {
	paper := jsonHandler(422, `{"message":"insufficient qty"}`)
	g := newTestGateway(t, paper, jsonHandler(500, `{}`), jsonHandler(200, `{}`))

	_, err := g.PlaceOrder(context.Background(), "paper", OrderSpec{
		Symbol: "AAPL", Side: SideSell, Qty: dec("10000"),
	})
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 422, remote.Status)
	assert.Contains(t, remote.Body, "insufficient qty")
	assert.Equal(t, core.ModePaper, remote.Mode, "error preserves which mode was targeted")
}

func TestGateway_PortfolioHistory(t *testing.T) {
	paper := jsonHandler(200, `{
		"timestamp": [1700000000, 1700000060],
		"equity": [100000.00, 100050.25],
		"profit_loss": [0, 50.25],
		"profit_loss_pct": [0, 0.0005025],
		"timeframe": "1Min",
		"base_value": 100000.00
	}`)
	g := newTestGateway(t, paper, jsonHandler(500, `{}`), jsonHandler(200, `{}`))

	h, err := g.GetPortfolioHistory(context.Background(), "paper", HistoryQuery{Period: "1D", Timeframe: "1Min"})
	require.NoError(t, err)
	assert.Equal(t, core.ModePaper, h.Mode)
	require.Len(t, h.Points, 2)
	assert.Equal(t, "100050.25", h.Points[1].Equity)
}

func TestGateway_PortfolioHistory_DivergentArrays(t *testing.T) {
	paper := jsonHandler(200, `{
		"timestamp": [1700000000, 1700000060],
		"equity": [100000.00],
		"profit_loss": [0, 50.25],
		"profit_loss_pct": [0, 0.0005025]
	}`)
	g := newTestGateway(t, paper, jsonHandler(500, `{}`), jsonHandler(200, `{}`))

	_, err := g.GetPortfolioHistory(context.Background(), "paper", HistoryQuery{})
	assert.ErrorIs(t, err, core.ErrMalformedData)
}

func TestGateway_CloseAllPositions(t *testing.T) {
	paper := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v2/positions", r.URL.Path)
		w.WriteHeader(http.StatusMultiStatus)
		w.Write([]byte(`[
			{"symbol":"AAPL","status":200,"body":{"id":"ord-1","symbol":"AAPL","status":"accepted"}},
			{"symbol":"MSFT","status":422,"body":null}
		]`))
	})

	g := newTestGateway(t, paper, jsonHandler(500, `{}`), jsonHandler(200, `{}`))
	result, err := g.CloseAllPositions(context.Background(), "paper")
	require.NoError(t, err)
	assert.Equal(t, core.ModePaper, result.Mode)
	require.Len(t, result.Closed, 2)
	assert.Equal(t, "AAPL", result.Closed[0].Symbol)
	require.NotNil(t, result.Closed[0].Order)
	assert.Equal(t, "ord-1", result.Closed[0].Order.ID)
	assert.Equal(t, 422, result.Closed[1].Status)
	assert.Nil(t, result.Closed[1].Order)
}

func TestGateway_GetCryptoSnapshot(t *testing.T) {
	data := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta3/crypto/us/snapshots", r.URL.Path)
		require.Equal(t, "BTC/USD", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"snapshots":{"BTC/USD":{
			"latestTrade":{"p":64210.42,"s":0.01,"t":"2026-08-28T14:00:00Z"},
			"latestQuote":{"bp":64205.1,"bs":0.3,"ap":64212.9,"as":0.2,"t":"2026-08-28T14:00:00Z"}
		}}}`))
	})
	trading := jsonHandler(200, `{}`)

	g := newTestGateway(t, trading, trading, data)
	snap, err := g.GetCryptoSnapshot(context.Background(), "paper", "BTC/USD")
	require.NoError(t, err)
	assert.Equal(t, "BTC/USD", snap.Symbol)
	assert.Equal(t, 64210.42, snap.LatestTrade.Price)
	assert.Equal(t, 64205.1, snap.LatestQuote.BidPrice)
}

func TestGateway_Watchlist_Actions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/watchlists", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"wl-1","name":"tech","assets":[{"symbol":"AAPL"}]}]`))
	})
	mux.HandleFunc("POST /v2/watchlists", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "growth", body["name"])
		w.Write([]byte(`{"id":"wl-2","name":"growth","assets":[]}`))
	})
	mux.HandleFunc("GET /v2/watchlists/wl-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"wl-1","name":"tech","assets":[{"symbol":"AAPL"},{"symbol":"MSFT"}]}`))
	})
	mux.HandleFunc("POST /v2/watchlists/wl-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"wl-1","name":"tech","assets":[{"symbol":"AAPL"},{"symbol":"MSFT"},{"symbol":"NVDA"}]}`))
	})
	mux.HandleFunc("DELETE /v2/watchlists/wl-2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	g := newTestGateway(t, mux, jsonHandler(500, `{}`), jsonHandler(200, `{}`))
	ctx := context.Background()

	res, err := g.Watchlist(ctx, "paper", WatchlistList{})
	require.NoError(t, err)
	assert.Equal(t, core.ModePaper, res.Mode)
	require.Len(t, res.Watchlists, 1)
	assert.Equal(t, []string{"AAPL"}, res.Watchlists[0].Symbols)

	res, err = g.Watchlist(ctx, "paper", WatchlistCreate{Name: "growth"})
	require.NoError(t, err)
	require.NotNil(t, res.Watchlist)
	assert.Equal(t, "wl-2", res.Watchlist.ID)

	res, err = g.Watchlist(ctx, "paper", WatchlistView{ID: "wl-1"})
	require.NoError(t, err)
	require.NotNil(t, res.Watchlist)
	assert.Len(t, res.Watchlist.Symbols, 2)

	res, err = g.Watchlist(ctx, "paper", WatchlistAddSymbol{ID: "wl-1", Symbol: "NVDA"})
	require.NoError(t, err)
	require.NotNil(t, res.Watchlist)
	assert.Contains(t, res.Watchlist.Symbols, "NVDA")

	res, err = g.Watchlist(ctx, "paper", WatchlistDelete{ID: "wl-2"})
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	_, err = g.Watchlist(ctx, "paper", WatchlistCreate{})
	assert.ErrorIs(t, err, core.ErrOrderInvalid, "create requires a name")
}

// recordingAuditor captures audit records in memory.
type recordingAuditor struct {
	mu   sync.Mutex
	recs []OrderAudit
}

func (a *recordingAuditor) RecordOrder(ctx context.Context, rec OrderAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs = append(a.recs, rec)
	return nil
}

func TestGateway_PlaceOrder_Audited(t *testing.T) {
	paper := jsonHandler(200, `{"id":"ord-1","symbol":"AAPL","side":"buy","type":"market","status":"accepted",
		"created_at":"2026-08-28T14:00:00Z","submitted_at":"2026-08-28T14:00:00Z"}`)
	auditor := &recordingAuditor{}

	g := newTestGateway(t, paper, jsonHandler(500, `{}`), jsonHandler(200, `{}`), WithAuditor(auditor))
	_, err := g.PlaceOrder(context.Background(), "paper", OrderSpec{Symbol: "AAPL", Side: SideBuy, Qty: dec("1")})
	require.NoError(t, err)

	require.Len(t, auditor.recs, 1)
	assert.Equal(t, "place_order", auditor.recs[0].Operation)
	assert.Equal(t, core.ModePaper, auditor.recs[0].Mode)
	assert.Equal(t, "ord-1", auditor.recs[0].OrderID)
}

func TestGateway_ConcurrentCalls(t *testing.T) {
	paper := jsonHandler(200, accountBody)
	g := newTestGateway(t, paper, jsonHandler(200, accountBody), jsonHandler(200, `{}`))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := g.GetAccount(context.Background(), "paper")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := g.GetAccount(context.Background(), "live")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
