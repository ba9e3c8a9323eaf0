package broker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quantrail/brokergate/internal/core"
	"go.uber.org/zap"
)

var (
	errSymbolRequired  = errors.New("symbol is required")
	errOrderIDRequired = errors.New("order id is required")
)

func errNoSnapshot(symbol string) error {
	return fmt.Errorf("no snapshot returned for %s", symbol)
}

// Observer receives the outcome of each gateway operation, for metrics.
type Observer interface {
	ObserveOperation(op string, mode core.Mode, elapsed time.Duration, err error)
}

// Gateway is the single entry point for all brokerage operations. It is
// stateless: each call resolves credentials, routes to the mode-specific or
// shared endpoint, and returns a mode-tagged result. Any number of calls may
// be in flight concurrently.
type Gateway struct {
	creds     *CredentialStore
	endpoints Endpoints
	tr        transport
	log       *zap.Logger
	auditor   Auditor
	observer  Observer
	timeout   time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// WithTransport replaces the HTTP transport, for tests.
func WithTransport(tr transport) Option {
	return func(g *Gateway) { g.tr = tr }
}

// WithAuditor enables the order audit trail.
func WithAuditor(a Auditor) Option {
	return func(g *Gateway) { g.auditor = a }
}

// WithObserver wires operation metrics.
func WithObserver(o Observer) Option {
	return func(g *Gateway) { g.observer = o }
}

// WithTimeout sets the upstream request timeout. Ignored when a custom
// transport is supplied.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// New creates a Gateway over the given credential store and endpoints.
func New(creds *CredentialStore, endpoints Endpoints, opts ...Option) *Gateway {
	g := &Gateway{
		creds:     creds,
		endpoints: endpoints,
		log:       zap.NewNop(),
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.tr == nil {
		g.tr = NewClient(g.timeout, g.log)
	}
	return g
}

// observe reports one finished operation.
func (g *Gateway) observe(op string, mode core.Mode, start time.Time, err error) {
	if g.observer != nil {
		g.observer.ObserveOperation(op, mode, time.Since(start), err)
	}
}

// --- Account ---

// GetAccount fetches the account snapshot for the requested mode.
func (g *Gateway) GetAccount(ctx context.Context, mode string) (*Account, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var acct Account
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/account", nil),
		creds, nil, &acct)
	g.observe("get_account", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	acct.Mode = creds.Mode
	return &acct, nil
}

// --- Positions ---

// ListPositions fetches all open positions.
func (g *Gateway) ListPositions(ctx context.Context, mode string) (*PositionList, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var positions []Position
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/positions", nil),
		creds, nil, &positions)
	g.observe("list_positions", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	return &PositionList{Mode: creds.Mode, Positions: positions}, nil
}

// GetPosition fetches the open position for one symbol.
func (g *Gateway) GetPosition(ctx context.Context, mode, symbol string) (*Position, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	start := time.Now()

	var pos Position
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/positions/"+url.PathEscape(symbol), nil),
		creds, nil, &pos)
	g.observe("get_position", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	pos.Mode = creds.Mode
	return &pos, nil
}

// ClosePosition liquidates one position; the brokerage responds with the
// liquidation order it created.
func (g *Gateway) ClosePosition(ctx context.Context, mode, symbol string) (*Order, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	start := time.Now()

	var order Order
	err = g.tr.Do(ctx, http.MethodDelete,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/positions/"+url.PathEscape(symbol), nil),
		creds, nil, &order)
	g.observe("close_position", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	order.Mode = creds.Mode
	g.audit(ctx, creds.Mode, "close_position", order.ID, nil, &order)
	return &order, nil
}

// CloseAllPositions liquidates every open position. Bulk and destructive:
// callers must gate this behind explicit confirmation upstream of the
// gateway.
func (g *Gateway) CloseAllPositions(ctx context.Context, mode string) (*BulkCloseResult, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var entries []closeAllWire
	err = g.tr.Do(ctx, http.MethodDelete,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/positions", nil),
		creds, nil, &entries)
	g.observe("close_all_positions", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	result := &BulkCloseResult{Mode: creds.Mode, Closed: normalizeCloseAll(entries)}
	g.audit(ctx, creds.Mode, "close_all_positions", "", nil, result)
	return result, nil
}

// --- Orders ---

// ListOrders fetches orders matching the filter.
func (g *Gateway) ListOrders(ctx context.Context, mode string, filter OrderFilter) (*OrderList, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if len(filter.Symbols) > 0 {
		params.Set("symbols", strings.Join(filter.Symbols, ","))
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}

	var orders []Order
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/orders", params),
		creds, nil, &orders)
	g.observe("list_orders", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	return &OrderList{Mode: creds.Mode, Orders: orders}, nil
}

// GetOrder fetches one order by its server-assigned ID.
func (g *Gateway) GetOrder(ctx context.Context, mode, orderID string) (*Order, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if orderID == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errOrderIDRequired)
	}
	start := time.Now()

	var order Order
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/orders/"+url.PathEscape(orderID), nil),
		creds, nil, &order)
	g.observe("get_order", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	order.Mode = creds.Mode
	return &order, nil
}

// PlaceOrder validates the spec, builds the wire payload, and submits it.
// Validation failures surface before any network call.
func (g *Gateway) PlaceOrder(ctx context.Context, mode string, spec OrderSpec) (*Order, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	payload, err := BuildOrderPayload(spec)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var order Order
	err = g.tr.Do(ctx, http.MethodPost,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/orders", nil),
		creds, payload, &order)
	g.observe("place_order", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	order.Mode = creds.Mode
	g.log.Info("order placed",
		zap.String("mode", creds.Mode.String()),
		zap.String("symbol", order.Symbol),
		zap.String("order_id", order.ID),
		zap.String("type", order.Type),
	)
	g.audit(ctx, creds.Mode, "place_order", order.ID, payload, &order)
	return &order, nil
}

// CancelOrder cancels one open order. The brokerage answers 204 with no
// body; success is an empty result, not an error.
func (g *Gateway) CancelOrder(ctx context.Context, mode, orderID string) error {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return err
	}
	if orderID == "" {
		return core.WrapError(core.ErrOrderInvalid, errOrderIDRequired)
	}
	start := time.Now()

	err = g.tr.Do(ctx, http.MethodDelete,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/orders/"+url.PathEscape(orderID), nil),
		creds, nil, nil)
	g.observe("cancel_order", creds.Mode, start, err)
	if err != nil {
		return err
	}
	g.audit(ctx, creds.Mode, "cancel_order", orderID, nil, nil)
	return nil
}

// CancelAllOrders cancels every open order. Bulk and destructive; see
// CloseAllPositions.
func (g *Gateway) CancelAllOrders(ctx context.Context, mode string) (*BulkCancelResult, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var canceled []CancelResult
	err = g.tr.Do(ctx, http.MethodDelete,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/orders", nil),
		creds, nil, &canceled)
	g.observe("cancel_all_orders", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	result := &BulkCancelResult{Mode: creds.Mode, Canceled: canceled}
	g.audit(ctx, creds.Mode, "cancel_all_orders", "", nil, result)
	return result, nil
}

// --- Market data ---
// Data operations resolve credentials for auth but always route to the
// shared market-data endpoint: identical URLs under paper and live.

// GetSnapshot fetches the market snapshot for one equity symbol.
func (g *Gateway) GetSnapshot(ctx context.Context, mode, symbol string) (*Snapshot, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	start := time.Now()

	var wire snapshotWire
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Data(), "/v2/stocks/"+url.PathEscape(symbol)+"/snapshot", nil),
		creds, nil, &wire)
	g.observe("get_snapshot", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	snap := normalizeSnapshot(symbol, &wire)
	snap.Mode = creds.Mode
	return snap, nil
}

// GetSnapshots fetches snapshots for several equity symbols at once.
func (g *Gateway) GetSnapshots(ctx context.Context, mode string, symbols []string) (*SnapshotMap, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	start := time.Now()

	params := url.Values{"symbols": {strings.Join(symbols, ",")}}
	var wire map[string]*snapshotWire
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Data(), "/v2/stocks/snapshots", params),
		creds, nil, &wire)
	g.observe("get_snapshots", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}

	out := &SnapshotMap{Mode: creds.Mode, Snapshots: make(map[string]*Snapshot, len(wire))}
	for sym, w := range wire {
		out.Snapshots[sym] = normalizeSnapshot(sym, w)
	}
	return out, nil
}

// GetBars fetches a bar series, returned most recent first.
func (g *Gateway) GetBars(ctx context.Context, mode string, q BarsQuery) (*BarSeries, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if q.Symbol == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	if q.Timeframe == "" {
		q.Timeframe = "1Day"
	}
	start := time.Now()

	params := url.Values{"timeframe": {q.Timeframe}}
	if !q.Start.IsZero() {
		params.Set("start", q.Start.UTC().Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		params.Set("end", q.End.UTC().Format(time.RFC3339))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var wire barsWire
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Data(), "/v2/stocks/"+url.PathEscape(q.Symbol)+"/bars", params),
		creds, nil, &wire)
	g.observe("get_bars", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	if wire.Symbol == "" {
		wire.Symbol = q.Symbol
	}
	series := normalizeBars(wire, q.Timeframe)
	series.Mode = creds.Mode
	return series, nil
}

// GetCryptoSnapshot fetches the snapshot for one crypto pair, e.g. BTC/USD.
func (g *Gateway) GetCryptoSnapshot(ctx context.Context, mode, symbol string) (*Snapshot, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	start := time.Now()

	params := url.Values{"symbols": {symbol}}
	var wire struct {
		Snapshots map[string]*snapshotWire `json:"snapshots"`
	}
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Data(), "/v1beta3/crypto/us/snapshots", params),
		creds, nil, &wire)
	g.observe("get_crypto_snapshot", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}

	w, ok := wire.Snapshots[symbol]
	if !ok || w == nil {
		return nil, core.WrapError(core.ErrNotFound,
			errNoSnapshot(symbol))
	}
	snap := normalizeSnapshot(symbol, w)
	snap.Mode = creds.Mode
	return snap, nil
}

// --- Account history, clock, calendar ---

// GetPortfolioHistory fetches the account equity time series.
func (g *Gateway) GetPortfolioHistory(ctx context.Context, mode string, q HistoryQuery) (*PortfolioHistory, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	params := url.Values{}
	if q.Period != "" {
		params.Set("period", q.Period)
	}
	if q.Timeframe != "" {
		params.Set("timeframe", q.Timeframe)
	}

	var wire historyWire
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/account/portfolio/history", params),
		creds, nil, &wire)
	g.observe("get_portfolio_history", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	history, err := normalizeHistory(wire)
	if err != nil {
		return nil, err
	}
	history.Mode = creds.Mode
	return history, nil
}

// GetClock fetches the market clock.
func (g *Gateway) GetClock(ctx context.Context, mode string) (*Clock, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var clock Clock
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/clock", nil),
		creds, nil, &clock)
	g.observe("get_clock", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	clock.Mode = creds.Mode
	return &clock, nil
}

// GetCalendar fetches the trading calendar between two dates (YYYY-MM-DD,
// both optional).
func (g *Gateway) GetCalendar(ctx context.Context, mode, startDate, endDate string) (*Calendar, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	params := url.Values{}
	if startDate != "" {
		params.Set("start", startDate)
	}
	if endDate != "" {
		params.Set("end", endDate)
	}

	var days []CalendarDay
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/calendar", params),
		creds, nil, &days)
	g.observe("get_calendar", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	return &Calendar{Mode: creds.Mode, Days: days}, nil
}

// --- Option contracts ---

// SearchOptionContracts looks up listed contracts for an underlying. Option
// orders take a contract symbol from this search; the payload builder never
// fabricates one.
func (g *Gateway) SearchOptionContracts(ctx context.Context, mode string, q OptionQuery) (*OptionContractList, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	if q.UnderlyingSymbol == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	start := time.Now()

	params := url.Values{"underlying_symbols": {q.UnderlyingSymbol}}
	if q.ExpirationDate != "" {
		params.Set("expiration_date", q.ExpirationDate)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.StrikeGTE != "" {
		params.Set("strike_price_gte", q.StrikeGTE)
	}
	if q.StrikeLTE != "" {
		params.Set("strike_price_lte", q.StrikeLTE)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var wire contractsWire
	err = g.tr.Do(ctx, http.MethodGet,
		buildURL(g.endpoints.Trading(creds.Mode), "/v2/options/contracts", params),
		creds, nil, &wire)
	g.observe("search_option_contracts", creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	return &OptionContractList{Mode: creds.Mode, Contracts: wire.Contracts}, nil
}
