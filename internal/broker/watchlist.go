package broker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/quantrail/brokergate/internal/core"
)

// WatchlistAction is the closed set of watchlist operations. Modeling the
// action as a sealed variant instead of a string field means an unhandled
// action is a compile-time concern, not a silent fallthrough.
type WatchlistAction interface {
	isWatchlistAction()
	name() string
}

// WatchlistList lists all watchlists.
type WatchlistList struct{}

// WatchlistCreate creates a watchlist with an optional initial membership.
type WatchlistCreate struct {
	Name    string
	Symbols []string
}

// WatchlistView fetches one watchlist with its members.
type WatchlistView struct {
	ID string
}

// WatchlistAddSymbol appends one symbol to a watchlist.
type WatchlistAddSymbol struct {
	ID     string
	Symbol string
}

// WatchlistDelete removes a watchlist.
type WatchlistDelete struct {
	ID string
}

func (WatchlistList) isWatchlistAction()      {}
func (WatchlistCreate) isWatchlistAction()    {}
func (WatchlistView) isWatchlistAction()      {}
func (WatchlistAddSymbol) isWatchlistAction() {}
func (WatchlistDelete) isWatchlistAction()    {}

func (WatchlistList) name() string      { return "watchlist_list" }
func (WatchlistCreate) name() string    { return "watchlist_create" }
func (WatchlistView) name() string      { return "watchlist_view" }
func (WatchlistAddSymbol) name() string { return "watchlist_add_symbol" }
func (WatchlistDelete) name() string    { return "watchlist_delete" }

// WatchlistResult carries the outcome of a watchlist action. Which field is
// populated depends on the action: Watchlists for list, Watchlist for
// create/view/add, Deleted for delete.
type WatchlistResult struct {
	Mode       core.Mode   `json:"mode"`
	Watchlists []Watchlist `json:"watchlists,omitempty"`
	Watchlist  *Watchlist  `json:"watchlist,omitempty"`
	Deleted    bool        `json:"deleted,omitempty"`
}

// Watchlist executes one watchlist action against the requested mode.
func (g *Gateway) Watchlist(ctx context.Context, mode string, action WatchlistAction) (*WatchlistResult, error) {
	creds, err := g.creds.ResolveRequest(mode)
	if err != nil {
		return nil, err
	}
	base := g.endpoints.Trading(creds.Mode)
	start := time.Now()

	var result *WatchlistResult
	switch a := action.(type) {
	case WatchlistList:
		result, err = g.listWatchlists(ctx, creds, base)
	case WatchlistCreate:
		result, err = g.createWatchlist(ctx, creds, base, a)
	case WatchlistView:
		result, err = g.viewWatchlist(ctx, creds, base, a)
	case WatchlistAddSymbol:
		result, err = g.addWatchlistSymbol(ctx, creds, base, a)
	case WatchlistDelete:
		result, err = g.deleteWatchlist(ctx, creds, base, a)
	default:
		// The interface is sealed; reaching this means a new variant was
		// added without a handler.
		err = core.WrapError(core.ErrOrderInvalid,
			fmt.Errorf("unhandled watchlist action %T", action))
	}

	op := "watchlist"
	if action != nil {
		op = action.name()
	}
	g.observe(op, creds.Mode, start, err)
	if err != nil {
		return nil, err
	}
	result.Mode = creds.Mode
	return result, nil
}

func (g *Gateway) listWatchlists(ctx context.Context, creds Credentials, base string) (*WatchlistResult, error) {
	var wires []watchlistWire
	if err := g.tr.Do(ctx, http.MethodGet, buildURL(base, "/v2/watchlists", nil), creds, nil, &wires); err != nil {
		return nil, err
	}
	lists := make([]Watchlist, len(wires))
	for i, w := range wires {
		lists[i] = normalizeWatchlist(w)
	}
	return &WatchlistResult{Watchlists: lists}, nil
}

func (g *Gateway) createWatchlist(ctx context.Context, creds Credentials, base string, a WatchlistCreate) (*WatchlistResult, error) {
	if a.Name == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, fmt.Errorf("watchlist name is required"))
	}
	body := map[string]any{"name": a.Name}
	if len(a.Symbols) > 0 {
		body["symbols"] = a.Symbols
	}
	var wire watchlistWire
	if err := g.tr.Do(ctx, http.MethodPost, buildURL(base, "/v2/watchlists", nil), creds, body, &wire); err != nil {
		return nil, err
	}
	wl := normalizeWatchlist(wire)
	return &WatchlistResult{Watchlist: &wl}, nil
}

func (g *Gateway) viewWatchlist(ctx context.Context, creds Credentials, base string, a WatchlistView) (*WatchlistResult, error) {
	if a.ID == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, fmt.Errorf("watchlist id is required"))
	}
	var wire watchlistWire
	if err := g.tr.Do(ctx, http.MethodGet, buildURL(base, "/v2/watchlists/"+url.PathEscape(a.ID), nil), creds, nil, &wire); err != nil {
		return nil, err
	}
	wl := normalizeWatchlist(wire)
	return &WatchlistResult{Watchlist: &wl}, nil
}

func (g *Gateway) addWatchlistSymbol(ctx context.Context, creds Credentials, base string, a WatchlistAddSymbol) (*WatchlistResult, error) {
	if a.ID == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, fmt.Errorf("watchlist id is required"))
	}
	if a.Symbol == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, errSymbolRequired)
	}
	body := map[string]any{"symbol": a.Symbol}
	var wire watchlistWire
	if err := g.tr.Do(ctx, http.MethodPost, buildURL(base, "/v2/watchlists/"+url.PathEscape(a.ID), nil), creds, body, &wire); err != nil {
		return nil, err
	}
	wl := normalizeWatchlist(wire)
	return &WatchlistResult{Watchlist: &wl}, nil
}

func (g *Gateway) deleteWatchlist(ctx context.Context, creds Credentials, base string, a WatchlistDelete) (*WatchlistResult, error) {
	if a.ID == "" {
		return nil, core.WrapError(core.ErrOrderInvalid, fmt.Errorf("watchlist id is required"))
	}
	if err := g.tr.Do(ctx, http.MethodDelete, buildURL(base, "/v2/watchlists/"+url.PathEscape(a.ID), nil), creds, nil, nil); err != nil {
		return nil, err
	}
	return &WatchlistResult{Deleted: true}, nil
}
