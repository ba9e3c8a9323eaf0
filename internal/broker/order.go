package broker

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/quantrail/brokergate/internal/core"
	"github.com/shopspring/decimal"
)

// AssetClass determines which payload shape and validation rules apply.
type AssetClass string

const (
	AssetEquity AssetClass = "equity"
	AssetCrypto AssetClass = "crypto"
	AssetOption AssetClass = "option"
)

// OrderSide represents the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType represents the order execution type.
type OrderType string

const (
	TypeMarket       OrderType = "market"
	TypeLimit        OrderType = "limit"
	TypeStop         OrderType = "stop"
	TypeStopLimit    OrderType = "stop_limit"
	TypeTrailingStop OrderType = "trailing_stop"
)

// TimeInForce specifies the validity window policy for an order.
type TimeInForce string

const (
	TIFDay TimeInForce = "day"
	TIFGTC TimeInForce = "gtc"
	TIFOPG TimeInForce = "opg"
	TIFCLS TimeInForce = "cls"
	TIFIOC TimeInForce = "ioc"
	TIFFOK TimeInForce = "fok"
)

// cryptoTIFs is the narrower set the brokerage accepts for crypto orders.
var cryptoTIFs = map[TimeInForce]bool{
	TIFGTC: true,
	TIFIOC: true,
}

// OrderSpec is the caller-facing order description. Numeric fields are
// decimals, not floats; they are rendered as decimal strings only when the
// wire payload is built.
type OrderSpec struct {
	AssetClass AssetClass
	Symbol     string
	Side       OrderSide
	Type       OrderType
	// Qty and Notional are mutually exclusive order sizes: unit quantity
	// versus dollar amount.
	Qty      *decimal.Decimal
	Notional *decimal.Decimal

	TimeInForce TimeInForce

	LimitPrice   *decimal.Decimal
	StopPrice    *decimal.Decimal
	TrailPrice   *decimal.Decimal
	TrailPercent *decimal.Decimal

	ExtendedHours bool

	// ClientOrderID is optional; one is generated when absent.
	ClientOrderID string
}

// OrderPayload is the wire shape of a new-order request. All numerics are
// decimal strings per the upstream convention, so no precision is lost to
// float round-tripping.
type OrderPayload struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty,omitempty"`
	Notional      string `json:"notional,omitempty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	LimitPrice    string `json:"limit_price,omitempty"`
	StopPrice     string `json:"stop_price,omitempty"`
	TrailPrice    string `json:"trail_price,omitempty"`
	TrailPercent  string `json:"trail_percent,omitempty"`
	ExtendedHours bool   `json:"extended_hours,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

func invalidOrder(format string, args ...any) error {
	return core.WrapError(core.ErrOrderInvalid, fmt.Errorf(format, args...))
}

// BuildOrderPayload validates an order spec and assembles the wire payload.
// Validation happens entirely here, before any network I/O.
func BuildOrderPayload(spec OrderSpec) (*OrderPayload, error) {
	if spec.Symbol == "" {
		return nil, invalidOrder("symbol is required")
	}
	if spec.Side != SideBuy && spec.Side != SideSell {
		return nil, invalidOrder("side must be buy or sell, got %q", spec.Side)
	}

	if spec.AssetClass == "" {
		spec.AssetClass = AssetEquity
	}
	if spec.Type == "" {
		spec.Type = TypeMarket
	}
	switch spec.Type {
	case TypeMarket, TypeLimit, TypeStop, TypeStopLimit, TypeTrailingStop:
	default:
		return nil, invalidOrder("unknown order type %q", spec.Type)
	}

	if spec.TimeInForce == "" {
		spec.TimeInForce = defaultTIF(spec.AssetClass)
	}

	var err error
	switch spec.AssetClass {
	case AssetEquity:
		err = validateEquity(spec)
	case AssetCrypto:
		err = validateCrypto(spec)
	case AssetOption:
		err = validateOption(spec)
	default:
		return nil, invalidOrder("unknown asset class %q", spec.AssetClass)
	}
	if err != nil {
		return nil, err
	}

	if err := validatePriceFields(spec); err != nil {
		return nil, err
	}

	p := &OrderPayload{
		Symbol:        spec.Symbol,
		Qty:           decimalString(spec.Qty),
		Notional:      decimalString(spec.Notional),
		Side:          string(spec.Side),
		Type:          string(spec.Type),
		TimeInForce:   string(spec.TimeInForce),
		LimitPrice:    decimalString(spec.LimitPrice),
		StopPrice:     decimalString(spec.StopPrice),
		TrailPrice:    decimalString(spec.TrailPrice),
		TrailPercent:  decimalString(spec.TrailPercent),
		ExtendedHours: spec.ExtendedHours,
		ClientOrderID: spec.ClientOrderID,
	}
	if p.ClientOrderID == "" {
		p.ClientOrderID = uuid.NewString()
	}
	return p, nil
}

func defaultTIF(class AssetClass) TimeInForce {
	if class == AssetCrypto {
		return TIFGTC
	}
	return TIFDay
}

func validateEquity(spec OrderSpec) error {
	if spec.Qty == nil && spec.Notional == nil {
		return invalidOrder("qty or notional is required")
	}
	if spec.Qty != nil && spec.Notional != nil {
		return invalidOrder("qty and notional are mutually exclusive")
	}
	if spec.Notional != nil && spec.Type != TypeMarket {
		return invalidOrder("notional orders must be market orders")
	}
	if spec.ExtendedHours && spec.Type == TypeMarket {
		return invalidOrder("extended_hours is not permitted on market orders")
	}
	return nil
}

func validateCrypto(spec OrderSpec) error {
	if spec.Qty == nil && spec.Notional == nil {
		return invalidOrder("crypto orders require exactly one of qty or notional, got neither")
	}
	if spec.Qty != nil && spec.Notional != nil {
		return invalidOrder("crypto orders require exactly one of qty or notional, got both")
	}
	if !cryptoTIFs[spec.TimeInForce] {
		return invalidOrder("time in force %q is not supported for crypto", spec.TimeInForce)
	}
	if spec.ExtendedHours {
		return invalidOrder("extended_hours does not apply to crypto")
	}
	return nil
}

// validateOption assumes the contract symbol was already resolved by a
// contract search; the builder never fabricates one.
func validateOption(spec OrderSpec) error {
	if spec.Qty == nil {
		return invalidOrder("option orders require a whole-contract qty")
	}
	if spec.Notional != nil {
		return invalidOrder("notional sizing does not apply to options")
	}
	if !spec.Qty.IsInteger() {
		return invalidOrder("option qty must be a whole number of contracts, got %s", spec.Qty)
	}
	if spec.Type != TypeMarket && spec.Type != TypeLimit {
		return invalidOrder("option orders must be market or limit, got %q", spec.Type)
	}
	if spec.TimeInForce != TIFDay {
		return invalidOrder("option orders must be day orders, got %q", spec.TimeInForce)
	}
	if spec.ExtendedHours {
		return invalidOrder("extended_hours does not apply to options")
	}
	return nil
}

// validatePriceFields enforces the per-type field presence rules shared by
// all asset classes.
func validatePriceFields(spec OrderSpec) error {
	needsLimit := spec.Type == TypeLimit || spec.Type == TypeStopLimit
	needsStop := spec.Type == TypeStop || spec.Type == TypeStopLimit

	if needsLimit && spec.LimitPrice == nil {
		return invalidOrder("limit_price is required for %s orders", spec.Type)
	}
	if !needsLimit && spec.LimitPrice != nil {
		return invalidOrder("limit_price is not permitted for %s orders", spec.Type)
	}
	if needsStop && spec.StopPrice == nil {
		return invalidOrder("stop_price is required for %s orders", spec.Type)
	}
	if !needsStop && spec.StopPrice != nil {
		return invalidOrder("stop_price is not permitted for %s orders", spec.Type)
	}

	if spec.Type == TypeTrailingStop {
		if spec.TrailPercent == nil && spec.TrailPrice == nil {
			return invalidOrder("trailing_stop orders require one of trail_percent or trail_price")
		}
		if spec.TrailPercent != nil && spec.TrailPrice != nil {
			return invalidOrder("trail_percent and trail_price are mutually exclusive")
		}
	} else if spec.TrailPercent != nil || spec.TrailPrice != nil {
		return invalidOrder("trail fields are only permitted for trailing_stop orders")
	}

	return nil
}

// decimalString renders an optional decimal as its exact string form, or
// empty when absent so omitempty drops the field.
func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
