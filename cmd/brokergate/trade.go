package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantrail/brokergate/internal/broker"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Trading operations",
	Long:  `Commands for interacting with the brokerage (account, positions, orders).`,
}

var tradeAccountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show account information",
	RunE:  runTradeAccount,
}

var tradePositionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List open positions",
	RunE:  runTradePositions,
}

var tradeOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders",
	RunE:  runTradeOrders,
}

var tradePlaceCmd = &cobra.Command{
	Use:   "place",
	Short: "Place an order",
	RunE:  runTradePlace,
}

var tradeCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an open order",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeCancel,
}

var tradeCloseCmd = &cobra.Command{
	Use:   "close <symbol>",
	Short: "Liquidate one position",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeClose,
}

var (
	orderStatus   string
	orderSymbol   string
	orderSide     string
	orderType     string
	orderQty      string
	orderNotional string
	orderTIF      string
	orderLimit    string
	orderStop     string
	orderAsset    string
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAccountCmd)
	tradeCmd.AddCommand(tradePositionsCmd)
	tradeCmd.AddCommand(tradeOrdersCmd)
	tradeCmd.AddCommand(tradePlaceCmd)
	tradeCmd.AddCommand(tradeCancelCmd)
	tradeCmd.AddCommand(tradeCloseCmd)

	tradeOrdersCmd.Flags().StringVar(&orderStatus, "status", "open", "Filter by status (open, closed, all)")

	tradePlaceCmd.Flags().StringVar(&orderSymbol, "symbol", "", "Symbol to trade")
	tradePlaceCmd.Flags().StringVar(&orderSide, "side", "", "Order side (buy or sell)")
	tradePlaceCmd.Flags().StringVar(&orderType, "type", "market", "Order type")
	tradePlaceCmd.Flags().StringVar(&orderQty, "qty", "", "Quantity (decimal)")
	tradePlaceCmd.Flags().StringVar(&orderNotional, "notional", "", "Dollar amount (decimal)")
	tradePlaceCmd.Flags().StringVar(&orderTIF, "tif", "", "Time in force")
	tradePlaceCmd.Flags().StringVar(&orderLimit, "limit", "", "Limit price (decimal)")
	tradePlaceCmd.Flags().StringVar(&orderStop, "stop", "", "Stop price (decimal)")
	tradePlaceCmd.Flags().StringVar(&orderAsset, "asset-class", "equity", "Asset class (equity, crypto, option)")
	tradePlaceCmd.MarkFlagRequired("symbol")
	tradePlaceCmd.MarkFlagRequired("side")
}

func runTradeAccount(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		acct, err := gw.GetAccount(context.Background(), mode)
		if err != nil {
			return err
		}

		fmt.Printf("Account Summary (%s)\n", acct.Mode)
		fmt.Println("---------------")
		fmt.Printf("Status:          %s\n", acct.Status)
		fmt.Printf("Equity:          $%s\n", acct.Equity)
		fmt.Printf("Cash:            $%s\n", acct.Cash)
		fmt.Printf("Buying Power:    $%s\n", acct.BuyingPower)
		fmt.Printf("Portfolio Value: $%s\n", acct.PortfolioValue)
		fmt.Printf("Day Trades:      %d\n", acct.DaytradeCount)
		return nil
	})
}

func runTradePositions(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		list, err := gw.ListPositions(context.Background(), mode)
		if err != nil {
			return err
		}

		if len(list.Positions) == 0 {
			fmt.Println("No positions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SYMBOL\tSIDE\tQTY\tAVG ENTRY\tCURRENT\tMKT VALUE\tP&L\t")
		fmt.Fprintln(w, "------\t----\t---\t---------\t-------\t---------\t---\t")

		for _, p := range list.Positions {
			pl := p.UnrealizedPL
			if d, err := decimal.NewFromString(pl); err == nil && d.Sign() >= 0 {
				pl = "+" + pl
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				p.Symbol, p.Side, p.Qty, p.AvgEntryPrice, p.CurrentPrice, p.MarketValue, pl)
		}
		w.Flush()

		log.Info("positions listed",
			zap.String("mode", list.Mode.String()),
			zap.Int("count", len(list.Positions)))
		return nil
	})
}

func runTradeOrders(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		list, err := gw.ListOrders(context.Background(), mode, broker.OrderFilter{Status: orderStatus})
		if err != nil {
			return err
		}

		if len(list.Orders) == 0 {
			fmt.Println("No orders found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER ID\tSYMBOL\tSIDE\tTYPE\tQTY\tSTATUS\tCREATED\t")
		fmt.Fprintln(w, "--------\t------\t----\t----\t---\t------\t-------\t")

		for _, o := range list.Orders {
			qty := ""
			if o.Qty != nil {
				qty = *o.Qty
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				o.ID, o.Symbol, o.Side, o.Type, qty, o.Status,
				o.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()

		log.Info("orders listed",
			zap.String("mode", list.Mode.String()),
			zap.Int("count", len(list.Orders)))
		return nil
	})
}

func runTradePlace(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		spec := broker.OrderSpec{
			AssetClass:  broker.AssetClass(orderAsset),
			Symbol:      orderSymbol,
			Side:        broker.OrderSide(orderSide),
			Type:        broker.OrderType(orderType),
			TimeInForce: broker.TimeInForce(orderTIF),
		}

		for _, f := range []struct {
			name string
			raw  string
			dst  **decimal.Decimal
		}{
			{"qty", orderQty, &spec.Qty},
			{"notional", orderNotional, &spec.Notional},
			{"limit", orderLimit, &spec.LimitPrice},
			{"stop", orderStop, &spec.StopPrice},
		} {
			if f.raw == "" {
				continue
			}
			d, err := decimal.NewFromString(f.raw)
			if err != nil {
				return fmt.Errorf("invalid --%s value %q: %w", f.name, f.raw, err)
			}
			*f.dst = &d
		}

		order, err := gw.PlaceOrder(context.Background(), mode, spec)
		if err != nil {
			return err
		}

		fmt.Printf("Order placed (%s)\n", order.Mode)
		fmt.Printf("  ID:     %s\n", order.ID)
		fmt.Printf("  Symbol: %s\n", order.Symbol)
		fmt.Printf("  Status: %s\n", order.Status)
		return nil
	})
}

func runTradeCancel(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		if err := gw.CancelOrder(context.Background(), mode, args[0]); err != nil {
			return err
		}
		fmt.Printf("Order %s canceled.\n", args[0])
		return nil
	})
}

func runTradeClose(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		order, err := gw.ClosePosition(context.Background(), mode, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Position %s closing via order %s (%s)\n", args[0], order.ID, order.Mode)
		return nil
	})
}
