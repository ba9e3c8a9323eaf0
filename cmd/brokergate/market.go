package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantrail/brokergate/internal/broker"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Market data operations",
}

var marketSnapshotCmd = &cobra.Command{
	Use:   "snapshot <symbol>",
	Short: "Show the market snapshot for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketSnapshot,
}

var marketBarsCmd = &cobra.Command{
	Use:   "bars <symbol>",
	Short: "Show recent bars for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketBars,
}

var marketClockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Show the market clock",
	RunE:  runMarketClock,
}

var (
	barsTimeframe  string
	barsLimit      int
	snapshotCrypto bool
)

func init() {
	rootCmd.AddCommand(marketCmd)
	marketCmd.AddCommand(marketSnapshotCmd)
	marketCmd.AddCommand(marketBarsCmd)
	marketCmd.AddCommand(marketClockCmd)

	marketSnapshotCmd.Flags().BoolVar(&snapshotCrypto, "crypto", false, "Treat the symbol as a crypto pair")
	marketBarsCmd.Flags().StringVar(&barsTimeframe, "timeframe", "1Day", "Bar timeframe (1Min, 1Hour, 1Day)")
	marketBarsCmd.Flags().IntVar(&barsLimit, "limit", 10, "Maximum number of bars")
}

func runMarketSnapshot(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		ctx := context.Background()

		var snap *broker.Snapshot
		var err error
		if snapshotCrypto {
			snap, err = gw.GetCryptoSnapshot(ctx, mode, args[0])
		} else {
			snap, err = gw.GetSnapshot(ctx, mode, args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("Snapshot: %s\n", snap.Symbol)
		if snap.LatestTrade != nil {
			fmt.Printf("  Last Trade: %.4f (size %.0f) at %s\n",
				snap.LatestTrade.Price, snap.LatestTrade.Size,
				snap.LatestTrade.Timestamp.Format("15:04:05"))
		}
		if snap.LatestQuote != nil {
			fmt.Printf("  Bid/Ask:    %.4f / %.4f\n",
				snap.LatestQuote.BidPrice, snap.LatestQuote.AskPrice)
		}
		if snap.DailyBar != nil {
			fmt.Printf("  Day OHLC:   %.2f %.2f %.2f %.2f (vol %.0f)\n",
				snap.DailyBar.Open, snap.DailyBar.High,
				snap.DailyBar.Low, snap.DailyBar.Close, snap.DailyBar.Volume)
		}
		return nil
	})
}

func runMarketBars(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		series, err := gw.GetBars(context.Background(), mode, broker.BarsQuery{
			Symbol:    args[0],
			Timeframe: barsTimeframe,
			Limit:     barsLimit,
		})
		if err != nil {
			return err
		}

		if len(series.Bars) == 0 {
			fmt.Println("No bars returned.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME\t")
		fmt.Fprintln(w, "----\t----\t----\t---\t-----\t------\t")
		for _, b := range series.Bars {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.0f\t\n",
				b.Timestamp.Format("2006-01-02 15:04"),
				b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		w.Flush()
		return nil
	})
}

func runMarketClock(cmd *cobra.Command, args []string) error {
	return withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		clock, err := gw.GetClock(context.Background(), mode)
		if err != nil {
			return err
		}

		state := "CLOSED"
		if clock.IsOpen {
			state = "OPEN"
		}
		fmt.Printf("Market: %s\n", state)
		fmt.Printf("  Next Open:  %s\n", clock.NextOpen.Format("2006-01-02 15:04 MST"))
		fmt.Printf("  Next Close: %s\n", clock.NextClose.Format("2006-01-02 15:04 MST"))
		return nil
	})
}
