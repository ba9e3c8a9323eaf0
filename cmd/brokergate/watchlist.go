package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantrail/brokergate/internal/broker"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Watchlist operations",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all watchlists",
	RunE:  runWatchlistList,
}

var watchlistCreateCmd = &cobra.Command{
	Use:   "create <name> [symbols...]",
	Short: "Create a watchlist",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatchlistCreate,
}

var watchlistShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one watchlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistShow,
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <id> <symbol>",
	Short: "Add a symbol to a watchlist",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatchlistAdd,
}

var watchlistDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a watchlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistDelete,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistCreateCmd)
	watchlistCmd.AddCommand(watchlistShowCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistDeleteCmd)
}

func runWatchlistAction(action broker.WatchlistAction) (*broker.WatchlistResult, error) {
	var result *broker.WatchlistResult
	err := withGateway(func(gw *broker.Gateway, log *zap.Logger) error {
		var err error
		result, err = gw.Watchlist(context.Background(), mode, action)
		return err
	})
	return result, err
}

func runWatchlistList(cmd *cobra.Command, args []string) error {
	result, err := runWatchlistAction(broker.WatchlistList{})
	if err != nil {
		return err
	}

	if len(result.Watchlists) == 0 {
		fmt.Println("No watchlists found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSYMBOLS\t")
	fmt.Fprintln(w, "--\t----\t-------\t")
	for _, wl := range result.Watchlists {
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", wl.ID, wl.Name, strings.Join(wl.Symbols, ","))
	}
	w.Flush()
	return nil
}

func runWatchlistCreate(cmd *cobra.Command, args []string) error {
	result, err := runWatchlistAction(broker.WatchlistCreate{
		Name:    args[0],
		Symbols: args[1:],
	})
	if err != nil {
		return err
	}
	fmt.Printf("Watchlist created: %s (%s)\n", result.Watchlist.Name, result.Watchlist.ID)
	return nil
}

func runWatchlistShow(cmd *cobra.Command, args []string) error {
	result, err := runWatchlistAction(broker.WatchlistView{ID: args[0]})
	if err != nil {
		return err
	}
	wl := result.Watchlist
	fmt.Printf("Watchlist: %s (%s)\n", wl.Name, wl.ID)
	for _, s := range wl.Symbols {
		fmt.Printf("  %s\n", s)
	}
	return nil
}

func runWatchlistAdd(cmd *cobra.Command, args []string) error {
	result, err := runWatchlistAction(broker.WatchlistAddSymbol{ID: args[0], Symbol: args[1]})
	if err != nil {
		return err
	}
	fmt.Printf("Added %s to %s.\n", args[1], result.Watchlist.Name)
	return nil
}

func runWatchlistDelete(cmd *cobra.Command, args []string) error {
	if _, err := runWatchlistAction(broker.WatchlistDelete{ID: args[0]}); err != nil {
		return err
	}
	fmt.Printf("Watchlist %s deleted.\n", args[0])
	return nil
}
