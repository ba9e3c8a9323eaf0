package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	mode    string
)

var rootCmd = &cobra.Command{
	Use:   "brokergate",
	Short: "brokergate - dual-mode brokerage trading gateway",
	Long: `brokergate mediates between trading hosts and a remote brokerage API.
It supports paper and live trading modes with separate credentials and
never falls back from one mode to the other.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "", "trading mode (paper or live)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
