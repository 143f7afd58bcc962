package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osloquant/fjord/internal/config"
	"github.com/osloquant/fjord/internal/ingest"
	"github.com/osloquant/fjord/internal/logger"
)

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "List ingested instruments and their date ranges",
	RunE:  runTickers,
}

func init() {
	rootCmd.AddCommand(tickersCmd)
}

func runTickers(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Must(debug)
	defer log.Sync()

	catalog, err := ingest.LoadDir(cfg.Data.Dir, log)
	if err != nil {
		return err
	}

	for _, ticker := range catalog.Tickers() {
		in, err := catalog.Instrument(ticker)
		if err != nil {
			return err
		}
		fmt.Printf("%-14s %5d records  %s .. %s\n",
			in.Ticker(), in.Len(),
			in.FirstDate().Format("2006-01-02"),
			in.LastDate().Format("2006-01-02"))
	}
	return nil
}
