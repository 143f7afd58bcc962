package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osloquant/fjord/internal/broker"
	"github.com/osloquant/fjord/internal/config"
	"github.com/osloquant/fjord/internal/ingest"
	"github.com/osloquant/fjord/internal/logger"
	"github.com/osloquant/fjord/internal/metrics"
	"github.com/osloquant/fjord/internal/sim"
	"github.com/osloquant/fjord/internal/storage/archive"
	"github.com/osloquant/fjord/internal/strategy"
	"github.com/osloquant/fjord/internal/strategy/buyhold"
	"github.com/osloquant/fjord/internal/strategy/macross"
)

var (
	backtestFrom    string
	backtestTo      string
	backtestCash    float64
	backtestTickers []string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a strategy against historical data",
	Long:  "Run a strategy over the configured horizon and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "start date YYYY-MM-DD (overrides config)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "end date YYYY-MM-DD (overrides config)")
	backtestCmd.Flags().Float64Var(&backtestCash, "cash", 0, "initial cash (overrides config)")
	backtestCmd.Flags().StringSliceVar(&backtestTickers, "tickers", nil, "tickers the strategy trades (default: all)")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Must(debug)
	defer log.Sync()

	if backtestFrom == "" {
		backtestFrom = cfg.Backtest.From
	}
	if backtestTo == "" {
		backtestTo = cfg.Backtest.To
	}
	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return fmt.Errorf("end date must be after start date")
	}
	cash := cfg.Backtest.InitialCash
	if backtestCash > 0 {
		cash = backtestCash
	}

	catalog, err := ingest.LoadDir(cfg.Data.Dir, log)
	if err != nil {
		return err
	}
	tickers := backtestTickers
	if len(tickers) == 0 {
		tickers = catalog.Tickers()
	}

	strat, err := buildStrategy(args[0], tickers, cfg)
	if err != nil {
		return err
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry()
		go func() {
			srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: registry.Handler()}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	fees := broker.CommissionSchedule{Minimum: cfg.Brokerage.Minimum, Rate: cfg.Brokerage.Rate}
	simulator := sim.New(catalog, fees, log, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := simulator.Run(ctx, strat, sim.Options{
		From:        fromDate,
		To:          toDate,
		InitialCash: cash,
	})
	if err != nil {
		return err
	}

	printResult(result, cash)

	if cfg.Archive.Enabled {
		store, err := buildArchive(cfg)
		if err != nil {
			return err
		}
		prefix, err := archive.WriteResult(ctx, store, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nArtifacts stored under %s\n", prefix)
	}
	return nil
}

func buildStrategy(name string, tickers []string, cfg *config.Config) (strategy.Strategy, error) {
	params := map[string]any{}
	if sc, ok := cfg.Strategies[name]; ok {
		params = sc.Params
	}
	switch {
	case name == "buyhold":
		return buyhold.New(tickers), nil
	case strings.HasPrefix(name, "macross"):
		fast := intParam(params, "fast_period", 10)
		slow := intParam(params, "slow_period", 30)
		size := floatParam(params, "size_pct", 0.25)
		return macross.New(tickers, fast, slow, size)
	}
	return nil, fmt.Errorf("unknown strategy %q (have: buyhold, macross)", name)
}

func buildArchive(cfg *config.Config) (archive.Storage, error) {
	if cfg.Archive.Type == "s3" {
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	}
	return archive.NewLocalFS(cfg.Archive.Path)
}

func printResult(result *sim.Result, initialCash float64) {
	fmt.Println("=== fjord backtest ===")
	fmt.Printf("Run:      %s\n", result.RunID)
	fmt.Printf("Strategy: %s\n", result.Strategy)
	fmt.Printf("Period:   %s to %s (%d trading days)\n",
		result.From.Format("2006-01-02"), result.To.Format("2006-01-02"), result.Stats.TradingDays)
	fmt.Println()
	fmt.Printf("Orders issued:  %d\n", result.Stats.OrdersIssued)
	fmt.Printf("Orders filled:  %d\n", result.Stats.OrdersFilled)
	fmt.Printf("Brokerage paid: %.2f\n", result.Stats.BrokeragePaid)
	fmt.Println()
	if n := len(result.Equity); n > 0 {
		fmt.Printf("Opening equity: %.2f\n", initialCash)
		fmt.Printf("Closing equity: %.2f\n", result.Equity[n-1].Value)
	}
	fmt.Printf("Total return:   %.2f%%\n", result.Stats.TotalReturn)
	fmt.Printf("Max drawdown:   %.2f%%\n", result.Stats.MaxDrawdown)
	fmt.Printf("Sharpe ratio:   %.2f\n", result.Stats.SharpeRatio)

	if len(result.Portfolio) > 0 {
		fmt.Println("\nFinal holdings:")
		for _, t := range result.Portfolio.Tickers() {
			s := result.Portfolio[t]
			fmt.Printf("  %-12s %6d @ %.2f\n", s.Ticker, s.Quantity, s.Price)
		}
	}
}

func intParam(params map[string]any, key string, def int) int {
	if v, ok := params[key].(int); ok {
		return v
	}
	return def
}

func floatParam(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}
