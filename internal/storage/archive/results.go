// internal/storage/archive/results.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/osloquant/fjord/internal/sim"
)

// resultSummary is the persisted JSON shape of a run.
type resultSummary struct {
	RunID     string    `json:"run_id"`
	Strategy  string    `json:"strategy"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	FinalCash float64   `json:"final_cash"`
	Orders    []string  `json:"orders"`
	Stats     sim.Stats `json:"stats"`
}

// WriteResult persists one run under runs/<id>/: a result.json summary
// and the full per-day ledger as ledger.csv. Returns the prefix the
// artifacts were stored under.
func WriteResult(ctx context.Context, store Storage, result *sim.Result) (string, error) {
	prefix := path.Join("runs", result.RunID)

	summary := resultSummary{
		RunID:     result.RunID,
		Strategy:  result.Strategy,
		From:      result.From,
		To:        result.To,
		FinalCash: result.FinalCash,
		Stats:     result.Stats,
	}
	for _, o := range result.Orders {
		summary.Orders = append(summary.Orders, o.String())
	}

	blob, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	if err := store.Write(ctx, path.Join(prefix, "result.json"), blob); err != nil {
		return "", fmt.Errorf("writing result.json: %w", err)
	}

	ledger, err := sim.LedgerCSV(result.Ledger)
	if err != nil {
		return "", fmt.Errorf("encoding ledger: %w", err)
	}
	if err := store.Write(ctx, path.Join(prefix, "ledger.csv"), ledger); err != nil {
		return "", fmt.Errorf("writing ledger.csv: %w", err)
	}

	return prefix, nil
}
