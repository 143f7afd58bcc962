package sim

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// LedgerCSV renders the run's per-day ledger as CSV.
func LedgerCSV(ledger []LedgerRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"day",
		"orders",
		"fills",
		"brokerage",
		"cash",
		"holdings",
		"equity",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range ledger {
		row := []string{
			r.Day.Format("2006-01-02"),
			strconv.Itoa(r.Orders),
			strconv.Itoa(r.Fills),
			fmtFloat(r.Brokerage),
			fmtFloat(r.Cash),
			fmtFloat(r.Holdings),
			fmtFloat(r.Equity),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
