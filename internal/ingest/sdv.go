// Package ingest reads the semicolon-delimited daily history feed
// ("sdv") into the market store. One file holds one instrument; lines
// arrive mostly sorted, but the source has been seen with swapped
// samples, so records are re-sorted by date before the store's
// strictly-increasing invariant is checked.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/osloquant/fjord/internal/core"
	"github.com/osloquant/fjord/internal/market"
)

// Header is the expected first line of an sdv file.
const Header = "quote_date;paper;exch;open;high;low;close;volume;value"

const dateLayout = "20060102"

// Reader parses sdv feeds. Malformed lines are logged and skipped, the
// way the scraper that produces them reports bad rows; structural
// problems (wrong header, duplicate dates) fail the whole file.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a Reader. A nil logger disables line diagnostics.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// Read parses one instrument's records from r. The returned records
// are sorted ascending by date; duplicate dates fail with
// ErrBadRecord.
func (rd *Reader) Read(r io.Reader, ticker string) ([]core.Record, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, core.WrapError(core.ErrBadRecord, fmt.Errorf("%s: empty feed", ticker))
	}
	if header := strings.TrimSpace(scanner.Text()); header != Header {
		return nil, core.WrapError(core.ErrBadRecord, fmt.Errorf("%s: unexpected header %q", ticker, header))
	}

	var records []core.Record
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			rd.logger.Warn("skipping malformed line",
				zap.String("ticker", ticker),
				zap.Int("line", lineNum),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// The source has been seen with swapped samples; sort before the
	// store validates strict ordering.
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	for i := 1; i < len(records); i++ {
		if records[i].Date.Equal(records[i-1].Date) {
			return nil, core.WrapError(core.ErrBadRecord,
				fmt.Errorf("%s: duplicate date %s", ticker, records[i].Date.Format("2006-01-02")))
		}
	}
	return records, nil
}

func parseLine(line string) (core.Record, error) {
	fields := strings.Split(line, ";")
	if len(fields) != 9 {
		return core.Record{}, fmt.Errorf("want 9 fields, got %d", len(fields))
	}

	date, err := time.Parse(dateLayout, fields[0])
	if err != nil {
		return core.Record{}, fmt.Errorf("quote_date: %w", err)
	}

	open, err := parsePrice(fields[3])
	if err != nil {
		return core.Record{}, fmt.Errorf("open: %w", err)
	}
	high, err := parsePrice(fields[4])
	if err != nil {
		return core.Record{}, fmt.Errorf("high: %w", err)
	}
	low, err := parsePrice(fields[5])
	if err != nil {
		return core.Record{}, fmt.Errorf("low: %w", err)
	}
	cls, err := parsePrice(fields[6])
	if err != nil {
		return core.Record{}, fmt.Errorf("close: %w", err)
	}
	volume, err := parseVolume(fields[7])
	if err != nil {
		return core.Record{}, fmt.Errorf("volume: %w", err)
	}
	value, err := parsePrice(fields[8])
	if err != nil {
		return core.Record{}, fmt.Errorf("value: %w", err)
	}

	return core.Record{
		Date:   core.Day(date),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Value:  value,
		Volume: volume,
	}, nil
}

// parsePrice reads a price column; an empty column means the feed did
// not quote it.
func parsePrice(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseVolume(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	// Some feeds publish volume with a decimal part.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// LoadDir builds a catalog from a directory of <TICKER>.sdv files.
func LoadDir(dir string, logger *zap.Logger) (*market.Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.sdv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, core.WrapError(core.ErrBadRecord, fmt.Errorf("no .sdv files in %s", dir))
	}
	sort.Strings(matches)

	rd := NewReader(logger)
	catalog := market.NewCatalog()
	for _, path := range matches {
		ticker := strings.TrimSuffix(filepath.Base(path), ".sdv")

		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		records, err := rd.Read(f, ticker)
		f.Close()
		if err != nil {
			return nil, err
		}

		in, err := market.NewInstrument(ticker, "", records)
		if err != nil {
			return nil, err
		}
		if err := catalog.Add(in); err != nil {
			return nil, err
		}
		logger.Debug("loaded instrument",
			zap.String("ticker", ticker),
			zap.Int("records", in.Len()))
	}
	logger.Info("catalog loaded",
		zap.String("dir", dir),
		zap.Int("instruments", catalog.Size()))
	return catalog, nil
}
