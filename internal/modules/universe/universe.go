// Package universe manages the ticker universe and historical price storage.
package universe

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Universe is the immutable set of tickers available to the dashboard,
// loaded once at startup.
type Universe struct {
	tickers []string
	index   map[string]struct{}
}

// LoadUniverse reads a one-column CSV of ticker symbols (one per line).
// Blank lines are skipped and symbols are upper-cased.
func LoadUniverse(path string, log zerolog.Logger) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse universe file: %w", err)
	}

	u := &Universe{index: make(map[string]struct{})}
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(record[0]))
		if ticker == "" {
			continue
		}
		if _, seen := u.index[ticker]; seen {
			continue
		}
		u.tickers = append(u.tickers, ticker)
		u.index[ticker] = struct{}{}
	}

	log.Info().
		Int("tickers", len(u.tickers)).
		Str("path", path).
		Msg("Loaded ticker universe")

	return u, nil
}

// Tickers returns a copy of the universe ticker list.
func (u *Universe) Tickers() []string {
	out := make([]string, len(u.tickers))
	copy(out, u.tickers)
	return out
}

// Contains reports whether a ticker belongs to the universe.
func (u *Universe) Contains(ticker string) bool {
	_, ok := u.index[strings.ToUpper(ticker)]
	return ok
}
