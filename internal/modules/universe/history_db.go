package universe

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

const dateLayout = "2006-01-02"

// HistoryDB provides access to cached historical price data
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// OpenHistoryDB opens the history database file and ensures the schema exists.
func OpenHistoryDB(path string, log zerolog.Logger) (*HistoryDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	h := NewHistoryDB(db, log)
	if err := h.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return h, nil
}

// Close closes the underlying database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) ensureSchema() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_prices (
			ticker TEXT NOT NULL,
			date TEXT NOT NULL,
			open REAL,
			high REAL,
			low REAL,
			close REAL NOT NULL,
			PRIMARY KEY (ticker, date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create daily_prices table: %w", err)
	}
	return nil
}

// GetDailyPrices fetches cached daily bars for a ticker within a date range,
// ordered by date ascending.
func (h *HistoryDB) GetDailyPrices(ticker string, start, end time.Time) ([]domain.PriceBar, error) {
	query := `
		SELECT date, open, high, low, close
		FROM daily_prices
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := h.db.Query(query, ticker, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var bars []domain.PriceBar
	for rows.Next() {
		var dateStr string
		var open, high, low sql.NullFloat64
		var bar domain.PriceBar

		if err := rows.Scan(&dateStr, &open, &high, &low, &bar.Close); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		bar.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date in daily_prices: %w", err)
		}
		if open.Valid {
			bar.Open = open.Float64
		}
		if high.Valid {
			bar.High = high.Float64
		}
		if low.Valid {
			bar.Low = low.Float64
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return bars, nil
}

// SaveDailyPrices upserts a batch of daily bars for a ticker.
func (h *HistoryDB) SaveDailyPrices(ticker string, bars []domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (ticker, date, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.Exec(ticker, bar.Date.Format(dateLayout), bar.Open, bar.High, bar.Low, bar.Close); err != nil {
			return fmt.Errorf("failed to upsert daily price: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily prices: %w", err)
	}

	h.log.Debug().
		Str("ticker", ticker).
		Int("bars", len(bars)).
		Msg("Saved daily prices")

	return nil
}

// LatestDate returns the most recent stored date for a ticker, or false
// when nothing is cached.
func (h *HistoryDB) LatestDate(ticker string) (time.Time, bool, error) {
	var dateStr sql.NullString
	err := h.db.QueryRow(`SELECT MAX(date) FROM daily_prices WHERE ticker = ?`, ticker).Scan(&dateStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query latest date: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, false, nil
	}

	date, err := time.Parse(dateLayout, dateStr.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date in daily_prices: %w", err)
	}
	return date, true, nil
}
