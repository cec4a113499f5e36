// Package ledger maintains the portfolio ledger: one row per ticker with
// the held share quantity.
package ledger

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

// Repository handles ledger database operations. Mutations are serialized
// with a mutex; analysis runs read a snapshot once and never see partial
// writes.
type Repository struct {
	mu  sync.Mutex
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new ledger repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

// EnsureSchema creates the positions table if it does not exist.
// Schema is the flat {Stock, Quantity} record: one row per distinct ticker.
func (r *Repository) EnsureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS positions (
			ticker TEXT PRIMARY KEY,
			quantity INTEGER NOT NULL CHECK (quantity >= 0)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create positions table: %w", err)
	}
	return nil
}

// Add merges quantity into the ticker's row, inserting it on first add.
// A negative quantity is rejected with domain.ErrInvalidQuantity and the
// ledger is left unchanged.
func (r *Repository) Add(ticker string, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("add %q: %w", ticker, domain.ErrInvalidQuantity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`
		INSERT INTO positions (ticker, quantity)
		VALUES (?, ?)
		ON CONFLICT(ticker) DO UPDATE SET quantity = quantity + excluded.quantity
	`, ticker, quantity)
	if err != nil {
		return fmt.Errorf("failed to add to ledger: %w", err)
	}

	r.log.Debug().
		Str("ticker", ticker).
		Int64("quantity", quantity).
		Msg("Added to ledger")

	return nil
}

// Subtract reduces the ticker's quantity. When the held quantity is
// smaller than the request (or the row is missing) the operation is a
// deliberate no-op - the quantity never goes negative and no error is
// raised. A negative request is rejected like Add.
func (r *Repository) Subtract(ticker string, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("subtract %q: %w", ticker, domain.ErrInvalidQuantity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.Exec(`
		UPDATE positions
		SET quantity = quantity - ?
		WHERE ticker = ? AND quantity >= ?
	`, quantity, ticker, quantity)
	if err != nil {
		return fmt.Errorf("failed to subtract from ledger: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		r.log.Debug().
			Str("ticker", ticker).
			Int64("quantity", quantity).
			Msg("Subtract ignored: insufficient quantity")
	}

	return nil
}

// Get returns the ledger entry for a ticker, or nil when absent.
func (r *Repository) Get(ticker string) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := r.db.QueryRow(`SELECT ticker, quantity FROM positions WHERE ticker = ?`, ticker).
		Scan(&entry.Ticker, &entry.Quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entry: %w", err)
	}
	return &entry, nil
}

// List returns all ledger entries ordered by ticker.
func (r *Repository) List() ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(`SELECT ticker, quantity FROM positions ORDER BY ticker ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		if err := rows.Scan(&entry.Ticker, &entry.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger: %w", err)
	}

	return entries, nil
}

// Snapshot returns an immutable ticker->quantity view of the ledger.
// Analysis runs call this exactly once at the start and work off the copy.
func (r *Repository) Snapshot() (map[string]int64, error) {
	entries, err := r.List()
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]int64, len(entries))
	for _, e := range entries {
		snapshot[e.Ticker] = e.Quantity
	}
	return snapshot, nil
}
