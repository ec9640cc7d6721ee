package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/pacta/pipeline"
)

// ErrNotFound is returned by Get when no report has the requested ID.
var ErrNotFound = errors.New("history: report not found")

// Entry is a listing row: the columns lifted out of the payload for
// browsing without decoding full reports.
type Entry struct {
	ID           string   `json:"id"`
	ContractName string   `json:"contract_name"`
	OverallRisk  *float64 `json:"overall_risk_score,omitempty"`
	AllFailed    bool     `json:"all_failed,omitempty"`
	GeneratedAt  int64    `json:"generated_at"`
}

// Store reads and writes analysis reports.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened history database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save persists a report. Saving the same report ID twice replaces the
// previous row, so re-exports stay idempotent.
func (s *Store) Save(ctx context.Context, r *pipeline.Report) error {
	payload, err := pipeline.Export(r)
	if err != nil {
		return fmt.Errorf("history: save %s: %w", r.ID, err)
	}

	var risk sql.NullFloat64
	if r.OverallRisk != nil {
		risk = sql.NullFloat64{Float64: *r.OverallRisk, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (id, contract_name, overall_risk, all_failed, generated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ContractName, risk, boolInt(r.AllFailed), r.GeneratedAt, string(payload))
	if err != nil {
		return fmt.Errorf("history: save %s: %w", r.ID, err)
	}
	return nil
}

// Get fetches one report by ID.
func (s *Store) Get(ctx context.Context, id string) (*pipeline.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: get %s: %w", id, err)
	}

	r, err := pipeline.Decode([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("history: get %s: %w", id, err)
	}
	return r, nil
}

// Recent lists the newest reports, most recent first. limit <= 0 defaults
// to 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_name, overall_risk, all_failed, generated_at
		FROM reports ORDER BY generated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var risk sql.NullFloat64
		var failed int
		if err := rows.Scan(&e.ID, &e.ContractName, &risk, &failed, &e.GeneratedAt); err != nil {
			return nil, fmt.Errorf("history: recent: %w", err)
		}
		if risk.Valid {
			v := risk.Float64
			e.OverallRisk = &v
		}
		e.AllFailed = failed != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
