package download

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Transfer is the persisted record of one streamed download.
type Transfer struct {
	ID            string
	AssetID       string
	URL           string
	FileName      string
	Status        Status
	BytesWritten  int64
	BytesExpected int64 // -1 when the server sent no length
	Error         string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Filter specifies criteria for listing transfers.
type Filter struct {
	AssetID *string
	Status  *Status
	Limit   int // 0 means no limit
}

// Store persists transfer history.
type Store struct {
	db *sql.DB
}

// NewStore creates a transfer store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const transferColumns = `id, asset_id, url, file_name, status, bytes_written, bytes_expected, error, started_at, finished_at`

func scanTransfer(row interface{ Scan(...any) error }) (*Transfer, error) {
	t := &Transfer{}
	var finished sql.NullTime
	err := row.Scan(&t.ID, &t.AssetID, &t.URL, &t.FileName, &t.Status,
		&t.BytesWritten, &t.BytesExpected, &t.Error, &t.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		ft := finished.Time
		t.FinishedAt = &ft
	}
	return t, nil
}

// Add records a new transfer in the downloading state.
func (s *Store) Add(t *Transfer) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO transfers (`+transferColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		t.ID, t.AssetID, t.URL, t.FileName, StatusDownloading, t.BytesWritten, t.BytesExpected, t.Error, now,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}

	t.Status = StatusDownloading
	t.StartedAt = now
	return nil
}

// Get retrieves a transfer by ID.
// Returns ErrNotFound if the transfer does not exist.
func (s *Store) Get(id string) (*Transfer, error) {
	t, err := scanTransfer(s.db.QueryRow(`SELECT `+transferColumns+` FROM transfers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get transfer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transfer %s: %w", id, err)
	}
	return t, nil
}

// Transition moves a transfer to a new status, recording its byte counts
// and error text. Terminal statuses also stamp finished_at.
func (s *Store) Transition(t *Transfer, to Status) error {
	if !t.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}

	var finished *time.Time
	if to.IsTerminal() {
		now := time.Now().UTC()
		finished = &now
	}
	result, err := s.db.Exec(`
		UPDATE transfers SET status = ?, bytes_written = ?, bytes_expected = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		to, t.BytesWritten, t.BytesExpected, t.Error, finished, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transfer %s: %w", t.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transition transfer %s: %w", t.ID, ErrNotFound)
	}

	t.Status = to
	t.FinishedAt = finished
	return nil
}

// List returns transfers matching the filter, newest first.
func (s *Store) List(f Filter) ([]*Transfer, error) {
	var conditions []string
	var args []any

	if f.AssetID != nil {
		conditions = append(conditions, "asset_id = ?")
		args = append(args, *f.AssetID)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}

	query := "SELECT " + transferColumns + " FROM transfers"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}

	return results, nil
}

// Delete removes a transfer record.
// This operation is idempotent - no error is returned if it does not exist.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM transfers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transfer %s: %w", id, err)
	}
	return nil
}
