package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

// snapshotRepository implements domain.RecordStore on the record_snapshots table
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.RecordStore {
	return &snapshotRepository{db: db}
}

// Load retrieves the snapshot stored under key
func (r *snapshotRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT payload FROM record_snapshots WHERE key = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return payload, true, nil
}

// Save upserts the snapshot under key.
// The payload column is jsonb, so a snapshot that is not valid JSON is rejected by the database.
func (r *snapshotRepository) Save(ctx context.Context, key string, snapshot []byte) error {
	query := `
		INSERT INTO record_snapshots (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, key, string(snapshot)); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}
