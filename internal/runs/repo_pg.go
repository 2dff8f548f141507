package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGStore implements CheckpointStore using Postgres. The full run struct is
// snapshotted as jsonb; indexed columns are duplicated for lookups.
type PGStore struct {
	DB *sql.DB
}

var _ CheckpointStore = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Save(ctx context.Context, run Run) error {
	snapshot, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run snapshot: %w", err)
	}

	const query = `
INSERT INTO runs (id, fingerprint, scope, document_id, state, snapshot, failure_code, failure_message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    state = EXCLUDED.state,
    snapshot = EXCLUDED.snapshot,
    failure_code = EXCLUDED.failure_code,
    failure_message = EXCLUDED.failure_message,
    updated_at = EXCLUDED.updated_at`

	var failureCode, failureMessage sql.NullString
	if run.FailureCode != "" {
		failureCode = sql.NullString{String: run.FailureCode, Valid: true}
	}
	if run.FailureMessage != "" {
		failureMessage = sql.NullString{String: run.FailureMessage, Valid: true}
	}

	_, err = s.DB.ExecContext(ctx, query,
		run.ID,
		run.Fingerprint,
		run.Scope,
		run.DocumentID,
		string(run.State),
		snapshot,
		failureCode,
		failureMessage,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save run checkpoint: %w", err)
	}
	return nil
}

func (s *PGStore) Load(ctx context.Context, scope, runID string) (Run, error) {
	const query = `SELECT snapshot FROM runs WHERE scope = $1 AND id = $2 LIMIT 1`
	var snapshot []byte
	err := s.DB.QueryRowContext(ctx, query, scope, runID).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, fmt.Errorf("load run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(snapshot, &run); err != nil {
		return Run{}, fmt.Errorf("unmarshal run snapshot: %w", err)
	}
	return run, nil
}

func (s *PGStore) FindActiveByFingerprint(ctx context.Context, fingerprint string) (Run, bool, error) {
	const query = `
SELECT snapshot FROM runs
WHERE fingerprint = $1 AND state NOT IN ('COMMITTED', 'REJECTED', 'CANCELLED', 'FAILED')
LIMIT 1`
	var snapshot []byte
	err := s.DB.QueryRowContext(ctx, query, fingerprint).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, fmt.Errorf("find active run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(snapshot, &run); err != nil {
		return Run{}, false, fmt.Errorf("unmarshal run snapshot: %w", err)
	}
	return run, true, nil
}

func (s *PGStore) ListByScope(ctx context.Context, scope string, limit, offset int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT snapshot FROM runs
WHERE scope = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := s.DB.QueryContext(ctx, query, scope, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var run Run
		if err := json.Unmarshal(snapshot, &run); err != nil {
			return nil, fmt.Errorf("unmarshal run snapshot: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
