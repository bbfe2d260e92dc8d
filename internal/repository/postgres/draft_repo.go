package postgres

import (
	"context"
	"errors"
	"fmt"

	"merchant-studio/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
)

const createSessionsTable = `
	CREATE TABLE IF NOT EXISTS authoring_sessions (
		id          TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		state       TEXT NOT NULL,
		snapshot    JSONB NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`

const upsertSession = `
	INSERT INTO authoring_sessions (id, merchant_id, state, snapshot, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET state = EXCLUDED.state, snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`

const selectSession = `SELECT snapshot FROM authoring_sessions WHERE id = $1`

const deleteSession = `DELETE FROM authoring_sessions WHERE id = $1`

// DraftRepository keeps session snapshots in Postgres so drafts survive restarts.
type DraftRepository struct {
	db DBTX
}

func NewDraftRepository(db DBTX) *DraftRepository {
	return &DraftRepository{db: db}
}

var _ domain.DraftStore = (*DraftRepository)(nil)

// EnsureSchema creates the sessions table if it is missing.
func (r *DraftRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create authoring_sessions: %w", err)
	}
	return nil
}

func (r *DraftRepository) Save(ctx context.Context, snap *domain.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", snap.ID, err)
	}
	_, err = r.db.Exec(ctx, upsertSession, snap.ID, snap.MerchantID, string(snap.State), data, snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", snap.ID, err)
	}
	return nil
}

func (r *DraftRepository) Load(ctx context.Context, id string) (*domain.SessionSnapshot, error) {
	var data []byte
	if err := r.db.QueryRow(ctx, selectSession, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var snap domain.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &snap, nil
}

func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteSession, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
