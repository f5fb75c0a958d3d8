package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store defines the persistence operations for sessions. Get returns a nil
// session and a nil error when the session does not exist.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// PostgresStore keeps each session as a JSONB document.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get retrieves a session by id.
func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, "SELECT data FROM sessions WHERE id = $1", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Save upserts a session.
func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		"INSERT INTO sessions (id, state, data, updated_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO UPDATE SET state = $2, data = $3, updated_at = $4",
		s.ID,
		string(s.State),
		data,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
