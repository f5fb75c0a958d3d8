package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the persistence operations for profiles.
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type profileRow struct {
	UserID              string    `db:"user_id"`
	Allergies           []byte    `db:"allergies"`
	Cuisines            []byte    `db:"cuisines"`
	DietaryRestrictions []byte    `db:"dietary_restrictions"`
	NutritionalPrefs    []byte    `db:"nutritional_prefs"`
	Inventory           []byte    `db:"inventory"`
	Budget              float64   `db:"budget"`
	MaxTimeMinutes      int       `db:"max_time_minutes"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// Get retrieves a profile. A missing profile returns nil, nil.
func (s *PostgresStore) Get(ctx context.Context, userID string) (*Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, "SELECT user_id, allergies, cuisines, dietary_restrictions, nutritional_prefs, inventory, budget, max_time_minutes, updated_at FROM profiles WHERE user_id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p := &Profile{
		UserID:         row.UserID,
		Budget:         row.Budget,
		MaxTimeMinutes: row.MaxTimeMinutes,
		UpdatedAt:      row.UpdatedAt,
	}
	lists := []struct {
		data []byte
		dst  *[]string
	}{
		{row.Allergies, &p.Allergies},
		{row.Cuisines, &p.Cuisines},
		{row.DietaryRestrictions, &p.DietaryRestrictions},
		{row.NutritionalPrefs, &p.NutritionalPrefs},
		{row.Inventory, &p.Inventory},
	}
	for _, l := range lists {
		if err := json.Unmarshal(l.data, l.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
		}
	}
	return p, nil
}

// Save upserts a profile and stamps UpdatedAt.
func (s *PostgresStore) Save(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()

	encoded := make([][]byte, 0, 5)
	for _, l := range [][]string{p.Allergies, p.Cuisines, p.DietaryRestrictions, p.NutritionalPrefs, p.Inventory} {
		if l == nil {
			l = []string{}
		}
		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("failed to marshal profile: %w", err)
		}
		encoded = append(encoded, data)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO profiles (user_id, allergies, cuisines, dietary_restrictions, nutritional_prefs, inventory, budget, max_time_minutes, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (user_id) DO UPDATE SET allergies = $2, cuisines = $3, dietary_restrictions = $4, nutritional_prefs = $5, inventory = $6, budget = $7, max_time_minutes = $8, updated_at = $9",
		p.UserID,
		encoded[0],
		encoded[1],
		encoded[2],
		encoded[3],
		encoded[4],
		p.Budget,
		p.MaxTimeMinutes,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
