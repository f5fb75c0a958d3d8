package grocery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// CatalogStore defines the read and seed operations on the grocery catalog.
type CatalogStore interface {
	FetchCandidates(ctx context.Context, restrictions, preferences []string) ([]Item, error)
	SaveItem(ctx context.Context, item Item) error
}

// PostgresCatalog implements CatalogStore for PostgreSQL.
type PostgresCatalog struct {
	db *sqlx.DB
}

// NewPostgresCatalog creates a new PostgresCatalog.
func NewPostgresCatalog(db *sqlx.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

type itemRow struct {
	ID           int64   `db:"id"`
	Name         string  `db:"name"`
	Category     string  `db:"category"`
	Unit         string  `db:"unit"`
	PricePerUnit float64 `db:"price_per_unit"`
	DietaryFlags
	Preferences []byte `db:"preferences"`
}

func (r itemRow) item() (Item, error) {
	it := Item{
		Name:         r.Name,
		Category:     r.Category,
		Unit:         r.Unit,
		PricePerUnit: r.PricePerUnit,
		Flags:        r.DietaryFlags,
	}
	if len(r.Preferences) > 0 {
		if err := json.Unmarshal(r.Preferences, &it.PreferenceTags); err != nil {
			return Item{}, fmt.Errorf("failed to unmarshal preferences of %q: %w", r.Name, err)
		}
	}
	return it, nil
}

const itemColumns = "id, name, category, unit, price_per_unit, vegetarian, vegan, gluten_free, dairy_free, nut_free, shellfish_free, halal, kosher, preferences"

// FetchCandidates returns the catalog items that satisfy every known
// restriction and at least one preference, in insertion order. The
// restriction clause is evaluated by the database; preference matching
// is done here so it shares the substring rule with FilterCandidates.
func (s *PostgresCatalog) FetchCandidates(ctx context.Context, restrictions, preferences []string) ([]Item, error) {
	query := "SELECT " + itemColumns + " FROM groceries WHERE 1=1"
	for _, f := range KnownFlags(restrictions) {
		query += " AND " + f.Column()
	}
	query += " ORDER BY id"

	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get grocery candidates: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		it, err := r.item()
		if err != nil {
			return nil, err
		}
		if it.MatchesAnyPreference(preferences) {
			items = append(items, it)
		}
	}
	return items, nil
}

// SaveItem inserts a catalog row. Names are not unique at the storage level;
// duplicates are resolved when a list is built.
func (s *PostgresCatalog) SaveItem(ctx context.Context, item Item) error {
	tags := item.PreferenceTags
	if tags == nil {
		tags = []string{}
	}
	prefsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO groceries (name, category, unit, price_per_unit, vegetarian, vegan, gluten_free, dairy_free, nut_free, shellfish_free, halal, kosher, preferences) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)",
		strings.TrimSpace(item.Name),
		item.Category,
		item.Unit,
		item.PricePerUnit,
		item.Flags.Vegetarian,
		item.Flags.Vegan,
		item.Flags.GlutenFree,
		item.Flags.DairyFree,
		item.Flags.NutFree,
		item.Flags.ShellfishFree,
		item.Flags.Halal,
		item.Flags.Kosher,
		prefsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save grocery item: %w", err)
	}
	return nil
}
