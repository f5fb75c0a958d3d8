package recipe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for recipe catalog operations.
type Store interface {
	ListRecipes(ctx context.Context) ([]*Recipe, error)
	SaveRecipe(ctx context.Context, recipe *Recipe) error
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListRecipes returns the whole recipe catalog in insertion order.
func (s *PostgresStore) ListRecipes(ctx context.Context) ([]*Recipe, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT id, title, ingredients, dietary_tags, instructions, cost_per_serving FROM recipes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]*Recipe, 0)
	for rows.Next() {
		var r Recipe
		var ingredientsJSON, tagsJSON []byte
		err := rows.Scan(
			&r.ID,
			&r.Title,
			&ingredientsJSON,
			&tagsJSON,
			&r.Instructions,
			&r.CostPerServing,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}

		if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		if err := json.Unmarshal(tagsJSON, &r.DietaryTags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dietary tags: %w", err)
		}
		recipes = append(recipes, &r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return recipes, nil
}

// SaveRecipe inserts a recipe and sets its ID.
func (s *PostgresStore) SaveRecipe(ctx context.Context, recipe *Recipe) error {
	ingredients := recipe.Ingredients
	if ingredients == nil {
		ingredients = []Ingredient{}
	}
	tags := recipe.DietaryTags
	if tags == nil {
		tags = []string{}
	}
	ingredientsJSON, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal dietary tags: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"INSERT INTO recipes (title, ingredients, dietary_tags, instructions, cost_per_serving) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		recipe.Title,
		ingredientsJSON,
		tagsJSON,
		recipe.Instructions,
		recipe.CostPerServing,
	).Scan(&recipe.ID)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	return nil
}
