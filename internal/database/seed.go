package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mealplanner/internal/grocery"
	"mealplanner/internal/recipe"
)

var allFlags = grocery.DietaryFlags{
	Vegetarian: true, Vegan: true, GlutenFree: true, DairyFree: true,
	NutFree: true, ShellfishFree: true, Halal: true, Kosher: true,
}

// SeedItems is the starter grocery catalog.
func SeedItems() []grocery.Item {
	return []grocery.Item{
		{Name: "Tofu", Category: "Protein", Unit: "g", PricePerUnit: 0.0125, Flags: allFlags, PreferenceTags: []string{"High Protein", "Quick & Easy"}},
		{Name: "Brown Rice", Category: "Grains", Unit: "g", PricePerUnit: 0.007, Flags: allFlags, PreferenceTags: []string{"Balanced", "Meal Prep"}},
		{Name: "Almond Milk", Category: "Dairy Alternative", Unit: "ml", PricePerUnit: 0.02, Flags: allFlags, PreferenceTags: []string{"Low Carb / Keto", "Quick & Easy"}},
	}
}

// SeedRecipes is the starter recipe catalog.
func SeedRecipes() []*recipe.Recipe {
	return []*recipe.Recipe{
		{
			Title: "Tofu Stir Fry",
			Ingredients: []recipe.Ingredient{
				{Name: "Tofu", Qty: 200, Unit: "g"},
				{Name: "Brown Rice", Qty: 100, Unit: "g"},
			},
			DietaryTags:    []string{"Vegan", "Quick & Easy"},
			Instructions:   "Cook tofu and rice together with veggies.",
			CostPerServing: 3.5,
		},
	}
}

// Seed inserts the starter catalog. Items and recipes whose name or title
// is already stored are skipped, so running it again adds nothing.
func Seed(ctx context.Context, items grocery.CatalogStore, recipes recipe.Store, log *zap.Logger) error {
	existingItems, err := items.FetchCandidates(ctx, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to read grocery catalog: %w", err)
	}
	haveItem := make(map[string]bool, len(existingItems))
	for _, it := range existingItems {
		haveItem[grocery.Normalize(it.Name)] = true
	}

	existingRecipes, err := recipes.ListRecipes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read recipe catalog: %w", err)
	}
	haveRecipe := make(map[string]bool, len(existingRecipes))
	for _, r := range existingRecipes {
		haveRecipe[strings.TrimSpace(r.Title)] = true
	}

	var addedItems, addedRecipes int
	for _, it := range SeedItems() {
		if haveItem[it.Name] {
			continue
		}
		if err := items.SaveItem(ctx, it); err != nil {
			return fmt.Errorf("failed to seed item %q: %w", it.Name, err)
		}
		addedItems++
	}
	for _, r := range SeedRecipes() {
		if haveRecipe[r.Title] {
			continue
		}
		if err := recipes.SaveRecipe(ctx, r); err != nil {
			return fmt.Errorf("failed to seed recipe %q: %w", r.Title, err)
		}
		addedRecipes++
	}
	log.Info("catalog seeded", zap.Int("items", addedItems), zap.Int("recipes", addedRecipes))
	return nil
}
