package recipe

// Ingredient is one ingredient line of a recipe.
type Ingredient struct {
	Name string  `json:"name" validate:"required"`
	Qty  float64 `json:"qty" validate:"gte=0"`
	Unit string  `json:"unit"`
}

// Recipe represents a catalog recipe.
type Recipe struct {
	ID             int64        `json:"id,omitempty" db:"id"`
	Title          string       `json:"title" db:"title" validate:"required"`
	Ingredients    []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	DietaryTags    []string     `json:"dietaryTags"`
	Instructions   string       `json:"instructions" db:"instructions"`
	CostPerServing float64      `json:"costPerServing" db:"cost_per_serving" validate:"gte=0"`
}

// IngredientNames returns the ingredient names in recipe order.
func (r *Recipe) IngredientNames() []string {
	out := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		out = append(out, ing.Name)
	}
	return out
}
