package grocery

import "strings"

// DefaultQuantity is the quantity assigned to every list entry. It does not
// scale with the planning duration.
const DefaultQuantity = 1

// DietaryFlags holds the dietary attributes of a catalog item.
type DietaryFlags struct {
	Vegetarian    bool `json:"vegetarian" db:"vegetarian"`
	Vegan         bool `json:"vegan" db:"vegan"`
	GlutenFree    bool `json:"glutenFree" db:"gluten_free"`
	DairyFree     bool `json:"dairyFree" db:"dairy_free"`
	NutFree       bool `json:"nutFree" db:"nut_free"`
	ShellfishFree bool `json:"shellfishFree" db:"shellfish_free"`
	Halal         bool `json:"halal" db:"halal"`
	Kosher        bool `json:"kosher" db:"kosher"`
}

// Item represents a grocery catalog row.
type Item struct {
	Name           string       `json:"name" db:"name" validate:"required"`
	Category       string       `json:"category" db:"category"`
	Unit           string       `json:"unit" db:"unit"`
	PricePerUnit   float64      `json:"pricePerUnit" db:"price_per_unit" validate:"gte=0"`
	Flags          DietaryFlags `json:"dietaryFlags"`
	PreferenceTags []string     `json:"preferenceTags"`
}

// UserInput is what the user submits to start a planning session.
type UserInput struct {
	Restrictions []string `json:"restrictions"`
	Preferences  []string `json:"preferences"`
	Budget       float64  `json:"budget" binding:"gt=0" validate:"gt=0"`
	DurationDays int      `json:"durationDays" binding:"gt=0" validate:"gt=0"`
}

// Entry is one line of a grocery list.
type Entry struct {
	Name           string  `json:"name" validate:"required"`
	Category       string  `json:"category"`
	Quantity       float64 `json:"quantity" validate:"gte=0"`
	Unit           string  `json:"unit"`
	EstimatedPrice float64 `json:"estimatedPrice" validate:"gte=0"`
}

// List is a generated grocery list.
type List struct {
	Items              []Entry `json:"items"`
	TotalEstimatedCost float64 `json:"totalEstimatedCost"`
	BudgetExceeded     bool    `json:"budgetExceeded"`
}

// ApprovedList is the result of applying the user's edits to a List.
// ApprovedItems and PantryItems are computed independently from the same
// source list, so an item can appear in both.
type ApprovedList struct {
	ApprovedItems []Entry  `json:"approvedItems"`
	PantryItems   []Entry  `json:"pantryItems"`
	RemovedItems  []string `json:"removedItems"`
}

// AvailableNames returns the names of every approved and pantry item,
// without duplicates, in the order they first appear.
func (a *ApprovedList) AvailableNames() []string {
	seen := make(map[string]bool, len(a.ApprovedItems)+len(a.PantryItems))
	names := make([]string, 0, len(a.ApprovedItems)+len(a.PantryItems))
	for _, group := range [][]Entry{a.ApprovedItems, a.PantryItems} {
		for _, e := range group {
			name := Normalize(e.Name)
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Normalize trims surrounding whitespace. Name comparisons are otherwise
// exact and case-sensitive.
func Normalize(name string) string {
	return strings.TrimSpace(name)
}

// NameSet builds a membership set of normalized names.
func NameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[Normalize(n)] = true
	}
	return set
}
