// Package profile stores each user's dietary and budget profile and turns
// it into planning input.
package profile

import (
	"strings"
	"time"

	"mealplanner/internal/grocery"
)

// Profile is a user's saved dietary and budget profile.
type Profile struct {
	UserID              string    `json:"userId"`
	Allergies           []string  `json:"allergies"`
	Cuisines            []string  `json:"cuisines"`
	DietaryRestrictions []string  `json:"dietaryRestrictions"`
	NutritionalPrefs    []string  `json:"nutritionalPrefs"`
	Inventory           []string  `json:"inventory"`
	Budget              float64   `json:"budget" binding:"gte=0"`
	MaxTimeMinutes      int       `json:"maxTimeMinutes" binding:"gte=0"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// allergenRestrictions maps common allergy names to the restriction that
// excludes them.
var allergenRestrictions = map[string]string{
	"nut":       "Nut-Free",
	"nuts":      "Nut-Free",
	"peanut":    "Nut-Free",
	"peanuts":   "Nut-Free",
	"tree nuts": "Nut-Free",
	"shellfish": "Shellfish-Free",
	"seafood":   "Shellfish-Free",
	"gluten":    "Gluten-Free",
	"wheat":     "Gluten-Free",
	"dairy":     "Dairy-Free",
	"milk":      "Dairy-Free",
	"lactose":   "Dairy-Free",
}

// AllergyRestriction returns the restriction that covers an allergy.
func AllergyRestriction(allergy string) (string, bool) {
	r, ok := allergenRestrictions[strings.ToLower(strings.TrimSpace(allergy))]
	return r, ok
}

// UserInput derives planning input from the profile. Restrictions are the
// dietary restrictions followed by the restrictions implied by allergies;
// preferences are the nutritional preferences.
func (p *Profile) UserInput(durationDays int) grocery.UserInput {
	seen := make(map[string]bool)
	restrictions := make([]string, 0, len(p.DietaryRestrictions)+len(p.Allergies))
	add := func(r string) {
		r = strings.TrimSpace(r)
		if r == "" || strings.EqualFold(r, "none") || seen[r] {
			return
		}
		seen[r] = true
		restrictions = append(restrictions, r)
	}
	for _, r := range p.DietaryRestrictions {
		add(r)
	}
	for _, a := range p.Allergies {
		if r, ok := AllergyRestriction(a); ok {
			add(r)
		}
	}

	preferences := make([]string, 0, len(p.NutritionalPrefs))
	for _, pref := range p.NutritionalPrefs {
		if pref = strings.TrimSpace(pref); pref != "" {
			preferences = append(preferences, pref)
		}
	}

	return grocery.UserInput{
		Restrictions: restrictions,
		Preferences:  preferences,
		Budget:       p.Budget,
		DurationDays: durationDays,
	}
}
