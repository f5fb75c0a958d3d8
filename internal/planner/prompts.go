package planner

import (
	"fmt"
	"strings"

	"mealplanner/internal/grocery"
	"mealplanner/internal/profile"
)

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

// profileBlock renders the profile constraints that UserInput does not
// carry. It is empty when prof is nil.
func profileBlock(prof *profile.Profile) string {
	if prof == nil {
		return ""
	}
	maxTime := "No limit"
	if prof.MaxTimeMinutes > 0 {
		maxTime = fmt.Sprintf("%d minutes", prof.MaxTimeMinutes)
	}
	return fmt.Sprintf(`
User profile:
- Allergies (avoid anything that may contain them): %s
- Preferred cuisines: %s
- Pantry inventory (already owned, do not buy): %s
- Max cooking time per recipe: %s
`,
		joinOrNone(prof.Allergies),
		joinOrNone(prof.Cuisines),
		joinOrNone(prof.Inventory),
		maxTime,
	)
}

// ListPrompt asks for a grocery list document for the given input. prof
// may be nil.
func ListPrompt(input grocery.UserInput, prof *profile.Profile) string {
	return fmt.Sprintf(`You are an expert nutritional meal and grocery list planner.

User inputs:
- Dietary Restrictions: %s
- Preferences: %s
- Budget: $%.2f
- Duration: %d days
%s
Generate a grocery list as a JSON object with exactly these keys:
{
  "items": [
    {"name": string, "category": one of "Protein", "Grains", "Vegetables", "Fruits", "Dairy", "Pantry", "quantity": number, "unit": string, "estimatedPrice": number}
  ]
}

Every item must honor all dietary restrictions. Keep the sum of estimatedPrice within the budget.
Return ONLY the raw JSON object. Do not wrap it in markdown code blocks.`,
		joinOrNone(input.Restrictions),
		joinOrNone(input.Preferences),
		input.Budget,
		input.DurationDays,
		profileBlock(prof),
	)
}

// RecipesPrompt asks for recipes built only from the approved and pantry
// items. prof may be nil.
func RecipesPrompt(input grocery.UserInput, approved grocery.ApprovedList, prof *profile.Profile) string {
	available := "- " + strings.Join(approved.AvailableNames(), "\n- ")
	if len(approved.AvailableNames()) == 0 {
		available = "None"
	}
	return fmt.Sprintf(`You are an expert nutritional meal planner.

Use only these available ingredients:
%s

Generate %d days of recipes following:
- Dietary Restrictions: %s
- Preferences: %s
%s
Return a JSON object with exactly this shape:
{
  "recipes": [
    {
      "title": string,
      "ingredients": [{"name": string, "qty": number, "unit": string}],
      "dietaryTags": [string],
      "instructions": string,
      "costPerServing": number
    }
  ]
}

Ingredient names must be copied exactly from the available ingredients.
dietaryTags must include every dietary restriction and preference listed above.
Return ONLY the raw JSON object. Do not wrap it in markdown code blocks.`,
		available,
		input.DurationDays,
		joinOrNone(input.Restrictions),
		joinOrNone(input.Preferences),
		profileBlock(prof),
	)
}
