package recipe

import "strings"

// Match returns the catalog recipes whose dietary tags include every
// restriction and every preference, and whose ingredients are all in
// available. Catalog order is kept. Preferences are required here, unlike
// catalog item filtering where any one preference is enough.
func Match(catalog []*Recipe, available, restrictions, preferences []string) []*Recipe {
	have := toSet(available)
	out := make([]*Recipe, 0)
	for _, r := range catalog {
		if r == nil {
			continue
		}
		tags := toSet(r.DietaryTags)
		if !subset(restrictions, tags) || !subset(preferences, tags) {
			continue
		}
		if !subset(r.IngredientNames(), have) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = true
	}
	return set
}

func subset(values []string, set map[string]bool) bool {
	for _, v := range values {
		if !set[strings.TrimSpace(v)] {
			return false
		}
	}
	return true
}
