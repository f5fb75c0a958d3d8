package grocery

import "strings"

// Flag identifies one of the dietary attributes on DietaryFlags.
type Flag string

const (
	FlagVegetarian    Flag = "vegetarian"
	FlagVegan         Flag = "vegan"
	FlagGlutenFree    Flag = "gluten_free"
	FlagDairyFree     Flag = "dairy_free"
	FlagNutFree       Flag = "nut_free"
	FlagShellfishFree Flag = "shellfish_free"
	FlagHalal         Flag = "halal"
	FlagKosher        Flag = "kosher"
)

// Column returns the catalog column backing the flag.
func (f Flag) Column() string {
	return string(f)
}

// Has reports whether the flag is set on d.
func (d DietaryFlags) Has(f Flag) bool {
	switch f {
	case FlagVegetarian:
		return d.Vegetarian
	case FlagVegan:
		return d.Vegan
	case FlagGlutenFree:
		return d.GlutenFree
	case FlagDairyFree:
		return d.DairyFree
	case FlagNutFree:
		return d.NutFree
	case FlagShellfishFree:
		return d.ShellfishFree
	case FlagHalal:
		return d.Halal
	case FlagKosher:
		return d.Kosher
	}
	return false
}

var restrictionFlags = map[string]Flag{
	"vegetarian":    FlagVegetarian,
	"vegan":         FlagVegan,
	"glutenfree":    FlagGlutenFree,
	"dairyfree":     FlagDairyFree,
	"nutfree":       FlagNutFree,
	"shellfishfree": FlagShellfishFree,
	"halal":         FlagHalal,
	"kosher":        FlagKosher,
}

// LookupFlag maps a restriction string such as "Gluten-Free" to its flag.
func LookupFlag(restriction string) (Flag, bool) {
	key := strings.ToLower(strings.TrimSpace(restriction))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	f, ok := restrictionFlags[key]
	return f, ok
}

// KnownFlags returns the flags for the restrictions that map to one, in
// input order and without duplicates. Unknown restrictions are dropped.
func KnownFlags(restrictions []string) []Flag {
	var flags []Flag
	seen := make(map[Flag]bool)
	for _, r := range restrictions {
		f, ok := LookupFlag(r)
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		flags = append(flags, f)
	}
	return flags
}

// SatisfiesRestrictions reports whether the item carries every flag.
func (it Item) SatisfiesRestrictions(flags []Flag) bool {
	for _, f := range flags {
		if !it.Flags.Has(f) {
			return false
		}
	}
	return true
}

// MatchesAnyPreference reports whether at least one preference equals or
// is contained in one of the item's tags. No preferences matches anything.
func (it Item) MatchesAnyPreference(preferences []string) bool {
	asked := false
	for _, p := range preferences {
		p = Normalize(p)
		if p == "" {
			continue
		}
		asked = true
		for _, tag := range it.PreferenceTags {
			if strings.Contains(Normalize(tag), p) {
				return true
			}
		}
	}
	return !asked
}

// FilterCandidates keeps the items that satisfy all known restrictions and
// at least one preference. Input order and duplicates are preserved.
func FilterCandidates(items []Item, restrictions, preferences []string) []Item {
	flags := KnownFlags(restrictions)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.SatisfiesRestrictions(flags) && it.MatchesAnyPreference(preferences) {
			out = append(out, it)
		}
	}
	return out
}
