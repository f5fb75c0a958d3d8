package grocery

// BuildList turns catalog candidates into a grocery list. Duplicate names
// keep their first occurrence. Every entry gets DefaultQuantity and is
// priced at the item's unit price; the total is the plain sum of entry
// prices and is not weighted by quantity.
func BuildList(candidates []Item, budget float64) List {
	seen := make(map[string]bool, len(candidates))
	items := make([]Entry, 0, len(candidates))
	var total float64
	for _, c := range candidates {
		name := Normalize(c.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		items = append(items, Entry{
			Name:           name,
			Category:       c.Category,
			Quantity:       DefaultQuantity,
			Unit:           c.Unit,
			EstimatedPrice: c.PricePerUnit,
		})
		total += c.PricePerUnit
	}
	return List{
		Items:              items,
		TotalEstimatedCost: total,
		BudgetExceeded:     total > budget,
	}
}

// Summarize recomputes the total and budget flag of entries that came from
// somewhere other than the catalog, deduplicating them the same way.
func Summarize(entries []Entry, budget float64) List {
	seen := make(map[string]bool, len(entries))
	items := make([]Entry, 0, len(entries))
	var total float64
	for _, e := range entries {
		e.Name = Normalize(e.Name)
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		items = append(items, e)
		total += e.EstimatedPrice
	}
	return List{
		Items:              items,
		TotalEstimatedCost: total,
		BudgetExceeded:     total > budget,
	}
}
