// Package generated validates the JSON documents produced by a
// generative-text model before they enter the data model.
package generated

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"mealplanner/internal/grocery"
	"mealplanner/internal/recipe"
)

// ErrMalformed is matched by every ParseError.
var ErrMalformed = errors.New("malformed generated payload")

// ParseError reports a payload that is not JSON or does not have the
// expected shape. Raw holds the model output as received.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed generated payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformed) true for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrMalformed }

var validate = validator.New()

// ExtractJSON returns the outermost JSON object in raw, dropping markdown
// fences or prose the model wrapped around it.
func ExtractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || start > end {
		return "", errors.New("could not find JSON object in response")
	}
	return raw[start : end+1], nil
}

type listPayload struct {
	Items []entryPayload `json:"items" validate:"required,dive"`
}

type entryPayload struct {
	Name                string   `json:"name" validate:"required"`
	Category            string   `json:"category"`
	Quantity            *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit                string   `json:"unit"`
	EstimatedPrice      *float64 `json:"estimatedPrice" validate:"omitempty,gte=0"`
	EstimatedPriceSnake *float64 `json:"estimated_price" validate:"omitempty,gte=0"`
}

func (p entryPayload) entry() (grocery.Entry, error) {
	price := p.EstimatedPrice
	if price == nil {
		price = p.EstimatedPriceSnake
	}
	if price == nil {
		return grocery.Entry{}, fmt.Errorf("item %q has no estimatedPrice", p.Name)
	}
	qty := float64(grocery.DefaultQuantity)
	if p.Quantity != nil {
		qty = *p.Quantity
	}
	return grocery.Entry{
		Name:           p.Name,
		Category:       p.Category,
		Quantity:       qty,
		Unit:           p.Unit,
		EstimatedPrice: *price,
	}, nil
}

// ParseList validates a generated grocery list. The total and the budget
// flag are recomputed from the items; values claimed by the model are
// ignored.
func ParseList(raw string, budget float64) (*grocery.List, error) {
	var payload listPayload
	if err := unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	for i := range payload.Items {
		payload.Items[i].Name = strings.TrimSpace(payload.Items[i].Name)
	}
	if err := validate.Struct(&payload); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	entries := make([]grocery.Entry, 0, len(payload.Items))
	for _, p := range payload.Items {
		e, err := p.entry()
		if err != nil {
			return nil, &ParseError{Raw: raw, Err: err}
		}
		entries = append(entries, e)
	}
	list := grocery.Summarize(entries, budget)
	return &list, nil
}

type recipesPayload struct {
	Recipes []*recipe.Recipe `json:"recipes" validate:"required,dive"`
}

// ParseRecipes validates a generated recipe document of the form
// {"recipes": [...]}. Names are trimmed before validation, so a blank
// title or ingredient name is rejected.
func ParseRecipes(raw string) ([]*recipe.Recipe, error) {
	var payload recipesPayload
	if err := unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if payload.Recipes == nil {
		return nil, &ParseError{Raw: raw, Err: errors.New("missing recipes")}
	}
	recipes := make([]*recipe.Recipe, 0, len(payload.Recipes))
	for _, r := range payload.Recipes {
		if r == nil {
			continue
		}
		r.ID = 0
		r.Title = strings.TrimSpace(r.Title)
		for i := range r.Ingredients {
			r.Ingredients[i].Name = strings.TrimSpace(r.Ingredients[i].Name)
		}
		recipes = append(recipes, r)
	}
	payload.Recipes = recipes
	if err := validate.Struct(&payload); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return recipes, nil
}

func unmarshal(raw string, dst any) error {
	clean, err := ExtractJSON(raw)
	if err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	if err := json.Unmarshal([]byte(clean), dst); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}
