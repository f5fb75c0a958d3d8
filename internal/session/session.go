// Package session holds the per-session planning record.
//
// A Session is read, modified and written back by each planning step. The
// stores do not lock records, so two concurrent steps on the same session
// race and the last write wins.
package session

import (
	"time"

	"mealplanner/internal/grocery"
	"mealplanner/internal/profile"
	"mealplanner/internal/recipe"
)

// State is the position of a session in the planning flow.
type State string

const (
	StateNoInput        State = "no_input"
	StateListBuilt      State = "list_built"
	StateListApproved   State = "list_approved"
	StateRecipesMatched State = "recipes_matched"
)

// Session is the state of one user's planning session.
type Session struct {
	ID        string                `json:"id"`
	State     State                 `json:"state"`
	Input     *grocery.UserInput    `json:"input,omitempty"`
	List      *grocery.List         `json:"list,omitempty"`
	Approved  *grocery.ApprovedList `json:"approved,omitempty"`
	UpdatedAt time.Time             `json:"updatedAt"`

	// Profile is the profile the list was built from, if any. Its
	// inventory counts as pantry when the list is edited.
	Profile *profile.Profile `json:"profile,omitempty"`

	// GeneratedRecipes holds recipes produced by a generator. Catalog
	// matches are recomputed on request and never stored.
	GeneratedRecipes []*recipe.Recipe `json:"generatedRecipes,omitempty"`
}

// New returns an empty session in StateNoInput.
func New(id string) *Session {
	return &Session{ID: id, State: StateNoInput, UpdatedAt: time.Now().UTC()}
}

// SetList records a freshly built list and discards everything derived
// from the previous one, including the profile it was built from.
func (s *Session) SetList(input grocery.UserInput, list grocery.List) {
	s.Input = &input
	s.List = &list
	s.Profile = nil
	s.Approved = nil
	s.GeneratedRecipes = nil
	s.State = StateListBuilt
	s.touch()
}

// SetApproved records the user's edits.
func (s *Session) SetApproved(approved grocery.ApprovedList) {
	s.Approved = &approved
	s.GeneratedRecipes = nil
	s.State = StateListApproved
	s.touch()
}

// MarkMatched records that recipes were matched for the approved list.
func (s *Session) MarkMatched() {
	s.State = StateRecipesMatched
	s.touch()
}

// SetGeneratedRecipes records recipes produced by a generator.
func (s *Session) SetGeneratedRecipes(recipes []*recipe.Recipe) {
	s.GeneratedRecipes = recipes
	s.State = StateRecipesMatched
	s.touch()
}

// SetProfileList records a list built from prof.
func (s *Session) SetProfileList(input grocery.UserInput, list grocery.List, prof *profile.Profile) {
	s.SetList(input, list)
	s.Profile = prof
}

// Pantry returns alreadyHave extended with the profile inventory, without
// duplicates.
func (s *Session) Pantry(alreadyHave []string) []string {
	if s.Profile == nil || len(s.Profile.Inventory) == 0 {
		return alreadyHave
	}
	seen := make(map[string]bool, len(alreadyHave)+len(s.Profile.Inventory))
	out := make([]string, 0, len(alreadyHave)+len(s.Profile.Inventory))
	for _, group := range [][]string{alreadyHave, s.Profile.Inventory} {
		for _, name := range group {
			name = grocery.Normalize(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
