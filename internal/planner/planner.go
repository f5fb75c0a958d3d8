// Package planner drives a planning session through its steps: build the
// grocery list, apply the user's edits, match recipes.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mealplanner/internal/generated"
	"mealplanner/internal/grocery"
	"mealplanner/internal/metrics"
	"mealplanner/internal/profile"
	"mealplanner/internal/recipe"
	"mealplanner/internal/session"
)

var (
	// ErrPrecondition is returned when a step runs before the step it
	// depends on has completed for the session.
	ErrPrecondition = errors.New("precondition failed")
	// ErrSessionNotFound is returned when reading a session that does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrProfileNotFound is returned when a profile-driven step finds no profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidInput is returned when the planning input fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGenerationDisabled is returned by the generation steps when no
	// generator is configured.
	ErrGenerationDisabled = errors.New("generation is not configured")
	// ErrGenerationFailed is returned when the generator fails or returns a
	// payload that does not validate. The session is left unchanged.
	ErrGenerationFailed = errors.New("generation failed")

	errNoFittingRecipe = errors.New("no generated recipe fits the approved list, restrictions and preferences")
)

// CatalogStore reads candidate grocery items.
type CatalogStore interface {
	FetchCandidates(ctx context.Context, restrictions, preferences []string) ([]grocery.Item, error)
}

// RecipeCatalog reads the recipe catalog.
type RecipeCatalog interface {
	ListRecipes(ctx context.Context) ([]*recipe.Recipe, error)
}

// ProfileStore reads user profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

// Generator produces text, expected to be a JSON document, from a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Planner runs the planning steps against the stores.
type Planner struct {
	catalog   CatalogStore
	recipes   RecipeCatalog
	sessions  session.Store
	profiles  ProfileStore
	generator Generator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	validate  *validator.Validate
}

// Option configures optional Planner collaborators.
type Option func(*Planner)

// WithGenerator enables the generation steps.
func WithGenerator(g Generator) Option {
	return func(p *Planner) { p.generator = g }
}

// WithProfiles enables profile-driven list building.
func WithProfiles(s ProfileStore) Option {
	return func(p *Planner) { p.profiles = s }
}

// WithMetrics records step outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Planner) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// New creates a Planner.
func New(catalog CatalogStore, recipes RecipeCatalog, sessions session.Store, opts ...Option) *Planner {
	p := &Planner{
		catalog:  catalog,
		recipes:  recipes,
		sessions: sessions,
		logger:   zap.NewNop(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GenerationEnabled reports whether a generator is configured.
func (p *Planner) GenerationEnabled() bool {
	return p.generator != nil
}

// Session returns the current record of a session.
func (p *Planner) Session(ctx context.Context, id string) (*session.Session, error) {
	s, err := p.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// StartSession creates an empty session.
func (p *Planner) StartSession(ctx context.Context, id string) (*session.Session, error) {
	s := session.New(id)
	if err := p.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// EndSession deletes a session.
func (p *Planner) EndSession(ctx context.Context, id string) error {
	return p.sessions.Delete(ctx, id)
}

// BuildList fetches catalog candidates for input and stores the resulting
// list in the session, creating the session if needed. Anything derived
// from an earlier list is discarded.
func (p *Planner) BuildList(ctx context.Context, sessionID string, input grocery.UserInput) (*grocery.List, error) {
	return p.buildList(ctx, sessionID, input, nil)
}

func (p *Planner) buildList(ctx context.Context, sessionID string, input grocery.UserInput, prof *profile.Profile) (*grocery.List, error) {
	if err := p.validateInput(input); err != nil {
		return nil, err
	}

	s, err := p.loadOrNew(ctx, sessionID)
	if err != nil {
		return nil, p.fail("build_list", err)
	}

	candidates, err := p.catalog.FetchCandidates(ctx, input.Restrictions, input.Preferences)
	if err != nil {
		return nil, p.fail("build_list", err)
	}
	list := grocery.BuildList(candidates, input.Budget)

	s.SetProfileList(input, list, prof)
	if err := p.sessions.Save(ctx, s); err != nil {
		return nil, p.fail("build_list", err)
	}

	p.logger.Info("grocery list built",
		zap.String("session_id", sessionID),
		zap.Int("candidates", len(candidates)),
		zap.Int("items", len(list.Items)),
		zap.Float64("total_estimated_cost", list.TotalEstimatedCost),
		zap.Bool("budget_exceeded", list.BudgetExceeded),
		zap.Bool("from_profile", prof != nil),
	)
	p.metrics.ObserveStep("build_list", "ok")
	return s.List, nil
}

// BuildListFromProfile builds a list for the session keyed by userID from
// the user's stored profile. The profile stays on the session so its
// inventory is treated as pantry when the list is edited.
func (p *Planner) BuildListFromProfile(ctx context.Context, userID string, durationDays int) (*grocery.List, error) {
	prof, err := p.loadProfile(ctx, "build_list", userID)
	if err != nil {
		return nil, err
	}
	return p.buildList(ctx, userID, prof.UserInput(durationDays), prof)
}

// GenerateListFromProfile is GenerateList driven by the user's stored
// profile. Allergies, cuisines, inventory and cooking time go into the
// prompt.
func (p *Planner) GenerateListFromProfile(ctx context.Context, userID string, durationDays int) (*grocery.List, error) {
	if p.generator == nil {
		return nil, ErrGenerationDisabled
	}
	prof, err := p.loadProfile(ctx, "generate_list", userID)
	if err != nil {
		return nil, err
	}
	return p.generateList(ctx, userID, prof.UserInput(durationDays), prof)
}

// EditList applies the user's pantry and exclusion choices to the session's
// list. For a profile-built list the profile inventory is added to
// alreadyHave.
func (p *Planner) EditList(ctx context.Context, sessionID string, alreadyHave, dontWant []string) (*grocery.ApprovedList, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, p.fail("edit_list", err)
	}
	if s == nil {
		return nil, p.fail("edit_list", fmt.Errorf("%w: %w, build a list first", ErrPrecondition, grocery.ErrNoList))
	}

	approved, err := grocery.ApplyEdits(s.List, s.Pantry(alreadyHave), dontWant)
	if err != nil {
		return nil, p.fail("edit_list", fmt.Errorf("%w: %w, build a list first", ErrPrecondition, err))
	}

	s.SetApproved(approved)
	if err := p.sessions.Save(ctx, s); err != nil {
		return nil, p.fail("edit_list", err)
	}

	p.logger.Info("grocery list edited",
		zap.String("session_id", sessionID),
		zap.Int("approved", len(approved.ApprovedItems)),
		zap.Int("pantry", len(approved.PantryItems)),
		zap.Int("removed", len(approved.RemovedItems)),
	)
	p.metrics.ObserveStep("edit_list", "ok")
	return s.Approved, nil
}

// MatchRecipes returns the catalog recipes satisfied by the session's
// approved and pantry items. The result is recomputed on every call.
func (p *Planner) MatchRecipes(ctx context.Context, sessionID string) ([]*recipe.Recipe, error) {
	s, err := p.approvedSession(ctx, sessionID)
	if err != nil {
		return nil, p.fail("match_recipes", err)
	}

	catalog, err := p.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, p.fail("match_recipes", err)
	}
	matched := recipe.Match(catalog, s.Approved.AvailableNames(), s.Input.Restrictions, s.Input.Preferences)

	s.MarkMatched()
	if err := p.sessions.Save(ctx, s); err != nil {
		return nil, p.fail("match_recipes", err)
	}

	p.logger.Info("recipes matched",
		zap.String("session_id", sessionID),
		zap.Int("catalog", len(catalog)),
		zap.Int("matched", len(matched)),
	)
	p.metrics.ObserveStep("match_recipes", "ok")
	return matched, nil
}

// GenerateList asks the generator for a grocery list instead of reading the
// catalog. On failure the session is not modified.
func (p *Planner) GenerateList(ctx context.Context, sessionID string, input grocery.UserInput) (*grocery.List, error) {
	if p.generator == nil {
		return nil, ErrGenerationDisabled
	}
	return p.generateList(ctx, sessionID, input, nil)
}

func (p *Planner) generateList(ctx context.Context, sessionID string, input grocery.UserInput, prof *profile.Profile) (*grocery.List, error) {
	if err := p.validateInput(input); err != nil {
		return nil, err
	}

	s, err := p.loadOrNew(ctx, sessionID)
	if err != nil {
		return nil, p.fail("generate_list", err)
	}

	raw, err := p.generator.GenerateContent(ctx, ListPrompt(input, prof))
	if err != nil {
		return nil, p.fail("generate_list", fmt.Errorf("%w: %w", ErrGenerationFailed, err))
	}
	list, err := generated.ParseList(raw, input.Budget)
	if err != nil {
		p.logRejected(sessionID, err)
		return nil, p.fail("generate_list", fmt.Errorf("%w: %w", ErrGenerationFailed, err))
	}

	s.SetProfileList(input, *list, prof)
	if err := p.sessions.Save(ctx, s); err != nil {
		return nil, p.fail("generate_list", err)
	}

	p.logger.Info("grocery list generated",
		zap.String("session_id", sessionID),
		zap.Int("items", len(list.Items)),
		zap.Float64("total_estimated_cost", list.TotalEstimatedCost),
	)
	p.metrics.ObserveStep("generate_list", "ok")
	return s.List, nil
}

// GenerateRecipes asks the generator for recipes that use the session's
// approved and pantry items. Generated recipes go through the same
// selection as catalog recipes; the ones that do not fit are dropped, and
// if none fit the call fails. On failure the session is not modified.
func (p *Planner) GenerateRecipes(ctx context.Context, sessionID string) ([]*recipe.Recipe, error) {
	if p.generator == nil {
		return nil, ErrGenerationDisabled
	}
	s, err := p.approvedSession(ctx, sessionID)
	if err != nil {
		return nil, p.fail("generate_recipes", err)
	}

	raw, err := p.generator.GenerateContent(ctx, RecipesPrompt(*s.Input, *s.Approved, s.Profile))
	if err != nil {
		return nil, p.fail("generate_recipes", fmt.Errorf("%w: %w", ErrGenerationFailed, err))
	}
	parsed, err := generated.ParseRecipes(raw)
	if err != nil {
		p.logRejected(sessionID, err)
		return nil, p.fail("generate_recipes", fmt.Errorf("%w: %w", ErrGenerationFailed, err))
	}
	recipes := recipe.Match(parsed, s.Approved.AvailableNames(), s.Input.Restrictions, s.Input.Preferences)
	if dropped := len(parsed) - len(recipes); dropped > 0 {
		p.logger.Warn("generated recipes dropped",
			zap.String("session_id", sessionID),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(recipes)),
		)
	}
	if len(parsed) > 0 && len(recipes) == 0 {
		return nil, p.fail("generate_recipes", fmt.Errorf("%w: %w", ErrGenerationFailed, errNoFittingRecipe))
	}

	s.SetGeneratedRecipes(recipes)
	if err := p.sessions.Save(ctx, s); err != nil {
		return nil, p.fail("generate_recipes", err)
	}

	p.logger.Info("recipes generated",
		zap.String("session_id", sessionID),
		zap.Int("recipes", len(recipes)),
	)
	p.metrics.ObserveStep("generate_recipes", "ok")
	return s.GeneratedRecipes, nil
}

func (p *Planner) approvedSession(ctx context.Context, sessionID string) (*session.Session, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Approved == nil || s.Input == nil {
		return nil, fmt.Errorf("%w: missing approved list or user input, edit the list first", ErrPrecondition)
	}
	return s, nil
}

func (p *Planner) loadProfile(ctx context.Context, step, userID string) (*profile.Profile, error) {
	if p.profiles == nil {
		return nil, ErrProfileNotFound
	}
	prof, err := p.profiles.Get(ctx, userID)
	if err != nil {
		return nil, p.fail(step, err)
	}
	if prof == nil {
		return nil, ErrProfileNotFound
	}
	return prof, nil
}

func (p *Planner) loadOrNew(ctx context.Context, sessionID string) (*session.Session, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = session.New(sessionID)
	}
	return s, nil
}

func (p *Planner) validateInput(input grocery.UserInput) error {
	if err := p.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (p *Planner) logRejected(sessionID string, err error) {
	var perr *generated.ParseError
	if errors.As(err, &perr) {
		p.logger.Warn("generated payload rejected",
			zap.String("session_id", sessionID),
			zap.Error(perr.Err),
			zap.String("raw", perr.Raw),
		)
	}
}

func (p *Planner) fail(step string, err error) error {
	outcome := "error"
	if errors.Is(err, ErrPrecondition) {
		outcome = "precondition"
	}
	p.metrics.ObserveStep(step, outcome)
	return err
}
