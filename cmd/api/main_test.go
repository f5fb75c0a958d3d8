package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mealplanner/internal/api"
	"mealplanner/internal/database"
	"mealplanner/internal/grocery"
	"mealplanner/internal/metrics"
	"mealplanner/internal/planner"
	"mealplanner/internal/profile"
	"mealplanner/internal/recipe"
	"mealplanner/internal/session"
)

// mockCatalog is a mock of the grocery catalog store.
type mockCatalog struct {
	items    []grocery.Item
	fetchErr error
}

// FetchCandidates mocks the FetchCandidates method.
func (m *mockCatalog) FetchCandidates(ctx context.Context, restrictions, preferences []string) ([]grocery.Item, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return grocery.FilterCandidates(m.items, restrictions, preferences), nil
}

// SaveItem mocks the SaveItem method.
func (m *mockCatalog) SaveItem(ctx context.Context, item grocery.Item) error {
	m.items = append(m.items, item)
	return nil
}

// mockRecipeStore is a mock of the recipe catalog store.
type mockRecipeStore struct {
	recipes []*recipe.Recipe
	listErr error
}

// ListRecipes mocks the ListRecipes method.
func (m *mockRecipeStore) ListRecipes(ctx context.Context) ([]*recipe.Recipe, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.recipes, nil
}

// SaveRecipe mocks the SaveRecipe method.
func (m *mockRecipeStore) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	r.ID = int64(len(m.recipes) + 1)
	m.recipes = append(m.recipes, r)
	return nil
}

// mockGenerator is a mock of the LLM clients.
type mockGenerator struct {
	response string
	err      error
	block    bool
	prompts  []string
}

// GenerateContent mocks the GenerateContent method.
func (m *mockGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// mockProfileStore is a mock of the profile store.
type mockProfileStore struct {
	profiles map[string]*profile.Profile
}

// Get mocks the Get method.
func (m *mockProfileStore) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	return m.profiles[userID], nil
}

// Save mocks the Save method.
func (m *mockProfileStore) Save(ctx context.Context, p *profile.Profile) error {
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

type testServer struct {
	router    *gin.Engine
	handler   *api.Handler
	catalog   *mockCatalog
	recipes   *mockRecipeStore
	generator *mockGenerator
	profiles  *mockProfileStore
	sessions  *session.MemoryStore
}

type serverOptions struct {
	noGenerator bool
	burst       int
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		catalog:   &mockCatalog{items: database.SeedItems()},
		recipes:   &mockRecipeStore{recipes: database.SeedRecipes()},
		generator: &mockGenerator{},
		profiles:  &mockProfileStore{profiles: map[string]*profile.Profile{}},
		sessions:  session.NewMemoryStore(),
	}

	m := metrics.New()
	popts := []planner.Option{planner.WithProfiles(ts.profiles), planner.WithMetrics(m)}
	if !opts.noGenerator {
		popts = append(popts, planner.WithGenerator(ts.generator))
	}
	p := planner.New(ts.catalog, ts.recipes, ts.sessions, popts...)

	ts.handler = api.NewHandler(p, ts.catalog, ts.recipes, ts.profiles, nil, zap.NewNop())
	burst := opts.burst
	if burst == 0 {
		burst = 100
	}
	ts.router = newRouter(ts.handler, m, zap.NewNop(), []string{"http://localhost:3000"}, api.RateLimit(api.NewLimiter(60, burst)))
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// doEmpty sends a request without a body.
func (ts *testServer) doEmpty(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func veganInput(budget float64) map[string]any {
	return map[string]any{
		"restrictions": []string{"Vegan"},
		"preferences":  []string{"Quick & Easy"},
		"budget":       budget,
		"durationDays": 7,
	}
}

func TestPlanningFlow(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody[map[string]string](t, w)["session_id"]
	require.NotEmpty(t, id)

	// Tofu and Almond Milk carry "Quick & Easy"; Brown Rice does not.
	w = ts.do(t, http.MethodPost, "/sessions/"+id+"/list", veganInput(50))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decodeBody[grocery.List](t, w)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Tofu", list.Items[0].Name)
	assert.Equal(t, "Almond Milk", list.Items[1].Name)
	assert.InDelta(t, 0.0325, list.TotalEstimatedCost, 1e-9)
	assert.False(t, list.BudgetExceeded)

	w = ts.do(t, http.MethodPost, "/sessions/"+id+"/list/edit", map[string]any{
		"alreadyHave": []string{"Tofu"},
		"dontWant":    []string{"Almond Milk"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeBody[grocery.ApprovedList](t, w)
	// Tofu is both approved and in the pantry; only dontWant removes items.
	require.Len(t, approved.ApprovedItems, 1)
	assert.Equal(t, "Tofu", approved.ApprovedItems[0].Name)
	require.Len(t, approved.PantryItems, 1)
	assert.Equal(t, "Tofu", approved.PantryItems[0].Name)
	assert.Equal(t, []string{"Almond Milk"}, approved.RemovedItems)

	// Brown Rice never made the list, so the stir fry cannot be cooked.
	w = ts.do(t, http.MethodPost, "/sessions/"+id+"/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	matched := decodeBody[struct {
		Recipes []*recipe.Recipe `json:"recipes"`
	}](t, w)
	assert.Empty(t, matched.Recipes)
	assert.NotNil(t, matched.Recipes)

	w = ts.do(t, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	s := decodeBody[session.Session](t, w)
	assert.Equal(t, session.StateRecipesMatched, s.State)
	assert.Empty(t, s.GeneratedRecipes)

	w = ts.do(t, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanningFlow_RecipeMatched(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	input := veganInput(50)
	input["preferences"] = []string{}
	w := ts.do(t, http.MethodPost, "/sessions/s1/list", input)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBody[grocery.List](t, w).Items, 3)

	w = ts.do(t, http.MethodPost, "/sessions/s1/list/edit", map[string]any{"alreadyHave": []string{"Brown Rice"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/sessions/s1/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	matched := decodeBody[struct {
		Recipes []*recipe.Recipe `json:"recipes"`
	}](t, w)
	require.Len(t, matched.Recipes, 1)
	assert.Equal(t, "Tofu Stir Fry", matched.Recipes[0].Title)
}

func TestBudgetBoundary(t *testing.T) {
	tests := []struct {
		name     string
		budget   float64
		exceeded bool
	}{
		{"equal to total", 10, false},
		{"below total", 9.99, true},
		{"above total", 10.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, serverOptions{})
			ts.catalog.items = []grocery.Item{
				{Name: "Oats", PricePerUnit: 4},
				{Name: "Beans", PricePerUnit: 6},
				{Name: "Oats", PricePerUnit: 100},
			}

			w := ts.do(t, http.MethodPost, "/sessions/b/list", map[string]any{"budget": tt.budget, "durationDays": 3})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			list := decodeBody[grocery.List](t, w)
			require.Len(t, list.Items, 2)
			assert.Equal(t, 10.0, list.TotalEstimatedCost)
			assert.Equal(t, tt.exceeded, list.BudgetExceeded)
			for _, e := range list.Items {
				assert.Equal(t, float64(grocery.DefaultQuantity), e.Quantity)
			}
		})
	}
}

func TestBuildList_InvalidInput(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodPost, "/sessions/x/list", map[string]any{"budget": 0, "durationDays": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ := http.NewRequest(http.MethodPost, "/sessions/x/list", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildList_StoreError(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	ts.catalog.fetchErr = errors.New("connection refused")

	w := ts.do(t, http.MethodPost, "/sessions/x/list", veganInput(20))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	s, err := ts.sessions.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestPreconditions(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodPost, "/sessions/none/list/edit", map[string]any{})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "build a list first")

	w = ts.do(t, http.MethodPost, "/sessions/none/recipes", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/sessions/p/list", veganInput(20))
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/sessions/p/recipes", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(t, http.MethodPost, "/sessions/p/recipes/generate", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRebuildDiscardsApproval(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/r/list", veganInput(20)).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/r/list/edit", map[string]any{}).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/r/list", veganInput(20)).Code)

	w := ts.do(t, http.MethodPost, "/sessions/r/recipes", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGenerateList(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	ts.generator.response = "```json\n" + `{"items": [
		{"name": "Lentils", "category": "Legumes", "unit": "kg", "estimatedPrice": 3.5},
		{"name": "Spinach", "estimated_price": 2, "quantity": 2},
		{"name": "Lentils", "estimatedPrice": 9}
	], "totalEstimatedCost": 1}` + "\n```"

	w := ts.do(t, http.MethodPost, "/sessions/g/list/generate", veganInput(5))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decodeBody[grocery.List](t, w)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 5.5, list.TotalEstimatedCost)
	assert.True(t, list.BudgetExceeded)
	require.Len(t, ts.generator.prompts, 1)
	assert.Contains(t, ts.generator.prompts[0], "Vegan")
}

func TestGenerateList_MalformedLeavesSession(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/m/list", veganInput(20)).Code)
	before, err := ts.sessions.Get(context.Background(), "m")
	require.NoError(t, err)

	for _, raw := range []string{"no json here", `{"items": [{"category": "x"}]}`, `{"items": [{"name": "Salt"}]}`} {
		ts.generator.response = raw
		w := ts.do(t, http.MethodPost, "/sessions/m/list/generate", veganInput(20))
		assert.Equal(t, http.StatusBadGateway, w.Code, raw)
	}

	after, err := ts.sessions.Get(context.Background(), "m")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGenerateList_Timeout(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	ts.generator.block = true
	ts.handler.GenerationTimeout = 10 * time.Millisecond

	w := ts.do(t, http.MethodPost, "/sessions/t/list/generate", veganInput(20))
	assert.Equal(t, http.StatusRequestTimeout, w.Code)
}

func TestGenerateList_Disabled(t *testing.T) {
	ts := newTestServer(t, serverOptions{noGenerator: true})

	w := ts.do(t, http.MethodPost, "/sessions/d/list/generate", veganInput(20))
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestGenerateRecipes(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/gr/list", veganInput(20)).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/gr/list/edit", map[string]any{"alreadyHave": []string{"Tofu"}}).Code)

	ts.generator.response = `{"recipes": [{"id": 99, "title": "Tofu Scramble", "ingredients": [{"name": "Tofu", "qty": 150, "unit": "g"}], "dietaryTags": ["Vegan", "Quick & Easy"], "instructions": "Crumble and fry.", "costPerServing": 1.9}]}`
	w := ts.do(t, http.MethodPost, "/sessions/gr/recipes/generate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeBody[struct {
		Recipes []*recipe.Recipe `json:"recipes"`
	}](t, w)
	require.Len(t, out.Recipes, 1)
	assert.Equal(t, "Tofu Scramble", out.Recipes[0].Title)
	assert.Zero(t, out.Recipes[0].ID)
	require.Len(t, ts.generator.prompts, 1)
	assert.Contains(t, ts.generator.prompts[0], "Tofu")

	s, err := ts.sessions.Get(context.Background(), "gr")
	require.NoError(t, err)
	require.Len(t, s.GeneratedRecipes, 1)
}

func TestGenerateRecipes_OffListRejected(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/off/list", veganInput(20)).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/off/list/edit", map[string]any{}).Code)

	ts.generator.response = `{"recipes": [{"title": "Steak", "ingredients": [{"name": "Beef", "qty": 300, "unit": "g"}], "dietaryTags": []}]}`
	w := ts.do(t, http.MethodPost, "/sessions/off/recipes/generate", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())

	s, err := ts.sessions.Get(context.Background(), "off")
	require.NoError(t, err)
	assert.Empty(t, s.GeneratedRecipes)
	assert.Equal(t, session.StateListApproved, s.State)
}

func TestEditList_NoBody(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.doEmpty(t, http.MethodPost, "/sessions/nb/list/edit")
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/nb/list", veganInput(20)).Code)
	w = ts.doEmpty(t, http.MethodPost, "/sessions/nb/list/edit")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeBody[grocery.ApprovedList](t, w)
	assert.Len(t, approved.ApprovedItems, 2)
	assert.Empty(t, approved.PantryItems)
}

func TestGenerate_RateLimited(t *testing.T) {
	ts := newTestServer(t, serverOptions{burst: 1})
	ts.generator.response = `{"items": [{"name": "Oats", "estimatedPrice": 1}]}`

	w := ts.do(t, http.MethodPost, "/sessions/rl/list/generate", veganInput(20))
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/sessions/rl/list/generate", veganInput(20))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Catalog routes are not limited.
	w = ts.do(t, http.MethodPost, "/sessions/rl/list", veganInput(20))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogItems(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodGet, "/catalog/items?restrictions=vegan,gluten-free&preferences=Meal%20Prep", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeBody[struct {
		Items []grocery.Item `json:"items"`
	}](t, w)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Brown Rice", out.Items[0].Name)

	w = ts.do(t, http.MethodPost, "/catalog/items", grocery.Item{Name: "Chickpeas", PricePerUnit: 1.2, PreferenceTags: []string{"High Protein"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(t, http.MethodPost, "/catalog/items", grocery.Item{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPost, "/catalog/items", grocery.Item{Name: "Lentils", PricePerUnit: -0.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPost, "/catalog/items", grocery.Item{Name: " Oats ", PricePerUnit: 0.3})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Oats", decodeBody[grocery.Item](t, w).Name)

	w = ts.do(t, http.MethodGet, "/catalog/items?preferences=High%20Protein", nil)
	out = decodeBody[struct {
		Items []grocery.Item `json:"items"`
	}](t, w)
	assert.Len(t, out.Items, 2)
}

func TestCatalogRecipes(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodPost, "/catalog/recipes", map[string]any{
		"title":       "Rice Bowl",
		"ingredients": []map[string]any{{"name": "Brown Rice", "qty": 100, "unit": "g"}},
		"dietaryTags": []string{"Vegan"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/catalog/recipes", map[string]any{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/catalog/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeBody[struct {
		Recipes []*recipe.Recipe `json:"recipes"`
	}](t, w)
	assert.Len(t, out.Recipes, 2)
}

func TestProfileFlow(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodGet, "/users/u1/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodPost, "/users/u1/list", map[string]any{"durationDays": 7})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPut, "/users/u1/profile", map[string]any{
		"allergies":           []string{"peanuts"},
		"dietaryRestrictions": []string{"Vegan"},
		"nutritionalPrefs":    []string{"High Protein"},
		"budget":              25,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/users/u1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decodeBody[profile.Profile](t, w)
	assert.Equal(t, "u1", p.UserID)

	w = ts.do(t, http.MethodPost, "/users/u1/list", map[string]any{"durationDays": 7})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decodeBody[grocery.List](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Tofu", list.Items[0].Name)

	// The profile list lives in the session keyed by the user id.
	w = ts.do(t, http.MethodGet, "/sessions/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfileInventory(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodPut, "/users/u2/profile", map[string]any{
		"dietaryRestrictions": []string{"Vegan"},
		"cuisines":            []string{"Japanese"},
		"inventory":           []string{"Almond Milk"},
		"budget":              25,
		"maxTimeMinutes":      20,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/users/u2/list", map[string]any{"durationDays": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.doEmpty(t, http.MethodPost, "/sessions/u2/list/edit")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeBody[grocery.ApprovedList](t, w)
	require.Len(t, approved.PantryItems, 1)
	assert.Equal(t, "Almond Milk", approved.PantryItems[0].Name)

	ts.generator.response = `{"items": [{"name": "Nori", "estimatedPrice": 3}, {"name": "Tofu", "estimatedPrice": 2}]}`
	w = ts.do(t, http.MethodPost, "/users/u2/list/generate", map[string]any{"durationDays": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decodeBody[grocery.List](t, w)
	assert.Equal(t, 5.0, list.TotalEstimatedCost)

	require.Len(t, ts.generator.prompts, 1)
	assert.Contains(t, ts.generator.prompts[0], "Preferred cuisines: Japanese")
	assert.Contains(t, ts.generator.prompts[0], "Pantry inventory (already owned, do not buy): Almond Milk")
	assert.Contains(t, ts.generator.prompts[0], "Max cooking time per recipe: 20 minutes")

	w = ts.do(t, http.MethodPost, "/users/nobody/list/generate", map[string]any{"durationDays": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodPost, "/users/u2/list/generate", map[string]any{"durationDays": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	w := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	ts.do(t, http.MethodPost, "/sessions/none/recipes", nil)

	w = ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mealplanner_http_requests_total")
	assert.Contains(t, w.Body.String(), `mealplanner_planning_steps_total{outcome="precondition",step="match_recipes"} 1`)
}

func TestNewRootCmd(t *testing.T) {
	root := newRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "seed"})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
