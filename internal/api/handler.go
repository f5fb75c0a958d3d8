package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mealplanner/internal/grocery"
	"mealplanner/internal/planner"
	"mealplanner/internal/profile"
	"mealplanner/internal/recipe"
	"mealplanner/internal/session"
)

// Planner defines the planning steps the handlers drive.
type Planner interface {
	GenerationEnabled() bool
	Session(ctx context.Context, id string) (*session.Session, error)
	StartSession(ctx context.Context, id string) (*session.Session, error)
	EndSession(ctx context.Context, id string) error
	BuildList(ctx context.Context, sessionID string, input grocery.UserInput) (*grocery.List, error)
	BuildListFromProfile(ctx context.Context, userID string, durationDays int) (*grocery.List, error)
	GenerateListFromProfile(ctx context.Context, userID string, durationDays int) (*grocery.List, error)
	EditList(ctx context.Context, sessionID string, alreadyHave, dontWant []string) (*grocery.ApprovedList, error)
	MatchRecipes(ctx context.Context, sessionID string) ([]*recipe.Recipe, error)
	GenerateList(ctx context.Context, sessionID string, input grocery.UserInput) (*grocery.List, error)
	GenerateRecipes(ctx context.Context, sessionID string) ([]*recipe.Recipe, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Default timeouts for handler calls.
const (
	DefaultTimeout           = 5 * time.Second
	DefaultGenerationTimeout = 45 * time.Second
)

// Handler handles HTTP requests.
type Handler struct {
	Planner  Planner
	Items    grocery.CatalogStore
	Recipes  recipe.Store
	Profiles profile.Store
	DB       Pinger
	Logger   *zap.Logger

	Timeout           time.Duration
	GenerationTimeout time.Duration

	validate *validator.Validate
}

// NewHandler creates a new Handler. profiles and db may be nil.
func NewHandler(p Planner, items grocery.CatalogStore, recipes recipe.Store, profiles profile.Store, db Pinger, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Planner:           p,
		Items:             items,
		Recipes:           recipes,
		Profiles:          profiles,
		DB:                db,
		Logger:            log,
		Timeout:           DefaultTimeout,
		GenerationTimeout: DefaultGenerationTimeout,
		validate:          validator.New(),
	}
}

// Register mounts the routes on r. Middleware in generate runs in front of
// the generation routes only.
func (h *Handler) Register(r gin.IRouter, generate ...gin.HandlerFunc) {
	r.GET("/healthz", h.Health)

	r.POST("/sessions", h.CreateSession)
	r.GET("/sessions/:id", h.GetSession)
	r.DELETE("/sessions/:id", h.DeleteSession)
	r.POST("/sessions/:id/list", h.BuildList)
	r.POST("/sessions/:id/list/edit", h.EditList)
	r.POST("/sessions/:id/recipes", h.MatchRecipes)
	r.POST("/sessions/:id/list/generate", chain(generate, h.GenerateList)...)
	r.POST("/sessions/:id/recipes/generate", chain(generate, h.GenerateRecipes)...)

	r.GET("/catalog/items", h.GetCatalogItems)
	r.POST("/catalog/items", h.CreateCatalogItem)
	r.GET("/catalog/recipes", h.GetCatalogRecipes)
	r.POST("/catalog/recipes", h.CreateCatalogRecipe)

	r.GET("/users/:user_id/profile", h.GetProfile)
	r.PUT("/users/:user_id/profile", h.PutProfile)
	r.POST("/users/:user_id/list", h.BuildListFromProfile)
	r.POST("/users/:user_id/list/generate", chain(generate, h.GenerateListFromProfile)...)
}

func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	out = append(out, middleware...)
	return append(out, handler)
}

// Health reports liveness, and database reachability when a database is
// configured.
func (h *Handler) Health(c *gin.Context) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			h.Logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError writes the status and body for err. op names the failed
// operation in timeout and server error messages.
func (h *Handler) respondError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusRequestTimeout:
		c.JSON(status, gin.H{"error": op + " timed out"})
		return
	case http.StatusInternalServerError:
		h.Logger.Error(op+" failed", zap.Error(err), zap.String("path", c.FullPath()))
	case http.StatusBadGateway:
		h.Logger.Warn(op+" failed", zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, planner.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, planner.ErrSessionNotFound), errors.Is(err, planner.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, planner.ErrGenerationDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, planner.ErrGenerationFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
