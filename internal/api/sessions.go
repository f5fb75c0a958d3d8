package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mealplanner/internal/grocery"
)

type editRequest struct {
	AlreadyHave []string `json:"alreadyHave"`
	DontWant    []string `json:"dontWant"`
}

// bindOptionalJSON binds the request body into dst. A missing or empty
// body leaves dst at its zero value.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// CreateSession starts an empty session under a new id.
func (h *Handler) CreateSession(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	s, err := h.Planner.StartSession(ctx, uuid.NewString())
	if err != nil {
		h.respondError(c, "session create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID, "state": s.State})
}

// GetSession returns the stored session record.
func (h *Handler) GetSession(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	s, err := h.Planner.Session(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, "session lookup", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteSession removes a session. Deleting an unknown session succeeds.
func (h *Handler) DeleteSession(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Planner.EndSession(ctx, c.Param("id")); err != nil {
		h.respondError(c, "session delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BuildList builds the session's grocery list from the catalog.
func (h *Handler) BuildList(c *gin.Context) {
	var input grocery.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	list, err := h.Planner.BuildList(ctx, c.Param("id"), input)
	if err != nil {
		h.respondError(c, "list build", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// EditList applies the user's pantry and exclusion choices. Omitted fields
// and an empty body mean no pantry items and no exclusions.
func (h *Handler) EditList(c *gin.Context) {
	var req editRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	approved, err := h.Planner.EditList(ctx, c.Param("id"), req.AlreadyHave, req.DontWant)
	if err != nil {
		h.respondError(c, "list edit", err)
		return
	}
	c.JSON(http.StatusOK, approved)
}

// MatchRecipes returns the catalog recipes that fit the approved list.
func (h *Handler) MatchRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.Planner.MatchRecipes(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, "recipe match", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GenerateList asks the configured generator for the session's list.
func (h *Handler) GenerateList(c *gin.Context) {
	var input grocery.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.GenerationTimeout)
	defer cancel()

	list, err := h.Planner.GenerateList(ctx, c.Param("id"), input)
	if err != nil {
		h.respondError(c, "list generation", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GenerateRecipes asks the configured generator for recipes built on the
// approved list.
func (h *Handler) GenerateRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.GenerationTimeout)
	defer cancel()

	recipes, err := h.Planner.GenerateRecipes(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, "recipe generation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
