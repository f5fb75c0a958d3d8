package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mealplanner/internal/planner"
	"mealplanner/internal/profile"
)

var errProfilesDisabled = errors.New("profiles are not configured")

type profileListRequest struct {
	DurationDays int `json:"durationDays" binding:"gt=0"`
}

// GetProfile returns a user's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	if h.Profiles == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": errProfilesDisabled.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	p, err := h.Profiles.Get(ctx, c.Param("user_id"))
	if err != nil {
		h.respondError(c, "profile lookup", err)
		return
	}
	if p == nil {
		h.respondError(c, "profile lookup", planner.ErrProfileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PutProfile creates or replaces a user's profile.
func (h *Handler) PutProfile(c *gin.Context) {
	if h.Profiles == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": errProfilesDisabled.Error()})
		return
	}

	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	p.UserID = c.Param("user_id")
	p.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Profiles.Save(ctx, &p); err != nil {
		h.respondError(c, "profile save", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// BuildListFromProfile builds the list for the session keyed by the user id
// from the stored profile.
func (h *Handler) BuildListFromProfile(c *gin.Context) {
	var req profileListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	list, err := h.Planner.BuildListFromProfile(ctx, c.Param("user_id"), req.DurationDays)
	if err != nil {
		h.respondError(c, "profile list build", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GenerateListFromProfile asks the configured generator for a list shaped
// by the stored profile, for the session keyed by the user id.
func (h *Handler) GenerateListFromProfile(c *gin.Context) {
	var req profileListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.GenerationTimeout)
	defer cancel()

	list, err := h.Planner.GenerateListFromProfile(ctx, c.Param("user_id"), req.DurationDays)
	if err != nil {
		h.respondError(c, "profile list generation", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
