package handlers

import (
	"context"
	"net/http"
	"strconv"

	"studyquiz-service/internal/repository"

	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	Repo *repository.ResultRepository // nil when Mongo is not configured
}

func NewResultHandler(repo *repository.ResultRepository) *ResultHandler {
	return &ResultHandler{Repo: repo}
}

// UserResults returns the caller's archived results, newest first.
func (h *ResultHandler) UserResults(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}
	if h.Repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Result archive is not configured"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := h.Repo.FindByUser(context.Background(), userID, int64(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}
