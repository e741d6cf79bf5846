package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"studyquiz-service/internal/models"
	"studyquiz-service/internal/repository"
	"studyquiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	Service *service.QuestionService
	Repo    *repository.QuestionRepository // nil when Mongo is not configured
}

func NewQuestionHandler(s *service.QuestionService, repo *repository.QuestionRepository) *QuestionHandler {
	return &QuestionHandler{Service: s, Repo: repo}
}

// PoolFields lists the fields the pool can sample from, with counts.
func (h *QuestionHandler) PoolFields(c *gin.Context) {
	p := h.Service.Pool()
	fields := p.Fields()
	counts := make(map[string]int, len(fields))
	for _, f := range fields {
		counts[f] = p.Available(f)
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields, "counts": counts})
}

// SamplePool returns a fresh random draw from a field, without answers.
func (h *QuestionHandler) SamplePool(c *gin.Context) {
	count := 10
	if raw := c.Query("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			count = n
		}
	}
	questions := h.Service.Pool().SampleMixed(c.Query("field"), count)
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = viewQuestion(q, false)
	}
	c.JSON(http.StatusOK, gin.H{"questions": views})
}

// SaveAIBatch caches a generated question set for the caller.
func (h *QuestionHandler) SaveAIBatch(c *gin.Context) {
	var req struct {
		Questions  []models.RawQuestion `json:"questions" binding:"required"`
		TTLSeconds int                  `json:"ttl_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if err := h.Service.SaveAIBatch(context.Background(), userID, req.Questions, ttl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Batch saved", "count": len(req.Questions)})
}

// GetAIBatch returns the caller's cached generated questions, normalized.
func (h *QuestionHandler) GetAIBatch(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	questions, skipped, ok := h.Service.AIBatch(context.Background(), userID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No cached batch"})
		return
	}
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = viewQuestion(q, false)
	}
	c.JSON(http.StatusOK, gin.H{"questions": views, "skipped": skipped})
}

// SaveLibraryTest stores a named question set in the caller's library.
func (h *QuestionHandler) SaveLibraryTest(c *gin.Context) {
	var req struct {
		Name      string               `json:"name" binding:"required"`
		Questions []models.RawQuestion `json:"questions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	if err := h.Service.SaveLibraryTest(context.Background(), userID, req.Name, req.Questions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Test saved", "name": req.Name})
}

// ListLibraryTests lists the caller's saved tests without question bodies.
func (h *QuestionHandler) ListLibraryTests(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	tests := h.Service.LibraryTests(context.Background(), userID)
	summaries := make([]gin.H, len(tests))
	for i, t := range tests {
		summaries[i] = gin.H{
			"name":           t.Name,
			"saved_at":       t.SavedAt,
			"question_count": len(t.Raw),
		}
	}
	c.JSON(http.StatusOK, gin.H{"tests": summaries})
}

// DeleteLibraryTest removes a saved test by name.
func (h *QuestionHandler) DeleteLibraryTest(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	if err := h.Service.DeleteLibraryTest(context.Background(), userID, c.Param("name")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrLibraryTestNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test deleted"})
}

// CreateCuratedQuestion inserts a question into the curated Mongo pool.
func (h *QuestionHandler) CreateCuratedQuestion(c *gin.Context) {
	if h.Repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Curated pool storage is not configured"})
		return
	}
	var doc repository.QuestionDoc
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Repo.Insert(context.Background(), &doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// DeleteCuratedQuestion removes a curated question by id.
func (h *QuestionHandler) DeleteCuratedQuestion(c *gin.Context) {
	if h.Repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Curated pool storage is not configured"})
		return
	}
	if err := h.Repo.Delete(context.Background(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// ReloadPool re-reads the curated pool from Mongo into memory.
func (h *QuestionHandler) ReloadPool(c *gin.Context) {
	loaded, skipped, err := h.Service.LoadCuratedPool(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded": loaded, "skipped": skipped})
}
