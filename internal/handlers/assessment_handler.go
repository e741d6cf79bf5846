package handlers

import (
	"context"
	"errors"
	"net/http"

	"studyquiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AssessmentHandler struct {
	Service *service.AssessmentService
}

func NewAssessmentHandler(s *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{Service: s}
}

// StartAssessment builds a level-assessment test and opens an exam-mode
// session over it.
func (h *AssessmentHandler) StartAssessment(c *gin.Context) {
	var req struct {
		WeakSubjects []string `json:"weak_subjects"`
		FieldKey     string   `json:"field_key"`
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

	sess, err := h.Service.Start(context.Background(), userID, req.WeakSubjects, req.FieldKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build assessment",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": viewSession(sess)})
}

// EvaluateAssessment scores the finished assessment session into
// per-subject tiers.
func (h *AssessmentHandler) EvaluateAssessment(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	result, err := h.Service.Evaluate(context.Background(), userID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNoAssessment) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AssessmentResult returns the most recent evaluated assessment.
func (h *AssessmentHandler) AssessmentResult(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	result, err := h.Service.Result(context.Background(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No assessment result"})
		return
	}
	c.JSON(http.StatusOK, result)
}
