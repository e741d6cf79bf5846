package handlers

import (
	"context"
	"errors"
	"net/http"

	"studyquiz-service/internal/service"
	"studyquiz-service/internal/session"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Sessions  *service.SessionService
	Questions *service.QuestionService
}

func NewSessionHandler(s *service.SessionService, q *service.QuestionService) *SessionHandler {
	return &SessionHandler{Sessions: s, Questions: q}
}

// StartSession opens a new quiz session from the requested question source.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		service.StartSelection
		Mode              string `json:"mode"`
		LockFirstAnswer   *bool  `json:"lock_first_answer,omitempty"`
		ImmediateFeedback *bool  `json:"immediate_feedback,omitempty"`
		TimeLimitSeconds  int    `json:"time_limit_seconds"`
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

	questions, skipped, err := h.Questions.ForStart(context.Background(), userID, req.StartSelection)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No questions available for the requested source",
			"details": err.Error(),
		})
		return
	}

	mode := session.Mode(req.Mode)
	if mode == "" {
		mode = session.ModePractice
	}
	opts := session.ModeOptions(mode)
	if req.LockFirstAnswer != nil {
		opts.LockFirstAnswer = *req.LockFirstAnswer
	}
	if req.ImmediateFeedback != nil {
		opts.ImmediateFeedback = *req.ImmediateFeedback
	}
	if req.TimeLimitSeconds > 0 {
		opts.TimeLimitSeconds = req.TimeLimitSeconds
	}

	sess, err := h.Sessions.StartSession(context.Background(), userID, req.FieldKey, questions, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to start session",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":           viewSession(sess),
		"skipped_questions": skipped,
	})
}

// GetSession returns the current state of a session, resuming it from its
// snapshot if the process no longer holds it.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.Sessions.Get(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, viewSession(sess))
}

// ActiveSession returns the caller's in-flight session, if any.
func (h *SessionHandler) ActiveSession(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}
	sess, err := h.Sessions.ActiveForUser(context.Background(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}
	c.JSON(http.StatusOK, viewSession(sess))
}

// SelectAnswer records an answer for the question under the cursor.
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	var req struct {
		ChoiceIndex *int `json:"choice_index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	feedback, err := h.Sessions.SelectAnswer(context.Background(), c.Param("id"), *req.ChoiceIndex)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *SessionHandler) NextQuestion(c *gin.Context) {
	h.move(c, h.Sessions.Advance)
}

func (h *SessionHandler) PreviousQuestion(c *gin.Context) {
	h.move(c, h.Sessions.Retreat)
}

func (h *SessionHandler) move(c *gin.Context, step func(string) error) {
	id := c.Param("id")
	if err := step(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	sess, err := h.Sessions.Get(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, viewSession(sess))
}

// FinishSession closes the session and returns its score.
func (h *SessionHandler) FinishSession(c *gin.Context) {
	result, err := h.Sessions.Finish(context.Background(), c.Param("id"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AbandonSession ends the session without scoring it.
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	if err := h.Sessions.Abandon(context.Background(), c.Param("id")); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
}

// ReviewSession puts a finished session into review mode and returns it
// with full feedback.
func (h *SessionHandler) ReviewSession(c *gin.Context) {
	sess, err := h.Sessions.EnterReview(context.Background(), c.Param("id"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	answers := sess.Answers()
	questions := make([]questionView, sess.QuestionCount())
	for i, q := range sess.Questions() {
		questions[i] = viewQuestion(q, true)
	}
	c.JSON(http.StatusOK, gin.H{
		"session":   viewSession(sess),
		"questions": questions,
		"answers":   answers,
	})
}

// SessionScore returns the score of an already finished session.
func (h *SessionHandler) SessionScore(c *gin.Context) {
	result, err := h.Sessions.Score(context.Background(), c.Param("id"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// UserStats returns the caller's long-term aggregate.
func (h *SessionHandler) UserStats(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}
	c.JSON(http.StatusOK, h.Sessions.Stats(context.Background(), userID))
}
