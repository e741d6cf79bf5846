package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"studyquiz-service/internal/pool"
	"studyquiz-service/internal/service"
	"studyquiz-service/internal/storage"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	p := pool.NewProvider()
	pool.SeedDefaultBank(p)
	store := storage.NewMemoryStore()
	sessions := service.NewSessionService(store, nil, nil)
	questions := service.NewQuestionService(nil, store, p)
	h := NewSessionHandler(sessions, questions)

	r := gin.New()
	r.POST("/session", h.StartSession)
	r.GET("/session/:id", h.GetSession)
	r.POST("/session/:id/answer", h.SelectAnswer)
	r.POST("/session/:id/next", h.NextQuestion)
	r.POST("/session/:id/finish", h.FinishSession)
	r.POST("/session/:id/review", h.ReviewSession)
	r.GET("/stats", h.UserStats)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStartSessionEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/session", gin.H{
		"field_key": "sayisal",
		"count":     3,
		"mode":      "exam",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Session struct {
			ID              string `json:"id"`
			Mode            string `json:"mode"`
			Status          string `json:"status"`
			QuestionCount   int    `json:"question_count"`
			CurrentQuestion struct {
				CorrectChoiceIndex *int `json:"correct_choice_index"`
			} `json:"current_question"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session.Mode != "exam" || resp.Session.Status != "active" {
		t.Errorf("Expected active exam session, got %s/%s", resp.Session.Mode, resp.Session.Status)
	}
	if resp.Session.QuestionCount != 3 {
		t.Errorf("Expected 3 questions, got %d", resp.Session.QuestionCount)
	}
	if resp.Session.CurrentQuestion.CorrectChoiceIndex != nil {
		t.Error("Expected correct index withheld from the client")
	}
}

func TestStartSessionRequiresUser(t *testing.T) {
	r := newTestRouter()

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(gin.H{"field_key": "sayisal", "count": 2})
	req := httptest.NewRequest(http.MethodPost, "/session", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without X-User-ID, got %d", w.Code)
	}
}

func TestAnswerFinishReviewEndpoints(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/session", gin.H{
		"field_key": "sayisal",
		"count":     2,
		"mode":      "practice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	id := created.Session.ID

	w = doJSON(t, r, http.MethodPost, "/session/"+id+"/answer", gin.H{"choice_index": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on answer, got %d: %s", w.Code, w.Body.String())
	}
	var feedback struct {
		Revealed  bool  `json:"revealed"`
		IsCorrect *bool `json:"is_correct"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &feedback); err != nil {
		t.Fatalf("decode feedback: %v", err)
	}
	if !feedback.Revealed || feedback.IsCorrect == nil {
		t.Errorf("Expected practice feedback, got %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/session/"+id+"/next", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on next, got %d", w.Code)
	}

	if w = doJSON(t, r, http.MethodPost, "/session/"+id+"/review", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 reviewing an active session, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/session/"+id+"/finish", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on finish, got %d: %s", w.Code, w.Body.String())
	}
	var score struct {
		TotalQuestions int `json:"total_questions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &score); err != nil {
		t.Fatalf("decode score: %v", err)
	}
	if score.TotalQuestions != 2 {
		t.Errorf("Expected 2 total questions in score, got %d", score.TotalQuestions)
	}

	w = doJSON(t, r, http.MethodPost, "/session/"+id+"/review", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on review, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on stats, got %d", w.Code)
	}
	var stats struct {
		SessionsFinished int `json:"sessions_finished"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.SessionsFinished != 1 {
		t.Errorf("Expected 1 finished session in stats, got %d", stats.SessionsFinished)
	}
}

func TestSessionNotFound(t *testing.T) {
	r := newTestRouter()
	if w := doJSON(t, r, http.MethodGet, "/session/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/session/missing/answer", gin.H{"choice_index": 1}); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 answering unknown session, got %d", w.Code)
	}
}
