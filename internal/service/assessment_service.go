package service

import (
	"context"
	"errors"
	"time"

	"studyquiz-service/internal/assessment"
	"studyquiz-service/internal/event"
	"studyquiz-service/internal/models"
	"studyquiz-service/internal/session"
	"studyquiz-service/internal/storage"
)

var (
	ErrNoAssessment       = errors.New("no assessment in progress")
	ErrNoAssessmentResult = errors.New("no assessment result recorded")
)

// assessmentTest is the cached shape of a built assessment. It pins the
// sampled question set so repeated reads of the same assessment agree.
type assessmentTest struct {
	SessionID string            `json:"session_id"`
	FieldKey  string            `json:"field_key"`
	Subjects  []string          `json:"subjects"`
	Questions []models.Question `json:"questions"`
	BuiltAt   time.Time         `json:"built_at"`
}

const assessmentTTL = 48 * time.Hour

// AssessmentService runs the level-assessment flow: build a test, run it
// as an exam-mode session, evaluate the finished session into tiers.
type AssessmentService struct {
	orch      *assessment.Orchestrator
	store     storage.Store
	sessions  *SessionService
	publisher *event.Publisher
}

func NewAssessmentService(orch *assessment.Orchestrator, store storage.Store, sessions *SessionService, publisher *event.Publisher) *AssessmentService {
	return &AssessmentService{orch: orch, store: store, sessions: sessions, publisher: publisher}
}

// Start builds an assessment test for the user and opens an exam-mode
// session over it. The built set is cached until evaluated.
func (s *AssessmentService) Start(ctx context.Context, userID string, weakSubjects []string, fieldKey string) (*session.Session, error) {
	questions, err := s.orch.BuildAssessment(weakSubjects, fieldKey)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.StartSession(ctx, userID, fieldKey, questions, session.ModeOptions(session.ModeExam))
	if err != nil {
		return nil, err
	}

	test := assessmentTest{
		SessionID: sess.ID(),
		FieldKey:  fieldKey,
		Subjects:  weakSubjects,
		Questions: questions,
		BuiltAt:   time.Now(),
	}
	if err := storage.SetJSON(ctx, s.store, storage.AssessmentKey(userID), test, assessmentTTL); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish("quiz.assessment.started", map[string]any{
		"session_id": sess.ID(),
		"user_id":    userID,
		"questions":  len(questions),
	})
	return sess, nil
}

// Evaluate scores the user's finished assessment session into per-subject
// tiers and stores the result, replacing any previous one wholesale.
func (s *AssessmentService) Evaluate(ctx context.Context, userID string) (models.LevelAssessmentResult, error) {
	var test assessmentTest
	if !storage.GetJSON(ctx, s.store, storage.AssessmentKey(userID), &test) {
		return models.LevelAssessmentResult{}, ErrNoAssessment
	}

	sess, err := s.sessions.Get(ctx, test.SessionID)
	if err != nil {
		return models.LevelAssessmentResult{}, err
	}
	result, err := s.orch.Evaluate(sess)
	if err != nil {
		return models.LevelAssessmentResult{}, err
	}

	if err := storage.SetJSON(ctx, s.store, storage.AssessmentResult(userID), result, 0); err != nil {
		return models.LevelAssessmentResult{}, err
	}
	_ = s.store.Remove(ctx, storage.AssessmentKey(userID))

	_ = s.publisher.Publish("quiz.assessment.evaluated", map[string]any{
		"session_id": test.SessionID,
		"user_id":    userID,
		"tiers":      result.PerSubjectTier,
	})
	return result, nil
}

// Result returns the user's most recent evaluated assessment.
func (s *AssessmentService) Result(ctx context.Context, userID string) (models.LevelAssessmentResult, error) {
	var result models.LevelAssessmentResult
	if !storage.GetJSON(ctx, s.store, storage.AssessmentResult(userID), &result) {
		return models.LevelAssessmentResult{}, ErrNoAssessmentResult
	}
	return result, nil
}
