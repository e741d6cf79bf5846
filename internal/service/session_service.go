package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"studyquiz-service/internal/event"
	"studyquiz-service/internal/models"
	"studyquiz-service/internal/repository"
	"studyquiz-service/internal/scoring"
	"studyquiz-service/internal/session"
	"studyquiz-service/internal/storage"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	// Snapshot cadence in ticks. Best-effort durability: the in-memory
	// session stays authoritative until finish or abandon.
	snapshotEveryTicks = 10
	snapshotTTL        = 24 * time.Hour
)

// sessionRecord wraps a snapshot with the ownership data the registry needs
// to resume it.
type sessionRecord struct {
	UserID   string           `json:"user_id"`
	FieldKey string           `json:"field_key"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type activeSession struct {
	sess     *session.Session
	userID   string
	fieldKey string
	stop     chan struct{}
}

// SessionService owns the registry of active sessions and drives their
// one-second ticks. Exactly one session is active per user: starting a new
// one abandons the previous.
type SessionService struct {
	mu        sync.Mutex
	active    map[string]*activeSession
	byUser    map[string]string
	store     storage.Store
	results   *repository.ResultRepository // nil when Mongo is not configured
	publisher *event.Publisher
}

func NewSessionService(store storage.Store, results *repository.ResultRepository, publisher *event.Publisher) *SessionService {
	return &SessionService{
		active:    make(map[string]*activeSession),
		byUser:    make(map[string]string),
		store:     store,
		results:   results,
		publisher: publisher,
	}
}

// StartSession begins a new attempt over an already-normalized question
// set. A previous active session of the same user is abandoned first.
func (s *SessionService) StartSession(ctx context.Context, userID, fieldKey string, questions []models.Question, opts session.Options) (*session.Session, error) {
	s.mu.Lock()
	if prevID, ok := s.byUser[userID]; ok {
		if prev, ok := s.active[prevID]; ok {
			if err := prev.sess.Abandon(); err == nil {
				s.unregisterLocked(prev)
				defer s.recordAbandoned(ctx, prev)
			}
		}
	}
	s.mu.Unlock()

	sess, err := session.Start(uuid.NewString(), questions, opts)
	if err != nil {
		return nil, err
	}

	as := &activeSession{sess: sess, userID: userID, fieldKey: fieldKey, stop: make(chan struct{})}
	s.mu.Lock()
	s.active[sess.ID()] = as
	s.byUser[userID] = sess.ID()
	s.mu.Unlock()

	go s.runTicker(as)

	s.persist(ctx, as)
	if err := storage.SetJSON(ctx, s.store, storage.UserSessionKey(userID), sess.ID(), snapshotTTL); err != nil {
		log.Printf("[session] user index for %s failed: %v", userID, err)
	}
	_ = s.publisher.Publish("quiz.session.started", map[string]any{
		"session_id": sess.ID(),
		"user_id":    userID,
		"mode":       sess.Mode(),
		"questions":  sess.QuestionCount(),
	})
	return sess, nil
}

// Get returns a live session from the registry, resuming from its
// persisted snapshot when the process lost it. Terminal sessions are
// restored read-only without re-registering.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	s.mu.Lock()
	if as, ok := s.active[sessionID]; ok {
		s.mu.Unlock()
		return as.sess, nil
	}
	s.mu.Unlock()

	var record sessionRecord
	if !storage.GetJSON(ctx, s.store, storage.SessionKey(sessionID), &record) {
		return nil, ErrSessionNotFound
	}
	sess, err := session.Restore(record.Snapshot)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if sess.Status() == session.StatusActive {
		s.resume(sess, record)
	}
	return sess, nil
}

func (s *SessionService) resume(sess *session.Session, record sessionRecord) {
	as := &activeSession{sess: sess, userID: record.UserID, fieldKey: record.FieldKey, stop: make(chan struct{})}
	s.mu.Lock()
	if _, raced := s.active[sess.ID()]; raced {
		s.mu.Unlock()
		return
	}
	s.active[sess.ID()] = as
	s.byUser[record.UserID] = sess.ID()
	s.mu.Unlock()
	go s.runTicker(as)
}

// ActiveForUser finds the user's in-flight session, consulting the
// persisted index when the registry does not have one.
func (s *SessionService) ActiveForUser(ctx context.Context, userID string) (*session.Session, error) {
	s.mu.Lock()
	if id, ok := s.byUser[userID]; ok {
		if as, ok := s.active[id]; ok {
			s.mu.Unlock()
			return as.sess, nil
		}
	}
	s.mu.Unlock()

	var id string
	if !storage.GetJSON(ctx, s.store, storage.UserSessionKey(userID), &id) {
		return nil, ErrSessionNotFound
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status() != session.StatusActive {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// AnswerFeedback is what a selection reveals. Correctness and explanation
// are only populated when the session's feedback rules allow it.
type AnswerFeedback struct {
	Revealed           bool   `json:"revealed"`
	IsCorrect          *bool  `json:"is_correct,omitempty"`
	CorrectChoiceIndex *int   `json:"correct_choice_index,omitempty"`
	Explanation        string `json:"explanation,omitempty"`
}

func (s *SessionService) SelectAnswer(ctx context.Context, sessionID string, choiceIndex int) (AnswerFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, ok := s.active[sessionID]
	if !ok {
		return AnswerFeedback{}, ErrSessionNotFound
	}
	revealed, err := as.sess.SelectAnswer(choiceIndex)
	if err != nil {
		return AnswerFeedback{}, err
	}

	feedback := AnswerFeedback{Revealed: revealed}
	if revealed {
		q := as.sess.CurrentQuestion()
		if stored := as.sess.Answers()[as.sess.CurrentPosition()]; stored != nil && !q.Unresolved() {
			correct := *stored == q.CorrectChoiceIndex
			idx := q.CorrectChoiceIndex
			feedback.IsCorrect = &correct
			feedback.CorrectChoiceIndex = &idx
			feedback.Explanation = q.Explanation
		}
	}
	return feedback, nil
}

func (s *SessionService) Advance(sessionID string) error {
	return s.withActive(sessionID, func(as *activeSession) error {
		as.sess.Advance()
		return nil
	})
}

func (s *SessionService) Retreat(sessionID string) error {
	return s.withActive(sessionID, func(as *activeSession) error {
		as.sess.Retreat()
		return nil
	})
}

func (s *SessionService) withActive(sessionID string, fn func(*activeSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	as, ok := s.active[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(as)
}

// Finish transitions the session to its scored terminal state and records
// the outcome (snapshot, aggregate stats, archive, event).
func (s *SessionService) Finish(ctx context.Context, sessionID string) (models.ScoreResult, error) {
	s.mu.Lock()
	as, ok := s.active[sessionID]
	if !ok {
		s.mu.Unlock()
		return models.ScoreResult{}, ErrSessionNotFound
	}
	if err := as.sess.Finish(); err != nil {
		s.mu.Unlock()
		return models.ScoreResult{}, err
	}
	s.unregisterLocked(as)
	s.mu.Unlock()

	return s.recordFinished(ctx, as)
}

// Abandon ends the session without scoring. Abandoned attempts are kept
// out of aggregate statistics and the result archive.
func (s *SessionService) Abandon(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	as, ok := s.active[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if err := as.sess.Abandon(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.unregisterLocked(as)
	s.mu.Unlock()

	s.recordAbandoned(ctx, as)
	return nil
}

// EnterReview flips a finished session into review mode.
func (s *SessionService) EnterReview(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.EnterReview(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Score computes the result of an already-finished session.
func (s *SessionService) Score(ctx context.Context, sessionID string) (models.ScoreResult, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return models.ScoreResult{}, err
	}
	return scoring.Score(sess)
}

// Stats returns the user's long-term aggregate.
func (s *SessionService) Stats(ctx context.Context, userID string) models.UserStats {
	var stats models.UserStats
	storage.GetJSON(ctx, s.store, storage.StatsKey(userID), &stats)
	if stats.PerSubject == nil {
		stats.PerSubject = make(map[string]models.SubjectScore)
	}
	return stats
}

// runTicker drives the one-second cadence of a single active session and
// the periodic best-effort snapshot.
func (s *SessionService) runTicker(as *activeSession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-as.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			finished := as.sess.Tick()
			ticks++
			if finished {
				s.unregisterLocked(as)
				s.mu.Unlock()
				if _, err := s.recordFinished(context.Background(), as); err != nil {
					log.Printf("[session] timeout finalize of %s failed: %v", as.sess.ID(), err)
				}
				return
			}
			s.mu.Unlock()
			if ticks%snapshotEveryTicks == 0 {
				s.persist(context.Background(), as)
			}
		}
	}
}

// unregisterLocked removes the session from the registry and stops its
// ticker. Callers hold s.mu.
func (s *SessionService) unregisterLocked(as *activeSession) {
	delete(s.active, as.sess.ID())
	if s.byUser[as.userID] == as.sess.ID() {
		delete(s.byUser, as.userID)
	}
	close(as.stop)
}

func (s *SessionService) recordFinished(ctx context.Context, as *activeSession) (models.ScoreResult, error) {
	result, err := scoring.Score(as.sess)
	if err != nil {
		return models.ScoreResult{}, err
	}

	s.persist(ctx, as)
	s.updateStats(ctx, as, result)

	if s.results != nil {
		record := &models.ResultRecord{
			SessionID: as.sess.ID(),
			UserID:    as.userID,
			Mode:      string(as.sess.Mode()),
			FieldKey:  as.fieldKey,
			Score:     result,
			CreatedAt: time.Now(),
		}
		if err := s.results.Insert(ctx, record); err != nil {
			log.Printf("[session] result archive for %s failed: %v", as.sess.ID(), err)
		}
	}

	_ = s.publisher.Publish("quiz.session.finished", map[string]any{
		"session_id": as.sess.ID(),
		"user_id":    as.userID,
		"net":        result.Net,
		"timed_out":  result.TimedOut,
	})
	return result, nil
}

func (s *SessionService) recordAbandoned(ctx context.Context, as *activeSession) {
	s.persist(ctx, as)
	_ = s.publisher.Publish("quiz.session.abandoned", map[string]any{
		"session_id": as.sess.ID(),
		"user_id":    as.userID,
	})
}

// persist writes the session snapshot through the gateway. Failures are
// logged and absorbed: a persistence error must never abort an attempt,
// and the next snapshot or the finish path retries naturally.
func (s *SessionService) persist(ctx context.Context, as *activeSession) {
	s.mu.Lock()
	record := sessionRecord{UserID: as.userID, FieldKey: as.fieldKey, Snapshot: as.sess.Snapshot()}
	s.mu.Unlock()

	if err := storage.SetJSON(ctx, s.store, storage.SessionKey(record.Snapshot.ID), record, snapshotTTL); err != nil {
		log.Printf("[session] snapshot of %s failed: %v", record.Snapshot.ID, err)
	}
}

func (s *SessionService) updateStats(ctx context.Context, as *activeSession, result models.ScoreResult) {
	stats := s.Stats(ctx, as.userID)
	stats.SessionsFinished++
	stats.QuestionsAnswered += result.CorrectCount + result.WrongCount
	stats.CorrectTotal += result.CorrectCount
	stats.WrongTotal += result.WrongCount
	stats.NetSum += result.Net
	stats.UpdatedAt = time.Now()

	answers := as.sess.Answers()
	for i, q := range as.sess.Questions() {
		if q.SubjectTag == "" || answers[i] == nil {
			continue
		}
		score := stats.PerSubject[q.SubjectTag]
		score.TotalCount++
		if !q.Unresolved() && *answers[i] == q.CorrectChoiceIndex {
			score.CorrectCount++
		}
		stats.PerSubject[q.SubjectTag] = score
	}

	if err := storage.SetJSON(ctx, s.store, storage.StatsKey(as.userID), stats, 0); err != nil {
		log.Printf("[session] stats update for %s failed: %v", as.userID, err)
	}
}
