package session

import (
	"errors"
	"time"

	"studyquiz-service/internal/models"
)

// ErrCorruptSnapshot marks a stored snapshot whose shape no longer holds
// the session invariants. Callers treat it like an absent value.
var ErrCorruptSnapshot = errors.New("session snapshot is corrupt")

// Snapshot is the serializable form of a session, written to the
// persistence gateway for resume and scoring round-trips.
type Snapshot struct {
	ID                string            `json:"id"`
	Mode              Mode              `json:"mode"`
	LockFirstAnswer   bool              `json:"lock_first_answer"`
	ImmediateFeedback bool              `json:"immediate_feedback"`
	Questions         []models.Question `json:"questions"`
	Answers           []*int            `json:"answers"`
	CurrentPosition   int               `json:"current_position"`
	StartedAt         time.Time         `json:"started_at"`
	ElapsedSeconds    int               `json:"elapsed_seconds"`
	TimeLimitSeconds  int               `json:"time_limit_seconds,omitempty"`
	Status            Status            `json:"status"`
	TimedOut          bool              `json:"timed_out,omitempty"`
}

// Snapshot captures the session state. The answer array is copied so later
// mutation does not leak into an already-serialized snapshot.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:                s.id,
		Mode:              s.mode,
		LockFirstAnswer:   s.lockFirstAnswer,
		ImmediateFeedback: s.immediateFeedback,
		Questions:         s.questions,
		Answers:           s.answersLocked(),
		CurrentPosition:   s.currentPosition,
		StartedAt:         s.startedAt,
		ElapsedSeconds:    s.elapsedSeconds,
		TimeLimitSeconds:  s.timeLimitSeconds,
		Status:            s.status,
		TimedOut:          s.timedOut,
	}
}

// Restore rebuilds a session from a snapshot, validating the structural
// invariants (answers length matches questions, cursor in range).
func Restore(snap Snapshot) (*Session, error) {
	if len(snap.Questions) == 0 || len(snap.Answers) != len(snap.Questions) {
		return nil, ErrCorruptSnapshot
	}
	if snap.CurrentPosition < 0 || snap.CurrentPosition >= len(snap.Questions) {
		return nil, ErrCorruptSnapshot
	}
	switch snap.Status {
	case StatusActive, StatusFinished, StatusAbandoned:
	default:
		return nil, ErrCorruptSnapshot
	}
	return &Session{
		id:                snap.ID,
		mode:              snap.Mode,
		lockFirstAnswer:   snap.LockFirstAnswer,
		immediateFeedback: snap.ImmediateFeedback,
		questions:         snap.Questions,
		answers:           snap.Answers,
		currentPosition:   snap.CurrentPosition,
		startedAt:         snap.StartedAt,
		elapsedSeconds:    snap.ElapsedSeconds,
		timeLimitSeconds:  snap.TimeLimitSeconds,
		status:            snap.Status,
		timedOut:          snap.TimedOut,
	}, nil
}
