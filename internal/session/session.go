package session

import (
	"errors"
	"sync"
	"time"

	"studyquiz-service/internal/models"
)

type Mode string

const (
	ModePractice Mode = "practice"
	ModeExam     Mode = "exam"
	ModeReview   Mode = "review"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
	StatusAbandoned Status = "abandoned"
)

var (
	ErrEmptyQuestionSet = errors.New("cannot start a session with no questions")
	ErrNotActive        = errors.New("session is not active")
	ErrNotFinished      = errors.New("session is not finished")
	ErrChoiceOutOfRange = errors.New("selected choice index is out of range")
)

// Options configures a session at start. LockFirstAnswer and
// ImmediateFeedback are independent flags: the mode presets pair them the
// conventional way, but nothing downstream ever branches on the mode name.
type Options struct {
	Mode              Mode `json:"mode"`
	LockFirstAnswer   bool `json:"lock_first_answer"`
	ImmediateFeedback bool `json:"immediate_feedback"`
	TimeLimitSeconds  int  `json:"time_limit_seconds"`
}

// ModeOptions returns the conventional flag pairing for a mode: practice
// locks the first answer and reveals feedback per question, exam allows
// overwrites and defers all feedback to finish.
func ModeOptions(mode Mode) Options {
	switch mode {
	case ModeExam:
		return Options{Mode: ModeExam}
	default:
		return Options{Mode: ModePractice, LockFirstAnswer: true, ImmediateFeedback: true}
	}
}

// Session is the state machine owning one quiz attempt. It is a pure
// in-memory type: every operation is synchronous and no persistence or UI
// concern leaks in. State access is guarded internally, so readers may
// inspect a session while a ticker goroutine drives its clock.
type Session struct {
	mu sync.RWMutex

	id                string
	mode              Mode
	lockFirstAnswer   bool
	immediateFeedback bool
	questions         []models.Question
	answers           []*int
	currentPosition   int
	startedAt         time.Time
	elapsedSeconds    int
	timeLimitSeconds  int
	status            Status
	timedOut          bool
	isReviewing       bool
}

// Start creates an active session over a fixed question set. The question
// slice is owned by the session afterwards and must not be mutated by the
// caller.
func Start(id string, questions []models.Question, opts Options) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModePractice
	}
	return &Session{
		id:                id,
		mode:              mode,
		lockFirstAnswer:   opts.LockFirstAnswer,
		immediateFeedback: opts.ImmediateFeedback,
		questions:         questions,
		answers:           make([]*int, len(questions)),
		startedAt:         time.Now(),
		timeLimitSeconds:  opts.TimeLimitSeconds,
		status:            StatusActive,
	}, nil
}

// SelectAnswer records a choice for the current question. With
// LockFirstAnswer set, a repeated selection at an already-answered position
// is a silent no-op: the first answer is final. The return value reports
// whether feedback may be revealed to the caller now.
func (s *Session) SelectAnswer(choiceIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return false, ErrNotActive
	}
	q := s.questions[s.currentPosition]
	if choiceIndex < 0 || choiceIndex >= len(q.Choices) {
		return false, ErrChoiceOutOfRange
	}
	if s.lockFirstAnswer && s.answers[s.currentPosition] != nil {
		return s.immediateFeedback, nil
	}
	c := choiceIndex
	s.answers[s.currentPosition] = &c
	return s.immediateFeedback, nil
}

// Advance moves the cursor forward one question, clamped at the last.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusActive && s.currentPosition < len(s.questions)-1 {
		s.currentPosition++
	}
}

// Retreat moves the cursor back one question, clamped at the first.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusActive && s.currentPosition > 0 {
		s.currentPosition--
	}
}

// Tick advances the elapsed-time counter by one second. When the configured
// time limit is reached the session force-finishes through the same path as
// an explicit finish, flagged as timed out. Returns true when this tick
// finished the session.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return false
	}
	s.elapsedSeconds++
	if s.timeLimitSeconds > 0 && s.elapsedSeconds >= s.timeLimitSeconds {
		s.timedOut = true
		s.finish()
		return true
	}
	return false
}

// Finish transitions the session to its scored terminal state, freezing the
// answers. Confirming unanswered questions with the user is the UI
// collaborator's job; the session never blocks on it.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return ErrNotActive
	}
	s.finish()
	return nil
}

func (s *Session) finish() {
	s.status = StatusFinished
}

// Abandon transitions to the unscored terminal state. Abandoned sessions
// must not be recorded in aggregate statistics.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return ErrNotActive
	}
	s.status = StatusAbandoned
	return nil
}

// EnterReview marks a finished session as being reviewed, forcing feedback
// visibility for every question regardless of the original mode. The status
// itself does not change.
func (s *Session) EnterReview() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusFinished {
		return ErrNotFinished
	}
	s.isReviewing = true
	return nil
}

// FeedbackVisible reports whether per-question feedback may be shown right
// now: always during review, otherwise per the immediate-feedback flag.
func (s *Session) FeedbackVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isReviewing || s.immediateFeedback
}

// These fields are fixed at Start and need no locking.
func (s *Session) ID() string           { return s.id }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) QuestionCount() int   { return len(s.questions) }

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) ElapsedSeconds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsedSeconds
}

func (s *Session) TimedOut() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timedOut
}

func (s *Session) IsReviewing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isReviewing
}

func (s *Session) CurrentPosition() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPosition
}

func (s *Session) IsFirstQuestion() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPosition == 0
}

func (s *Session) IsLastQuestion() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPosition == len(s.questions)-1
}

// Questions exposes the fixed question set. Callers must treat it as
// read-only.
func (s *Session) Questions() []models.Question { return s.questions }

// Answers returns a copy of the answer array; nil entries are unanswered.
func (s *Session) Answers() []*int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answersLocked()
}

func (s *Session) answersLocked() []*int {
	out := make([]*int, len(s.answers))
	copy(out, s.answers)
	return out
}

// CurrentQuestion returns the question under the cursor.
func (s *Session) CurrentQuestion() models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions[s.currentPosition]
}

// AnsweredCount reports how many positions hold a non-nil answer.
func (s *Session) AnsweredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answeredCountLocked()
}

func (s *Session) answeredCountLocked() int {
	n := 0
	for _, a := range s.answers {
		if a != nil {
			n++
		}
	}
	return n
}

// ProgressPercent reports answered progress rounded down to a whole percent.
func (s *Session) ProgressPercent() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return 100 * s.answeredCountLocked() / len(s.questions)
}
