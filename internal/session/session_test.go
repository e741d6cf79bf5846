package session

import (
	"encoding/json"
	"testing"

	"studyquiz-service/internal/models"
)

func testQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:                 "q" + string(rune('1'+i)),
			PromptText:         "prompt",
			Choices:            []string{"a", "b", "c", "d", "e"},
			CorrectChoiceIndex: i % 5,
			Difficulty:         models.DifficultyMedium,
		}
	}
	return qs
}

func mustStart(t *testing.T, n int, opts Options) *Session {
	t.Helper()
	s, err := Start("s1", testQuestions(n), opts)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return s
}

func TestStart_EmptySet(t *testing.T) {
	if _, err := Start("s1", nil, ModeOptions(ModePractice)); err != ErrEmptyQuestionSet {
		t.Errorf("Expected ErrEmptyQuestionSet, got %v", err)
	}
}

func TestStart_Initialization(t *testing.T) {
	s := mustStart(t, 3, ModeOptions(ModeExam))

	if s.Status() != StatusActive {
		t.Errorf("Expected active status, got %q", s.Status())
	}
	if s.CurrentPosition() != 0 {
		t.Errorf("Expected position 0, got %d", s.CurrentPosition())
	}
	for i, a := range s.Answers() {
		if a != nil {
			t.Errorf("Expected nil answer at %d, got %d", i, *a)
		}
	}
}

func TestSelectAnswer_PracticeLock(t *testing.T) {
	s := mustStart(t, 3, ModeOptions(ModePractice))

	if _, err := s.SelectAnswer(2); err != nil {
		t.Fatalf("First selection failed: %v", err)
	}
	// Second selection at the same position must not change the answer.
	if _, err := s.SelectAnswer(4); err != nil {
		t.Fatalf("Repeated selection errored: %v", err)
	}
	if got := s.Answers()[0]; got == nil || *got != 2 {
		t.Errorf("Expected first answer 2 to be final, got %v", got)
	}
}

func TestSelectAnswer_ExamOverwrite(t *testing.T) {
	s := mustStart(t, 3, ModeOptions(ModeExam))

	s.SelectAnswer(2)
	reveal, err := s.SelectAnswer(4)
	if err != nil {
		t.Fatalf("Overwrite errored: %v", err)
	}
	if reveal {
		t.Error("Expected no immediate feedback in exam mode")
	}
	if got := s.Answers()[0]; got == nil || *got != 4 {
		t.Errorf("Expected overwritten answer 4, got %v", got)
	}
}

func TestSelectAnswer_FeedbackFlag(t *testing.T) {
	s := mustStart(t, 1, ModeOptions(ModePractice))
	reveal, err := s.SelectAnswer(0)
	if err != nil {
		t.Fatalf("Selection errored: %v", err)
	}
	if !reveal {
		t.Error("Expected immediate feedback in practice mode")
	}
}

func TestSelectAnswer_OutOfRange(t *testing.T) {
	s := mustStart(t, 1, ModeOptions(ModePractice))
	if _, err := s.SelectAnswer(9); err != ErrChoiceOutOfRange {
		t.Errorf("Expected ErrChoiceOutOfRange, got %v", err)
	}
	if _, err := s.SelectAnswer(-1); err != ErrChoiceOutOfRange {
		t.Errorf("Expected ErrChoiceOutOfRange, got %v", err)
	}
}

func TestNavigation_Clamped(t *testing.T) {
	s := mustStart(t, 3, ModeOptions(ModePractice))

	s.Retreat() // boundary no-op
	if s.CurrentPosition() != 0 {
		t.Errorf("Expected position clamped at 0, got %d", s.CurrentPosition())
	}
	if !s.IsFirstQuestion() {
		t.Error("Expected IsFirstQuestion at position 0")
	}

	for i := 0; i < 10; i++ {
		s.Advance()
	}
	if s.CurrentPosition() != 2 {
		t.Errorf("Expected position clamped at 2, got %d", s.CurrentPosition())
	}
	if !s.IsLastQuestion() {
		t.Error("Expected IsLastQuestion at final position")
	}
}

func TestInvariants_RandomWalk(t *testing.T) {
	s := mustStart(t, 4, ModeOptions(ModeExam))

	ops := []func(){
		func() { s.SelectAnswer(1) },
		func() { s.Advance() },
		func() { s.Retreat() },
		func() { s.Advance() },
		func() { s.SelectAnswer(3) },
		func() { s.Retreat() },
		func() { s.Retreat() },
		func() { s.Advance() },
	}
	for i, op := range ops {
		op()
		if got := len(s.Answers()); got != s.QuestionCount() {
			t.Fatalf("After op %d: answers length %d != questions %d", i, got, s.QuestionCount())
		}
		if p := s.CurrentPosition(); p < 0 || p >= s.QuestionCount() {
			t.Fatalf("After op %d: position %d out of range", i, p)
		}
	}
}

func TestTick_TimeoutFinishes(t *testing.T) {
	opts := ModeOptions(ModeExam)
	opts.TimeLimitSeconds = 60
	s := mustStart(t, 2, opts)

	finished := false
	for i := 0; i < 60; i++ {
		finished = s.Tick()
	}
	if !finished {
		t.Error("Expected the 60th tick to finish the session")
	}
	if s.Status() != StatusFinished {
		t.Errorf("Expected finished status, got %q", s.Status())
	}
	if !s.TimedOut() {
		t.Error("Expected timed-out flag")
	}
	if s.ElapsedSeconds() != 60 {
		t.Errorf("Expected 60 elapsed seconds, got %d", s.ElapsedSeconds())
	}
	// A further tick must be a no-op.
	if s.Tick() {
		t.Error("Expected tick on finished session to be a no-op")
	}
	if s.ElapsedSeconds() != 60 {
		t.Errorf("Expected elapsed unchanged after terminal tick, got %d", s.ElapsedSeconds())
	}
}

func TestFinish_Terminal(t *testing.T) {
	s := mustStart(t, 2, ModeOptions(ModePractice))

	if err := s.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if s.Status() != StatusFinished {
		t.Errorf("Expected finished, got %q", s.Status())
	}
	if err := s.Finish(); err != ErrNotActive {
		t.Errorf("Expected ErrNotActive on double finish, got %v", err)
	}
	if err := s.Abandon(); err != ErrNotActive {
		t.Errorf("Expected ErrNotActive abandoning a finished session, got %v", err)
	}
	if _, err := s.SelectAnswer(0); err != ErrNotActive {
		t.Errorf("Expected ErrNotActive selecting on finished session, got %v", err)
	}
}

func TestAbandon_Terminal(t *testing.T) {
	s := mustStart(t, 2, ModeOptions(ModePractice))
	if err := s.Abandon(); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if s.Status() != StatusAbandoned {
		t.Errorf("Expected abandoned, got %q", s.Status())
	}
	if err := s.EnterReview(); err != ErrNotFinished {
		t.Errorf("Expected ErrNotFinished reviewing abandoned session, got %v", err)
	}
}

func TestEnterReview(t *testing.T) {
	s := mustStart(t, 2, ModeOptions(ModeExam))

	if err := s.EnterReview(); err != ErrNotFinished {
		t.Errorf("Expected ErrNotFinished on active session, got %v", err)
	}
	s.Finish()
	if err := s.EnterReview(); err != nil {
		t.Fatalf("EnterReview failed: %v", err)
	}
	if s.Status() != StatusFinished {
		t.Errorf("Expected status unchanged by review, got %q", s.Status())
	}
	if !s.FeedbackVisible() {
		t.Error("Expected feedback forced visible during review")
	}
}

func TestProgressSnapshots(t *testing.T) {
	s := mustStart(t, 4, ModeOptions(ModeExam))

	s.SelectAnswer(0)
	s.Advance()
	s.SelectAnswer(1)

	if got := s.AnsweredCount(); got != 2 {
		t.Errorf("Expected 2 answered, got %d", got)
	}
	if got := s.ProgressPercent(); got != 50 {
		t.Errorf("Expected 50%% progress, got %d", got)
	}
	if s.CurrentQuestion().ID != s.Questions()[1].ID {
		t.Error("CurrentQuestion does not track the cursor")
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	opts := ModeOptions(ModeExam)
	opts.TimeLimitSeconds = 120
	s := mustStart(t, 3, opts)

	s.SelectAnswer(2)
	s.Advance()
	s.Tick()
	s.Tick()

	body, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if restored.CurrentPosition() != 1 {
		t.Errorf("Expected restored position 1, got %d", restored.CurrentPosition())
	}
	if restored.ElapsedSeconds() != 2 {
		t.Errorf("Expected 2 elapsed seconds, got %d", restored.ElapsedSeconds())
	}
	if got := restored.Answers()[0]; got == nil || *got != 2 {
		t.Errorf("Expected restored answer 2, got %v", got)
	}
	// The restored session keeps running with the same rules.
	if _, err := restored.SelectAnswer(1); err != nil {
		t.Errorf("Restored session rejected selection: %v", err)
	}
}

func TestRestore_Corrupt(t *testing.T) {
	good := mustStart(t, 2, ModeOptions(ModePractice)).Snapshot()

	testCases := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"no questions", func(s *Snapshot) { s.Questions = nil }},
		{"answer length mismatch", func(s *Snapshot) { s.Answers = s.Answers[:1] }},
		{"cursor out of range", func(s *Snapshot) { s.CurrentPosition = 9 }},
		{"unknown status", func(s *Snapshot) { s.Status = "paused" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap := good
			snap.Answers = append([]*int{}, good.Answers...)
			tc.mutate(&snap)
			if _, err := Restore(snap); err != ErrCorruptSnapshot {
				t.Errorf("Expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}

func TestConcurrentTicksAndReads(t *testing.T) {
	opts := ModeOptions(ModeExam)
	opts.TimeLimitSeconds = 50
	s := mustStart(t, 4, opts)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.Tick()
		}
	}()

	for i := 0; i < 100; i++ {
		_ = s.ElapsedSeconds()
		_ = s.Status()
		_ = s.Answers()
		_ = s.CurrentQuestion()
		_ = s.ProgressPercent()
		_ = s.Snapshot()
	}
	<-done

	if s.Status() != StatusFinished {
		t.Errorf("Expected timed-out session finished, got %q", s.Status())
	}
	if !s.TimedOut() {
		t.Error("Expected timed-out flag set")
	}
	if s.ElapsedSeconds() != 50 {
		t.Errorf("Expected clock stopped at the limit, got %d", s.ElapsedSeconds())
	}
}
