package handlers

import (
	"studyquiz-service/internal/models"
	"studyquiz-service/internal/session"
)

// questionView is a question as the client may see it mid-session. The
// correct index and explanation stay server-side until feedback rules or
// review mode reveal them.
type questionView struct {
	ID         string   `json:"id"`
	PromptText string   `json:"prompt_text"`
	Choices    []string `json:"choices"`
	SubjectTag string   `json:"subject_tag,omitempty"`
	Difficulty string   `json:"difficulty"`

	CorrectChoiceIndex *int   `json:"correct_choice_index,omitempty"`
	Explanation        string `json:"explanation,omitempty"`
}

type sessionView struct {
	ID              string       `json:"id"`
	Mode            string       `json:"mode"`
	Status          string       `json:"status"`
	CurrentPosition int          `json:"current_position"`
	QuestionCount   int          `json:"question_count"`
	AnsweredCount   int          `json:"answered_count"`
	ProgressPercent int          `json:"progress_percent"`
	IsFirstQuestion bool         `json:"is_first_question"`
	IsLastQuestion  bool         `json:"is_last_question"`
	ElapsedSeconds  int          `json:"elapsed_seconds"`
	IsReviewing     bool         `json:"is_reviewing"`
	SelectedChoice  *int         `json:"selected_choice,omitempty"`
	CurrentQuestion questionView `json:"current_question"`
	FeedbackVisible bool         `json:"feedback_visible"`
}

func viewQuestion(q models.Question, revealAnswer bool) questionView {
	v := questionView{
		ID:         q.ID,
		PromptText: q.PromptText,
		Choices:    q.Choices,
		SubjectTag: q.SubjectTag,
		Difficulty: string(q.Difficulty),
	}
	if revealAnswer && !q.Unresolved() {
		idx := q.CorrectChoiceIndex
		v.CorrectChoiceIndex = &idx
		v.Explanation = q.Explanation
	}
	return v
}

func viewSession(s *session.Session) sessionView {
	answered := s.Answers()[s.CurrentPosition()] != nil
	reveal := s.IsReviewing() || (s.FeedbackVisible() && answered)
	return sessionView{
		ID:              s.ID(),
		Mode:            string(s.Mode()),
		Status:          string(s.Status()),
		CurrentPosition: s.CurrentPosition(),
		QuestionCount:   s.QuestionCount(),
		AnsweredCount:   s.AnsweredCount(),
		ProgressPercent: s.ProgressPercent(),
		IsFirstQuestion: s.IsFirstQuestion(),
		IsLastQuestion:  s.IsLastQuestion(),
		ElapsedSeconds:  s.ElapsedSeconds(),
		IsReviewing:     s.IsReviewing(),
		SelectedChoice:  s.Answers()[s.CurrentPosition()],
		CurrentQuestion: viewQuestion(s.CurrentQuestion(), reveal),
		FeedbackVisible: s.FeedbackVisible(),
	}
}
