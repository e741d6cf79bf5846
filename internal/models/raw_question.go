package models

import "encoding/json"

// RawQuestion is the union of the historical producer shapes. The static
// bank writes the prompt under "q", the AI generator under "question" or
// "text", the curated pool under "content"; choices arrive as "o",
// "options" or "choices". The correct answer may be an explicit index
// field, a numeric value, a single letter, or the full choice text.
//
// A marshalled canonical Question is itself a valid RawQuestion (the
// prompt_text, choices, correct_choice_index, subject_tag and source_origin
// keys are aliases here), so normalization is idempotent.
type RawQuestion struct {
	ID string `json:"id,omitempty" bson:"id,omitempty"`

	Q          string `json:"q,omitempty" bson:"q,omitempty"`
	Text       string `json:"text,omitempty" bson:"text,omitempty"`
	Question   string `json:"question,omitempty" bson:"question,omitempty"`
	Content    string `json:"content,omitempty" bson:"content,omitempty"`
	PromptText string `json:"prompt_text,omitempty" bson:"prompt_text,omitempty"`

	O       []string `json:"o,omitempty" bson:"o,omitempty"`
	Options []string `json:"options,omitempty" bson:"options,omitempty"`
	Choices []string `json:"choices,omitempty" bson:"choices,omitempty"`

	AnswerIndex        *int            `json:"answerIndex,omitempty" bson:"answer_index,omitempty"`
	CorrectIndex       *int            `json:"correctIndex,omitempty" bson:"correct_index,omitempty"`
	CorrectChoiceIndex *int            `json:"correct_choice_index,omitempty" bson:"correct_choice_index,omitempty"`
	Answer             json.RawMessage `json:"answer,omitempty" bson:"answer,omitempty"`

	Explanation string `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Difficulty  string `json:"difficulty,omitempty" bson:"difficulty,omitempty"`

	Subject    string `json:"subject,omitempty" bson:"subject,omitempty"`
	SubjectTag string `json:"subject_tag,omitempty" bson:"subject_tag,omitempty"`

	Source       string `json:"source,omitempty" bson:"source,omitempty"`
	SourceOrigin string `json:"source_origin,omitempty" bson:"source_origin,omitempty"`
}

// SubjectName returns the first populated subject alias.
func (r *RawQuestion) SubjectName() string {
	if r.SubjectTag != "" {
		return r.SubjectTag
	}
	return r.Subject
}

// Origin returns the first populated source alias.
func (r *RawQuestion) Origin() string {
	if r.SourceOrigin != "" {
		return r.SourceOrigin
	}
	return r.Source
}

// Prompt returns the first populated prompt alias.
func (r *RawQuestion) Prompt() string {
	for _, s := range []string{r.PromptText, r.Q, r.Text, r.Question, r.Content} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ChoiceList returns the first populated choices alias.
func (r *RawQuestion) ChoiceList() []string {
	for _, c := range [][]string{r.Choices, r.Options, r.O} {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

// TextAnswer returns the answer field as a plain string when it holds one.
func (r *RawQuestion) TextAnswer() (string, bool) {
	if len(r.Answer) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Answer, &s); err != nil {
		return "", false
	}
	return s, true
}

// NumericAnswer returns the answer field as a number when it holds one.
func (r *RawQuestion) NumericAnswer() (float64, bool) {
	if len(r.Answer) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(r.Answer, &n); err != nil {
		return 0, false
	}
	return n, true
}
