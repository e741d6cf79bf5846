package models

import "time"

// ScoreResult is the derived outcome of one finished session. Net is the
// domain-standard partial-penalty score: correct minus a quarter of wrong,
// floored at zero, kept fractional.
type ScoreResult struct {
	TotalQuestions     int     `bson:"total_questions" json:"total_questions"`
	CorrectCount       int     `bson:"correct_count" json:"correct_count"`
	WrongCount         int     `bson:"wrong_count" json:"wrong_count"`
	UnansweredCount    int     `bson:"unanswered_count" json:"unanswered_count"`
	UnresolvedCount    int     `bson:"unresolved_count,omitempty" json:"unresolved_count,omitempty"`
	SuccessRatePercent int     `bson:"success_rate_percent" json:"success_rate_percent"`
	Net                float64 `bson:"net" json:"net"`
	ElapsedSeconds     int     `bson:"elapsed_seconds" json:"elapsed_seconds"`
	TimedOut           bool    `bson:"timed_out,omitempty" json:"timed_out,omitempty"`
}

type Tier string

const (
	TierWeak      Tier = "weak"
	TierMedium    Tier = "medium"
	TierGood      Tier = "good"
	TierExcellent Tier = "excellent"
)

type SubjectScore struct {
	CorrectCount int `json:"correct_count"`
	TotalCount   int `json:"total_count"`
}

// LevelAssessmentResult buckets per-subject accuracy into the four-tier
// proficiency scale. A retake replaces the previous result wholesale.
type LevelAssessmentResult struct {
	PerSubjectScore map[string]SubjectScore `json:"per_subject_score"`
	PerSubjectTier  map[string]Tier         `json:"per_subject_tier"`
	Recommendations map[string]string       `json:"recommendations"`
	ComputedAt      time.Time               `json:"computed_at"`
}

// UserStats is the long-term per-user aggregate. Abandoned sessions never
// contribute to it.
type UserStats struct {
	SessionsFinished  int                     `json:"sessions_finished"`
	QuestionsAnswered int                     `json:"questions_answered"`
	CorrectTotal      int                     `json:"correct_total"`
	WrongTotal        int                     `json:"wrong_total"`
	NetSum            float64                 `json:"net_sum"`
	PerSubject        map[string]SubjectScore `json:"per_subject"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// ResultRecord is the archived form of a finished session.
type ResultRecord struct {
	ID        string      `bson:"_id,omitempty" json:"id"`
	SessionID string      `bson:"session_id" json:"session_id"`
	UserID    string      `bson:"user_id" json:"user_id"`
	Mode      string      `bson:"mode" json:"mode"`
	FieldKey  string      `bson:"field_key,omitempty" json:"field_key,omitempty"`
	Score     ScoreResult `bson:"score" json:"score"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}
