package models

// NotFound marks a question whose correct choice could not be resolved from
// its raw record. The question stays displayable, but no selection will ever
// register as correct.
const NotFound = -1

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a raw difficulty label to the enum, defaulting to
// medium for absent or unrecognized values.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	}
	return DifficultyMedium
}

// SourceOrigin records which producer a question came from. Informational
// only; scoring never looks at it.
type SourceOrigin string

const (
	OriginBank    SourceOrigin = "bank"
	OriginAI      SourceOrigin = "ai-generated"
	OriginPool    SourceOrigin = "curated-pool"
	OriginLibrary SourceOrigin = "library"
	OriginUnknown SourceOrigin = "unknown"
)

func ParseOrigin(s string) SourceOrigin {
	switch SourceOrigin(s) {
	case OriginBank, OriginAI, OriginPool, OriginLibrary:
		return SourceOrigin(s)
	}
	return OriginUnknown
}

// Question is the canonical post-normalization shape. Choice order is
// semantically meaningful: choice identity is its position.
type Question struct {
	ID                 string       `bson:"_id,omitempty" json:"id"`
	PromptText         string       `bson:"prompt_text" json:"prompt_text"`
	Choices            []string     `bson:"choices" json:"choices"`
	CorrectChoiceIndex int          `bson:"correct_choice_index" json:"correct_choice_index"`
	Explanation        string       `bson:"explanation,omitempty" json:"explanation,omitempty"`
	Difficulty         Difficulty   `bson:"difficulty" json:"difficulty"`
	SubjectTag         string       `bson:"subject_tag,omitempty" json:"subject_tag,omitempty"`
	SourceOrigin       SourceOrigin `bson:"source_origin" json:"source_origin"`
}

// Unresolved reports whether the correct choice never resolved against the
// raw record. Such questions are excluded from ever counting as correct.
func (q *Question) Unresolved() bool {
	return q.CorrectChoiceIndex == NotFound
}
