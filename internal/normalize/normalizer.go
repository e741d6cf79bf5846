package normalize

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"studyquiz-service/internal/models"
	"studyquiz-service/internal/resolver"
)

// ErrInvalidQuestion marks a raw record that cannot be normalized because no
// usable choices remain after mapping every known field alias.
var ErrInvalidQuestion = errors.New("question has no usable choices")

// Normalize maps one heterogeneous raw record into the canonical Question
// shape. The correct choice is resolved exactly once here and cached on the
// result; repeated normalization of an already-canonical record yields an
// equivalent Question. positionHint feeds the synthesized id when the source
// carries none.
func Normalize(raw models.RawQuestion, positionHint int) (models.Question, error) {
	choices := raw.ChoiceList()
	if len(choices) == 0 {
		return models.Question{}, fmt.Errorf("%w (position %d)", ErrInvalidQuestion, positionHint)
	}

	id := raw.ID
	if id == "" {
		id = fmt.Sprintf("q_%d", positionHint+1)
	}

	return models.Question{
		ID:                 id,
		PromptText:         strings.TrimSpace(raw.Prompt()),
		Choices:            choices,
		CorrectChoiceIndex: resolver.Resolve(&raw, choices),
		Explanation:        raw.Explanation,
		Difficulty:         models.ParseDifficulty(raw.Difficulty),
		SubjectTag:         raw.SubjectName(),
		SourceOrigin:       models.ParseOrigin(raw.Origin()),
	}, nil
}

// Batch normalizes a whole producer batch with skip-and-continue semantics:
// malformed records are dropped and counted, never aborting the load. The
// skipped count is surfaced to callers as a data-quality signal. origin
// stamps records whose source field is empty.
func Batch(raws []models.RawQuestion, origin models.SourceOrigin) ([]models.Question, int) {
	questions := make([]models.Question, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		q, err := Normalize(raw, i)
		if err != nil {
			skipped++
			log.Printf("[normalize] skipping record %d: %v", i, err)
			continue
		}
		if q.SourceOrigin == models.OriginUnknown && origin != "" {
			q.SourceOrigin = origin
		}
		questions = append(questions, q)
	}
	return questions, skipped
}
