package assessment

import (
	"fmt"
	"time"

	"studyquiz-service/internal/models"
	"studyquiz-service/internal/pool"
	"studyquiz-service/internal/session"
)

// Config holds the knobs of the level-assessment flow.
type Config struct {
	TargetQuestions int      // roughly how many questions a built assessment holds
	MinQuestions    int      // below this, the build pads from the field's mixed pool
	DefaultSubjects []string // used when the user reported no weak subjects
}

func DefaultConfig() *Config {
	return &Config{
		TargetQuestions: 20,
		MinQuestions:    10,
		DefaultSubjects: []string{"matematik", "turkce", "fizik", "tarih"},
	}
}

// Orchestrator builds level-assessment tests from a user's self-reported
// weak subjects and buckets the finished session into per-subject tiers.
type Orchestrator struct {
	config *Config
	pool   *pool.Provider
}

func NewOrchestrator(provider *pool.Provider, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{config: config, pool: provider}
}

// BuildAssessment samples per-subject questions for the given weak subjects
// (or the default set when none were reported), padding from the field's
// mixed pool when the draw comes up short of the minimum. The result is a
// fixed set: callers cache it rather than rebuilding per render, so repeated
// reads agree with each other.
func (o *Orchestrator) BuildAssessment(weakSubjects []string, fieldKey string) ([]models.Question, error) {
	subjects := weakSubjects
	if len(subjects) == 0 {
		subjects = o.config.DefaultSubjects
	}

	perSubject := o.config.TargetQuestions / len(subjects)
	if perSubject < 1 {
		perSubject = 1
	}
	questions := o.pool.SamplePerSubject(fieldKey, subjects, perSubject)

	if len(questions) < o.config.MinQuestions {
		questions = o.padFromField(questions, fieldKey)
	}
	if len(questions) == 0 {
		return nil, session.ErrEmptyQuestionSet
	}
	return questions, nil
}

// padFromField tops an underfilled draw up toward the target with distinct
// questions from the field's mixed pool.
func (o *Orchestrator) padFromField(questions []models.Question, fieldKey string) []models.Question {
	have := make(map[string]bool, len(questions))
	for _, q := range questions {
		have[q.ID] = true
	}
	for _, q := range o.pool.SampleMixed(fieldKey, o.config.TargetQuestions) {
		if len(questions) >= o.config.TargetQuestions {
			break
		}
		if have[q.ID] {
			continue
		}
		have[q.ID] = true
		questions = append(questions, q)
	}
	return questions
}

// Evaluate groups a finished session's questions by subject, computes
// per-subject accuracy and maps it onto the four-tier proficiency scale.
// The result replaces any previous assessment wholesale.
func (o *Orchestrator) Evaluate(s *session.Session) (models.LevelAssessmentResult, error) {
	if s.Status() != session.StatusFinished {
		return models.LevelAssessmentResult{}, session.ErrNotFinished
	}

	questions := s.Questions()
	answers := s.Answers()

	perSubject := make(map[string]models.SubjectScore)
	for i, q := range questions {
		subject := q.SubjectTag
		if subject == "" {
			subject = pool.DefaultField
		}
		score := perSubject[subject]
		score.TotalCount++
		if a := answers[i]; a != nil && !q.Unresolved() && *a == q.CorrectChoiceIndex {
			score.CorrectCount++
		}
		perSubject[subject] = score
	}

	tiers := make(map[string]models.Tier, len(perSubject))
	recommendations := make(map[string]string, len(perSubject))
	for subject, score := range perSubject {
		tier := TierFor(score.CorrectCount, score.TotalCount)
		tiers[subject] = tier
		recommendations[subject] = recommendationFor(subject, tier)
	}

	return models.LevelAssessmentResult{
		PerSubjectScore: perSubject,
		PerSubjectTier:  tiers,
		Recommendations: recommendations,
		ComputedAt:      time.Now(),
	}, nil
}

// TierFor maps an accuracy ratio onto the proficiency scale. Boundaries are
// inclusive at the lower edge: exactly 40% is medium, 60% good, 80%
// excellent.
func TierFor(correct, total int) models.Tier {
	if total == 0 {
		return models.TierWeak
	}
	percent := 100 * float64(correct) / float64(total)
	switch {
	case percent >= 80:
		return models.TierExcellent
	case percent >= 60:
		return models.TierGood
	case percent >= 40:
		return models.TierMedium
	default:
		return models.TierWeak
	}
}

// One fixed sentence per tier; the subject slots in. Presentation glue, but
// kept here so every caller phrases the same tier the same way.
var tierTemplates = map[models.Tier]string{
	models.TierWeak:      "Start %s over from the fundamentals: work through topic summaries before attempting mixed tests.",
	models.TierMedium:    "Keep a steady practice schedule for %s and revisit the topics you miss most often.",
	models.TierGood:      "You are close in %s: focus on timed mixed tests to close the remaining gaps.",
	models.TierExcellent: "Maintain %s with periodic full-length tests; shift your study time to weaker subjects.",
}

func recommendationFor(subject string, tier models.Tier) string {
	return fmt.Sprintf(tierTemplates[tier], subject)
}
