package service

import (
	"context"
	"errors"
	"log"
	"time"

	"studyquiz-service/internal/models"
	"studyquiz-service/internal/normalize"
	"studyquiz-service/internal/pool"
	"studyquiz-service/internal/repository"
	"studyquiz-service/internal/storage"
)

var (
	ErrLibraryTestNotFound = errors.New("library test not found")
	ErrNoQuestions         = errors.New("no usable questions in request")
)

// AI batches are throwaway material: they expire rather than accumulate.
const defaultAIBatchTTL = 6 * time.Hour

// aiBatch is the cached form of a user's generated question set. ExpiresAt
// is checked on read as well, so a store without native TTL support still
// expires batches correctly.
type aiBatch struct {
	Raw       []models.RawQuestion `json:"raw"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// LibraryTest is a named, user-saved question set. Raw shapes are kept
// as-is and normalized again on every start.
type LibraryTest struct {
	Name    string               `json:"name"`
	SavedAt time.Time            `json:"saved_at"`
	Raw     []models.RawQuestion `json:"raw"`
}

// StartSelection names where a new session's questions come from.
type StartSelection struct {
	Source      string               `json:"source"` // pool, ai, library, inline
	FieldKey    string               `json:"field_key"`
	Count       int                  `json:"count"`
	Subjects    []string             `json:"subjects,omitempty"`
	PerSubject  int                  `json:"per_subject,omitempty"`
	LibraryName string               `json:"library_name,omitempty"`
	Questions   []models.RawQuestion `json:"questions,omitempty"`
}

// QuestionService feeds the pool provider and resolves a StartSelection
// into a normalized question set.
type QuestionService struct {
	repo  *repository.QuestionRepository // nil when Mongo is not configured
	store storage.Store
	pool  *pool.Provider
}

func NewQuestionService(repo *repository.QuestionRepository, store storage.Store, p *pool.Provider) *QuestionService {
	return &QuestionService{repo: repo, store: store, pool: p}
}

// LoadCuratedPool pulls every curated question from Mongo into the
// in-memory pool, grouped by field. Returns how many loaded and how many
// were skipped as malformed. Without Mongo the built-in bank is the only
// pool content, so a nil repo is a no-op rather than an error.
func (s *QuestionService) LoadCuratedPool(ctx context.Context) (int, int, error) {
	if s.repo == nil {
		return 0, 0, nil
	}
	docs, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	byField := make(map[string][]models.RawQuestion)
	for _, doc := range docs {
		field := doc.FieldKey
		if field == "" {
			field = pool.DefaultField
		}
		byField[field] = append(byField[field], doc.Raw())
	}

	loaded, skipped := 0, 0
	for field, raws := range byField {
		questions, fieldSkipped := normalize.Batch(raws, models.OriginPool)
		for i := range questions {
			questions[i].ID = field + "-" + questions[i].ID
		}
		s.pool.Ingest(field, questions)
		loaded += len(questions)
		skipped += fieldSkipped
	}
	if skipped > 0 {
		log.Printf("[pool] curated load skipped %d malformed questions", skipped)
	}
	return loaded, skipped, nil
}

func (s *QuestionService) Pool() *pool.Provider { return s.pool }

// SaveAIBatch caches a user's generated questions for later session starts.
func (s *QuestionService) SaveAIBatch(ctx context.Context, userID string, raws []models.RawQuestion, ttl time.Duration) error {
	if len(raws) == 0 {
		return ErrNoQuestions
	}
	if ttl <= 0 {
		ttl = defaultAIBatchTTL
	}
	batch := aiBatch{Raw: raws, ExpiresAt: time.Now().Add(ttl)}
	return storage.SetJSON(ctx, s.store, storage.AIBatchKey(userID), batch, ttl)
}

// AIBatch returns the user's cached generated questions, normalized. An
// expired batch is removed and reported as absent.
func (s *QuestionService) AIBatch(ctx context.Context, userID string) ([]models.Question, int, bool) {
	var batch aiBatch
	if !storage.GetJSON(ctx, s.store, storage.AIBatchKey(userID), &batch) {
		return nil, 0, false
	}
	if time.Now().After(batch.ExpiresAt) {
		_ = s.store.Remove(ctx, storage.AIBatchKey(userID))
		return nil, 0, false
	}
	questions, skipped := normalize.Batch(batch.Raw, models.OriginAI)
	return questions, skipped, true
}

// SaveLibraryTest stores a named question set in the user's library,
// replacing any test saved under the same name.
func (s *QuestionService) SaveLibraryTest(ctx context.Context, userID, name string, raws []models.RawQuestion) error {
	if len(raws) == 0 {
		return ErrNoQuestions
	}
	tests := s.LibraryTests(ctx, userID)
	entry := LibraryTest{Name: name, SavedAt: time.Now(), Raw: raws}

	replaced := false
	for i := range tests {
		if tests[i].Name == name {
			tests[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		tests = append(tests, entry)
	}
	return storage.SetJSON(ctx, s.store, storage.LibraryKey(userID), tests, 0)
}

func (s *QuestionService) LibraryTests(ctx context.Context, userID string) []LibraryTest {
	var tests []LibraryTest
	storage.GetJSON(ctx, s.store, storage.LibraryKey(userID), &tests)
	return tests
}

func (s *QuestionService) DeleteLibraryTest(ctx context.Context, userID, name string) error {
	tests := s.LibraryTests(ctx, userID)
	kept := tests[:0]
	for _, t := range tests {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tests) {
		return ErrLibraryTestNotFound
	}
	if len(kept) == 0 {
		return s.store.Remove(ctx, storage.LibraryKey(userID))
	}
	return storage.SetJSON(ctx, s.store, storage.LibraryKey(userID), kept, 0)
}

func (s *QuestionService) libraryQuestions(ctx context.Context, userID, name string) ([]models.Question, int, error) {
	for _, t := range s.LibraryTests(ctx, userID) {
		if t.Name == name {
			questions, skipped := normalize.Batch(t.Raw, models.OriginLibrary)
			return questions, skipped, nil
		}
	}
	return nil, 0, ErrLibraryTestNotFound
}

// ForStart resolves a StartSelection into a question set. The second
// return is how many raw questions were skipped as malformed.
func (s *QuestionService) ForStart(ctx context.Context, userID string, sel StartSelection) ([]models.Question, int, error) {
	switch sel.Source {
	case "", "pool":
		count := sel.Count
		if count <= 0 {
			count = 10
		}
		if len(sel.Subjects) > 0 {
			perSubject := sel.PerSubject
			if perSubject <= 0 {
				perSubject = count / len(sel.Subjects)
			}
			if perSubject < 1 {
				perSubject = 1
			}
			return s.pool.SamplePerSubject(sel.FieldKey, sel.Subjects, perSubject), 0, nil
		}
		return s.pool.SampleMixed(sel.FieldKey, count), 0, nil
	case "ai":
		questions, skipped, ok := s.AIBatch(ctx, userID)
		if !ok {
			return nil, 0, ErrNoQuestions
		}
		return questions, skipped, nil
	case "library":
		return s.libraryQuestions(ctx, userID, sel.LibraryName)
	case "inline":
		questions, skipped := normalize.Batch(sel.Questions, models.OriginUnknown)
		if len(questions) == 0 {
			return nil, skipped, ErrNoQuestions
		}
		return questions, skipped, nil
	default:
		return nil, 0, ErrNoQuestions
	}
}
