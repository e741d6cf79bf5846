package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"studyquiz-service/internal/models"
	"studyquiz-service/internal/pool"
	"studyquiz-service/internal/storage"
)

func rawQuestion(prompt string, answer int) models.RawQuestion {
	encoded, _ := json.Marshal(answer)
	return models.RawQuestion{
		Question: prompt,
		Options:  []string{"a", "b", "c"},
		Answer:   encoded,
	}
}

func newQuestionService() *QuestionService {
	p := pool.NewProvider()
	pool.SeedDefaultBank(p)
	return NewQuestionService(nil, storage.NewMemoryStore(), p)
}

func TestAIBatchRoundTrip(t *testing.T) {
	svc := newQuestionService()
	ctx := context.Background()

	raws := []models.RawQuestion{rawQuestion("first", 0), rawQuestion("second", 2)}
	if err := svc.SaveAIBatch(ctx, "user-1", raws, time.Hour); err != nil {
		t.Fatalf("SaveAIBatch failed: %v", err)
	}

	questions, skipped, ok := svc.AIBatch(ctx, "user-1")
	if !ok {
		t.Fatal("Expected cached batch")
	}
	if skipped != 0 {
		t.Errorf("Expected 0 skipped, got %d", skipped)
	}
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
	if questions[0].SourceOrigin != models.OriginAI {
		t.Errorf("Expected ai-generated origin, got %s", questions[0].SourceOrigin)
	}
	if questions[1].CorrectChoiceIndex != 2 {
		t.Errorf("Expected answer index 2, got %d", questions[1].CorrectChoiceIndex)
	}
}

func TestAIBatchExpires(t *testing.T) {
	svc := newQuestionService()
	ctx := context.Background()

	raws := []models.RawQuestion{rawQuestion("stale", 0)}
	batch := aiBatch{Raw: raws, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := storage.SetJSON(ctx, svc.store, storage.AIBatchKey("user-1"), batch, time.Hour); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, _, ok := svc.AIBatch(ctx, "user-1"); ok {
		t.Error("Expected expired batch to be absent")
	}
	if _, found, _ := svc.store.Get(ctx, storage.AIBatchKey("user-1")); found {
		t.Error("Expected expired batch removed from store")
	}
}

func TestAIBatchEmptyRejected(t *testing.T) {
	svc := newQuestionService()
	if err := svc.SaveAIBatch(context.Background(), "user-1", nil, 0); err != ErrNoQuestions {
		t.Errorf("Expected ErrNoQuestions, got %v", err)
	}
}

func TestLibrarySaveReplaceDelete(t *testing.T) {
	svc := newQuestionService()
	ctx := context.Background()

	if err := svc.SaveLibraryTest(ctx, "user-1", "deneme-1", []models.RawQuestion{rawQuestion("v1", 0)}); err != nil {
		t.Fatalf("SaveLibraryTest failed: %v", err)
	}
	if err := svc.SaveLibraryTest(ctx, "user-1", "deneme-2", []models.RawQuestion{rawQuestion("other", 1)}); err != nil {
		t.Fatalf("SaveLibraryTest failed: %v", err)
	}
	// Same name replaces, it does not append.
	if err := svc.SaveLibraryTest(ctx, "user-1", "deneme-1", []models.RawQuestion{rawQuestion("v2", 1), rawQuestion("v2b", 2)}); err != nil {
		t.Fatalf("SaveLibraryTest replace failed: %v", err)
	}

	tests := svc.LibraryTests(ctx, "user-1")
	if len(tests) != 2 {
		t.Fatalf("Expected 2 tests, got %d", len(tests))
	}
	questions, _, err := svc.libraryQuestions(ctx, "user-1", "deneme-1")
	if err != nil {
		t.Fatalf("libraryQuestions failed: %v", err)
	}
	if len(questions) != 2 || questions[0].PromptText != "v2" {
		t.Errorf("Expected replaced test content, got %+v", questions)
	}

	if err := svc.DeleteLibraryTest(ctx, "user-1", "deneme-1"); err != nil {
		t.Fatalf("DeleteLibraryTest failed: %v", err)
	}
	if err := svc.DeleteLibraryTest(ctx, "user-1", "deneme-1"); err != ErrLibraryTestNotFound {
		t.Errorf("Expected ErrLibraryTestNotFound, got %v", err)
	}
	if _, _, err := svc.libraryQuestions(ctx, "user-1", "deneme-1"); err != ErrLibraryTestNotFound {
		t.Errorf("Expected ErrLibraryTestNotFound after delete, got %v", err)
	}
}

func TestForStartSources(t *testing.T) {
	svc := newQuestionService()
	ctx := context.Background()

	t.Run("pool default", func(t *testing.T) {
		questions, _, err := svc.ForStart(ctx, "user-1", StartSelection{FieldKey: "sayisal", Count: 4})
		if err != nil {
			t.Fatalf("ForStart failed: %v", err)
		}
		if len(questions) != 4 {
			t.Errorf("Expected 4 questions, got %d", len(questions))
		}
	})

	t.Run("pool subjects with count below subject count", func(t *testing.T) {
		sel := StartSelection{FieldKey: "sayisal", Count: 2, Subjects: []string{"matematik", "fizik", "kimya"}}
		questions, _, err := svc.ForStart(ctx, "user-1", sel)
		if err != nil {
			t.Fatalf("ForStart failed: %v", err)
		}
		// Quota floors would otherwise yield zero per subject; one each
		// is the minimum useful draw.
		if len(questions) != 3 {
			t.Errorf("Expected one question per subject, got %d", len(questions))
		}
	})

	t.Run("ai without batch", func(t *testing.T) {
		if _, _, err := svc.ForStart(ctx, "user-1", StartSelection{Source: "ai"}); err != ErrNoQuestions {
			t.Errorf("Expected ErrNoQuestions, got %v", err)
		}
	})

	t.Run("inline", func(t *testing.T) {
		sel := StartSelection{Source: "inline", Questions: []models.RawQuestion{rawQuestion("inline", 1)}}
		questions, _, err := svc.ForStart(ctx, "user-1", sel)
		if err != nil {
			t.Fatalf("ForStart failed: %v", err)
		}
		if len(questions) != 1 {
			t.Fatalf("Expected 1 question, got %d", len(questions))
		}
	})

	t.Run("inline all malformed", func(t *testing.T) {
		sel := StartSelection{Source: "inline", Questions: []models.RawQuestion{{Question: "no options"}}}
		if _, _, err := svc.ForStart(ctx, "user-1", sel); err != ErrNoQuestions {
			t.Errorf("Expected ErrNoQuestions, got %v", err)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		if _, _, err := svc.ForStart(ctx, "user-1", StartSelection{Source: "nope"}); err != ErrNoQuestions {
			t.Errorf("Expected ErrNoQuestions, got %v", err)
		}
	})
}
