package pool

import (
	"fmt"
	"testing"

	"studyquiz-service/internal/models"
)

func testProvider(t *testing.T) *Provider {
	t.Helper()
	p := NewProvider()
	if loaded, skipped := SeedDefaultBank(p); loaded == 0 || skipped != 0 {
		t.Fatalf("Bank seed loaded=%d skipped=%d", loaded, skipped)
	}
	return p
}

func assertDistinct(t *testing.T, qs []models.Question) {
	t.Helper()
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if seen[q.ID] {
			t.Errorf("Duplicate question %q in sample", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSampleMixed_Bounds(t *testing.T) {
	p := testProvider(t)
	available := p.Available("sayisal")

	for _, count := range []int{0, 1, 3, available, available + 10} {
		t.Run(fmt.Sprintf("count=%d", count), func(t *testing.T) {
			got := p.SampleMixed("sayisal", count)
			want := count
			if want > available {
				want = available
			}
			if len(got) != want {
				t.Errorf("Expected %d questions, got %d", want, len(got))
			}
			assertDistinct(t, got)
		})
	}
}

func TestSampleMixed_UnknownFieldFallsBack(t *testing.T) {
	p := testProvider(t)
	got := p.SampleMixed("no-such-field", 100)
	if len(got) != p.Available(DefaultField) {
		t.Errorf("Expected the full %q partition, got %d questions", DefaultField, len(got))
	}
	for _, q := range got {
		if q.SubjectTag != "genel-kultur" {
			t.Errorf("Expected fallback partition question, got subject %q", q.SubjectTag)
		}
	}
}

func TestSampleMixed_DoesNotMutateCorpus(t *testing.T) {
	p := testProvider(t)
	before := p.Available("sozel")
	for i := 0; i < 5; i++ {
		p.SampleMixed("sozel", 3)
	}
	if after := p.Available("sozel"); after != before {
		t.Errorf("Corpus size changed from %d to %d", before, after)
	}
}

func TestSamplePerSubject_Caps(t *testing.T) {
	p := testProvider(t)

	got := p.SamplePerSubject("sayisal", []string{"matematik", "fizik"}, 2)
	if len(got) != 4 {
		t.Fatalf("Expected 2+2 questions, got %d", len(got))
	}
	counts := map[string]int{}
	for _, q := range got {
		counts[q.SubjectTag]++
	}
	if counts["matematik"] != 2 || counts["fizik"] != 2 {
		t.Errorf("Expected 2 per subject, got %v", counts)
	}
	assertDistinct(t, got)
}

func TestSamplePerSubject_ShortBucketIncludedWhole(t *testing.T) {
	p := testProvider(t)

	// felsefe has a single bank question; asking for 5 must return that one
	// without padding or erroring.
	got := p.SamplePerSubject("sozel", []string{"felsefe"}, 5)
	if len(got) != 1 {
		t.Fatalf("Expected the whole short bucket (1 question), got %d", len(got))
	}
	if got[0].SubjectTag != "felsefe" {
		t.Errorf("Expected felsefe question, got %q", got[0].SubjectTag)
	}
}

func TestSamplePerSubject_AllSubjectsWhenUnspecified(t *testing.T) {
	p := testProvider(t)

	got := p.SamplePerSubject("sozel", nil, 1)
	subjects := map[string]bool{}
	for _, q := range got {
		subjects[q.SubjectTag] = true
	}
	for _, want := range []string{"turkce", "tarih", "cografya", "felsefe"} {
		if !subjects[want] {
			t.Errorf("Expected a question for subject %q, got %v", want, subjects)
		}
	}
}

func TestSamplePerSubject_UnknownSubjectEmpty(t *testing.T) {
	p := testProvider(t)
	if got := p.SamplePerSubject("sayisal", []string{"muzik"}, 3); len(got) != 0 {
		t.Errorf("Expected no questions for unknown subject, got %d", len(got))
	}
}
