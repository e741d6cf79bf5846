package pool

import (
	"math/rand"
	"sync"
	"time"

	"studyquiz-service/internal/models"
)

// DefaultField is the generic partition every unknown field key falls back
// to, so a sample request never dead-ends on a typo or a retired track.
const DefaultField = "genel"

// Provider holds the field-partitioned question corpus and hands out
// randomized samples. The stored corpus is never mutated by sampling; every
// call produces a fresh order.
type Provider struct {
	mu     sync.RWMutex
	fields map[string][]models.Question
	rand   *rand.Rand
}

func NewProvider() *Provider {
	return &Provider{
		fields: make(map[string][]models.Question),
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Ingest appends normalized questions to a field partition.
func (p *Provider) Ingest(fieldKey string, questions []models.Question) {
	if len(questions) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fields[fieldKey] = append(p.fields[fieldKey], questions...)
}

// Fields lists the known field keys.
func (p *Provider) Fields() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.fields))
	for k := range p.fields {
		keys = append(keys, k)
	}
	return keys
}

// Available reports how many questions a field partition holds, after
// fallback resolution.
func (p *Provider) Available(fieldKey string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.partition(fieldKey))
}

// SampleMixed draws up to count questions from the field's partition in a
// uniformly shuffled order. count at or above the available total returns
// the whole partition, shuffled.
func (p *Provider) SampleMixed(fieldKey string, count int) []models.Question {
	if count <= 0 {
		return []models.Question{}
	}
	p.mu.RLock()
	src := p.partition(fieldKey)
	out := make([]models.Question, len(src))
	copy(out, src)
	p.mu.RUnlock()

	p.shuffle(out)
	if count < len(out) {
		out = out[:count]
	}
	return out
}

// SamplePerSubject partitions the field's corpus by subject tag, shuffles
// and truncates each requested subject's bucket to perSubjectCount, then
// reshuffles the concatenation so subject blocks are not contiguous. A nil
// or empty subjects slice means every subject in the field. Buckets shorter
// than perSubjectCount are included whole.
func (p *Provider) SamplePerSubject(fieldKey string, subjects []string, perSubjectCount int) []models.Question {
	if perSubjectCount <= 0 {
		return []models.Question{}
	}
	p.mu.RLock()
	buckets := make(map[string][]models.Question)
	var order []string
	for _, q := range p.partition(fieldKey) {
		tag := q.SubjectTag
		if _, seen := buckets[tag]; !seen {
			order = append(order, tag)
		}
		buckets[tag] = append(buckets[tag], q)
	}
	p.mu.RUnlock()

	if len(subjects) == 0 {
		subjects = order
	}

	var out []models.Question
	for _, subject := range subjects {
		bucket := buckets[subject]
		picked := make([]models.Question, len(bucket))
		copy(picked, bucket)
		p.shuffle(picked)
		if perSubjectCount < len(picked) {
			picked = picked[:perSubjectCount]
		}
		out = append(out, picked...)
	}

	p.shuffle(out)
	return out
}

// partition resolves a field key to its question slice, falling back to the
// generic partition. Callers must hold at least a read lock.
func (p *Provider) partition(fieldKey string) []models.Question {
	if qs, ok := p.fields[fieldKey]; ok {
		return qs
	}
	return p.fields[DefaultField]
}

// shuffle applies a uniform Fisher-Yates permutation in place.
func (p *Provider) shuffle(qs []models.Question) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(qs) - 1; i > 0; i-- {
		j := p.rand.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
