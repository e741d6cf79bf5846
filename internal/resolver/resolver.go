package resolver

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"studyquiz-service/internal/models"
)

// choiceLetters is the fixed letter sequence for letter-encoded answers.
const choiceLetters = "ABCDE"

var letterPrefix = regexp.MustCompile(`^[A-Ea-e]\)\s*`)

// matcher tries one legacy answer encoding against the choices. ok is false
// when the encoding is not present on the record or does not resolve.
type matcher interface {
	match(raw *models.RawQuestion, choices []string) (int, bool)
}

// The chain is ordered: explicit index fields win over the answer value,
// a numeric answer wins over a letter, a letter wins over free text.
var chain = []matcher{
	indexFieldMatcher{},
	numericAnswerMatcher{},
	letterMatcher{},
	textMatcher{},
}

// Resolve determines the zero-based index of the correct choice, tolerating
// the legacy encodings produced by the question sources. When no encoding
// resolves it returns models.NotFound: the question remains usable but can
// never be marked correct. The miss is logged so test authors can fix the
// upstream record.
func Resolve(raw *models.RawQuestion, choices []string) int {
	for _, m := range chain {
		if idx, ok := m.match(raw, choices); ok {
			return idx
		}
	}
	log.Printf("[resolver] no choice matched for question %q, marking unresolved", raw.ID)
	return models.NotFound
}

// indexFieldMatcher uses an explicit numeric index field verbatim.
type indexFieldMatcher struct{}

func (indexFieldMatcher) match(raw *models.RawQuestion, choices []string) (int, bool) {
	for _, idx := range []*int{raw.CorrectChoiceIndex, raw.AnswerIndex, raw.CorrectIndex} {
		if idx != nil && *idx >= 0 && *idx < len(choices) {
			return *idx, true
		}
	}
	return 0, false
}

// numericAnswerMatcher uses a numeric value (or numeric string) in the
// answer field verbatim.
type numericAnswerMatcher struct{}

func (numericAnswerMatcher) match(raw *models.RawQuestion, choices []string) (int, bool) {
	if n, ok := raw.NumericAnswer(); ok {
		idx := int(n)
		if float64(idx) == n && idx >= 0 && idx < len(choices) {
			return idx, true
		}
		return 0, false
	}
	if s, ok := raw.TextAnswer(); ok {
		if idx, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			if idx >= 0 && idx < len(choices) {
				return idx, true
			}
		}
	}
	return 0, false
}

// letterMatcher maps a single letter A-E to its position.
type letterMatcher struct{}

func (letterMatcher) match(raw *models.RawQuestion, choices []string) (int, bool) {
	s, ok := raw.TextAnswer()
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, false
	}
	idx := strings.IndexByte(choiceLetters, strings.ToUpper(s)[0])
	if idx >= 0 && idx < len(choices) {
		return idx, true
	}
	return 0, false
}

// textMatcher matches the answer text against the choices: exact trimmed
// equality first, then with any leading "X)" letter prefix stripped from
// both sides.
type textMatcher struct{}

func (textMatcher) match(raw *models.RawQuestion, choices []string) (int, bool) {
	s, ok := raw.TextAnswer()
	if !ok {
		return 0, false
	}
	answer := strings.TrimSpace(s)
	if answer == "" {
		return 0, false
	}
	for i, choice := range choices {
		if strings.TrimSpace(choice) == answer {
			return i, true
		}
	}
	stripped := stripLetterPrefix(answer)
	for i, choice := range choices {
		if stripLetterPrefix(strings.TrimSpace(choice)) == stripped {
			return i, true
		}
	}
	return 0, false
}

func stripLetterPrefix(s string) string {
	return strings.TrimSpace(letterPrefix.ReplaceAllString(s, ""))
}
