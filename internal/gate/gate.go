// Package gate decides whether retrieved context is substantial and
// topically relevant enough to inject into the prompt. When the gate
// rejects, the caller falls back to an un-augmented query.
package gate

import (
	"strings"
	"unicode"

	"github.com/sortphy/chatgpdune/internal/domain"
)

const (
	DefaultMinChunkChars    = 50
	DefaultOverlapThreshold = 0.2
)

// Decision is the outcome of gating one retrieval result set.
type Decision struct {
	// Useful reports whether the surviving context should reach the prompt.
	Useful bool
	// Context holds the chunks that passed the substantiality filter,
	// in retrieval order. Empty when Useful is false.
	Context []domain.Chunk
	// Overlap is the computed question/context word-overlap ratio.
	Overlap float64
}

type Service struct {
	minChunkChars    int
	overlapThreshold float64
}

func New(minChunkChars int, overlapThreshold float64) *Service {
	if minChunkChars <= 0 {
		minChunkChars = DefaultMinChunkChars
	}
	if overlapThreshold <= 0 {
		overlapThreshold = DefaultOverlapThreshold
	}
	return &Service{
		minChunkChars:    minChunkChars,
		overlapThreshold: overlapThreshold,
	}
}

// Evaluate applies the three gate filters in order: per-chunk
// substantiality, lexical overlap against the question, and the
// meta-question exclusion list. All three must pass for the context
// to be judged useful.
func (s *Service) Evaluate(question string, chunks []domain.Chunk) Decision {
	substantial := s.filterSubstantial(chunks)
	if len(substantial) == 0 {
		return Decision{}
	}

	overlap := s.overlapRatio(question, substantial)
	if overlap < s.overlapThreshold {
		return Decision{Overlap: overlap}
	}

	if isMetaQuestion(question) {
		// Persona questions are answered from the instruction block,
		// not retrieved lore, no matter how well the context matches.
		return Decision{Overlap: overlap}
	}

	return Decision{Useful: true, Context: substantial, Overlap: overlap}
}

// filterSubstantial drops chunks whose trimmed text is below the minimum
// length. The threshold applies per chunk, never in aggregate.
func (s *Service) filterSubstantial(chunks []domain.Chunk) []domain.Chunk {
	var kept []domain.Chunk
	for _, chunk := range chunks {
		if len(strings.TrimSpace(chunk.Content)) >= s.minChunkChars {
			kept = append(kept, chunk)
		}
	}
	return kept
}

// overlapRatio computes the fraction of the question's distinct non-stop-word
// tokens that appear as whole words in the concatenated chunk text. A question
// with no tokens left after stop-word removal scores zero.
func (s *Service) overlapRatio(question string, chunks []domain.Chunk) float64 {
	questionTokens := contentTokens(question)
	if len(questionTokens) == 0 {
		return 0
	}

	var joined strings.Builder
	for _, chunk := range chunks {
		joined.WriteString(chunk.Content)
		joined.WriteString(" ")
	}

	contextWords := make(map[string]struct{})
	for _, w := range tokenize(joined.String()) {
		contextWords[w] = struct{}{}
	}

	matched := 0
	for token := range questionTokens {
		if _, ok := contextWords[token]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(questionTokens))
}

// contentTokens returns the distinct lowercase word tokens of the text
// with stop words removed.
func contentTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range tokenize(text) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens[w] = struct{}{}
	}
	return tokens
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func isMetaQuestion(question string) bool {
	for _, re := range metaQuestionPatterns {
		if re.MatchString(question) {
			return true
		}
	}
	return false
}
