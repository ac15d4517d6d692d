// Package chunker splits document text into overlapping chunks sized for
// embedding.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sortphy/chatgpdune/internal/domain"
)

type Service struct{}

func New() *Service {
	return &Service{}
}

func (s *Service) Split(text string, options domain.ChunkOptions) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	switch options.Method {
	case "sentence":
		return s.combine(s.sentences(text), options), nil
	case "paragraph":
		var units []string
		for _, para := range s.paragraphs(text) {
			units = append(units, s.sentences(para)...)
		}
		return s.combine(units, options), nil
	case "token":
		return s.wordChunks(strings.Fields(text), options), nil
	default:
		return nil, fmt.Errorf("%w: unknown method %s", domain.ErrChunkingFailed, options.Method)
	}
}

func (s *Service) sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])

		if !isSentenceEnd(runes[i]) {
			continue
		}
		// A terminator only ends the sentence at end of text or before
		// whitespace, so "?!" runs and decimals stay in one piece.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		if sentence := strings.TrimSpace(current.String()); sentence != "" {
			out = append(out, sentence)
		}
		current.Reset()

		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
	}

	if sentence := strings.TrimSpace(current.String()); sentence != "" {
		out = append(out, sentence)
	}

	return out
}

func (s *Service) paragraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

// combine packs sentence units into chunks of at most options.Size runes,
// carrying options.Overlap trailing runes into the next chunk.
func (s *Service) combine(units []string, options domain.ChunkOptions) []string {
	if len(units) == 0 {
		return []string{}
	}

	var chunks []string
	var current strings.Builder
	length := 0

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		overlap := overlapTail(current.String(), options.Overlap)
		current.Reset()
		length = 0
		if overlap != "" {
			current.WriteString(overlap)
			current.WriteString(" ")
			length = len([]rune(overlap)) + 1
		}
	}

	for _, unit := range units {
		unitLen := len([]rune(unit))

		if length > 0 && length+1+unitLen > options.Size {
			flush()
		} else if length > 0 {
			current.WriteString(" ")
			length++
		}

		current.WriteString(unit)
		length += unitLen
	}

	if current.Len() > 0 {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}

func (s *Service) wordChunks(words []string, options domain.ChunkOptions) []string {
	if len(words) == 0 {
		return []string{}
	}

	// Size and overlap are rune budgets; approximate five runes per word.
	perChunk := options.Size / 5
	if perChunk < 1 {
		perChunk = 1
	}
	overlap := options.Overlap / 5
	if overlap < 0 {
		overlap = 0
	}

	var chunks []string
	for i := 0; i < len(words); {
		end := i + perChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))

		next := end - overlap
		if next <= i {
			next = i + 1
		}
		i = next
	}

	return chunks
}

// overlapTail returns the trailing overlapSize runes of text, trimmed to a
// word boundary so the next chunk never starts mid-word.
func overlapTail(text string, overlapSize int) string {
	if overlapSize <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= overlapSize {
		return text
	}

	words := strings.Fields(string(runes[len(runes)-overlapSize:]))
	if len(words) > 1 {
		return strings.Join(words[1:], " ")
	}
	return strings.Join(words, " ")
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
