// Package prompt assembles the fixed ChatGPDune persona instructions,
// optional retrieved context, and the user question into a single
// prompt string.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sortphy/chatgpdune/internal/domain"
)

const basePrompt = `Your name is ChatGPDune. You were created by Sortphy.
You are a chatbot based on a locally hosted language model.
You are an expert on the Dune universe by Frank Herbert.
Always answer questions strictly based on the Dune books and lore.
Ignore anything unrelated to Dune or ChatGPDune.
Give short answers, trying not to go over three sentences, unless the question requires more detail.
Be objective and factual, avoiding personal opinions or interpretations, unless you are asked for your personal opinion.
Be concise and to the point; if you can answer a question with few words, do it.
If a question is unclear, ask for clarification.

Use the following context from the Dune universe to answer the question:
CONTEXT:
{context}

Question: {question}

Answer based on the provided context:`

const emptyContext = "No specific context found in the Dune database for this query."

const (
	// triggerWord short-circuits the whole pipeline before retrieval
	// or assembly: the reply is fixed and the model is never called.
	triggerWord  = "glauco"
	triggerReply = "Glauco."
)

type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// TriggerReply returns the fixed literal reply when the question contains
// the trigger word anywhere as a case-insensitive substring.
func (a *Assembler) TriggerReply(question string) (string, bool) {
	if strings.Contains(strings.ToLower(question), triggerWord) {
		return triggerReply, true
	}
	return "", false
}

// Build renders the persona template with the given context chunks and
// question. Both placeholders are substituted in a single pass, so text
// produced by one substitution is never rescanned by the other.
func (a *Assembler) Build(question string, chunks []domain.Chunk) string {
	context := emptyContext
	if len(chunks) > 0 {
		parts := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			parts = append(parts, chunk.Content+sourceSuffix(chunk))
		}
		context = strings.Join(parts, "\n\n")
	}

	return strings.NewReplacer(
		"{context}", context,
		"{question}", question,
	).Replace(basePrompt)
}

// sourceSuffix carries source attribution into the context block when the
// chunk metadata names one.
func sourceSuffix(chunk domain.Chunk) string {
	if chunk.Metadata == nil {
		return ""
	}
	if file, ok := chunk.Metadata["source_file"].(string); ok && file != "" {
		return fmt.Sprintf(" [Source: %s]", file)
	}
	if typ, ok := chunk.Metadata["source_type"].(string); ok && typ != "" {
		return fmt.Sprintf(" [Source: %s]", typ)
	}
	return ""
}
