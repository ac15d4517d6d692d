package prompt

import (
	"strings"
	"testing"

	"github.com/sortphy/chatgpdune/internal/domain"
)

func TestAssembler_TriggerReply(t *testing.T) {
	assembler := NewAssembler()

	tests := []struct {
		name      string
		question  string
		wantReply string
		wantOK    bool
	}{
		{"exact word", "glauco", "Glauco.", true},
		{"uppercase", "GLAUCO", "Glauco.", true},
		{"mixed case embedded", "hey Glauco, who is Paul?", "Glauco.", true},
		{"inside a longer word", "glaucoma research", "Glauco.", true},
		{"absent", "who is Paul Atreides?", "", false},
		{"empty question", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, ok := assembler.TriggerReply(tt.question)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", reply, tt.wantReply)
			}
		})
	}
}

func TestAssembler_Build_WithContext(t *testing.T) {
	assembler := NewAssembler()

	chunks := []domain.Chunk{
		{Content: "Melange extends life and expands consciousness."},
		{
			Content:  "Sandworms produce the spice in the deep desert.",
			Metadata: map[string]interface{}{"source_file": "dune.txt"},
		},
	}

	got := assembler.Build("What is melange?", chunks)

	for _, want := range []string{
		"Your name is ChatGPDune.",
		"Melange extends life and expands consciousness.",
		"Sandworms produce the spice in the deep desert. [Source: dune.txt]",
		"Question: What is melange?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	for _, leftover := range []string{"{context}", "{question}"} {
		if strings.Contains(got, leftover) {
			t.Errorf("prompt still contains placeholder %q", leftover)
		}
	}
}

func TestAssembler_Build_NoContext(t *testing.T) {
	assembler := NewAssembler()

	got := assembler.Build("What is melange?", nil)

	if !strings.Contains(got, emptyContext) {
		t.Errorf("prompt missing empty-context marker, got:\n%s", got)
	}
	if !strings.Contains(got, "Question: What is melange?") {
		t.Error("prompt missing question")
	}
}

func TestAssembler_Build_PlaceholderCollision(t *testing.T) {
	assembler := NewAssembler()

	// A question that quotes a placeholder must survive literally: the
	// substituted text is never rescanned.
	got := assembler.Build("what does {context} mean in a template?", nil)

	if !strings.Contains(got, "Question: what does {context} mean in a template?") {
		t.Errorf("question placeholder text was rewritten:\n%s", got)
	}
	if !strings.Contains(got, emptyContext) {
		t.Error("empty-context marker missing")
	}

	// Same the other way: context text quoting {question} stays literal.
	chunks := []domain.Chunk{
		{Content: "The template uses {question} markers for historical reasons and always will."},
	}
	got = assembler.Build("why?", chunks)

	if !strings.Contains(got, "The template uses {question} markers for historical reasons and always will.") {
		t.Errorf("context placeholder text was rewritten:\n%s", got)
	}
	if !strings.Contains(got, "Question: why?") {
		t.Error("question missing")
	}
}

func TestAssembler_Build_SourceTypeFallback(t *testing.T) {
	assembler := NewAssembler()

	chunks := []domain.Chunk{
		{
			Content:  "Arrakis is the desert planet.",
			Metadata: map[string]interface{}{"source_type": "wiki"},
		},
	}

	got := assembler.Build("Where is Arrakis?", chunks)
	if !strings.Contains(got, "Arrakis is the desert planet. [Source: wiki]") {
		t.Errorf("source_type attribution missing:\n%s", got)
	}
}
