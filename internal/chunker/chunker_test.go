package chunker

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sortphy/chatgpdune/internal/domain"
)

func TestService_Split(t *testing.T) {
	service := New()

	tests := []struct {
		name     string
		text     string
		options  domain.ChunkOptions
		expected []string
		wantErr  bool
	}{
		{
			name: "sentences fit into one chunk",
			text: "First sentence. Second sentence! Third?",
			options: domain.ChunkOptions{
				Size:    300,
				Overlap: 0,
				Method:  "sentence",
			},
			expected: []string{"First sentence. Second sentence! Third?"},
		},
		{
			name: "sentences split across chunks",
			text: "alpha beta gamma. delta epsilon zeta.",
			options: domain.ChunkOptions{
				Size:    20,
				Overlap: 0,
				Method:  "sentence",
			},
			expected: []string{"alpha beta gamma.", "delta epsilon zeta."},
		},
		{
			name: "overlap carries tail into next chunk",
			text: "alpha beta gamma. delta epsilon.",
			options: domain.ChunkOptions{
				Size:    30,
				Overlap: 8,
				Method:  "sentence",
			},
			expected: []string{"alpha beta gamma.", "gamma. delta epsilon."},
		},
		{
			name: "paragraph method",
			text: "First paragraph here.\n\nSecond paragraph here.",
			options: domain.ChunkOptions{
				Size:    300,
				Overlap: 0,
				Method:  "paragraph",
			},
			expected: []string{"First paragraph here. Second paragraph here."},
		},
		{
			name: "token method",
			text: "one two three four five six seven eight",
			options: domain.ChunkOptions{
				Size:    25,
				Overlap: 0,
				Method:  "token",
			},
			expected: []string{"one two three four five", "six seven eight"},
		},
		{
			name:     "empty text",
			text:     "   \n  ",
			options:  domain.ChunkOptions{Size: 300, Method: "sentence"},
			expected: []string{},
		},
		{
			name:    "unknown method",
			text:    "some text",
			options: domain.ChunkOptions{Size: 300, Method: "semantic"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Split(tt.text, tt.options)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrChunkingFailed) {
					t.Fatalf("error = %v, want ErrChunkingFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Split() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestService_Split_TerminatorRuns(t *testing.T) {
	service := New()

	// "?!" and "..." end a single sentence, not several.
	got, err := service.Split("Really?! Yes... Done.", domain.ChunkOptions{
		Size:    5,
		Overlap: 0,
		Method:  "sentence",
	})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	expected := []string{"Really?!", "Yes...", "Done."}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Split() = %q, want %q", got, expected)
	}
}

func TestService_Split_NoTerminator(t *testing.T) {
	service := New()

	got, err := service.Split("a fragment with no punctuation", domain.ChunkOptions{
		Size:    300,
		Overlap: 0,
		Method:  "sentence",
	})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(got) != 1 || got[0] != "a fragment with no punctuation" {
		t.Errorf("Split() = %q", got)
	}
}
