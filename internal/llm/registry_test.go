package llm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sortphy/chatgpdune/internal/domain"
)

func TestNewRegistry_RequiresDefault(t *testing.T) {
	_, err := NewRegistry("http://localhost:11434", "", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	registry, err := NewRegistry("http://localhost:11434", "deepseek-r1", []string{"llama3.2", "deepseek-r1", ""})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		name      string
		requested string
		wantModel string
	}{
		{"empty falls back to default", "", "deepseek-r1"},
		{"known model is honored", "llama3.2", "llama3.2"},
		{"unknown model falls back", "gpt-oss", "deepseek-r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, model := registry.Resolve(tt.requested)
			if gen == nil {
				t.Fatal("Resolve() returned nil generator")
			}
			if model != tt.wantModel {
				t.Errorf("model = %q, want %q", model, tt.wantModel)
			}
		})
	}
}

func TestRegistry_Models(t *testing.T) {
	registry, err := NewRegistry("http://localhost:11434", "deepseek-r1", []string{"qwen3", "llama3.2"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	want := []string{"deepseek-r1", "llama3.2", "qwen3"}
	if got := registry.Models(); !reflect.DeepEqual(got, want) {
		t.Errorf("Models() = %v, want %v", got, want)
	}

	if registry.DefaultModel() != "deepseek-r1" {
		t.Errorf("DefaultModel() = %q", registry.DefaultModel())
	}
}
