package llm

import (
	"fmt"
	"sort"

	"github.com/sortphy/chatgpdune/internal/domain"
)

// Registry holds one Generator per configured model. Generators are built
// once at startup and read-only afterwards; requests naming an unknown
// model fall back to the default.
type Registry struct {
	generators   map[string]domain.Generator
	defaultModel string
}

func NewRegistry(baseURL, defaultModel string, models []string) (*Registry, error) {
	if defaultModel == "" {
		return nil, fmt.Errorf("%w: default model required", domain.ErrInvalidInput)
	}

	seen := map[string]bool{}
	generators := make(map[string]domain.Generator)
	for _, model := range append([]string{defaultModel}, models...) {
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true

		svc, err := NewOllamaService(baseURL, model)
		if err != nil {
			return nil, fmt.Errorf("failed to create generator for %s: %w", model, err)
		}
		generators[model] = svc
	}

	return &Registry{
		generators:   generators,
		defaultModel: defaultModel,
	}, nil
}

// Resolve returns the Generator for the requested model, or the default
// when the request names none or an unknown one. The second return value
// is the model that will actually serve the request.
func (r *Registry) Resolve(model string) (domain.Generator, string) {
	if model != "" {
		if gen, ok := r.generators[model]; ok {
			return gen, model
		}
	}
	return r.generators[r.defaultModel], r.defaultModel
}

// Models lists the configured model identifiers, default first.
func (r *Registry) Models() []string {
	var rest []string
	for model := range r.generators {
		if model != r.defaultModel {
			rest = append(rest, model)
		}
	}
	sort.Strings(rest)
	return append([]string{r.defaultModel}, rest...)
}

func (r *Registry) DefaultModel() string { return r.defaultModel }
