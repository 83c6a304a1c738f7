// Package extract turns the OCR text of a classified page into the named
// fields of its document category.
package extract

import (
	"context"
	"sync"

	"github.com/vrsandeep/docscan/internal/models"
)

// Extractor sources reported by Bindings.
const (
	SourceRegex  = "regex"
	SourceLLM    = "llm"
	SourceScript = "script"
)

// Input is everything an extractor may look at for one page.
type Input struct {
	Text      string
	ImagePath string
}

// Func extracts the fields of one category. Missing fields are reported as
// models.NotFound or an empty string, never as an error.
type Func func(ctx context.Context, in Input) (models.Fields, error)

// Text adapts a pure text parser to a Func.
func Text(parse func(text string) models.Fields) Func {
	return func(_ context.Context, in Input) (models.Fields, error) {
		return parse(in.Text), nil
	}
}

type binding struct {
	fn     Func
	source string
}

// Binding describes which extractor serves a category.
type Binding struct {
	Category models.Category `json:"category"`
	Source   string          `json:"source"`
}

// Registry maps a category to its extractor. Later registrations replace
// earlier ones, which is how script overrides win over the built-ins.
type Registry struct {
	mu    sync.RWMutex
	funcs map[models.Category]binding
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[models.Category]binding)}
}

func (r *Registry) Register(category models.Category, source string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[category] = binding{fn: fn, source: source}
}

// Lookup returns the extractor bound to category.
func (r *Registry) Lookup(category models.Category) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.funcs[category]
	return b.fn, ok
}

// Bindings lists every known category in priority order. Categories without
// an extractor are reported with an empty source.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Binding, 0, len(models.Categories)+1)
	for _, c := range append(append([]models.Category{}, models.Categories...), models.CategoryUnknown) {
		out = append(out, Binding{Category: c, Source: r.funcs[c].source})
	}
	return out
}
