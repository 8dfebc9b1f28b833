package checks

import (
	"fmt"

	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Registry is an ordered, immutable-after-startup check catalog.
// Register panics on duplicate check IDs to catch wiring mistakes at startup.
type Registry struct {
	checks []CheckDefinition
	index  map[string]struct{}
}

// NewRegistry returns an empty registry ready for check registration.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]struct{})}
}

// Register adds def to the registry. Panics if the same ID is registered
// twice or the category is not one of the declared categories.
func (r *Registry) Register(def CheckDefinition) {
	if _, exists := r.index[def.ID]; exists {
		panic(fmt.Sprintf("duplicate check ID: %q", def.ID))
	}
	if !models.ValidCategory(def.Category) {
		panic(fmt.Sprintf("check %q has unknown category %q", def.ID, def.Category))
	}
	r.checks = append(r.checks, def)
	r.index[def.ID] = struct{}{}
}

// All returns every registered check in registration order.
func (r *Registry) All() []CheckDefinition {
	return r.checks
}

// ListChecks returns checks whose category is in categories, ordered
// category-by-category in the canonical category order and by registration
// order within each category. An empty categories set means all categories.
// Unknown categories in the filter yield no checks; they are not an error.
func (r *Registry) ListChecks(categories []models.Category) []CheckDefinition {
	if len(categories) == 0 {
		categories = models.CategoryOrder
	}
	requested := make(map[models.Category]struct{}, len(categories))
	for _, c := range categories {
		requested[c] = struct{}{}
	}

	var out []CheckDefinition
	for _, cat := range models.CategoryOrder {
		if _, ok := requested[cat]; !ok {
			continue
		}
		for _, def := range r.checks {
			if def.Category == cat {
				out = append(out, def)
			}
		}
	}
	return out
}

// ChecksForFramework returns the checks applicable under framework f, in the
// same category-then-registration order as ListChecks.
func (r *Registry) ChecksForFramework(f models.Framework) []CheckDefinition {
	var out []CheckDefinition
	for _, def := range r.ListChecks(nil) {
		if def.AppliesTo(f) {
			out = append(out, def)
		}
	}
	return out
}

// IDs returns all registered check IDs in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.checks))
	for _, def := range r.checks {
		ids = append(ids, def.ID)
	}
	return ids
}
