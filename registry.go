package widgetprefs

import (
	"fmt"
)

// Registry is the ordered, read-only catalog of dashboard widgets.
// It is safe for concurrent use.
type Registry struct {
	widgets []Widget
	index   map[string]int
}

// NewRegistry validates widgets and builds a Registry that keeps their order.
// It returns ErrDuplicateWidget if two widgets share an ID.
func NewRegistry(widgets []Widget) (*Registry, error) {
	r := &Registry{
		widgets: make([]Widget, 0, len(widgets)),
		index:   make(map[string]int, len(widgets)),
	}
	for _, w := range widgets {
		if err := validateWidget(w); err != nil {
			return nil, err
		}
		if _, dup := r.index[w.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWidget, w.ID)
		}
		r.index[w.ID] = len(r.widgets)
		r.widgets = append(r.widgets, w)
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on an invalid catalog.
// Use it for catalogs defined in code, where a duplicate ID is a programming error.
func MustNewRegistry(widgets ...Widget) *Registry {
	r, err := NewRegistry(widgets)
	if err != nil {
		panic(fmt.Sprintf("widgetprefs: %v", err))
	}
	return r
}

// All returns the catalog in definition order.
func (r *Registry) All() []Widget {
	out := make([]Widget, len(r.widgets))
	copy(out, r.widgets)
	return out
}

// Lookup returns the widget with the given ID.
func (r *Registry) Lookup(id string) (Widget, bool) {
	i, ok := r.index[id]
	if !ok {
		return Widget{}, false
	}
	return r.widgets[i], true
}

// IDs returns widget IDs in definition order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.widgets))
	for i, w := range r.widgets {
		ids[i] = w.ID
	}
	return ids
}

// Len returns the number of widgets.
func (r *Registry) Len() int {
	return len(r.widgets)
}

// Defaults returns a fresh visibility map seeded from each widget's DefaultVisible.
func (r *Registry) Defaults() VisibilityMap {
	m := make(VisibilityMap, len(r.widgets))
	for _, w := range r.widgets {
		m[w.ID] = w.DefaultVisible
	}
	return m
}

// IsVisible resolves the visibility of id under m.
// An explicit entry wins; otherwise a known widget falls back to its
// DefaultVisible and an unknown id is visible.
func (r *Registry) IsVisible(m VisibilityMap, id string) bool {
	if v, ok := m[id]; ok {
		return v
	}
	if w, ok := r.Lookup(id); ok {
		return w.DefaultVisible
	}
	return true
}

// Visible returns the widgets that render under m, in registry order.
func (r *Registry) Visible(m VisibilityMap) []Widget {
	out := make([]Widget, 0, len(r.widgets))
	for _, w := range r.widgets {
		if r.IsVisible(m, w.ID) {
			out = append(out, w)
		}
	}
	return out
}

// seed adds registry entries missing from m, using their defaults.
// It reports whether m changed.
func (r *Registry) seed(m VisibilityMap) bool {
	changed := false
	for _, w := range r.widgets {
		if _, ok := m[w.ID]; !ok {
			m[w.ID] = w.DefaultVisible
			changed = true
		}
	}
	return changed
}
