package action

import "sync"

// Action describes one extraction target: which elements to pull from a
// page, expressed as find-style terms (usually tag names) plus attribute
// matchers. Attribute values are hashable scalars or nested string-keyed
// maps of the same shape.
//
// Actions are immutable after construction. Their identity hash is
// deterministic and independent of term order and map insertion order, so
// two logically equal actions built through different code paths address
// the same cached results.
type Action struct {
	terms []interface{}
	attrs map[string]interface{}

	idOnce sync.Once
	id     uint64
	idErr  error
}

// New builds an action from find terms and attribute matchers. Both inputs
// are copied one level deep; nested attribute maps are shared and must not
// be mutated by the caller afterwards.
func New(terms []interface{}, attrs map[string]interface{}) *Action {
	a := &Action{}
	if len(terms) > 0 {
		a.terms = make([]interface{}, len(terms))
		copy(a.terms, terms)
	}
	if len(attrs) > 0 {
		a.attrs = make(map[string]interface{}, len(attrs))
		for k, v := range attrs {
			a.attrs[k] = v
		}
	}
	return a
}

// Terms returns a copy of the action's find terms.
func (a *Action) Terms() []interface{} {
	if len(a.terms) == 0 {
		return nil
	}
	out := make([]interface{}, len(a.terms))
	copy(out, a.terms)
	return out
}

// Attrs returns a copy of the action's attribute matchers.
func (a *Action) Attrs() map[string]interface{} {
	if len(a.attrs) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(a.attrs))
	for k, v := range a.attrs {
		out[k] = v
	}
	return out
}

// Identity returns the action's identity hash, computing it on first use.
// The result is cached; so is the error for actions carrying unhashable
// attribute values.
func (a *Action) Identity() (uint64, error) {
	a.idOnce.Do(func() {
		a.id, a.idErr = Identity(a.terms, a.attrs)
	})
	return a.id, a.idErr
}
