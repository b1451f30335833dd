package docroute

import (
	"fmt"

	"github.com/bjaus/docroute/internal/dispatch"
)

// MethodRouter holds everything registered under one path: a handler per
// verb on the serving side and an operation per verb on the document side.
// The two sides are always updated together.
//
// A MethodRouter is consumed when it is passed to Router.Route or merged
// into another MethodRouter. Using it afterwards panics with ErrConsumed.
type MethodRouter struct {
	methods    *dispatch.Methods
	ops        [len(allMethods)]*Operation
	explicit   MethodFilter
	filled     MethodFilter
	fallback   bool
	components Components
	consumed   bool
}

// NewMethodRouter returns an empty MethodRouter.
func NewMethodRouter() *MethodRouter {
	return &MethodRouter{methods: dispatch.NewMethods()}
}

// On returns a new MethodRouter serving ep for every verb in filter.
func On(filter MethodFilter, ep Endpoint) *MethodRouter {
	return NewMethodRouter().On(filter, ep)
}

// Get returns a new MethodRouter serving ep for GET.
func Get(ep Endpoint) *MethodRouter { return On(MethodGet, ep) }

// Head returns a new MethodRouter serving ep for HEAD.
func Head(ep Endpoint) *MethodRouter { return On(MethodHead, ep) }

// Put returns a new MethodRouter serving ep for PUT.
func Put(ep Endpoint) *MethodRouter { return On(MethodPut, ep) }

// Post returns a new MethodRouter serving ep for POST.
func Post(ep Endpoint) *MethodRouter { return On(MethodPost, ep) }

// Delete returns a new MethodRouter serving ep for DELETE.
func Delete(ep Endpoint) *MethodRouter { return On(MethodDelete, ep) }

// Options returns a new MethodRouter serving ep for OPTIONS.
func Options(ep Endpoint) *MethodRouter { return On(MethodOptions, ep) }

// Patch returns a new MethodRouter serving ep for PATCH.
func Patch(ep Endpoint) *MethodRouter { return On(MethodPatch, ep) }

// Trace returns a new MethodRouter serving ep for TRACE.
func Trace(ep Endpoint) *MethodRouter { return On(MethodTrace, ep) }

// Any returns a new MethodRouter serving ep for all eight verbs.
func Any(ep Endpoint) *MethodRouter { return On(MethodAny, ep) }

// On installs ep for every verb in filter. A verb that already has an
// explicit handler panics with ErrMethodOverlap; a verb filled by an earlier
// Fallback is replaced. An empty filter, or one with bits outside MethodAny,
// panics with ErrInvalidMethodFilter.
func (m *MethodRouter) On(filter MethodFilter, ep Endpoint) *MethodRouter {
	m.mustUsable()
	if filter == 0 || filter&^MethodAny != 0 {
		panic(fmt.Errorf("%w: filter %#x must name one or more of the eight verbs and nothing else", ErrInvalidMethodFilter, uint16(filter)))
	}

	m.methods.On(filter.Methods(), ep.handler)

	for i, verb := range allMethods {
		if filter&verb == 0 {
			continue
		}
		if m.explicit&verb != 0 {
			panic(fmt.Errorf("%w: %s already documented", ErrMethodOverlap, verb))
		}
		m.ops[i] = ep.descriptor.Operation.clone()
		m.explicit |= verb
		m.filled &^= verb
	}
	m.components.Merge(ep.descriptor.Components)
	return m
}

// Get installs ep for GET.
func (m *MethodRouter) Get(ep Endpoint) *MethodRouter { return m.On(MethodGet, ep) }

// Head installs ep for HEAD.
func (m *MethodRouter) Head(ep Endpoint) *MethodRouter { return m.On(MethodHead, ep) }

// Put installs ep for PUT.
func (m *MethodRouter) Put(ep Endpoint) *MethodRouter { return m.On(MethodPut, ep) }

// Post installs ep for POST.
func (m *MethodRouter) Post(ep Endpoint) *MethodRouter { return m.On(MethodPost, ep) }

// Delete installs ep for DELETE.
func (m *MethodRouter) Delete(ep Endpoint) *MethodRouter { return m.On(MethodDelete, ep) }

// Options installs ep for OPTIONS.
func (m *MethodRouter) Options(ep Endpoint) *MethodRouter { return m.On(MethodOptions, ep) }

// Patch installs ep for PATCH.
func (m *MethodRouter) Patch(ep Endpoint) *MethodRouter { return m.On(MethodPatch, ep) }

// Trace installs ep for TRACE.
func (m *MethodRouter) Trace(ep Endpoint) *MethodRouter { return m.On(MethodTrace, ep) }

// Any installs ep for all eight verbs.
func (m *MethodRouter) Any(ep Endpoint) *MethodRouter { return m.On(MethodAny, ep) }

// Fallback serves ep for every verb without an explicit handler. On the
// document side only the verbs that are empty right now are filled; a later
// explicit registration replaces a filled verb. A second Fallback panics
// with ErrDuplicateFallback.
func (m *MethodRouter) Fallback(ep Endpoint) *MethodRouter {
	m.mustUsable()
	m.methods.Fallback(ep.handler)

	if m.fallback {
		panic(fmt.Errorf("%w: path already documents a fallback", ErrDuplicateFallback))
	}
	m.fallback = true

	for i, verb := range allMethods {
		if (m.explicit|m.filled)&verb != 0 {
			continue
		}
		m.ops[i] = ep.descriptor.Operation.clone()
		m.filled |= verb
	}
	m.components.Merge(ep.descriptor.Components)
	return m
}

// Merge moves other's verbs into m. Explicit verbs must not overlap and at
// most one side may have a fallback. An explicit verb on either side
// replaces a fallback-filled verb on the other. other is consumed.
func (m *MethodRouter) Merge(other *MethodRouter) *MethodRouter {
	m.mustUsable()
	other.mustUsable()
	if m == other {
		panic(fmt.Errorf("%w: cannot merge a method router into itself", ErrConsumed))
	}
	other.consumed = true

	m.methods.Merge(other.methods)

	if overlap := m.explicit & other.explicit; overlap != 0 {
		panic(fmt.Errorf("%w: %s documented on both sides of merge", ErrMethodOverlap, overlap))
	}
	if m.fallback && other.fallback {
		panic(fmt.Errorf("%w: both sides of merge document a fallback", ErrDuplicateFallback))
	}

	for i, verb := range allMethods {
		switch {
		case other.explicit&verb != 0:
			m.ops[i] = other.ops[i]
			m.explicit |= verb
			m.filled &^= verb
		case other.filled&verb != 0 && m.explicit&verb == 0:
			m.ops[i] = other.ops[i]
			m.filled |= verb
		}
	}
	m.fallback = m.fallback || other.fallback
	m.components.Merge(other.components)
	return m
}

// PathItem returns the document record for this path.
func (m *MethodRouter) PathItem() PathItem {
	var item PathItem
	slots := [...]**Operation{
		&item.Get, &item.Put, &item.Post, &item.Delete,
		&item.Options, &item.Head, &item.Patch, &item.Trace,
	}
	for i, op := range m.ops {
		if op != nil {
			*slots[i] = op.clone()
		}
	}
	return item
}

// Explicit returns the verbs installed with On or one of its shorthands.
func (m *MethodRouter) Explicit() MethodFilter { return m.explicit }

// Documented returns every verb that carries an operation, including verbs
// filled by a fallback.
func (m *MethodRouter) Documented() MethodFilter { return m.explicit | m.filled }

// Components returns the components contributed by the installed endpoints.
func (m *MethodRouter) Components() Components { return m.components }

func (m *MethodRouter) mustUsable() {
	if m.consumed {
		panic(fmt.Errorf("%w: method router was already handed off", ErrConsumed))
	}
	if m.methods == nil {
		m.methods = dispatch.NewMethods()
	}
}

func (m *MethodRouter) consume() {
	m.mustUsable()
	m.consumed = true
}
