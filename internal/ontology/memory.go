package ontology

import (
	"errors"
	"fmt"
)

// Class describes one class registered with a Memory ontology. An empty URI
// marks an anonymous class.
type Class struct {
	Ref            ClassRef
	URI            string
	Label          string
	Comment        string
	Unclassifiable bool
}

type memClass struct {
	Class
	parents  []ClassRef
	children []ClassRef
}

// Memory is an in-memory snapshot of an ontology class hierarchy. It is the
// form every backend (YAML fixtures, Neo4j) is materialized into before the
// core walks it.
type Memory struct {
	order   []ClassRef
	classes map[ClassRef]*memClass
}

// NewMemory creates an empty ontology snapshot.
func NewMemory() *Memory {
	return &Memory{classes: make(map[ClassRef]*memClass)}
}

// AddClass registers a class. The ref defaults to the URI when empty.
func (m *Memory) AddClass(c Class) (ClassRef, error) {
	if c.Ref == "" {
		c.Ref = ClassRef(c.URI)
	}
	if c.Ref == "" {
		return "", errors.New("class needs a ref or uri")
	}
	if _, exists := m.classes[c.Ref]; exists {
		return "", fmt.Errorf("class %q already registered", c.Ref)
	}
	m.classes[c.Ref] = &memClass{Class: c}
	m.order = append(m.order, c.Ref)
	return c.Ref, nil
}

// AddSubclass records that child is a direct subclass of parent. Repeated
// calls record the relation repeatedly.
func (m *Memory) AddSubclass(parent, child ClassRef) error {
	p, ok := m.classes[parent]
	if !ok {
		return fmt.Errorf("parent %q: %w", parent, ErrUnknownClass)
	}
	c, ok := m.classes[child]
	if !ok {
		return fmt.Errorf("child %q: %w", child, ErrUnknownClass)
	}
	p.children = append(p.children, child)
	c.parents = append(c.parents, parent)
	return nil
}

// Len returns the number of registered classes.
func (m *Memory) Len() int {
	return len(m.order)
}

func (m *Memory) ListClasses() []ClassRef {
	out := make([]ClassRef, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Memory) URI(c ClassRef) (string, bool) {
	mc, ok := m.classes[c]
	if !ok || mc.URI == "" {
		return "", false
	}
	return mc.URI, true
}

func (m *Memory) Label(c ClassRef) (string, bool) {
	mc, ok := m.classes[c]
	if !ok || mc.Label == "" {
		return "", false
	}
	return mc.Label, true
}

func (m *Memory) Comment(c ClassRef) (string, bool) {
	mc, ok := m.classes[c]
	if !ok || mc.Comment == "" {
		return "", false
	}
	return mc.Comment, true
}

func (m *Memory) DirectSubclasses(c ClassRef) []ClassRef {
	mc, ok := m.classes[c]
	if !ok {
		return nil
	}
	out := make([]ClassRef, len(mc.children))
	copy(out, mc.children)
	return out
}

func (m *Memory) Superclasses(c ClassRef) Superclasses {
	mc, ok := m.classes[c]
	if !ok {
		return Superclasses{Status: Unclassifiable, Err: fmt.Errorf("%q: %w", c, ErrUnknownClass)}
	}
	if mc.Unclassifiable {
		return Superclasses{Status: Unclassifiable, Err: fmt.Errorf("class %q cannot be classified", c)}
	}
	if len(mc.parents) == 0 {
		return Superclasses{Status: Root}
	}
	parents := make([]ClassRef, len(mc.parents))
	copy(parents, mc.parents)
	return Superclasses{Status: HasSuperclass, Parents: parents}
}

var _ Ontology = (*Memory)(nil)
