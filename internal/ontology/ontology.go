// Package ontology defines the read-only view of a loaded ontology that the
// hierarchy walker and graph builder consume. Parsing, reasoning and query
// execution live behind this interface and are never performed by the core.
package ontology

import "errors"

// ErrUnknownClass is returned when a relation references a class that was
// never registered with the ontology.
var ErrUnknownClass = errors.New("unknown class")

// ClassRef is an opaque handle to a class owned by the ontology backend.
// It is comparable so callers may key maps and visited sets by it.
type ClassRef string

// SuperclassStatus classifies the answer to "does this class have a direct
// superclass".
type SuperclassStatus int

const (
	// Root means the class has no direct superclass.
	Root SuperclassStatus = iota
	// HasSuperclass means Parents lists at least one direct superclass.
	HasSuperclass
	// Unclassifiable means the backend could not determine the superclasses
	// (e.g. an anonymous restriction). Callers treat it as Root and log it.
	Unclassifiable
)

func (s SuperclassStatus) String() string {
	switch s {
	case Root:
		return "root"
	case HasSuperclass:
		return "has_superclass"
	case Unclassifiable:
		return "unclassifiable"
	default:
		return "unknown"
	}
}

// Superclasses is the tri-state answer returned by Ontology.Superclasses.
type Superclasses struct {
	Status  SuperclassStatus
	Parents []ClassRef
	// Err carries the backend failure when Status is Unclassifiable.
	Err error
}

// Ontology is the capability set the core reads through.
type Ontology interface {
	// ListClasses returns every named class in a stable backend order.
	ListClasses() []ClassRef
	// URI returns the class URI; ok is false for anonymous classes.
	URI(c ClassRef) (uri string, ok bool)
	// Label returns the rdfs:label, if any.
	Label(c ClassRef) (label string, ok bool)
	// Comment returns the rdfs:comment, if any.
	Comment(c ClassRef) (comment string, ok bool)
	// DirectSubclasses returns classes asserted directly below c.
	DirectSubclasses(c ClassRef) []ClassRef
	// Superclasses returns classes asserted directly above c.
	Superclasses(c ClassRef) Superclasses
}
