// Package graph defines persistent storage for class hierarchies.
package graph

import (
	"context"

	"github.com/efebarandurmaz/ontograph/internal/classgraph"
	"github.com/efebarandurmaz/ontograph/internal/ontology"
)

// Repository provides graph storage for class hierarchies.
type Repository interface {
	// StoreGraph persists every node and subclass edge of the graph.
	StoreGraph(ctx context.Context, g *classgraph.Graph) error
	// LoadOntology reads the stored hierarchy into an in-memory snapshot.
	LoadOntology(ctx context.Context) (*ontology.Memory, error)
	// QuerySubclasses returns the URIs of the direct subclasses of uri.
	QuerySubclasses(ctx context.Context, uri string) ([]string, error)
	// Close releases resources.
	Close(ctx context.Context) error
}
