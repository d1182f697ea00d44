// Package classgraph builds a node/edge view of an ontology class hierarchy
// and renders it into tabular, JSON and XML graph formats.
package classgraph

import "github.com/efebarandurmaz/ontograph/internal/hierarchy"

// EdgeLabel is the relation name written for every edge.
const EdgeLabel = "has_subclass"

// Node is one named class.
type Node struct {
	hierarchy.ClassRecord
	// Root is true when the class has no direct superclass, or the backend
	// could not classify it.
	Root bool `json:"root"`
}

// Edge records that Source has direct subclass Target. Duplicated relations
// in the ontology produce duplicated edges.
type Edge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	SourceURI string `json:"source_uri"`
	TargetURI string `json:"target_uri"`
}

// Graph is the class hierarchy. Nodes and Edges keep enumeration order.
type Graph struct {
	Nodes []Node     `json:"nodes"`
	Edges []Edge     `json:"edges"`
	Stats GraphStats `json:"stats"`
}

// GraphStats holds counts gathered while building plus computed shape metrics.
type GraphStats struct {
	Classes             int    `json:"classes"`
	MissingURI          int    `json:"missing_uri"`
	Unclassifiable      int    `json:"unclassifiable"`
	DuplicateIDs        int    `json:"duplicate_ids"`
	DanglingEdges       int    `json:"dangling_edges"`
	TotalNodes          int    `json:"total_nodes"`
	TotalEdges          int    `json:"total_edges"`
	RootCount           int    `json:"root_count"`
	LeafCount           int    `json:"leaf_count"`
	MaxFanOut           int    `json:"max_fan_out"` // most direct subclasses
	MaxFanIn            int    `json:"max_fan_in"`  // most direct superclasses
	HotspotNode         string `json:"hotspot_node"`
	ConnectedComponents int    `json:"connected_components"`
}
