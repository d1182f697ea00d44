package classgraph

import (
	"bytes"
	"encoding/json"
)

// Fixed header values read by Cytoscape-compatible viewers.
const (
	CytoscapeFormatVersion = "1.0"
	CytoscapeGeneratedBy   = "cytoscape-3.7.1"
	CytoscapeTargetVersion = "~2.1"
	HierarchyGraphName     = "ONTOLOGY_CLASS_HIERARCHY"
	cytoscapeSUID          = 52
)

// CytoscapeDocument is the Cytoscape.js JSON graph document. Field order is
// part of the format.
type CytoscapeDocument struct {
	FormatVersion            string             `json:"format_version"`
	GeneratedBy              string             `json:"generated_by"`
	TargetCytoscapeJSVersion string             `json:"target_cytoscapejs_version"`
	Data                     CytoscapeGraphData `json:"data"`
	Elements                 CytoscapeElements  `json:"elements"`
}

type CytoscapeGraphData struct {
	SharedName string `json:"shared_name"`
	Name       string `json:"name"`
	SUID       int    `json:"SUID"`
	Selected   bool   `json:"selected"`
}

type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

type CytoscapeNode struct {
	Data CytoscapeNodeData `json:"data"`
}

// CytoscapeNodeData carries the class; Name holds the URI.
type CytoscapeNodeData struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Label   string `json:"label"`
	Comment string `json:"comment"`
}

type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

type CytoscapeEdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NewCytoscapeDocument converts g into the Cytoscape.js document.
func NewCytoscapeDocument(g *Graph) *CytoscapeDocument {
	doc := &CytoscapeDocument{
		FormatVersion:            CytoscapeFormatVersion,
		GeneratedBy:              CytoscapeGeneratedBy,
		TargetCytoscapeJSVersion: CytoscapeTargetVersion,
		Data: CytoscapeGraphData{
			SharedName: HierarchyGraphName,
			Name:       HierarchyGraphName,
			SUID:       cytoscapeSUID,
			Selected:   true,
		},
		Elements: CytoscapeElements{
			Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
			Edges: make([]CytoscapeEdge, 0, len(g.Edges)),
		},
	}
	for _, n := range g.Nodes {
		doc.Elements.Nodes = append(doc.Elements.Nodes, CytoscapeNode{Data: CytoscapeNodeData{
			ID:      n.ID,
			Name:    n.URI,
			Label:   n.Label,
			Comment: n.Comment,
		}})
	}
	for _, e := range g.Edges {
		doc.Elements.Edges = append(doc.Elements.Edges, CytoscapeEdge{Data: CytoscapeEdgeData{
			Source: e.Source,
			Target: e.Target,
		}})
	}
	return doc
}

// ExportCytoscape serializes g as pretty-printed Cytoscape.js JSON. Labels
// are already entity-escaped, so HTML escaping is off to keep "&lt;" from
// turning into "\u0026lt;".
func ExportCytoscape(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewCytoscapeDocument(g)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
