package classgraph

import (
	"fmt"
	"strings"

	"github.com/efebarandurmaz/ontograph/internal/sanitize"
)

const graphMLPreamble = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns"
         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
         xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns
         http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd">
  <key id="name" for="graph" attr.name="name" attr.type="string"/>
  <key id="Author" for="graph" attr.name="Author" attr.type="string"/>
  <key id="name" for="node" attr.name="name" attr.type="string"/>
  <key id="uri" for="node" attr.name="uri" attr.type="string"/>
  <key id="comment" for="node" attr.name="comment" attr.type="string"/>
  <key id="type" for="edge" attr.name="type" attr.type="string"/>
  <key id="weight" for="edge" attr.name="weight" attr.type="double"/>
  <graph id="ONTOLOGY_CLASS_HIERARCHY" edgedefault="directed">
    <data key="name">Ontology class hierarchy</data>
`

const graphMLClosing = `  </graph>
</graphml>
`

// ExportGraphML renders g as GraphML. Labels and comments are written as
// stored (already escaped); ids and URIs are raw and get escaped here.
func ExportGraphML(g *Graph) string {
	var b strings.Builder
	b.WriteString(graphMLPreamble)
	for _, n := range g.Nodes {
		b.WriteString(fmt.Sprintf("    <node id=\"%s\">\n", sanitize.EscapeAttr(n.ID)))
		b.WriteString(fmt.Sprintf("      <data key=\"uri\">%s</data>\n", sanitize.EscapeMarkup(n.URI)))
		b.WriteString(fmt.Sprintf("      <data key=\"name\">%s</data>\n", n.Label))
		b.WriteString(fmt.Sprintf("      <data key=\"comment\">%s</data>\n", n.Comment))
		b.WriteString("    </node>\n")
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("    <edge source=\"%s\" target=\"%s\">\n",
			sanitize.EscapeAttr(e.Source), sanitize.EscapeAttr(e.Target)))
		b.WriteString("      <data key=\"type\">subclass</data>\n")
		b.WriteString("    </edge>\n")
	}
	b.WriteString(graphMLClosing)
	return b.String()
}
