package classgraph

import (
	"fmt"
	"strings"

	"github.com/efebarandurmaz/ontograph/internal/hierarchy"
	"github.com/efebarandurmaz/ontograph/internal/sanitize"
)

// ExportTSV renders nodes then edges under one shared header. Columns that
// do not apply to a row kind are left empty; edge rows carry parent and
// child URIs in source and target.
func ExportTSV(g *Graph) string {
	var b strings.Builder
	b.WriteString("node_or_edge\tid\tlabel\tcomment\tsource\ttarget\turi\n")
	for _, n := range g.Nodes {
		b.WriteString(fmt.Sprintf("node\t%s\t%s\t%s\t\t\t%s\n", n.ID, n.Label, n.Comment, n.URI))
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("edge\t\t%s\t\t%s\t%s\t\n", EdgeLabel, e.SourceURI, e.TargetURI))
	}
	return b.String()
}

// ExportNodeList renders one row per node for tabular graph tools.
func ExportNodeList(g *Graph) string {
	var b strings.Builder
	b.WriteString("id\turi\tlabel\tcomment\n")
	for _, n := range g.Nodes {
		b.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\n", n.ID, n.URI, n.Label, n.Comment))
	}
	return b.String()
}

// ExportEdgeList renders one row per edge using node ids.
func ExportEdgeList(g *Graph) string {
	var b strings.Builder
	b.WriteString("source\ttarget\tedge_attr\n")
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("%s\t%s\t%s\n", e.Source, e.Target, EdgeLabel))
	}
	return b.String()
}

// ExportLevels renders level rows with a header sized for maxLevel.
func ExportLevels(rows []hierarchy.LevelRow, maxLevel int) string {
	var b strings.Builder
	header := []string{"id", "label", "uri"}
	for j := 0; j <= maxLevel; j++ {
		header = append(header, fmt.Sprintf("level_%d_uri", j), fmt.Sprintf("level_%d_label", j))
	}
	b.WriteString(strings.Join(header, "\t"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row.Fields(), "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

// ExportClassList renders one rdfs:label statement per class. Labels are
// written as plain literals rather than markup.
func ExportClassList(g *Graph) string {
	var b strings.Builder
	for _, n := range g.Nodes {
		b.WriteString(labelStatement(n))
	}
	return b.String()
}

// ExportRootClasses is ExportClassList restricted to root classes.
func ExportRootClasses(g *Graph) string {
	var b strings.Builder
	for _, n := range g.Roots() {
		b.WriteString(labelStatement(n))
	}
	return b.String()
}

func labelStatement(n Node) string {
	return fmt.Sprintf("<%s>\trdfs:label\t\"%s\" .\n", n.URI, quoteLiteral(sanitize.UnescapeMarkup(n.Label)))
}

// ExportSubclasses renders one rdfs:subClassOf statement per edge.
func ExportSubclasses(g *Graph) string {
	var b strings.Builder
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("<%s>\trdfs:subClassOf\t<%s> .\n", e.TargetURI, e.SourceURI))
	}
	return b.String()
}

// ExportDOT generates a Graphviz DOT representation of the hierarchy.
func ExportDOT(g *Graph) string {
	var b strings.Builder
	b.WriteString("digraph class_hierarchy {\n")
	b.WriteString("  rankdir=BT;\n")
	b.WriteString("  node [fontname=\"Helvetica\" shape=box];\n")
	b.WriteString("  edge [fontname=\"Helvetica\" fontsize=10 arrowhead=empty];\n\n")

	ids := renderIDs(g, sanitizeDOTID)
	for _, n := range g.Nodes {
		fill := "#238636"
		if n.Root {
			fill = "#1f6feb"
		}
		b.WriteString(fmt.Sprintf("  %s [label=\"%s\" style=filled fillcolor=\"%s\"];\n",
			ids[n.ID], quoteLiteral(n.DisplayLabel()), fill))
	}
	b.WriteString("\n")

	// Arrows point from subclass to superclass.
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  %s -> %s;\n", ids[e.Target], ids[e.Source]))
	}

	b.WriteString("}\n")
	return b.String()
}

// ExportMermaid generates a Mermaid diagram of the hierarchy.
func ExportMermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	ids := renderIDs(g, sanitizeMermaidID)
	for _, n := range g.Nodes {
		shape := fmt.Sprintf("[\"%s\"]", mermaidQuote(n.DisplayLabel()))
		if n.Root {
			shape = fmt.Sprintf("[[\"%s\"]]", mermaidQuote(n.DisplayLabel()))
		}
		b.WriteString(fmt.Sprintf("  %s%s\n", ids[n.ID], shape))
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  %s --> %s\n", ids[e.Source], ids[e.Target]))
	}
	return b.String()
}

// FormatStats returns a human-readable summary of graph statistics.
func FormatStats(g *Graph) string {
	var b strings.Builder
	b.WriteString("Class Hierarchy Statistics\n")
	b.WriteString("==========================\n\n")
	b.WriteString(fmt.Sprintf("Classes:     %d enumerated\n", g.Stats.Classes))
	b.WriteString(fmt.Sprintf("Nodes:       %d\n", g.Stats.TotalNodes))
	b.WriteString(fmt.Sprintf("  Roots:     %d\n", g.Stats.RootCount))
	b.WriteString(fmt.Sprintf("  Leaves:    %d\n", g.Stats.LeafCount))
	b.WriteString(fmt.Sprintf("Edges:       %d\n", g.Stats.TotalEdges))
	b.WriteString(fmt.Sprintf("Max Fan-Out: %d (%s)\n", g.Stats.MaxFanOut, g.Stats.HotspotNode))
	b.WriteString(fmt.Sprintf("Max Fan-In:  %d\n", g.Stats.MaxFanIn))
	b.WriteString(fmt.Sprintf("Components:  %d\n", g.Stats.ConnectedComponents))

	skipped := g.Stats.MissingURI + g.Stats.DuplicateIDs + g.Stats.DanglingEdges + g.Stats.Unclassifiable
	if skipped > 0 {
		b.WriteString("\nAnomalies:\n")
		b.WriteString(fmt.Sprintf("  Missing URI:    %d\n", g.Stats.MissingURI))
		b.WriteString(fmt.Sprintf("  Duplicate IDs:  %d\n", g.Stats.DuplicateIDs))
		b.WriteString(fmt.Sprintf("  Dangling edges: %d\n", g.Stats.DanglingEdges))
		b.WriteString(fmt.Sprintf("  Unclassifiable: %d\n", g.Stats.Unclassifiable))
	}
	return b.String()
}

// renderIDs maps node ids to diagram ids. Ids that clean to the same form
// get a numeric suffix in node order so distinct classes stay distinct.
func renderIDs(g *Graph, clean func(string) string) map[string]string {
	ids := make(map[string]string, len(g.Nodes))
	taken := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		base := clean(n.ID)
		id := base
		for i := 2; taken[id]; i++ {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		taken[id] = true
		ids[n.ID] = id
	}
	return ids
}

func sanitizeDOTID(s string) string {
	return "n_" + strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}

func sanitizeMermaidID(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}

// quoteLiteral escapes backslashes and double quotes for a "..." literal.
func quoteLiteral(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func mermaidQuote(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
