package classgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/efebarandurmaz/ontograph/internal/hierarchy"
	"github.com/efebarandurmaz/ontograph/internal/ontology"
)

// Helper types for building test ontologies
type testClass struct {
	name    string
	label   string
	comment string
	parents []string
	anon    bool
	uri     string
}

func makeOntology(t *testing.T, classes ...testClass) *ontology.Memory {
	t.Helper()
	m := ontology.NewMemory()
	for _, c := range classes {
		cls := ontology.Class{Ref: ontology.ClassRef(c.name), Label: c.label, Comment: c.comment}
		switch {
		case c.uri != "":
			cls.URI = c.uri
		case !c.anon:
			cls.URI = "http://x/" + c.name
		}
		if _, err := m.AddClass(cls); err != nil {
			t.Fatalf("add class %s: %v", c.name, err)
		}
	}
	for _, c := range classes {
		for _, p := range c.parents {
			if err := m.AddSubclass(ontology.ClassRef(p), ontology.ClassRef(c.name)); err != nil {
				t.Fatalf("add subclass %s -> %s: %v", p, c.name, err)
			}
		}
	}
	return m
}

func buildGraph(t *testing.T, ont *ontology.Memory) *Graph {
	t.Helper()
	g, err := Build(context.Background(), ont, ont.ListClasses())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func animalGraph(t *testing.T) *Graph {
	return buildGraph(t, makeOntology(t,
		testClass{name: "A", label: "Animal"},
		testClass{name: "B", label: "Bird", parents: []string{"A"}},
		testClass{name: "C", label: "Eagle", parents: []string{"B"}},
	))
}

// Builder Tests

func TestBuild_EmptyOntology(t *testing.T) {
	g := buildGraph(t, ontology.NewMemory())
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("expected empty graph, got %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}
	if g.Stats.ConnectedComponents != 0 {
		t.Errorf("expected 0 components, got %d", g.Stats.ConnectedComponents)
	}
}

func TestBuild_SingleSubclass(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "A"},
		testClass{name: "B", parents: []string{"A"}},
	))
	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	e := g.Edges[0]
	if e.Source != "A" || e.Target != "B" {
		t.Errorf("expected edge A->B, got %s->%s", e.Source, e.Target)
	}
	if e.SourceURI != "http://x/A" || e.TargetURI != "http://x/B" {
		t.Errorf("unexpected edge uris: %+v", e)
	}
	if !g.Nodes[0].Root || g.Nodes[1].Root {
		t.Errorf("expected only A to be root, got %+v", g.Nodes)
	}
}

func TestBuild_EnumerationOrder(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "Z"},
		testClass{name: "A", parents: []string{"Z"}},
		testClass{name: "M", parents: []string{"Z"}},
	))
	want := []string{"Z", "A", "M"}
	for i, n := range g.Nodes {
		if n.ID != want[i] {
			t.Errorf("node %d: expected %s, got %s", i, want[i], n.ID)
		}
	}
	if g.Edges[0].Target != "A" || g.Edges[1].Target != "M" {
		t.Errorf("expected edges in subclass order, got %+v", g.Edges)
	}
}

func TestBuild_MissingURIExcluded(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "A"},
		testClass{name: "anon", anon: true, parents: []string{"A"}},
		testClass{name: "B", parents: []string{"anon"}},
	))
	if len(g.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges through anonymous class, got %+v", g.Edges)
	}
	if g.Stats.MissingURI != 1 || g.Stats.Classes != 3 {
		t.Errorf("expected 1 missing of 3 classes, got %d of %d", g.Stats.MissingURI, g.Stats.Classes)
	}
	if g.Stats.DanglingEdges != 0 {
		t.Errorf("anonymous targets are not dangling, got %d", g.Stats.DanglingEdges)
	}
}

func TestBuild_MissingURILoggedAtInfo(t *testing.T) {
	ont := makeOntology(t,
		testClass{name: "A"},
		testClass{name: "anon", anon: true},
	)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if _, err := NewBuilder(logger).Build(context.Background(), ont, ont.ListClasses()); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(buf.String(), "skipping class without uri") || !strings.Contains(buf.String(), "class=anon") {
		t.Errorf("expected missing uri logged at info, got:\n%s", buf.String())
	}
}

func TestBuild_DuplicateRelationKept(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "A"},
		testClass{name: "B", parents: []string{"A", "A"}},
	))
	if len(g.Edges) != 2 {
		t.Errorf("expected duplicated edge, got %d edges", len(g.Edges))
	}
}

func TestBuild_DuplicateIDs(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "one", uri: "http://a/Thing"},
		testClass{name: "two", uri: "http://b/Thing", parents: []string{"one"}},
	))
	if len(g.Nodes) != 1 {
		t.Errorf("expected duplicate id to be skipped, got %d nodes", len(g.Nodes))
	}
	if g.Stats.DuplicateIDs != 1 {
		t.Errorf("expected 1 duplicate id, got %d", g.Stats.DuplicateIDs)
	}
	if len(g.Edges) != 0 || g.Stats.DanglingEdges != 1 {
		t.Errorf("expected edge to skipped node to be dangling, got %d edges, %d dangling", len(g.Edges), g.Stats.DanglingEdges)
	}
}

func TestBuild_DuplicateIDParentDangling(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "one", uri: "http://a/Thing"},
		testClass{name: "two", uri: "http://b/Thing"},
		testClass{name: "kid", parents: []string{"two"}},
	))
	if len(g.Nodes) != 2 || len(g.Edges) != 0 {
		t.Fatalf("expected 2 nodes and no edges, got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	if g.Stats.DanglingEdges != 1 {
		t.Errorf("expected relation from skipped parent to be dangling, got %d", g.Stats.DanglingEdges)
	}
}

func TestBuild_EdgesOnlyConnectNodes(t *testing.T) {
	ont := makeOntology(t,
		testClass{name: "A"},
		testClass{name: "B", parents: []string{"A"}},
		testClass{name: "C", parents: []string{"B"}},
	)
	// Only enumerate A and B.
	g, err := Build(context.Background(), ont, []ontology.ClassRef{"A", "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			t.Errorf("edge %s->%s references a missing node", e.Source, e.Target)
		}
	}
	if g.Stats.DanglingEdges != 1 {
		t.Errorf("expected 1 dangling edge, got %d", g.Stats.DanglingEdges)
	}
}

func TestBuild_Stats(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "A"},
		testClass{name: "B", parents: []string{"A"}},
		testClass{name: "C", parents: []string{"A"}},
		testClass{name: "D", parents: []string{"B", "C"}},
		testClass{name: "Lone"},
	))
	if g.Stats.RootCount != 2 {
		t.Errorf("expected 2 roots, got %d", g.Stats.RootCount)
	}
	if g.Stats.LeafCount != 2 {
		t.Errorf("expected 2 leaves (D, Lone), got %d", g.Stats.LeafCount)
	}
	if g.Stats.MaxFanOut != 2 || g.Stats.HotspotNode != "A" {
		t.Errorf("expected fan-out 2 at A, got %d at %s", g.Stats.MaxFanOut, g.Stats.HotspotNode)
	}
	if g.Stats.MaxFanIn != 2 {
		t.Errorf("expected fan-in 2, got %d", g.Stats.MaxFanIn)
	}
	if g.Stats.ConnectedComponents != 2 {
		t.Errorf("expected 2 components, got %d", g.Stats.ConnectedComponents)
	}
	if roots := g.Roots(); len(roots) != 2 || roots[1].ID != "Lone" {
		t.Errorf("unexpected roots: %+v", roots)
	}
}

func TestBuild_Canceled(t *testing.T) {
	ont := makeOntology(t, testClass{name: "A"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, ont, ont.ListClasses()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// Export Tests

func TestExportTSV(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "A", label: "Animal", comment: "living"},
		testClass{name: "B", label: "Bird", parents: []string{"A"}},
	))
	out := ExportTSV(g)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 2 nodes + 1 edge, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "node_or_edge\tid\tlabel\tcomment\tsource\ttarget\turi" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[1] != "node\tA\tAnimal\tliving\t\t\thttp://x/A" {
		t.Errorf("unexpected node row: %q", lines[1])
	}
	if lines[3] != "edge\t\thas_subclass\t\thttp://x/A\thttp://x/B\t" {
		t.Errorf("unexpected edge row: %q", lines[3])
	}
	for i, l := range lines {
		if n := len(strings.Split(l, "\t")); n != 7 {
			t.Errorf("line %d: expected 7 columns, got %d", i, n)
		}
	}
}

func TestExportNodeList(t *testing.T) {
	out := ExportNodeList(animalGraph(t))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if lines[0] != "id\turi\tlabel\tcomment" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[3] != "C\thttp://x/C\tEagle\t" {
		t.Errorf("unexpected row: %q", lines[3])
	}
}

func TestExportEdgeList_Scenario(t *testing.T) {
	out := ExportEdgeList(animalGraph(t))
	want := "source\ttarget\tedge_attr\nA\tB\thas_subclass\nB\tC\thas_subclass\n"
	if out != want {
		t.Errorf("unexpected edge list:\n%s", out)
	}
}

func TestExportLevels(t *testing.T) {
	rows := []hierarchy.LevelRow{{
		ID: "C", Label: "Eagle", URI: "http://x/C",
		Levels: []hierarchy.LevelCell{{URI: "http://x/A", Label: "Animal"}, {URI: "http://x/B", Label: "Bird"}},
	}}
	out := ExportLevels(rows, 1)
	want := "id\tlabel\turi\tlevel_0_uri\tlevel_0_label\tlevel_1_uri\tlevel_1_label\n" +
		"C\tEagle\thttp://x/C\thttp://x/A\tAnimal\thttp://x/B\tBird\n"
	if out != want {
		t.Errorf("unexpected levels output:\n%s", out)
	}
}

func TestExportListings(t *testing.T) {
	g := animalGraph(t)
	if out := ExportClassList(g); strings.Count(out, "rdfs:label") != 3 {
		t.Errorf("expected 3 class lines, got:\n%s", out)
	}
	if out := ExportRootClasses(g); out != "<http://x/A>\trdfs:label\t\"Animal\" .\n" {
		t.Errorf("unexpected roots: %q", out)
	}
	out := ExportSubclasses(g)
	if !strings.HasPrefix(out, "<http://x/B>\trdfs:subClassOf\t<http://x/A> .\n") {
		t.Errorf("unexpected subclasses: %q", out)
	}
}

func TestExportListings_LabelLiteral(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "Q", label: `Say "hi" <b> \ A&B`},
	))
	want := "<http://x/Q>\trdfs:label\t\"Say \\\"hi\\\" <b> \\\\ A&B\" .\n"
	if out := ExportClassList(g); out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
	if out := ExportRootClasses(g); out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestExportCytoscape(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "A", label: "<b>Animal</b>"},
		testClass{name: "B", label: "Bird & co", parents: []string{"A"}},
	))
	data, err := ExportCytoscape(g)
	if err != nil {
		t.Fatalf("ExportCytoscape error: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"label": "&lt;b&gt;Animal&lt;/b&gt;"`) {
		t.Errorf("expected escaped-once label, got:\n%s", out)
	}
	if strings.Contains(out, "&amp;lt;") || strings.Contains(out, `\u0026`) {
		t.Errorf("label escaped twice:\n%s", out)
	}

	// Field order is part of the format.
	order := []string{`"format_version"`, `"generated_by"`, `"target_cytoscapejs_version"`, `"data"`, `"elements"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		if idx <= last {
			t.Errorf("key %s out of order", key)
		}
		last = idx
	}

	var doc CytoscapeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.FormatVersion != "1.0" || doc.Data.SUID != 52 || !doc.Data.Selected {
		t.Errorf("unexpected header: %+v", doc)
	}
	if doc.Data.Name != HierarchyGraphName || doc.Data.SharedName != HierarchyGraphName {
		t.Errorf("unexpected graph name: %+v", doc.Data)
	}
	if len(doc.Elements.Nodes) != 2 || doc.Elements.Nodes[0].Data.Name != "http://x/A" {
		t.Errorf("unexpected nodes: %+v", doc.Elements.Nodes)
	}
	if len(doc.Elements.Edges) != 1 || doc.Elements.Edges[0].Data.Source != "A" {
		t.Errorf("unexpected edges: %+v", doc.Elements.Edges)
	}
}

func TestExportCytoscape_EmptyArrays(t *testing.T) {
	data, err := ExportCytoscape(buildGraph(t, ontology.NewMemory()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"nodes": []`) || !strings.Contains(string(data), `"edges": []`) {
		t.Errorf("expected empty arrays, got:\n%s", data)
	}
}

func TestExportGraphML(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "A", label: "<b>Animal</b>"},
		testClass{name: "B", uri: "http://x/q?a=1&b=B", parents: []string{"A"}},
	))
	out := ExportGraphML(g)
	if !strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<graphml") {
		t.Errorf("missing preamble:\n%s", out)
	}
	for _, key := range []string{
		`<key id="Author" for="graph"`,
		`<key id="uri" for="node"`,
		`<key id="comment" for="node"`,
		`<key id="type" for="edge"`,
		`<key id="weight" for="edge" attr.name="weight" attr.type="double"/>`,
	} {
		if !strings.Contains(out, key) {
			t.Errorf("missing key declaration %s", key)
		}
	}
	if !strings.Contains(out, `<data key="name">&lt;b&gt;Animal&lt;/b&gt;</data>`) {
		t.Errorf("expected escaped-once label:\n%s", out)
	}
	if strings.Contains(out, "&amp;lt;") {
		t.Errorf("label escaped twice:\n%s", out)
	}
	if !strings.Contains(out, `<data key="uri">http://x/q?a=1&amp;b=B</data>`) {
		t.Errorf("expected escaped uri:\n%s", out)
	}
	if !strings.Contains(out, "<edge source=\"A\" target=\"q?a=1&amp;b=B\">\n      <data key=\"type\">subclass</data>\n    </edge>") {
		t.Errorf("unexpected edge:\n%s", out)
	}
	if !strings.HasSuffix(out, "  </graph>\n</graphml>\n") {
		t.Errorf("missing closing tags")
	}
}

func TestExportDOT(t *testing.T) {
	out := ExportDOT(animalGraph(t))
	if !strings.HasPrefix(out, "digraph class_hierarchy {") {
		t.Error("DOT should start with digraph")
	}
	if !strings.Contains(out, "n_C -> n_B;") {
		t.Errorf("expected subclass arrow C -> B:\n%s", out)
	}
	if !strings.Contains(out, `n_A [label="Animal"`) {
		t.Errorf("expected labelled root node:\n%s", out)
	}
}

func TestExportMermaid(t *testing.T) {
	out := ExportMermaid(animalGraph(t))
	if !strings.HasPrefix(out, "graph TD\n") {
		t.Error("Mermaid should start with graph TD")
	}
	if !strings.Contains(out, `A[["Animal"]]`) {
		t.Errorf("expected root shape for A:\n%s", out)
	}
	if !strings.Contains(out, "A --> B") {
		t.Errorf("expected edge A --> B:\n%s", out)
	}
}

func TestExportDiagrams_CollidingIDs(t *testing.T) {
	g := buildGraph(t, makeOntology(t,
		testClass{name: "hyphen", uri: "http://x/a-b"},
		testClass{name: "under", uri: "http://x/a_b"},
		testClass{name: "c", parents: []string{"hyphen", "under"}},
	))

	dot := ExportDOT(g)
	for _, want := range []string{"n_a_b [label=", "n_a_b_2 [label=", "n_c -> n_a_b;", "n_c -> n_a_b_2;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("expected %q in DOT:\n%s", want, dot)
		}
	}

	mermaid := ExportMermaid(g)
	for _, want := range []string{"  a_b[[", "  a_b_2[[", "a_b --> c", "a_b_2 --> c"} {
		if !strings.Contains(mermaid, want) {
			t.Errorf("expected %q in Mermaid:\n%s", want, mermaid)
		}
	}
}

func TestFormatStats(t *testing.T) {
	out := FormatStats(animalGraph(t))
	for _, want := range []string{"Nodes:       3", "Edges:       2", "Roots:     1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in stats:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Anomalies") {
		t.Error("clean graph should not report anomalies")
	}
}
