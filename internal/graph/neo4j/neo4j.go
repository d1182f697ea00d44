package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/efebarandurmaz/ontograph/internal/classgraph"
	"github.com/efebarandurmaz/ontograph/internal/graph"
	"github.com/efebarandurmaz/ontograph/internal/ontology"
	"github.com/efebarandurmaz/ontograph/internal/sanitize"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	mergeClassQuery = "MERGE (c:Class {uri: $uri}) " +
		"SET c.id = $id, c.label = $label, c.comment = $comment"
	mergeSubclassQuery = "MATCH (p:Class {uri: $parent}) " +
		"MATCH (c:Class {uri: $child}) " +
		"MERGE (p)-[:HAS_SUBCLASS]->(c)"
	loadClassesQuery = "MATCH (c:Class) " +
		"RETURN elementId(c) AS ref, c.uri AS uri, c.label AS label, c.comment AS comment, c.unclassifiable AS unclassifiable " +
		"ORDER BY coalesce(c.uri, elementId(c))"
	loadSubclassesQuery = "MATCH (p:Class)-[:HAS_SUBCLASS]->(c:Class) " +
		"RETURN elementId(p) AS parent, elementId(c) AS child " +
		"ORDER BY coalesce(p.uri, elementId(p)), coalesce(c.uri, elementId(c))"
	querySubclassesQuery = "MATCH (:Class {uri: $uri})-[:HAS_SUBCLASS]->(sub:Class) " +
		"RETURN sub.uri AS uri ORDER BY sub.uri"
)

// Neo4jRepository implements graph.Repository using Neo4j. Classes are
// (:Class {uri, id, label, comment}) nodes joined by [:HAS_SUBCLASS].
type Neo4jRepository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4j creates a Neo4j-backed repository. An empty database selects
// the server default.
func NewNeo4j(ctx context.Context, uri, username, password, database string) (*Neo4jRepository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jRepository{driver: driver, database: database, logger: slog.Default()}, nil
}

// WithLogger sets the logger used for load diagnostics.
func (r *Neo4jRepository) WithLogger(l *slog.Logger) *Neo4jRepository {
	if l != nil {
		r.logger = l
	}
	return r
}

func (r *Neo4jRepository) session(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
}

// StoreGraph merges every node, then every edge, each in one write
// transaction. Duplicate edges in g collapse into one relationship.
func (r *Neo4jRepository) StoreGraph(ctx context.Context, g *classgraph.Graph) error {
	session := r.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, n := range g.Nodes {
			if _, err := tx.Run(ctx, mergeClassQuery, nodeParams(n)); err != nil {
				return nil, fmt.Errorf("class %s: %w", n.URI, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("store classes: %w", err)
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, e := range g.Edges {
			if _, err := tx.Run(ctx, mergeSubclassQuery, edgeParams(e)); err != nil {
				return nil, fmt.Errorf("edge %s -> %s: %w", e.SourceURI, e.TargetURI, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("store subclass edges: %w", err)
	}
	r.logger.Info("stored class graph", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return nil
}

// LoadOntology materializes the stored hierarchy. Classes are keyed by
// element id so nodes without a uri load as anonymous classes.
func (r *Neo4jRepository) LoadOntology(ctx context.Context) (*ontology.Memory, error) {
	session := r.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		mem := ontology.NewMemory()

		records, err := tx.Run(ctx, loadClassesQuery, nil)
		if err != nil {
			return nil, err
		}
		for records.Next(ctx) {
			if _, err := mem.AddClass(classFromRecord(records.Record())); err != nil {
				return nil, err
			}
		}
		if err := records.Err(); err != nil {
			return nil, err
		}

		edges, err := tx.Run(ctx, loadSubclassesQuery, nil)
		if err != nil {
			return nil, err
		}
		for edges.Next(ctx) {
			rec := edges.Record()
			parent := asString(rec, "parent")
			child := asString(rec, "child")
			if err := mem.AddSubclass(ontology.ClassRef(parent), ontology.ClassRef(child)); err != nil {
				return nil, err
			}
		}
		if err := edges.Err(); err != nil {
			return nil, err
		}
		return mem, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}
	mem := result.(*ontology.Memory)
	r.logger.Debug("loaded ontology from neo4j", "classes", mem.Len())
	return mem, nil
}

func (r *Neo4jRepository) QuerySubclasses(ctx context.Context, uri string) ([]string, error) {
	session := r.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, querySubclassesQuery, map[string]any{"uri": uri})
		if err != nil {
			return nil, err
		}
		var uris []string
		for records.Next(ctx) {
			if u := asString(records.Record(), "uri"); u != "" {
				uris = append(uris, u)
			}
		}
		return uris, records.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// nodeParams stores cleaned but unescaped text, so a reloaded snapshot is
// escaped exactly once on export.
func nodeParams(n classgraph.Node) map[string]any {
	return map[string]any{
		"uri":     n.URI,
		"id":      n.ID,
		"label":   sanitize.UnescapeMarkup(n.Label),
		"comment": sanitize.UnescapeMarkup(n.Comment),
	}
}

func edgeParams(e classgraph.Edge) map[string]any {
	return map[string]any{"parent": e.SourceURI, "child": e.TargetURI}
}

func classFromRecord(rec *neo4j.Record) ontology.Class {
	unclassifiable, _ := recordValue(rec, "unclassifiable").(bool)
	return ontology.Class{
		Ref:            ontology.ClassRef(asString(rec, "ref")),
		URI:            asString(rec, "uri"),
		Label:          asString(rec, "label"),
		Comment:        asString(rec, "comment"),
		Unclassifiable: unclassifiable,
	}
}

func recordValue(rec *neo4j.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

// asString returns the string value of key, or "" when it is missing or null.
func asString(rec *neo4j.Record, key string) string {
	s, _ := recordValue(rec, key).(string)
	return s
}

var _ graph.Repository = (*Neo4jRepository)(nil)
