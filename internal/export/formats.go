package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for a format name outside the registry.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format specifies the output serialization format.
type Format string

const (
	// FormatTSV produces the combined node/edge table.
	FormatTSV Format = "tsv"

	// FormatNodeList produces one row per class.
	FormatNodeList Format = "nodelist"

	// FormatEdgeList produces one row per direct-subclass relation.
	FormatEdgeList Format = "edgelist"

	// FormatJSON produces a Cytoscape.js graph document.
	FormatJSON Format = "json"

	// FormatGraphML produces GraphML markup.
	FormatGraphML Format = "graphml"

	// FormatLevelMembership produces the per-class ancestor level table.
	FormatLevelMembership Format = "levelmembership"

	FormatDOT         Format = "dot"
	FormatMermaid     Format = "mermaid"
	FormatClassList   Format = "classlist"
	FormatRootClasses Format = "rootclasses"
	FormatSubclasses  Format = "subclasses"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTSV: {
		Name:        FormatTSV,
		MIMEType:    "text/tab-separated-values",
		Extension:   ".tsv",
		Description: "Combined node and edge table",
	},
	FormatNodeList: {
		Name:        FormatNodeList,
		MIMEType:    "text/tab-separated-values",
		Extension:   ".tsv",
		Description: "One row per class: id, uri, label, comment",
	},
	FormatEdgeList: {
		Name:        FormatEdgeList,
		MIMEType:    "text/tab-separated-values",
		Extension:   ".tsv",
		Description: "One row per subclass relation: source, target, has_subclass",
	},
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".cyjs",
		Description: "Cytoscape.js graph document",
	},
	FormatGraphML: {
		Name:        FormatGraphML,
		MIMEType:    "application/graphml+xml",
		Extension:   ".graphml",
		Description: "GraphML directed class graph",
	},
	FormatLevelMembership: {
		Name:        FormatLevelMembership,
		MIMEType:    "text/tab-separated-values",
		Extension:   ".tsv",
		Description: "Ancestor uri and label per hierarchy level, root first",
	},
	FormatDOT: {
		Name:        FormatDOT,
		MIMEType:    "text/vnd.graphviz",
		Extension:   ".dot",
		Description: "Graphviz digraph",
	},
	FormatMermaid: {
		Name:        FormatMermaid,
		MIMEType:    "text/plain",
		Extension:   ".mmd",
		Description: "Mermaid flowchart",
	},
	FormatClassList: {
		Name:        FormatClassList,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "Every class with its rdfs:label",
	},
	FormatRootClasses: {
		Name:        FormatRootClasses,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "Classes without a superclass, with rdfs:label",
	},
	FormatSubclasses: {
		Name:        FormatSubclasses,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "Every rdfs:subClassOf relation",
	},
}

var formatAliases = map[string]Format{
	"cyjs":      FormatJSON,
	"cytoscape": FormatJSON,
	"levels":    FormatLevelMembership,
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat resolves a user-supplied format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	if _, ok := FormatRegistry[Format(name)]; ok {
		return Format(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Formats lists the registered formats sorted by name.
func Formats() []FormatInfo {
	infos := make([]FormatInfo, 0, len(FormatRegistry))
	for _, info := range FormatRegistry {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
