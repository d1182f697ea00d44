// Package hierarchy walks the direct-superclass relation of an ontology to
// compute ancestor paths and fixed-width level tables.
package hierarchy

import (
	"github.com/efebarandurmaz/ontograph/internal/ontology"
	"github.com/efebarandurmaz/ontograph/internal/sanitize"
)

// ClassRecord is the sanitized view of one class. Label and Comment are
// already cleaned and markup-escaped.
type ClassRecord struct {
	ID      string `json:"id"`
	URI     string `json:"uri"`
	Label   string `json:"label"`
	Comment string `json:"comment"`
}

// DisplayLabel returns the label, falling back to the id.
func (r ClassRecord) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// NewRecord derives the record for c. ok is false when c has no URI.
func NewRecord(ont ontology.Ontology, c ontology.ClassRef) (ClassRecord, bool) {
	uri, ok := ont.URI(c)
	if !ok || uri == "" {
		return ClassRecord{}, false
	}
	rec := ClassRecord{
		ID:  sanitize.URIToID(uri),
		URI: uri,
	}
	if label, ok := ont.Label(c); ok {
		rec.Label = sanitize.Text(label)
	}
	if comment, ok := ont.Comment(c); ok {
		rec.Comment = sanitize.Text(comment)
	}
	return rec, true
}
