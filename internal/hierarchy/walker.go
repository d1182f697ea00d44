package hierarchy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/efebarandurmaz/ontograph/internal/ontology"
)

// ErrCycleDetected is wrapped by every CycleError.
var ErrCycleDetected = errors.New("cycle detected in superclass relation")

// CycleError reports a class reached again while it was still on the
// current descent.
type CycleError struct {
	Class ontology.ClassRef
	// Path lists the descent from the starting class to the repeated class.
	Path []ontology.ClassRef
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = string(p)
	}
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// AncestorPath lists ancestors nearest-parent-first, ending at a root.
type AncestorPath []ClassRecord

// Reversed returns a root-first copy of p.
func (p AncestorPath) Reversed() AncestorPath {
	out := make(AncestorPath, len(p))
	for i, rec := range p {
		out[len(p)-1-i] = rec
	}
	return out
}

// Stats counts anomalies absorbed while walking.
type Stats struct {
	Unclassifiable int
}

// Walker computes ancestor paths over one immutable ontology snapshot.
// Results are memoized per class; a Walker is not safe for concurrent use.
type Walker struct {
	ont     ontology.Ontology
	cache   map[ontology.ClassRef][]AncestorPath
	minimal map[ontology.ClassRef]AncestorPath
	counted map[ontology.ClassRef]bool
	stats   Stats
	logger  *slog.Logger
}

// NewWalker creates a walker over ont.
func NewWalker(ont ontology.Ontology) *Walker {
	return &Walker{
		ont:     ont,
		cache:   make(map[ontology.ClassRef][]AncestorPath),
		minimal: make(map[ontology.ClassRef]AncestorPath),
		counted: make(map[ontology.ClassRef]bool),
		logger:  slog.Default(),
	}
}

// WithLogger replaces the walker's logger.
func (w *Walker) WithLogger(l *slog.Logger) *Walker {
	if l != nil {
		w.logger = l
	}
	return w
}

// Stats returns the anomaly counters accumulated so far.
func (w *Walker) Stats() Stats {
	return w.stats
}

// frame is one class being expanded on the explicit descent stack.
type frame struct {
	ref     ontology.ClassRef
	parents []ontology.ClassRef
	next    int
	paths   []AncestorPath

	best    AncestorPath
	hasBest bool
}

func (w *Walker) enter(ref ontology.ClassRef) *frame {
	sup := w.ont.Superclasses(ref)
	switch sup.Status {
	case ontology.HasSuperclass:
		return &frame{ref: ref, parents: sup.Parents}
	case ontology.Unclassifiable:
		if !w.counted[ref] {
			w.counted[ref] = true
			w.stats.Unclassifiable++
			w.logger.Warn("cannot classify class, treating as root", "class", string(ref), "error", sup.Err)
		}
	}
	return &frame{ref: ref}
}

func (w *Walker) record(ref ontology.ClassRef) ClassRecord {
	rec, _ := NewRecord(w.ont, ref)
	return rec
}

// extend appends the paths that run through parent p to f.
func (f *frame) extend(p ClassRecord, parentPaths []AncestorPath) {
	if len(parentPaths) == 0 {
		f.paths = append(f.paths, AncestorPath{p})
		return
	}
	for _, tail := range parentPaths {
		path := make(AncestorPath, 0, len(tail)+1)
		path = append(path, p)
		path = append(path, tail...)
		f.paths = append(f.paths, path)
	}
}

// consider keeps p ++ tail as f's shortest path when it is strictly shorter
// than the one found so far, so the first shortest parent wins.
func (f *frame) consider(p ClassRecord, tail AncestorPath) {
	if f.hasBest && len(tail)+1 >= len(f.best) {
		return
	}
	path := make(AncestorPath, 0, len(tail)+1)
	path = append(path, p)
	path = append(path, tail...)
	f.best = path
	f.hasBest = true
}

// AllAncestorPaths returns every path from c's direct superclasses up to a
// root. A root class yields zero paths. The order follows the backend's
// direct-superclass enumeration order. The number of paths grows with every
// multi-parent level, so callers that only need the shortest path should use
// MinimalAncestorPath. The result is a copy the caller may modify.
func (w *Walker) AllAncestorPaths(c ontology.ClassRef) ([]AncestorPath, error) {
	if paths, ok := w.cache[c]; ok {
		return clonePaths(paths), nil
	}

	stack := []*frame{w.enter(c)}
	onPath := map[ontology.ClassRef]bool{c: true}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.parents) {
			p := top.parents[top.next]
			if onPath[p] {
				return nil, w.cycle(stack, p)
			}
			if paths, ok := w.cache[p]; ok {
				top.extend(w.record(p), paths)
				top.next++
				continue
			}
			onPath[p] = true
			stack = append(stack, w.enter(p))
			continue
		}

		stack = stack[:len(stack)-1]
		delete(onPath, top.ref)
		w.cache[top.ref] = top.paths
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.extend(w.record(top.ref), top.paths)
			parent.next++
		}
	}
	return clonePaths(w.cache[c]), nil
}

func clonePaths(paths []AncestorPath) []AncestorPath {
	if paths == nil {
		return nil
	}
	out := make([]AncestorPath, len(paths))
	for i, p := range paths {
		out[i] = append(AncestorPath(nil), p...)
	}
	return out
}

func (w *Walker) cycle(stack []*frame, repeated ontology.ClassRef) error {
	path := make([]ontology.ClassRef, 0, len(stack)+1)
	for _, f := range stack {
		path = append(path, f.ref)
	}
	path = append(path, repeated)
	return &CycleError{Class: repeated, Path: path}
}

// MinimalAncestorPath returns the shortest ancestor path of c, or nil when c
// is a root. Ties resolve to the first shortest path in AllAncestorPaths
// order, so the chosen path is only as stable as the backend's enumeration.
// Only one path per class is kept, so cost grows with relations times depth
// rather than with the number of distinct paths. The result is a copy the
// caller may modify.
func (w *Walker) MinimalAncestorPath(c ontology.ClassRef) (AncestorPath, error) {
	if best, ok := w.minimal[c]; ok {
		return append(AncestorPath(nil), best...), nil
	}

	stack := []*frame{w.enter(c)}
	onPath := map[ontology.ClassRef]bool{c: true}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.parents) {
			p := top.parents[top.next]
			if onPath[p] {
				return nil, w.cycle(stack, p)
			}
			if best, ok := w.minimal[p]; ok {
				top.consider(w.record(p), best)
				top.next++
				continue
			}
			onPath[p] = true
			stack = append(stack, w.enter(p))
			continue
		}

		stack = stack[:len(stack)-1]
		delete(onPath, top.ref)
		w.minimal[top.ref] = top.best
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.consider(w.record(top.ref), top.best)
			parent.next++
		}
	}
	return append(AncestorPath(nil), w.minimal[c]...), nil
}
