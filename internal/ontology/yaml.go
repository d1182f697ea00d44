package ontology

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the YAML snapshot format accepted by LoadYAML.
//
//	classes:
//	  - uri: http://example.org/Animal
//	    label: Animal
//	  - uri: http://example.org/Bird
//	    label: Bird
//	    subclass_of: [http://example.org/Animal]
type Document struct {
	Classes []DocumentClass `yaml:"classes"`
}

// DocumentClass is one class entry. Ref is only needed for anonymous classes,
// which cannot be referenced by URI.
type DocumentClass struct {
	Ref            string   `yaml:"ref,omitempty"`
	URI            string   `yaml:"uri,omitempty"`
	Label          string   `yaml:"label,omitempty"`
	Comment        string   `yaml:"comment,omitempty"`
	SubclassOf     []string `yaml:"subclass_of,omitempty"`
	Unclassifiable bool     `yaml:"unclassifiable,omitempty"`
}

// LoadYAML decodes a Document and materializes it into a Memory ontology.
func LoadYAML(r io.Reader) (*Memory, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode ontology yaml: %w", err)
	}
	return doc.Memory()
}

// LoadFile reads a YAML ontology snapshot from disk.
func LoadFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ontology: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// Memory builds the in-memory ontology. Classes are registered first so that
// subclass_of may reference classes declared later in the document.
func (d *Document) Memory() (*Memory, error) {
	m := NewMemory()
	refs := make([]ClassRef, len(d.Classes))
	for i, c := range d.Classes {
		ref, err := m.AddClass(Class{
			Ref:            ClassRef(c.Ref),
			URI:            c.URI,
			Label:          c.Label,
			Comment:        c.Comment,
			Unclassifiable: c.Unclassifiable,
		})
		if err != nil {
			return nil, fmt.Errorf("class %d: %w", i, err)
		}
		refs[i] = ref
	}
	for i, c := range d.Classes {
		for _, parent := range c.SubclassOf {
			if err := m.AddSubclass(ClassRef(parent), refs[i]); err != nil {
				return nil, fmt.Errorf("class %q subclass_of: %w", refs[i], err)
			}
		}
	}
	return m, nil
}
