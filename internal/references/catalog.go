// Package references holds the named prompts a speaker is asked to read.
package references

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"pronounce/internal/services"
	"pronounce/internal/textnorm"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknownReference is returned by Lookup for names not in the catalog.
var ErrUnknownReference = fmt.Errorf("%w: unknown reference", services.ErrNotFound)

// Reference is one prompt.
type Reference struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	Level    string `yaml:"level"`
	Language string `yaml:"language"`
	Text     string `yaml:"text"`
}

// Words returns the number of normalized tokens in the prompt.
func (r Reference) Words() int {
	return len(textnorm.Tokenize(r.Text))
}

type catalogFile struct {
	References []Reference `yaml:"references"`
}

// Catalog is an immutable, name-indexed set of references.
type Catalog struct {
	refs   []Reference
	byName map[string]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// DefaultYAML returns the built-in catalog source.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultCatalog...)
}

// LoadFile reads a catalog from path. An empty path selects the built-in
// catalog.
func LoadFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("references: open catalog %q: %w", path, err)
	}
	defer f.Close()

	catalog, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("references: parse catalog %q: %w", path, err)
	}
	return catalog, nil
}

// Load parses catalog YAML. Names must be unique ignoring case and every
// entry needs text.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: references: decode catalog yaml: %v", services.ErrValidation, err)
	}

	catalog := &Catalog{byName: make(map[string]int, len(file.References))}
	for i, ref := range file.References {
		ref.Name = strings.TrimSpace(ref.Name)
		ref.Text = strings.TrimSpace(ref.Text)
		key := strings.ToLower(ref.Name)
		if key == "" {
			return nil, fmt.Errorf("%w: references: entry %d has no name", services.ErrValidation, i)
		}
		if ref.Text == "" {
			return nil, fmt.Errorf("%w: references: %q has no text", services.ErrValidation, ref.Name)
		}
		if _, dup := catalog.byName[key]; dup {
			return nil, fmt.Errorf("%w: references: duplicate name %q", services.ErrValidation, ref.Name)
		}
		catalog.byName[key] = len(catalog.refs)
		catalog.refs = append(catalog.refs, ref)
	}
	return catalog, nil
}

// Lookup finds a reference by name, ignoring case.
func (c *Catalog) Lookup(name string) (Reference, error) {
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Reference{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownReference, name, strings.Join(c.Names(), ", "))
	}
	return c.refs[idx], nil
}

// List returns every reference sorted by name.
func (c *Catalog) List() []Reference {
	out := append([]Reference(nil), c.refs...)
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Names returns the sorted reference names.
func (c *Catalog) Names() []string {
	refs := c.List()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

// Len returns the number of references.
func (c *Catalog) Len() int {
	return len(c.refs)
}
