// Package catalog holds the immutable set of transition definitions.
//
// A catalog is loaded once and shared read-only for the life of the process.
// Definition order is significant: the first matching definition wins, so
// Definitions always returns rows in document order.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
)

// Document is the persisted catalog form.
type Document struct {
	Transitions []Definition `json:"transitions"`
}

// Catalog is an ordered, read-only set of transition definitions.
type Catalog struct {
	defs   []Definition
	digest string
}

// New builds a catalog from definitions, preserving their order.
func New(defs []Definition) *Catalog {
	c := &Catalog{defs: make([]Definition, 0, len(defs))}
	for _, d := range defs {
		c.defs = append(c.defs, d.withDefaults())
	}
	c.digest = digestDefinitions(c.defs)
	return c
}

// digestDefinitions hashes the JSON form of defs. Values JSON cannot carry
// (NaN or infinite time values) fall back to the Go-syntax form.
func digestDefinitions(defs []Definition) string {
	raw, err := json.Marshal(Document{Transitions: defs})
	if err != nil {
		raw = []byte(fmt.Sprintf("%#v", defs))
	}
	return sha256Hex(raw)
}

// Load reads and parses the catalog document at path.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a catalog document after checking it against the document
// schema. The digest covers the raw bytes.
func Parse(raw []byte) (*Catalog, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, "decode catalog", err)
	}
	if err := documentSchema.Validate(generic); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, "catalog schema", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, "decode catalog", err)
	}
	c := New(doc.Transitions)
	c.digest = sha256Hex(raw)
	return c, nil
}

// Digest identifies the catalog content.
func (c *Catalog) Digest() string {
	if c == nil {
		return ""
	}
	return c.digest
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// Definitions returns a copy of all definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.withDefaults()
	}
	return out
}

// ByEntityType returns the definitions for entityType in catalog order.
func (c *Catalog) ByEntityType(entityType entity.Type) []Definition {
	if c == nil {
		return []Definition{}
	}
	out := []Definition{}
	for _, d := range c.defs {
		if d.EntityType == entityType {
			out = append(out, d.withDefaults())
		}
	}
	return out
}

// First returns the first definition, in catalog order, for which match is true.
func (c *Catalog) First(match func(Definition) bool) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	for _, d := range c.defs {
		if match(d) {
			return d.withDefaults(), true
		}
	}
	return Definition{}, false
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
