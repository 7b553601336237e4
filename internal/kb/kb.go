// Package kb holds the knowledge-base catalog: one entry per vulnerability
// class or misconfiguration the scanner knows about. Entries carry the
// description, remediation, and reference links that the aggregation layer
// joins onto findings; rules reference entries by ID only.
package kb

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// Entry is a single knowledge-base record. The field set matches the
// published document schema: front-matter keys (id, title, categories)
// followed by the issue description, remediation, and references sections.
type Entry struct {
	// ID is the unique, stable identifier for this entry (e.g. "KGV001").
	ID string `json:"id"`

	// Title is the short human-readable name of the vulnerability class.
	Title string `json:"title"`

	// Categories holds the classification tags for this entry.
	Categories []models.Category `json:"categories"`

	// Description explains the issue in prose.
	Description string `json:"description"`

	// Remediation is the suggested fix.
	Remediation string `json:"remediation"`

	// References is an ordered list of URLs with further reading.
	References []string `json:"references,omitempty"`
}

// Catalog is an ordered, in-memory knowledge-base index.
// Register panics on duplicate or malformed entries to catch wiring mistakes
// at startup; lookups after construction are read-only and safe for
// concurrent use.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog returns an empty catalog ready for entry registration.
func NewCatalog() *Catalog {
	return &Catalog{
		index: make(map[string]int),
	}
}

// Register adds entry to the catalog.
// Panics when the ID or title is empty, or when the same ID is registered twice.
func (c *Catalog) Register(entry Entry) {
	if entry.ID == "" {
		panic("kb entry with empty ID")
	}
	if entry.Title == "" {
		panic(fmt.Sprintf("kb entry %q with empty title", entry.ID))
	}
	if _, exists := c.index[entry.ID]; exists {
		panic(fmt.Sprintf("duplicate kb entry ID: %q", entry.ID))
	}
	c.entries = append(c.entries, entry)
	c.index[entry.ID] = len(c.entries) - 1
}

// Get returns the entry with the given ID and whether it exists.
func (c *Catalog) Get(id string) (Entry, bool) {
	pos, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[pos], true
}

// All returns all entries in registration order.
// The returned slice must not be modified.
func (c *Catalog) All() []Entry {
	return c.entries
}
