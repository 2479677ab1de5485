// Package id provides centralized ID generation for the backend.
//
// Tab ids come in two forms:
//   - Derived: addressable entities (relations, snippets) map deterministically
//     to "{type}-{entityID}", so reopening the same entity lands on the same tab
//   - Assigned: surfaces without a backing entity get a prefixed ULID
//
// ULIDs are lexicographically sortable and collision-free across services,
// and the prefix keeps logs readable (tab_*).
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/coraldesk/studio/backend/internal/shared/types"
)

// TabID identifies an open tab within a workspace
type TabID string

func (id TabID) String() string { return string(id) }

// TabPrefix marks assigned (non-derived) tab ids
const TabPrefix = "tab"

// ForEntity derives the deterministic tab id for an addressable entity.
// Unknown types yield an empty string; callers must not rely on it as a
// valid id.
func ForEntity(t types.TabType, entityID string) TabID {
	if !t.IsValid() {
		return ""
	}
	return TabID(fmt.Sprintf("%s-%s", t, entityID))
}

// ForSnippet derives the tab id for a SQL snippet
func ForSnippet(snippetID string) TabID {
	return ForEntity(types.TypeSQL, snippetID)
}

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewTabID generates an assigned tab id for surfaces without a backing entity
func NewTabID() TabID {
	return TabID(Default().GenerateWithPrefix(TabPrefix))
}

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}
