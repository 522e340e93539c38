package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMalformedPattern marks catalog entries that fail validation or
// expansion. Malformed entries are rejected at load time; they never surface
// as analysis-time failures mid-game.
var ErrMalformedPattern = errors.New("malformed pattern")

// Catalog is the immutable, versioned set of pattern definitions for one
// card year. Variations are expanded once at load and shared read-only.
type Catalog struct {
	Version  string       `json:"version"`
	Patterns []Definition `json:"patterns"`

	variations map[string][]Variation
}

// NewCatalog validates every definition, expands its variations and returns
// the ready catalog. Any malformed entry fails the whole load.
func NewCatalog(version string, defs []Definition) (*Catalog, error) {
	c := &Catalog{
		Version:    version,
		Patterns:   defs,
		variations: make(map[string][]Variation, len(defs)),
	}
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if seen[def.ID] {
			return nil, fmt.Errorf("%w: duplicate pattern id %s", ErrMalformedPattern, def.ID)
		}
		seen[def.ID] = true
		variations, err := Expand(def)
		if err != nil {
			return nil, err
		}
		c.variations[def.ID] = variations
	}
	return c, nil
}

// LoadCatalog reads a JSON card file and builds the catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern catalog: %w", err)
	}
	var raw Catalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pattern catalog: %w", err)
	}
	return NewCatalog(raw.Version, raw.Patterns)
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (Definition, bool) {
	for _, d := range c.Patterns {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Variations returns the cached expansion for a pattern id.
func (c *Catalog) Variations(id string) []Variation {
	return c.variations[id]
}
