package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/aristanetworks/anta/pkg/util"
)

// Catalog files are YAML mappings from a group name to a list of
// single-key entries, each naming a registered test with its input:
//
//	software:
//	  - VerifySoftwareVersion:
//	      versions: ["4.27.0F"]
//	bgp:
//	  - VerifyBGPPeersHealth:
//	      peers: ["10.1.0.1"]
//	      filters:
//	        tags: [leaf]
//
// The loader distinguishes three failure kinds: a group with no registered
// tests, an entry naming an unknown test, and a syntactically malformed
// entry.

// UnknownGroupError reports a catalog group with no registered tests.
type UnknownGroupError struct {
	Group string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("catalog group %q: no such test group", e.Group)
}

func (e *UnknownGroupError) Unwrap() error {
	return util.ErrNotFound
}

// UnknownTestError reports an entry naming a test that is not registered.
type UnknownTestError struct {
	Group string
	Name  string
}

func (e *UnknownTestError) Error() string {
	return fmt.Sprintf("catalog group %q: unknown test %q", e.Group, e.Name)
}

func (e *UnknownTestError) Unwrap() error {
	return util.ErrNotFound
}

// MalformedEntryError reports an entry that is not a single-key mapping.
type MalformedEntryError struct {
	Group  string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("catalog group %q: malformed entry: %s", e.Group, e.Reason)
}

// Load reads a catalog file and resolves every entry against the registry.
func Load(path string, registry *Registry) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data, registry)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML content.
func Parse(data []byte, registry *Registry) (*Catalog, error) {
	var doc map[string][]map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	// Stable group order so runs are deterministic for a given file.
	groups := make([]string, 0, len(doc))
	for group := range doc {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	c := New()
	for _, group := range groups {
		if !registry.HasGroup(group) {
			return nil, &UnknownGroupError{Group: group}
		}
		for _, entry := range doc[group] {
			if len(entry) != 1 {
				return nil, &MalformedEntryError{
					Group:  group,
					Reason: fmt.Sprintf("expected a single-key mapping, got %d keys", len(entry)),
				}
			}
			for name, input := range entry {
				reg, ok := registry.Lookup(name)
				if !ok || reg.Group != group {
					return nil, &UnknownTestError{Group: group, Name: name}
				}
				if input == nil {
					input = map[string]interface{}{}
				}
				c.Add(NewEntry(reg, input))
			}
		}
	}
	return c, nil
}
