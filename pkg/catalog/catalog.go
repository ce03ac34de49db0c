package catalog

import (
	"github.com/aristanetworks/anta/pkg/model"
)

// UntaggedKey is the index bucket for entries that declare no tag filter.
// Such entries apply to every device.
const UntaggedKey = "*"

// Entry pairs a registered test with one raw input mapping. Instantiation
// (input validation, command templating) is deferred until the scheduler
// hands the entry a free slot.
type Entry struct {
	Reg   Registration
	Input map[string]interface{}

	// filterTags is the entry's filters.tags, peeked from the raw input so
	// that device applicability can be decided without instantiation.
	filterTags []string
}

// NewEntry creates a catalog entry, extracting the tag filter from the raw
// input without validating the rest of it.
func NewEntry(reg Registration, input map[string]interface{}) *Entry {
	return &Entry{Reg: reg, Input: input, filterTags: peekFilterTags(input)}
}

// FilterTags returns the device-tag filter. Empty means all devices.
func (e *Entry) FilterTags() []string {
	return e.filterTags
}

// Instantiate validates the input and builds the test instance.
func (e *Entry) Instantiate() (model.Test, error) {
	return e.Reg.Factory(e.Input)
}

// Catalog is an ordered collection of entries. Duplicate (test, input)
// pairs are preserved verbatim: the same test may validly run twice with
// different inputs, or even the same input.
type Catalog struct {
	entries []*Entry
	indexes map[string][]*Entry
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Add appends an entry. Adding after BuildIndexes requires rebuilding.
func (c *Catalog) Add(e *Entry) {
	c.entries = append(c.entries, e)
	c.indexes = nil
}

// Entries returns the entries in catalog order.
func (c *Catalog) Entries() []*Entry {
	return c.entries
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Merge concatenates two catalogs into a new one, preserving order and
// duplicates.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := New()
	merged.entries = append(merged.entries, c.entries...)
	merged.entries = append(merged.entries, other.entries...)
	return merged
}

// BuildIndexes constructs the tag-to-entries mapping. Entries without a tag
// filter land in the UntaggedKey bucket. When selected is non-nil, only the
// named tests are indexed. Idempotent: calling again rebuilds from scratch.
func (c *Catalog) BuildIndexes(selected []string) {
	var keep map[string]bool
	if selected != nil {
		keep = make(map[string]bool, len(selected))
		for _, name := range selected {
			keep[name] = true
		}
	}

	c.indexes = make(map[string][]*Entry)
	for _, e := range c.entries {
		if keep != nil && !keep[e.Reg.Name] {
			continue
		}
		if len(e.filterTags) == 0 {
			c.indexes[UntaggedKey] = append(c.indexes[UntaggedKey], e)
			continue
		}
		for _, tag := range e.filterTags {
			c.indexes[tag] = append(c.indexes[tag], e)
		}
	}
}

// Indexed reports whether BuildIndexes ran since the last mutation.
func (c *Catalog) Indexed() bool {
	return c.indexes != nil
}

// TestsByTags returns the entries applicable to the given tags. By default
// it is the union of entries carrying any of the tags; with strict, only
// entries whose declared tag set contains every given tag are returned.
// Entries in the untagged bucket are not included: they match all devices
// and are handled by the scheduler separately.
func (c *Catalog) TestsByTags(tags []string, strict bool) []*Entry {
	if c.indexes == nil {
		c.BuildIndexes(nil)
	}

	seen := make(map[*Entry]bool)
	var out []*Entry
	for _, tag := range tags {
		for _, e := range c.indexes[tag] {
			if seen[e] {
				continue
			}
			seen[e] = true
			if strict && !containsAll(e.filterTags, tags) {
				continue
			}
			out = append(out, e)
		}
	}
	return out
}

// ForDevice returns the entries applicable to a device with the given tag
// set, in catalog order: untagged entries plus entries whose tag filter
// intersects the device tags.
func (c *Catalog) ForDevice(deviceTags []string) []*Entry {
	if c.indexes == nil {
		c.BuildIndexes(nil)
	}

	tagSet := make(map[string]bool, len(deviceTags))
	for _, t := range deviceTags {
		tagSet[t] = true
	}

	var out []*Entry
	for _, e := range c.entries {
		if !c.inIndex(e) {
			continue
		}
		if len(e.filterTags) == 0 {
			out = append(out, e)
			continue
		}
		for _, t := range e.filterTags {
			if tagSet[t] {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// inIndex reports whether the entry survived the selected-name filter of
// the last BuildIndexes call.
func (c *Catalog) inIndex(e *Entry) bool {
	if len(e.filterTags) == 0 {
		for _, indexed := range c.indexes[UntaggedKey] {
			if indexed == e {
				return true
			}
		}
		return false
	}
	for _, indexed := range c.indexes[e.filterTags[0]] {
		if indexed == e {
			return true
		}
	}
	return false
}

func containsAll(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

// peekFilterTags extracts filters.tags from a raw input mapping.
func peekFilterTags(input map[string]interface{}) []string {
	filters, ok := input["filters"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := filters["tags"].([]interface{})
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}
