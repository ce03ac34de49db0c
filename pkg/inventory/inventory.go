// Package inventory holds the collection of device sessions for a run,
// one per configured device, and the YAML loader producing it.
package inventory

import (
	"fmt"

	"github.com/aristanetworks/anta/pkg/device"
	"github.com/aristanetworks/anta/pkg/util"
)

// Inventory is an ordered collection of device sessions with unique names.
type Inventory struct {
	devices []*device.Session
	byName  map[string]*device.Session
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{byName: make(map[string]*device.Session)}
}

// Add appends a session. Device names must be unique within the inventory.
func (inv *Inventory) Add(s *device.Session) error {
	if _, ok := inv.byName[s.Name]; ok {
		return fmt.Errorf("device %q: %w", s.Name, util.ErrAlreadyExists)
	}
	inv.devices = append(inv.devices, s)
	inv.byName[s.Name] = s
	return nil
}

// Devices returns the sessions in configuration order.
func (inv *Inventory) Devices() []*device.Session {
	return inv.devices
}

// Get returns the session for a device name.
func (inv *Inventory) Get(name string) (*device.Session, bool) {
	s, ok := inv.byName[name]
	return s, ok
}

// Len returns the number of devices.
func (inv *Inventory) Len() int {
	return len(inv.devices)
}

// WithTags returns the sessions carrying at least one of the given tags.
// An empty tag list returns every device.
func (inv *Inventory) WithTags(tags []string) []*device.Session {
	if len(tags) == 0 {
		return inv.devices
	}
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []*device.Session
	for _, s := range inv.devices {
		for _, t := range s.Tags {
			if want[t] {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// MaxPotentialConnections sums the per-device recommended connection
// ceilings. Devices without a figure contribute zero and the second return
// value reports how many. Informational only; nothing enforces it.
func (inv *Inventory) MaxPotentialConnections() (int, int) {
	total := 0
	unknown := 0
	for _, s := range inv.devices {
		if s.MaxConnections > 0 {
			total += s.MaxConnections
		} else {
			unknown++
		}
	}
	return total, unknown
}
