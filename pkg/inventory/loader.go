package inventory

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aristanetworks/anta/pkg/device"
	"github.com/aristanetworks/anta/pkg/util"
)

// RootKey is the required top-level key of an inventory file.
const RootKey = "anta_inventory"

// WrongRootKeyError reports an inventory file whose top-level key is not
// RootKey.
type WrongRootKeyError struct {
	Found []string
}

func (e *WrongRootKeyError) Error() string {
	return fmt.Sprintf("inventory root key must be %q, found %v", RootKey, e.Found)
}

// IncorrectSchemaError reports a record that does not match the inventory
// schema (unknown fields, wrong value types).
type IncorrectSchemaError struct {
	Err error
}

func (e *IncorrectSchemaError) Error() string {
	return fmt.Sprintf("inventory schema: %v", e.Err)
}

func (e *IncorrectSchemaError) Unwrap() error {
	return e.Err
}

// Options carries run-level connection settings applied to every device.
type Options struct {
	Username string
	Password string
	Protocol string // default https
	Timeout  time.Duration
	Insecure bool
}

type inventoryFile struct {
	Hosts []hostRecord `yaml:"hosts"`
}

type hostRecord struct {
	Name           string   `yaml:"name"`
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Tags           []string `yaml:"tags"`
	DisableCache   bool     `yaml:"disable_cache"`
	MaxConnections int      `yaml:"max_connections"`
}

// Load reads an inventory file and builds one session per device record.
func Load(path string, opts Options) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}
	inv, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	return inv, nil
}

// Parse builds an inventory from YAML content. Failure kinds are kept
// taxonomically distinct: *WrongRootKeyError for a bad top-level key,
// *IncorrectSchemaError for records that do not match the schema, and a
// *util.ValidationError for semantic violations.
func Parse(data []byte, opts Options) (*Inventory, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &IncorrectSchemaError{Err: err}
	}

	root, ok := doc[RootKey]
	if !ok {
		found := make([]string, 0, len(doc))
		for k := range doc {
			found = append(found, k)
		}
		sort.Strings(found)
		return nil, &WrongRootKeyError{Found: found}
	}

	var file inventoryFile
	dec := yaml.NewDecoder(bytes.NewReader(encodeNode(&root)))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, &IncorrectSchemaError{Err: err}
	}

	v := &util.ValidationBuilder{}
	inv := New()
	for i, rec := range file.Hosts {
		if rec.Host == "" {
			v.AddErrorf("hosts[%d]: host is required", i)
			continue
		}
		name := rec.Name
		if name == "" {
			name = rec.Host
		}
		if rec.Port < 0 || rec.Port > 65535 {
			v.AddErrorf("hosts[%d] (%s): port %d out of range", i, name, rec.Port)
			continue
		}
		s := device.NewSession(device.Config{
			Name:               name,
			Host:               rec.Host,
			Port:               rec.Port,
			Protocol:           opts.Protocol,
			Username:           opts.Username,
			Password:           opts.Password,
			Tags:               rec.Tags,
			DisableCache:       rec.DisableCache,
			MaxConnections:     rec.MaxConnections,
			Timeout:            opts.Timeout,
			InsecureSkipVerify: opts.Insecure,
		})
		if err := inv.Add(s); err != nil {
			v.AddErrorf("hosts[%d]: duplicate device name %q", i, name)
		}
	}
	if v.HasErrors() {
		return nil, v.Build()
	}
	if inv.Len() == 0 {
		return nil, util.NewValidationError("inventory has no hosts")
	}
	return inv, nil
}

// encodeNode re-serializes a YAML node so it can be decoded with strict
// field checking.
func encodeNode(n *yaml.Node) []byte {
	out, err := yaml.Marshal(n)
	if err != nil {
		return nil
	}
	return out
}
