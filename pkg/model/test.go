package model

import (
	"github.com/aristanetworks/anta/pkg/util"
)

// Test is the contract every concrete test implements. A Test instance is
// built for one scheduling unit: its commands are fixed at construction
// (templates render at that point) and Assess runs only after the session
// collected every command's output.
type Test interface {
	Name() string
	Description() string
	Categories() []string

	// Commands returns the concrete commands to dispatch, in order.
	Commands() []*Command

	// FilterTags restricts which devices (by device tag) this instantiation
	// applies to. Empty means all devices.
	FilterTags() []string

	// Platforms lists hardware family prefixes the test supports.
	// Empty means all platforms.
	Platforms() []string

	// Assess inspects the collected command outputs and records the outcome
	// on r. It must not dispatch commands. A panic escaping Assess is
	// recovered by the harness and recorded as an error status.
	Assess(r *TestResult)
}

// Filters is the common input block restricting a test instantiation to
// devices carrying at least one of the listed tags.
type Filters struct {
	Tags []string `yaml:"tags" json:"tags"`
}

// TestMeta carries the static metadata of a test instantiation. Concrete
// tests embed it and implement only Assess.
type TestMeta struct {
	TestName        string
	TestDescription string
	TestCategories  []string
	TestPlatforms   []string
	Cmds            []*Command
	Filter          Filters
}

func (m *TestMeta) Name() string         { return m.TestName }
func (m *TestMeta) Description() string  { return m.TestDescription }
func (m *TestMeta) Categories() []string { return m.TestCategories }
func (m *TestMeta) Commands() []*Command { return m.Cmds }
func (m *TestMeta) FilterTags() []string { return m.Filter.Tags }
func (m *TestMeta) Platforms() []string  { return m.TestPlatforms }

// RequireCommands returns a validation error when a test that expected at
// least one command rendered none.
func RequireCommands(name string, cmds []*Command) error {
	if len(cmds) == 0 {
		return util.NewValidationError(name + ": no commands to run")
	}
	return nil
}

// NewResult creates the unset TestResult for this test on a device.
func (m *TestMeta) NewResult(device string) *TestResult {
	return NewTestResult(device, m.TestName, m.TestDescription, m.TestCategories)
}
