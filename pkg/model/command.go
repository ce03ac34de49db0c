package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// OutputFormat selects the encoding of a command response.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// VersionLatest requests the newest API version the device supports.
const VersionLatest = "latest"

// Command is one CLI request unit and holds its collected output.
//
// A Command is executed at most once per scheduling unit. Output fields are
// populated by the device session during execution and read-only afterward.
type Command struct {
	Cmd      string
	Version  string // "latest" or an explicit API version such as "1"
	Format   OutputFormat
	UseCache bool

	// Collected during execution.
	Output  interface{} // parsed structured output (FormatJSON)
	TextOut string      // raw output (FormatText)
	Err     error       // set when this command was the one rejected

	executed bool
	cacheKey string
}

// NewCommand creates a JSON-format command at the latest API version.
func NewCommand(cmd string) *Command {
	return &Command{Cmd: cmd, Version: VersionLatest, Format: FormatJSON, UseCache: true}
}

// NewTextCommand creates a text-format command at the latest API version.
func NewTextCommand(cmd string) *Command {
	return &Command{Cmd: cmd, Version: VersionLatest, Format: FormatText, UseCache: true}
}

// UID returns the cache key: a hash of command text, version and format.
func (c *Command) UID() string {
	if c.cacheKey == "" {
		sum := sha256.Sum256([]byte(c.Cmd + "|" + c.Version + "|" + string(c.Format)))
		c.cacheKey = hex.EncodeToString(sum[:])
	}
	return c.cacheKey
}

// MarkExecuted records that the session collected output for this command.
func (c *Command) MarkExecuted() {
	c.executed = true
}

// Executed reports whether output collection completed for this command.
func (c *Command) Executed() bool {
	return c.executed
}

// JSONOutput returns the structured output as a map. It fails when the
// command did not request JSON format or when no output was collected.
func (c *Command) JSONOutput() (map[string]interface{}, error) {
	if c.Format != FormatJSON {
		return nil, fmt.Errorf("command %q: format is %s, not json", c.Cmd, c.Format)
	}
	if !c.executed {
		return nil, fmt.Errorf("command %q: output not collected", c.Cmd)
	}
	m, ok := c.Output.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("command %q: output is %T, not an object", c.Cmd, c.Output)
	}
	return m, nil
}

// TextOutput returns the raw output. It fails when the command did not
// request text format or when no output was collected.
func (c *Command) TextOutput() (string, error) {
	if c.Format != FormatText {
		return "", fmt.Errorf("command %q: format is %s, not text", c.Cmd, c.Format)
	}
	if !c.executed {
		return "", fmt.Errorf("command %q: output not collected", c.Cmd)
	}
	return c.TextOut, nil
}

// CommandTemplate renders into one concrete Command per parameter set.
// Placeholders use {name} syntax.
type CommandTemplate struct {
	Template string
	Version  string
	Format   OutputFormat
	UseCache bool
}

// NewTemplate creates a JSON-format template at the latest API version.
func NewTemplate(template string) *CommandTemplate {
	return &CommandTemplate{Template: template, Version: VersionLatest, Format: FormatJSON, UseCache: true}
}

// TemplateRenderError reports a placeholder with no supplied value.
type TemplateRenderError struct {
	Template    string
	Placeholder string
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("rendering template %q: no value for placeholder {%s}", e.Template, e.Placeholder)
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Render substitutes every placeholder and produces an immutable Command
// with the template's format and version. All placeholders must be
// supplied; the first missing one is reported in a TemplateRenderError.
func (t *CommandTemplate) Render(params map[string]interface{}) (*Command, error) {
	var missing string
	rendered := placeholderRe.ReplaceAllStringFunc(t.Template, func(tok string) string {
		name := tok[1 : len(tok)-1]
		v, ok := params[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return tok
		}
		return fmt.Sprint(v)
	})
	if missing != "" {
		return nil, &TemplateRenderError{Template: t.Template, Placeholder: missing}
	}
	version := t.Version
	if version == "" {
		version = VersionLatest
	}
	format := t.Format
	if format == "" {
		format = FormatJSON
	}
	cmd := &Command{
		Cmd:      strings.TrimSpace(rendered),
		Version:  version,
		Format:   format,
		UseCache: t.UseCache,
	}
	cmd.UID() // compute the cache key up front
	return cmd, nil
}
