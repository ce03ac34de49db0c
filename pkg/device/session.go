// Package device implements the per-device session: a JSON-RPC-over-HTTPS
// management API client with batched command execution, per-run response
// caching, and structured failure classification.
package device

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/util"
)

// DefaultProbeTimeout bounds the reachability probe.
const DefaultProbeTimeout = 5 * time.Second

// DefaultTimeout bounds each management API call.
const DefaultTimeout = 30 * time.Second

// Config holds the immutable connection parameters of a session.
type Config struct {
	Name     string
	Host     string
	Port     int
	Protocol string // "https" (default) or "http"
	Username string
	Password string

	Tags         []string
	DisableCache bool

	// MaxConnections is a recommended per-device connection ceiling. It is
	// informational only; the scheduler enforces a single global limit.
	MaxConnections int

	Timeout            time.Duration
	ProbeTimeout       time.Duration
	InsecureSkipVerify bool
}

// Session owns one management API connection profile to one device and the
// per-run response cache for it. Connection parameters are immutable after
// construction.
type Session struct {
	Name string
	Host string
	Port int

	Username string
	Password string

	Tags           []string
	DisableCache   bool
	MaxConnections int

	// HWModel is the platform identifier, populated lazily by Refresh.
	HWModel string

	url          string
	httpc        *http.Client
	probeTimeout time.Duration
	established  atomic.Bool
	reqID        atomic.Int64

	// mu guards the cache. It is held for the whole of Run when caching is
	// enabled so that two units for the same device cannot race the
	// check-then-populate sequence.
	mu    sync.Mutex
	cache map[string]*cacheEntry
}

type cacheEntry struct {
	output  interface{}
	textOut string
}

// NewSession creates a session from validated configuration.
func NewSession(cfg Config) *Session {
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = "https"
	}
	port := cfg.Port
	if port == 0 {
		port = 443
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout == 0 {
		probeTimeout = DefaultProbeTimeout
	}

	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	return &Session{
		Name:           cfg.Name,
		Host:           cfg.Host,
		Port:           port,
		Username:       cfg.Username,
		Password:       cfg.Password,
		Tags:           cfg.Tags,
		DisableCache:   cfg.DisableCache,
		MaxConnections: cfg.MaxConnections,
		url:            fmt.Sprintf("%s://%s/command-api", protocol, addr),
		httpc:          &http.Client{Timeout: timeout, Transport: transport},
		probeTimeout:   probeTimeout,
		cache:          make(map[string]*cacheEntry),
	}
}

// Addr returns the host:port of the management endpoint.
func (s *Session) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the management API endpoint URL.
func (s *Session) URL() string {
	return s.url
}

// SetURL overrides the endpoint URL. Used by tests to point a session at a
// mock server.
func (s *Session) SetURL(url string) {
	s.url = url
}

// Established reports whether a reachability probe or refresh succeeded.
func (s *Session) Established() bool {
	return s.established.Load()
}

// ConnectCheck probes the management port with a bounded timeout. It never
// returns an error: any failure (timeout, refused, DNS) yields false.
func (s *Session) ConnectCheck(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: s.probeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.Addr())
	if err != nil {
		util.WithDevice(s.Name).Debugf("reachability probe failed: %v", err)
		return false
	}
	conn.Close()
	s.established.Store(true)
	return true
}

// Refresh populates the hardware model identifier from the device. Called
// once per run before tests are dispatched; a platform guard on a test can
// only be evaluated after this succeeds.
func (s *Session) Refresh(ctx context.Context) error {
	cmd := model.NewCommand("show version")
	if err := s.Run(ctx, cmd); err != nil {
		return err
	}
	out, err := cmd.JSONOutput()
	if err != nil {
		return err
	}
	if name, ok := out["modelName"].(string); ok {
		s.HWModel = name
	}
	s.established.Store(true)
	return nil
}

// Run executes commands against the device and populates their outputs.
// Commands sharing an output format and API version are batched into a
// single remote call, in order. On a remote-reported command failure Run
// returns a *CommandError identifying the passed, failed and never-attempted
// commands; any other error is a transport failure.
//
// When caching is enabled for the device, a command whose cache key was
// already resolved in this run is populated from the cache without a
// network round-trip.
func (s *Session) Run(ctx context.Context, cmds ...*model.Command) error {
	if len(cmds) == 0 {
		return fmt.Errorf("%s: no commands to run", s.Name)
	}

	if !s.DisableCache {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	var pending []*model.Command
	for _, cmd := range cmds {
		if !s.DisableCache && cmd.UseCache {
			if entry, ok := s.cache[cmd.UID()]; ok {
				cmd.Output = entry.output
				cmd.TextOut = entry.textOut
				cmd.MarkExecuted()
				util.WithDevice(s.Name).Debugf("cache hit for %q", cmd.Cmd)
				continue
			}
		}
		pending = append(pending, cmd)
	}

	groups := groupCommands(pending)
	for i, batch := range groups {
		if err := s.runBatch(ctx, batch); err != nil {
			// Later batches were never dispatched; fold their commands into
			// the not-executed list so the error covers the whole call.
			var ce *CommandError
			if errors.As(err, &ce) {
				for _, later := range groups[i+1:] {
					for _, cmd := range later {
						ce.NotExec = append(ce.NotExec, cmd.Cmd)
					}
				}
			}
			return err
		}
	}
	return nil
}

// RunSuppress behaves like Run but swallows a *CommandError, returning nil.
// The failing command keeps its Err marker so callers can still inspect it.
// Transport failures are not suppressed.
func (s *Session) RunSuppress(ctx context.Context, cmds ...*model.Command) error {
	err := s.Run(ctx, cmds...)
	var ce *CommandError
	if errors.As(err, &ce) {
		util.WithDevice(s.Name).Debugf("suppressed command error: %v", ce)
		return nil
	}
	return err
}

// groupCommands splits commands into maximal runs sharing format and
// version, preserving order.
func groupCommands(cmds []*model.Command) [][]*model.Command {
	var groups [][]*model.Command
	for _, cmd := range cmds {
		n := len(groups)
		if n > 0 {
			last := groups[n-1][0]
			if last.Format == cmd.Format && last.Version == cmd.Version {
				groups[n-1] = append(groups[n-1], cmd)
				continue
			}
		}
		groups = append(groups, []*model.Command{cmd})
	}
	return groups
}

// runBatch dispatches one homogeneous batch and distributes outputs onto the
// command objects. On a CommandError the passed commands still receive their
// outputs (and cache entries) before the error is returned.
func (s *Session) runBatch(ctx context.Context, batch []*model.Command) error {
	if len(batch) == 0 {
		return nil
	}
	format := batch[0].Format
	version := batch[0].Version

	texts := make([]string, len(batch))
	for i, cmd := range batch {
		texts[i] = cmd.Cmd
	}

	results, err := s.call(ctx, texts, format, version)
	if err != nil {
		var ce *CommandError
		if errors.As(err, &ce) {
			for i, out := range ce.Passed {
				if i >= len(batch) {
					break
				}
				s.populate(batch[i], out, format)
			}
			for _, cmd := range batch {
				if cmd.Cmd == ce.Failed {
					cmd.Err = ce
					break
				}
			}
		}
		return err
	}

	for i, raw := range results {
		var out interface{}
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("decoding output of %q on %s: %w", batch[i].Cmd, s.Name, err)
		}
		s.populate(batch[i], out, format)
	}
	return nil
}

// populate stores a decoded output on the command and, when allowed, in the
// cache. Text-format outputs arrive wrapped in an {"output": ...} object.
func (s *Session) populate(cmd *model.Command, out interface{}, format model.OutputFormat) {
	if format == model.FormatText {
		if m, ok := out.(map[string]interface{}); ok {
			if text, ok := m["output"].(string); ok {
				cmd.TextOut = text
			}
		}
	} else {
		cmd.Output = out
	}
	cmd.MarkExecuted()

	if !s.DisableCache && cmd.UseCache {
		s.cache[cmd.UID()] = &cacheEntry{output: cmd.Output, textOut: cmd.TextOut}
	}
}

// CacheSize returns the number of cached responses for this run.
func (s *Session) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func (s *Session) nextID() string {
	return strconv.FormatInt(s.reqID.Add(1), 10)
}
