// Package testutil provides a mock eAPI endpoint for unit tests: an
// httptest server speaking just enough of the JSON-RPC envelope for
// sessions to run against it without a live device.
package testutil

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/aristanetworks/anta/pkg/device"
	"github.com/aristanetworks/anta/pkg/model"
)

// EAPIServer is a canned JSON-RPC command endpoint. Outputs maps a command
// text to its response body; a command missing from the map is rejected
// with the configured error details, producing the same fail-fast partial
// envelope a real device emits.
type EAPIServer struct {
	*httptest.Server

	// Outputs maps command text to its JSON output (for json format) or to
	// a string (for text format).
	Outputs map[string]interface{}

	// FailErrors is attached to the envelope entry of a rejected command.
	FailErrors []string

	// Dispatched counts runCmds requests, not individual commands.
	Dispatched atomic.Int64

	// Commands counts individual commands the server attempted.
	Commands atomic.Int64
}

type rpcRequest struct {
	ID     string `json:"id"`
	Params struct {
		Cmds   []string `json:"cmds"`
		Format string   `json:"format"`
	} `json:"params"`
}

// NewEAPIServer starts a mock endpoint. The caller owns shutdown via
// t.Cleanup registered here.
func NewEAPIServer(t *testing.T, outputs map[string]interface{}) *EAPIServer {
	t.Helper()
	s := &EAPIServer{
		Outputs:    outputs,
		FailErrors: []string{"Invalid input (at token 0)"},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *EAPIServer) handle(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Dispatched.Add(1)

	var results []interface{}
	for _, cmd := range req.Params.Cmds {
		s.Commands.Add(1)
		out, ok := s.Outputs[cmd]
		if !ok {
			// Fail fast: report partial results plus the failing entry.
			results = append(results, map[string]interface{}{"errors": s.FailErrors})
			resp := map[string]interface{}{
				"id": req.ID,
				"error": map[string]interface{}{
					"code":    1002,
					"message": "CLI command request failed",
					"data":    results,
				},
			}
			json.NewEncoder(w).Encode(resp)
			return
		}
		if req.Params.Format == "text" {
			results = append(results, map[string]interface{}{"output": out})
		} else {
			results = append(results, out)
		}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"id": req.ID, "result": results})
}

// Session returns a device session pointed at the mock endpoint. Host and
// port come from the listener so reachability probes and refreshes work
// against the mock too.
func (s *EAPIServer) Session(t *testing.T, name string, tags ...string) *device.Session {
	t.Helper()
	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatalf("parsing mock server URL %q: %v", s.URL, err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("splitting mock server address %q: %v", u.Host, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing mock server port %q: %v", portStr, err)
	}
	sess := device.NewSession(device.Config{
		Name:     name,
		Host:     host,
		Port:     port,
		Protocol: "http",
		Tags:     tags,
	})
	sess.SetURL(s.URL)
	return sess
}

// ShowVersion returns a minimal `show version` output for a model name.
func ShowVersion(modelName, version string) map[string]interface{} {
	return map[string]interface{}{
		"modelName": modelName,
		"version":   version,
	}
}

// SeedCommand marks a command as executed with the given structured
// output, for offline tests that bypass the session entirely.
func SeedCommand(cmd *model.Command, output interface{}) {
	cmd.Output = output
	cmd.MarkExecuted()
}

// SeedTextCommand marks a text command as executed with raw output.
func SeedTextCommand(cmd *model.Command, output string) {
	cmd.TextOut = output
	cmd.MarkExecuted()
}
