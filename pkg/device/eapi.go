package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aristanetworks/anta/pkg/model"
)

// eAPI JSON-RPC wire types. One request carries an ordered batch of
// commands; the device stops at the first failing command and reports
// partial results in the error envelope's data array.

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Version interface{} `json:"version"` // 1 or "latest"
	Cmds    []string    `json:"cmds"`
	Format  string      `json:"format"`
}

type rpcResponse struct {
	ID     string            `json:"id"`
	Result []json.RawMessage `json:"result"`
	Error  *rpcError         `json:"error"`
}

type rpcError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
}

// apiVersion maps a command version string to the JSON-RPC params value.
func apiVersion(version string) interface{} {
	if version == "" || version == model.VersionLatest {
		return model.VersionLatest
	}
	return version
}

// call sends one batched runCmds request and decodes the response envelope.
// A non-nil error is either a transport failure or a *CommandError built
// from the envelope's partial results.
func (s *Session) call(ctx context.Context, cmds []string, format model.OutputFormat, version string) ([]json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  "runCmds",
		Params: rpcParams{
			Version: apiVersion(version),
			Cmds:    cmds,
			Format:  string(format),
		},
		ID: s.nextID(),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request for %s: %w", s.Name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", s.Name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.Username != "" {
		httpReq.SetBasicAuth(s.Username, s.Password)
	}

	httpResp, err := s.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", s.Name, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s: unexpected HTTP status %s", s.Name, httpResp.Status)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", s.Name, err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", s.Name, err)
	}

	if resp.Error != nil {
		return nil, s.commandError(cmds, resp.Error)
	}
	if len(resp.Result) != len(cmds) {
		return nil, fmt.Errorf("response from %s: got %d results for %d commands", s.Name, len(resp.Result), len(cmds))
	}
	return resp.Result, nil
}

// commandError builds a CommandError from the error envelope. The data
// array holds one entry per command the device attempted, in order; the
// failing command's entry carries an "errors" list.
func (s *Session) commandError(cmds []string, rpcErr *rpcError) *CommandError {
	ce := &CommandError{
		Device:  s.Name,
		Message: rpcErr.Message,
	}

	failedIdx := len(rpcErr.Data) - 1
	for i, entry := range rpcErr.Data {
		var decoded map[string]interface{}
		if err := json.Unmarshal(entry, &decoded); err == nil {
			if rawErrs, ok := decoded["errors"]; ok {
				failedIdx = i
				if list, ok := rawErrs.([]interface{}); ok {
					for _, item := range list {
						ce.Errors = append(ce.Errors, fmt.Sprint(item))
					}
				}
				break
			}
		}
		var out interface{}
		if err := json.Unmarshal(entry, &out); err == nil {
			ce.Passed = append(ce.Passed, out)
		}
	}

	if failedIdx >= 0 && failedIdx < len(cmds) {
		ce.Failed = cmds[failedIdx]
		ce.NotExec = append(ce.NotExec, cmds[failedIdx+1:]...)
	}
	return ce
}
