package wire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/methodstudio/statengine"
)

// scriptPathKey is the well-known binding the interpreter-side wrapper
// reads to load a bundled script file instead of inline source.
const scriptPathKey = "__script_path__"

// rawPreviewLimit bounds how much unparsable interpreter output is
// echoed back inside a decode-failure message.
const rawPreviewLimit = 512

// wireRequest is the outbound record format.
type wireRequest struct {
	ID       string         `json:"id"`
	Script   string         `json:"script"`
	Data     map[string]any `json:"data"`
	Packages []string       `json:"packages"`
}

// wireResponse is the inbound record format.
type wireResponse struct {
	ID        string          `json:"id"`
	Success   bool            `json:"success"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Traceback string          `json:"traceback,omitempty"`
	Output    string          `json:"output,omitempty"`
	Plots     []string        `json:"plots,omitempty"`
}

// EncodeRequest serializes a request into one newline-terminated record.
// Bindings are converted through [ToWire]; a non-empty ScriptPath travels
// as the __script_path__ binding, matching the wrapper protocol.
func EncodeRequest(req statengine.Request) ([]byte, error) {
	data := make(map[string]any, len(req.Bindings)+1)
	for name, v := range req.Bindings {
		data[name] = ToWire(v)
	}
	if req.ScriptPath != "" {
		data[scriptPathKey] = req.ScriptPath
	}

	packages := req.Packages
	if packages == nil {
		packages = []string{}
	}

	out, err := json.Marshal(wireRequest{
		ID:       req.ID,
		Script:   req.Script,
		Data:     data,
		Packages: packages,
	})
	if err != nil {
		return nil, fmt.Errorf("wire: encode request %s: %w", req.ID, err)
	}
	return append(out, '\n'), nil
}

// DecodeResponse parses exactly one response record. It never returns an
// error: malformed payloads yield a decode-failure Response carrying a
// bounded preview of the raw text so a broken interpreter reply can be
// diagnosed instead of crashing the caller.
func DecodeResponse(line []byte) statengine.Response {
	var wr wireResponse
	if err := json.Unmarshal(line, &wr); err != nil {
		return statengine.Response{
			Failure: &statengine.Failure{
				Kind:    statengine.FailureDecode,
				Message: fmt.Sprintf("unparsable interpreter reply: %v; raw: %s", err, preview(line)),
			},
		}
	}

	if !wr.Success {
		return statengine.Response{
			ID: wr.ID,
			Failure: &statengine.Failure{
				Kind:               statengine.FailureScript,
				Message:            scriptErrorMessage(wr),
				PartialConsoleText: wr.Output,
			},
		}
	}

	var result any
	if len(wr.Result) > 0 {
		if err := json.Unmarshal(wr.Result, &result); err != nil {
			return statengine.Response{
				ID: wr.ID,
				Failure: &statengine.Failure{
					Kind:               statengine.FailureDecode,
					Message:            fmt.Sprintf("unparsable result payload: %v; raw: %s", err, preview(wr.Result)),
					PartialConsoleText: wr.Output,
				},
			}
		}
	}

	return statengine.Response{
		ID:          wr.ID,
		Value:       FromWire(result),
		ConsoleText: wr.Output,
		Plots:       wr.Plots,
	}
}

// scriptErrorMessage picks the most useful error text from a failed
// response: the error field, the traceback's last line, or a generic.
func scriptErrorMessage(wr wireResponse) string {
	if wr.Error != "" {
		return wr.Error
	}
	if wr.Traceback != "" {
		lines := strings.Split(strings.TrimSpace(wr.Traceback), "\n")
		return lines[len(lines)-1]
	}
	return "interpreter reported failure without a message"
}

// preview truncates raw bytes for inclusion in a failure message.
func preview(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > rawPreviewLimit {
		return s[:rawPreviewLimit] + "…"
	}
	return s
}
