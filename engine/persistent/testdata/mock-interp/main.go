//go:build ignore

// Command mock-interp simulates the interpreter-side wrapper for
// integration tests. It reads newline-delimited request records from
// stdin and writes one response record per request to stdout.
//
// Environment variables control failure modes:
//
//	INTERP_MOCK_MODE=script-error     — every request fails with a script error
//	INTERP_MOCK_MODE=silent           — read requests, never respond (timeout tests)
//	INTERP_MOCK_MODE=delay            — respond after a 2s pause
//	INTERP_MOCK_MODE=crash-after-first — respond once, then exit 3 with stderr
//	INTERP_MOCK_MODE=exit-now         — write stderr and exit 2 before reading
//	INTERP_MOCK_MODE=no-id           — respond without an id
//	INTERP_MOCK_MODE=banner          — print a non-JSON banner line before each response
//	INTERP_MOCK_MODE=wrong-id-first  — respond with a stranger id, then the real one
//	INTERP_MOCK_MODE=plots           — respond with console output and a plot
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type request struct {
	ID       string         `json:"id"`
	Script   string         `json:"script"`
	Data     map[string]any `json:"data"`
	Packages []string       `json:"packages"`
}

type response struct {
	ID      string   `json:"id,omitempty"`
	Success bool     `json:"success"`
	Result  any      `json:"result,omitempty"`
	Error   string   `json:"error,omitempty"`
	Output  string   `json:"output,omitempty"`
	Plots   []string `json:"plots,omitempty"`
}

var (
	enc  = json.NewEncoder(os.Stdout)
	mode = os.Getenv("INTERP_MOCK_MODE")
)

func main() {
	if mode == "exit-now" {
		fmt.Fprintln(os.Stderr, "mock interpreter refused to start")
		os.Exit(2)
	}

	served := 0
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		handle(&req)
		served++
		if mode == "crash-after-first" && served == 1 {
			fmt.Fprintln(os.Stderr, "mock interpreter lost its mind")
			os.Exit(3)
		}
	}
}

func handle(req *request) {
	// Scripts that sleep simulate a long computation: no response.
	if strings.Contains(req.Script, "time.sleep") {
		return
	}
	switch mode {
	case "silent":
		return
	case "delay":
		time.Sleep(2 * time.Second)
	case "script-error":
		send(response{ID: req.ID, Success: false,
			Error:  "NameError: name 'dv' is not defined",
			Output: "loading data\n"})
		return
	case "no-id":
		send(response{Success: true, Result: result(req)})
		return
	case "banner":
		fmt.Println("mock interpreter v1.0 ready")
	case "wrong-id-first":
		send(response{ID: "stranger", Success: true, Result: "noise"})
	case "plots":
		send(response{ID: req.ID, Success: true, Result: result(req),
			Output: "rendering\n", Plots: []string{"cGxvdA=="}})
		return
	}
	send(response{ID: req.ID, Success: true, Result: result(req)})
}

// result derives a deterministic reply from the request so tests can
// assert on correlation and binding transport.
func result(req *request) any {
	if v, ok := req.Data["echo"]; ok {
		return v
	}
	if path, ok := req.Data["__script_path__"]; ok {
		return path
	}
	if strings.Contains(req.Script, "find_spec") {
		return !strings.Contains(req.Script, "missing_pkg")
	}
	return true
}

func send(resp response) {
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}
