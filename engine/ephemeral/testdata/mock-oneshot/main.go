//go:build ignore

// Command mock-oneshot simulates the spawn-per-call interpreter wrapper
// for integration tests. It reads a single request record from stdin,
// writes a single response record to stdout, and exits.
//
// Environment variables control failure modes:
//
//	ONESHOT_MOCK_MODE=garbage       — print unparsable text and exit 0
//	ONESHOT_MOCK_MODE=fail-exit     — write stderr and exit 4 without responding
//	ONESHOT_MOCK_MODE=quiet-exit    — exit 5 with no output at all
//	ONESHOT_MOCK_MODE=hang          — never respond, never exit (timeout tests)
//	ONESHOT_MOCK_MODE=no-id         — respond without an id
//	ONESHOT_MOCK_MODE=noisy         — print log lines before the response record
//	ONESHOT_MOCK_MODE=script-error  — respond with a script failure
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
	ID     string         `json:"id"`
	Script string         `json:"script"`
	Data   map[string]any `json:"data"`
}

type response struct {
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Output  string `json:"output,omitempty"`
}

func main() {
	mode := os.Getenv("ONESHOT_MOCK_MODE")

	switch mode {
	case "quiet-exit":
		os.Exit(5)
	case "fail-exit":
		fmt.Fprintln(os.Stderr, "ImportError: no module named pandas")
		os.Exit(4)
	case "hang":
		time.Sleep(time.Hour)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	if !scanner.Scan() {
		os.Exit(1)
	}
	var req request
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		fmt.Fprintln(os.Stderr, "bad request:", err)
		os.Exit(1)
	}

	// Scripts that sleep simulate a long computation.
	if strings.Contains(req.Script, "time.sleep") {
		time.Sleep(time.Hour)
	}

	enc := json.NewEncoder(os.Stdout)
	switch mode {
	case "garbage":
		fmt.Println("Traceback without structure")
		os.Exit(0)
	case "no-id":
		_ = enc.Encode(response{Success: true, Result: result(&req)})
	case "noisy":
		fmt.Println("loading libraries")
		fmt.Println("binding data")
		_ = enc.Encode(response{ID: req.ID, Success: true, Result: result(&req)})
	case "script-error":
		_ = enc.Encode(response{ID: req.ID, Success: false,
			Error: "ValueError: bad input", Output: "step 1 done\n"})
	default:
		_ = enc.Encode(response{ID: req.ID, Success: true,
			Result: result(&req), Output: "done\n"})
	}
}

func result(req *request) any {
	if v, ok := req.Data["echo"]; ok {
		return v
	}
	return true
}
