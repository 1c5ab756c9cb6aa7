package wire

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/methodstudio/statengine"
)

// jsonCycle pushes a wire form through encoding/json so typed slices
// come back as the []any / float64 shapes a real reply would carry.
func jsonCycle(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEncodeRequest_RecordShape(t *testing.T) {
	payload, err := EncodeRequest(statengine.Request{
		ID:     "r1",
		Script: "result = x + 1",
		Bindings: map[string]statengine.Value{
			"x": statengine.Number(41),
		},
		Packages: []string{"numpy"},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasSuffix(payload, []byte("\n")), "record must be newline-terminated")
	require.Equal(t, 1, bytes.Count(payload, []byte("\n")), "exactly one record")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(payload, &rec))
	assert.Equal(t, "r1", rec["id"])
	assert.Equal(t, "result = x + 1", rec["script"])
	assert.Equal(t, map[string]any{"x": 41.0}, rec["data"])
	assert.Equal(t, []any{"numpy"}, rec["packages"])
}

func TestEncodeRequest_ScriptPathTravelsAsBinding(t *testing.T) {
	payload, err := EncodeRequest(statengine.Request{
		ID:         "r2",
		ScriptPath: "/engines/ttest.py",
	})
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(payload, &rec))
	data := rec["data"].(map[string]any)
	assert.Equal(t, "/engines/ttest.py", data["__script_path__"])
	assert.Equal(t, []any{}, rec["packages"], "packages is always present")
}

func TestDecodeResponse_Success(t *testing.T) {
	line := []byte(`{"id":"r1","success":true,"result":42,"output":"done\n","plots":["aW1n"]}`)
	resp := DecodeResponse(line)
	require.True(t, resp.OK())
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, statengine.Number(42), resp.Value)
	assert.Equal(t, "done\n", resp.ConsoleText)
	assert.Equal(t, []string{"aW1n"}, resp.Plots)
}

func TestDecodeResponse_ScriptError(t *testing.T) {
	line := []byte(`{"id":"r9","success":false,"error":"NameError: name 'dv' is not defined","output":"partial"}`)
	resp := DecodeResponse(line)
	require.False(t, resp.OK())
	assert.Equal(t, statengine.FailureScript, resp.Failure.Kind)
	assert.Equal(t, "NameError: name 'dv' is not defined", resp.Failure.Message)
	assert.Equal(t, "partial", resp.Failure.PartialConsoleText)
}

func TestDecodeResponse_TracebackFallback(t *testing.T) {
	line := []byte(`{"id":"r9","success":false,"traceback":"Traceback (most recent call last):\n  ...\nValueError: bad input\n"}`)
	resp := DecodeResponse(line)
	require.False(t, resp.OK())
	assert.Equal(t, "ValueError: bad input", resp.Failure.Message)
}

func TestDecodeResponse_MalformedCarriesRawPreview(t *testing.T) {
	resp := DecodeResponse([]byte("Fatal error: unable to start\n"))
	require.False(t, resp.OK())
	assert.Equal(t, statengine.FailureDecode, resp.Failure.Kind)
	assert.Contains(t, resp.Failure.Message, "Fatal error: unable to start")
}

func TestDecodeResponse_PreviewIsBounded(t *testing.T) {
	resp := DecodeResponse([]byte(strings.Repeat("x", 10_000)))
	require.False(t, resp.OK())
	assert.Less(t, len(resp.Failure.Message), 1024)
}

func TestDecodeResponse_TaggedResult(t *testing.T) {
	line := []byte(`{"id":"r3","success":true,"result":{"__type":"factor","levels":["a","b"],"codes":[2,1,0]}}`)
	resp := DecodeResponse(line)
	require.True(t, resp.OK())
	want := statengine.Map{
		"levels": statengine.Seq{statengine.Text("a"), statengine.Text("b")},
		"values": statengine.Seq{statengine.Text("b"), statengine.Text("a"), statengine.Text("")},
	}
	assert.Equal(t, want, resp.Value)
}

func TestDecodeResponse_NullResult(t *testing.T) {
	resp := DecodeResponse([]byte(`{"id":"r4","success":true}`))
	require.True(t, resp.OK())
	assert.Equal(t, statengine.Null{}, resp.Value)
}

func FuzzDecodeResponse(f *testing.F) {
	f.Add([]byte(`{"id":"r1","success":true,"result":42}`))
	f.Add([]byte(`{"id":"r1","success":false,"error":"boom"}`))
	f.Add([]byte(`{"truncated`))
	f.Add([]byte(``))
	f.Add([]byte(`[1,2,3]`))
	f.Add([]byte(`{"id":"x","success":true,"result":{"__type":"matrix","data":[1],"nrow":9,"ncol":9}}`))
	f.Fuzz(func(t *testing.T, line []byte) {
		// Must never panic, and malformed input must come back as a
		// failure response rather than an error.
		resp := DecodeResponse(line)
		if resp.Failure == nil && resp.Value == nil {
			t.Errorf("response has neither value nor failure: %q", line)
		}
	})
}
