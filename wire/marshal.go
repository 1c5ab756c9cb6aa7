package wire

import (
	"github.com/methodstudio/statengine"
)

// Wire tags for composite values. The lowercase tags are statengine's
// own; "DataFrame" and "ndarray" are emitted by the bundled Python
// wrapper's serializer and are recognized on decode only.
const (
	tagFactor    = "factor"
	tagDataFrame = "dataframe"
	tagMatrix    = "matrix"

	tagPyDataFrame = "DataFrame"
	tagPyNDArray   = "ndarray"
)

// ToWire converts a Value tree into the JSON-marshalable wire form.
// Scalars pass through, containers recurse, and tagged composites become
// objects with an explicit "__type" tag. ToWire is structural: applying
// it to an already-converted subtree changes nothing.
func ToWire(v statengine.Value) any {
	switch x := v.(type) {
	case nil, statengine.Null:
		return nil
	case statengine.Bool:
		return bool(x)
	case statengine.Number:
		return float64(x)
	case statengine.Text:
		return string(x)
	case statengine.Seq:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToWire(e)
		}
		return out
	case statengine.Map:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = ToWire(e)
		}
		return out
	case statengine.Factor:
		return map[string]any{
			"__type": tagFactor,
			"levels": x.Levels,
			"codes":  x.Codes,
		}
	case statengine.DataFrame:
		cols := make(map[string]any, len(x.Columns))
		for name, col := range x.Columns {
			cols[name] = ToWire(statengine.Seq(col))
		}
		return map[string]any{
			"__type":  tagDataFrame,
			"columns": cols,
			"nrow":    x.RowCount,
		}
	case statengine.Matrix:
		out := map[string]any{
			"__type": tagMatrix,
			"data":   x.Data,
			"nrow":   x.RowCount,
			"ncol":   x.ColCount,
		}
		if x.RowNames != nil {
			out["rownames"] = x.RowNames
		}
		if x.ColNames != nil {
			out["colnames"] = x.ColNames
		}
		return out
	default:
		// Value is sealed; unreachable for well-formed trees.
		return nil
	}
}

// FromWire converts decoded JSON (as produced by encoding/json into any)
// back into a Value tree, reversing each tagged composite:
//
//   - factor → Map{"levels", "values"} with codes expanded to strings;
//     code 0 and out-of-range codes become ""
//   - dataframe → Map of column name → Seq
//   - matrix → Map{"data": row-major rows, "rownames", "colnames"}
//     with Null for absent dimension names
//
// The Python wrapper's native DataFrame/ndarray tags decode into the
// same host shapes. FromWire never panics on malformed composites; they
// degrade to plain maps.
func FromWire(x any) statengine.Value {
	switch v := x.(type) {
	case nil:
		return statengine.Null{}
	case bool:
		return statengine.Bool(v)
	case float64:
		return statengine.Number(v)
	case string:
		return statengine.Text(v)
	case []any:
		seq := make(statengine.Seq, len(v))
		for i, e := range v {
			seq[i] = FromWire(e)
		}
		return seq
	case map[string]any:
		switch v["__type"] {
		case tagFactor:
			return factorFromWire(v)
		case tagDataFrame:
			return dataFrameFromWire(v)
		case tagMatrix:
			return matrixFromWire(v)
		case tagPyDataFrame:
			return pyDataFrameFromWire(v)
		case tagPyNDArray:
			return FromWire(v["data"])
		}
		m := make(statengine.Map, len(v))
		for k, e := range v {
			m[k] = FromWire(e)
		}
		return m
	default:
		return statengine.Null{}
	}
}

// factorFromWire expands {levels, codes} into {levels, values}.
func factorFromWire(v map[string]any) statengine.Value {
	levels := stringSeq(v["levels"])
	codes, _ := v["codes"].([]any)

	values := make(statengine.Seq, len(codes))
	for i, c := range codes {
		code, _ := c.(float64)
		idx := int(code)
		if idx >= 1 && idx <= len(levels) {
			values[i] = levels[idx-1]
		} else {
			values[i] = statengine.Text("")
		}
	}
	return statengine.Map{"levels": levels, "values": values}
}

// dataFrameFromWire flattens a tagged data frame into its column map,
// each column decoded independently.
func dataFrameFromWire(v map[string]any) statengine.Value {
	cols, _ := v["columns"].(map[string]any)
	out := make(statengine.Map, len(cols))
	for name, col := range cols {
		out[name] = FromWire(col)
	}
	return out
}

// matrixFromWire rebuilds row-major rows from the column-major flat
// buffer: rows[r][c] = data[r + c*nrow].
func matrixFromWire(v map[string]any) statengine.Value {
	data, _ := v["data"].([]any)
	nrow := intField(v, "nrow")
	ncol := intField(v, "ncol")
	if nrow < 0 || ncol < 0 || nrow*ncol != len(data) {
		// Inconsistent dims — keep the flat data rather than guess.
		return statengine.Map{
			"data":     FromWire(data),
			"rownames": nameSeq(v["rownames"]),
			"colnames": nameSeq(v["colnames"]),
		}
	}

	rows := make(statengine.Seq, nrow)
	for r := 0; r < nrow; r++ {
		row := make(statengine.Seq, ncol)
		for c := 0; c < ncol; c++ {
			n, _ := data[r+c*nrow].(float64)
			row[c] = statengine.Number(n)
		}
		rows[r] = row
	}
	return statengine.Map{
		"data":     rows,
		"rownames": nameSeq(v["rownames"]),
		"colnames": nameSeq(v["colnames"]),
	}
}

// pyDataFrameFromWire converts the Python wrapper's row-major
// {columns, index, data} form into the column map shape.
func pyDataFrameFromWire(v map[string]any) statengine.Value {
	names := stringSeq(v["columns"])
	rows, _ := v["data"].([]any)

	out := make(statengine.Map, len(names))
	for c, name := range names {
		col := make(statengine.Seq, 0, len(rows))
		for _, r := range rows {
			row, _ := r.([]any)
			if c < len(row) {
				col = append(col, FromWire(row[c]))
			} else {
				col = append(col, statengine.Null{})
			}
		}
		out[string(name.(statengine.Text))] = col
	}
	return out
}

// stringSeq coerces a decoded JSON array to a Seq of Text, dropping
// non-string elements.
func stringSeq(x any) statengine.Seq {
	arr, _ := x.([]any)
	seq := make(statengine.Seq, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			seq = append(seq, statengine.Text(s))
		}
	}
	return seq
}

// nameSeq is stringSeq with Null for absent dimension names.
func nameSeq(x any) statengine.Value {
	if x == nil {
		return statengine.Null{}
	}
	return stringSeq(x)
}

// intField reads a numeric field as int, -1 when absent or non-numeric.
func intField(v map[string]any, key string) int {
	f, ok := v[key].(float64)
	if !ok {
		return -1
	}
	return int(f)
}
