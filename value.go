package statengine

import "fmt"

// Value is the closed set of values that cross the interpreter boundary.
//
// Scalars and plain containers mirror JSON. The tagged composites
// ([Factor], [DataFrame], [Matrix]) carry explicit structure so the wire
// layer can reconstruct interpreter-native objects on either side.
//
// The set is sealed: only types in this package implement Value, which
// gives the wire codec exhaustive match arms.
type Value interface {
	isValue()
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Number is a numeric scalar. Interpreters do not distinguish integer
// from floating-point on the wire, so neither does statengine.
type Number float64

// Text is a string scalar.
type Text string

// Seq is an ordered sequence of values.
type Seq []Value

// Map is a string-keyed mapping of values.
type Map map[string]Value

// Factor is a categorical vector: codes index 1-based into Levels,
// with 0 meaning unmapped/missing.
type Factor struct {
	Levels []string
	Codes  []int
}

// DataFrame is a named-column table. Every column has length RowCount.
type DataFrame struct {
	Columns  map[string][]Value
	RowCount int
}

// Matrix is a dense numeric matrix stored column-major:
// element (r, c) lives at Data[r + c*RowCount].
// RowNames and ColNames are optional dimension labels.
type Matrix struct {
	Data     []float64
	RowCount int
	ColCount int
	RowNames []string
	ColNames []string
}

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Number) isValue()    {}
func (Text) isValue()      {}
func (Seq) isValue()       {}
func (Map) isValue()       {}
func (Factor) isValue()    {}
func (DataFrame) isValue() {}
func (Matrix) isValue()    {}

// NewFactor builds a Factor from observed values. When levels is nil the
// level set is derived from the values in order of first appearance.
// Values absent from an explicit level set are coded 0 (missing).
func NewFactor(values []string, levels []string) Factor {
	if levels == nil {
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			if !seen[v] {
				seen[v] = true
				levels = append(levels, v)
			}
		}
	}
	index := make(map[string]int, len(levels))
	for i, l := range levels {
		if _, dup := index[l]; !dup {
			index[l] = i + 1
		}
	}
	codes := make([]int, len(values))
	for i, v := range values {
		codes[i] = index[v] // 0 when absent
	}
	return Factor{Levels: levels, Codes: codes}
}

// Values expands the factor back into its observed string values.
// Codes of 0 and out-of-range codes yield the empty string.
func (f Factor) Values() []string {
	values := make([]string, len(f.Codes))
	for i, c := range f.Codes {
		if c >= 1 && c <= len(f.Levels) {
			values[i] = f.Levels[c-1]
		}
	}
	return values
}

// NewDataFrame builds a DataFrame, deriving RowCount from the columns.
// All columns must have equal length.
func NewDataFrame(columns map[string][]Value) (DataFrame, error) {
	rows := -1
	for name, col := range columns {
		if rows == -1 {
			rows = len(col)
			continue
		}
		if len(col) != rows {
			return DataFrame{}, fmt.Errorf("statengine: column %q has %d rows, want %d", name, len(col), rows)
		}
	}
	if rows == -1 {
		rows = 0
	}
	return DataFrame{Columns: columns, RowCount: rows}, nil
}

// NewMatrix builds a Matrix from row-major input. All rows must have
// equal length.
func NewMatrix(rows [][]float64) (Matrix, error) {
	nrow := len(rows)
	ncol := 0
	if nrow > 0 {
		ncol = len(rows[0])
	}
	data := make([]float64, nrow*ncol)
	for r, row := range rows {
		if len(row) != ncol {
			return Matrix{}, fmt.Errorf("statengine: row %d has %d columns, want %d", r, len(row), ncol)
		}
		for c, v := range row {
			data[r+c*nrow] = v
		}
	}
	return Matrix{Data: data, RowCount: nrow, ColCount: ncol}, nil
}

// Rows reconstructs the matrix as row-major nested slices.
func (m Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.RowCount)
	for r := range rows {
		row := make([]float64, m.ColCount)
		for c := range row {
			row[c] = m.Data[r+c*m.RowCount]
		}
		rows[r] = row
	}
	return rows
}

// FromGo converts a native Go value into a Value tree. It accepts nil,
// booleans, numeric and string scalars, slices, and string-keyed maps;
// Value trees pass through unchanged. Anything else is an error.
func FromGo(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case float64:
		return Number(x), nil
	case string:
		return Text(x), nil
	case []string:
		seq := make(Seq, len(x))
		for i, s := range x {
			seq[i] = Text(s)
		}
		return seq, nil
	case []float64:
		seq := make(Seq, len(x))
		for i, f := range x {
			seq[i] = Number(f)
		}
		return seq, nil
	case []int:
		seq := make(Seq, len(x))
		for i, n := range x {
			seq[i] = Number(n)
		}
		return seq, nil
	case []any:
		seq := make(Seq, len(x))
		for i, e := range x {
			ev, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			seq[i] = ev
		}
		return seq, nil
	case map[string]any:
		m := make(Map, len(x))
		for k, e := range x {
			ev, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			m[k] = ev
		}
		return m, nil
	default:
		return nil, fmt.Errorf("statengine: cannot convert %T to Value", v)
	}
}
