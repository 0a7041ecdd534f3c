package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"sparkload/pkg/errors"
)

// Decode calls fn for each top-level JSON object in r. Objects may be
// newline-delimited or simply concatenated.
func Decode(r io.Reader, fn func(record map[string]interface{}) error) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	for n := 1; ; n++ {
		var record map[string]interface{}
		err := dec.Decode(&record)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSourceCorrupted, "Malformed JSON record").
				WithContext("record", n)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}

// Extractor maps a decoded record to column values in table order. A
// missing field yields nil.
type Extractor interface {
	Extract(ctx context.Context, record map[string]interface{}) []interface{}
}

type evaluable func(ctx context.Context, value interface{}) (interface{}, error)

// Manifest is a jsonpaths file: one path expression per column, in column
// order
type Manifest struct {
	Paths []string
	exprs []evaluable
}

// ParseManifest reads {"jsonpaths": [...]} and compiles every path
func ParseManifest(data []byte) (*Manifest, error) {
	var doc struct {
		JSONPaths []string `json:"jsonpaths"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceCorrupted, "Invalid jsonpaths manifest")
	}
	if len(doc.JSONPaths) == 0 {
		return nil, errors.New(errors.ErrCodeSourceCorrupted, "jsonpaths manifest lists no paths")
	}

	m := &Manifest{Paths: doc.JSONPaths}
	for i, path := range doc.JSONPaths {
		expr, err := jsonpath.New(quoteMembers(path))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSourceCorrupted, fmt.Sprintf("Invalid jsonpath %q", path)).
				WithContext("index", i)
		}
		m.exprs = append(m.exprs, evaluable(expr))
	}
	return m, nil
}

// quoteMembers rewrites single-quoted bracket members such as $['artist']
// to the double-quoted form the jsonpath parser accepts. Other text is
// copied unchanged.
func quoteMembers(path string) string {
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		if path[i] != '[' || i+1 >= len(path) || path[i+1] != '\'' {
			b.WriteByte(path[i])
			continue
		}

		var name strings.Builder
		j := i + 2
		for ; j < len(path) && path[j] != '\''; j++ {
			if path[j] == '\\' && j+1 < len(path) {
				j++
			}
			name.WriteByte(path[j])
		}
		if j+1 >= len(path) || path[j+1] != ']' {
			// unterminated member, leave it for the parser to reject
			b.WriteString(path[i:])
			break
		}
		b.WriteByte('[')
		b.WriteString(strconv.Quote(name.String()))
		b.WriteByte(']')
		i = j + 1
	}
	return b.String()
}

// Extract evaluates each path. Paths that do not resolve load as NULL.
func (m *Manifest) Extract(ctx context.Context, record map[string]interface{}) []interface{} {
	values := make([]interface{}, len(m.exprs))
	for i, expr := range m.exprs {
		v, err := expr(ctx, record)
		if err != nil {
			continue
		}
		values[i] = v
	}
	return values
}

// Auto matches top-level keys to column names, ignoring case
type Auto struct {
	Columns []string
}

func (a Auto) Extract(ctx context.Context, record map[string]interface{}) []interface{} {
	byKey := make(map[string]interface{}, len(record))
	for k, v := range record {
		byKey[strings.ToLower(k)] = v
	}

	values := make([]interface{}, len(a.Columns))
	for i, c := range a.Columns {
		values[i] = byKey[strings.ToLower(c)]
	}
	return values
}

// Text renders a value for a VARCHAR column. NULL is "".
func Text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int coerces a value for an integer column. Empty strings and values that
// are not numbers load as NULL; fractions are truncated.
func Int(v interface{}) *int64 {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return &n
		}
		return Int(string(t))
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			n := int64(f)
			return &n
		}
	case float64:
		n := int64(t)
		return &n
	case int64:
		return &t
	}
	return nil
}

// Float coerces a value for a NUMERIC column
func Float(v interface{}) *float64 {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return &f
		}
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	}
	return nil
}
