package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/sdtheme/pkg/diag"
	"github.com/oakwood-commons/sdtheme/pkg/storage"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

const (
	// FileName is the layout file inside a theme directory.
	FileName = "layout.json"
	// MaxFileSize caps how much of layout.json is read.
	MaxFileSize = 64 << 10

	dashboardKey = "dashboard"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Load reads <dir>/layout.json from fsys. A missing file yields no
// overrides; the returned error is non-nil only when the storage itself failed.
func Load(fsys afero.Fs, dir string) (Overrides, diag.Report, error) {
	p := filepath.Join(dir, FileName)
	data, truncated, err := storage.ReadFile(fsys, p, MaxFileSize)
	if err != nil {
		if storage.IsMissing(err) {
			report := diag.New(FileName)
			report.Missing = true
			return Overrides{}, report, nil
		}
		return Overrides{}, diag.New(FileName), fmt.Errorf("load %s: %w", FileName, err)
	}
	o, report := Parse(data)
	report.Truncated = truncated
	return o, report, nil
}

// Parse reads layout.json content. Each section and each tile entry is
// checked on its own; whatever fails is dropped and counted in the report.
func Parse(data []byte) (Overrides, diag.Report) {
	var o Overrides
	report := diag.New(FileName)

	doc, broken, err := decodeDocument(data)
	if err != nil {
		report.Fail("document", err)
		if doc == nil {
			return o, report
		}
	}

	known := map[string]bool{dashboardKey: true}
	groups := map[string]tile.Group{}
	for _, g := range tile.Groups() {
		known[g.Key()] = true
		groups[g.Key()] = g
		section, ok := doc[g.Key()]
		if !ok {
			continue
		}
		parseGroup(g, section, &o, &report)
	}
	if raw, ok := doc[dashboardKey]; ok {
		if v, err := parseDashboard(raw); err != nil {
			report.Fail(dashboardKey, err)
		} else {
			o.Dashboard = &v
			report.Apply()
		}
	}
	for key := range doc {
		if !known[key] {
			report.Ignore()
		}
	}
	for _, b := range broken {
		reportBroken(b, groups, known, &report)
	}
	return o, report
}

// reportBroken counts a member the salvage pass could not read under the
// section or tile it belongs to. Members of an unknown section are not
// counted again; the section already is.
func reportBroken(b brokenMember, groups map[string]tile.Group, known map[string]bool, report *diag.Report) {
	switch len(b.path) {
	case 1:
		if known[b.path[0]] {
			report.Fail(b.path[0], b.err)
			return
		}
	case 2:
		g, ok := groups[b.path[0]]
		if !ok {
			return
		}
		if id, ok := tile.Lookup(g, b.path[1]); ok {
			report.Fail(id.String(), b.err)
			return
		}
	}
	report.Ignore()
}

// decodeDocument accepts strict JSON, then JSON with unbalanced brackets
// repaired, then YAML. Empty input is an empty document. When all of those
// fail, an object is read member by member: broken lists what was skipped,
// and a non-nil doc comes back with err when the document stops being
// readable partway through.
func decodeDocument(data []byte) (doc map[string]any, broken []brokenMember, err error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return map[string]any{}, nil, nil
	}

	doc, jsonErr := decodeJSON(data)
	if jsonErr == nil {
		return doc, nil, nil
	}
	if repaired, changed := balanceBrackets(data); changed {
		if doc, err := decodeJSON(repaired); err == nil {
			return doc, nil, nil
		}
	}
	var ydoc map[string]any
	if err := yaml.Unmarshal(data, &ydoc); err == nil {
		if ydoc == nil {
			ydoc = map[string]any{}
		}
		return ydoc, nil, nil
	}
	doc, broken, err = salvageObject(data, nil, 1)
	if doc == nil {
		return nil, nil, fmt.Errorf("not a JSON object: %w", jsonErr)
	}
	return doc, broken, err
}

// decodeJSON decodes the first JSON value in data; anything after it is ignored.
func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// balanceBrackets cuts the document at the first closing bracket that does
// not match and appends closers for every bracket left open.
func balanceBrackets(data []byte) ([]byte, bool) {
	var stack []byte
	inString, escaped := false, false
	end := len(data)
scan:
	for i, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				end = i
				break scan
			}
			stack = stack[:len(stack)-1]
		}
	}
	if end == len(data) && len(stack) == 0 && !inString {
		return data, false
	}

	out := append([]byte(nil), bytes.TrimRight(data[:end], " \t\r\n,")...)
	if inString && end == len(data) {
		out = append(out, '"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, stack[i])
	}
	return out, true
}

func parseGroup(g tile.Group, section any, o *Overrides, report *diag.Report) {
	entries, ok := section.(map[string]any)
	if !ok {
		report.Fail(g.Key(), fmt.Errorf("section must be an object, got %s", kindOf(section)))
		return
	}
	// Sorted so diagnostics come out in a stable order.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		id, ok := tile.Lookup(g, key)
		if !ok {
			report.Ignore()
			continue
		}
		r, err := parseRect(entries[key])
		if err != nil {
			report.Fail(id.String(), err)
			continue
		}
		if o.Tiles == nil {
			o.Tiles = make(map[tile.ID]Rect)
		}
		o.Tiles[id] = r
		report.Apply()
	}
}

func parseRect(raw any) (Rect, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Rect{}, fmt.Errorf("entry must be an object, got %s", kindOf(raw))
	}
	var r Rect
	for _, f := range []struct {
		name string
		dst  *int
	}{{"x", &r.X}, {"y", &r.Y}, {"w", &r.W}, {"h", &r.H}} {
		v, present := obj[f.name]
		if !present {
			return Rect{}, fmt.Errorf("missing %q", f.name)
		}
		n, err := asInt(v)
		if err != nil {
			return Rect{}, fmt.Errorf("%q: %w", f.name, err)
		}
		*f.dst = n
	}
	if err := r.Validate(); err != nil {
		return Rect{}, err
	}
	return r, nil
}

var errNotInteger = errors.New("not an integer")

// asInt accepts integral numbers from either decoder and rejects everything
// else, including strings that look like numbers.
func asInt(v any) (int, error) {
	var n int64
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			if ferr != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
				return 0, errNotInteger
			}
			i = int64(f)
		}
		n = i
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxInt32 {
			return 0, errNotInteger
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
			return 0, errNotInteger
		}
		n = int64(x)
	default:
		return 0, fmt.Errorf("%w: got %s", errNotInteger, kindOf(v))
	}
	if n < MinCoord || n > MaxCoord {
		return 0, fmt.Errorf("%d outside [%d,%d]", n, MinCoord, MaxCoord)
	}
	return int(n), nil
}

func parseDashboard(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case map[string]any:
		enabled, ok := v["enabled"].(bool)
		if !ok {
			return false, fmt.Errorf("object form needs a boolean %q", "enabled")
		}
		return enabled, nil
	}
	return false, fmt.Errorf("want boolean or {\"enabled\": bool}, got %s", kindOf(raw))
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, int, int64, uint64, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
