package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// brokenMember is an object member whose value could not be read. Path holds
// the keys from the top of the document down to the member.
type brokenMember struct {
	path []string
	err  error
}

var errNotObject = errors.New("not a JSON object")

// salvageObject reads an object whose strict decode failed one member at a
// time. A member that does not decode is recorded in broken and skipped, so
// one bad section costs only itself. Members that are objects themselves are
// salvaged the same way while depth > 0. err is set when the object cannot be
// read past some point; members before that point are kept.
func salvageObject(data []byte, path []string, depth int) (obj map[string]any, broken []brokenMember, err error) {
	s := &objectScanner{data: data}
	s.skipSpace()
	if !s.at('{') {
		return nil, nil, errNotObject
	}
	s.pos++

	obj = map[string]any{}
	for {
		s.skipSeparators()
		if s.done() || s.at('}') {
			return obj, broken, nil
		}
		key, err := s.key()
		if err != nil {
			return obj, broken, err
		}
		s.skipSpace()
		if !s.at(':') {
			return obj, broken, fmt.Errorf("%q: missing value", key)
		}
		s.pos++
		s.skipSpace()

		raw := s.value()
		memberPath := append(append([]string(nil), path...), key)
		v, err := decodeValue(raw)
		switch {
		case err == nil:
			obj[key] = v
		case depth > 0 && len(raw) > 0 && raw[0] == '{':
			inner, innerBroken, innerErr := salvageObject(raw, memberPath, depth-1)
			obj[key] = inner
			broken = append(broken, innerBroken...)
			if innerErr != nil {
				broken = append(broken, brokenMember{path: memberPath, err: innerErr})
			}
		default:
			broken = append(broken, brokenMember{path: memberPath, err: err})
		}
	}
}

// decodeValue decodes one JSON value, retrying once with brackets balanced.
func decodeValue(raw []byte) (any, error) {
	v, err := decodeJSONValue(raw)
	if err == nil {
		return v, nil
	}
	if repaired, changed := balanceBrackets(raw); changed {
		if v, rerr := decodeJSONValue(repaired); rerr == nil {
			return v, nil
		}
	}
	return nil, err
}

func decodeJSONValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// objectScanner walks the members of a possibly malformed JSON object.
type objectScanner struct {
	data []byte
	pos  int
}

func (s *objectScanner) done() bool { return s.pos >= len(s.data) }

func (s *objectScanner) at(c byte) bool { return !s.done() && s.data[s.pos] == c }

func (s *objectScanner) skipSpace() {
	for !s.done() && isSpace(s.data[s.pos]) {
		s.pos++
	}
}

// skipSeparators also swallows stray commas, so "a,,b" and "a,}" read as
// if written correctly.
func (s *objectScanner) skipSeparators() {
	for !s.done() && (isSpace(s.data[s.pos]) || s.data[s.pos] == ',') {
		s.pos++
	}
}

// key reads a quoted member name.
func (s *objectScanner) key() (string, error) {
	start := s.pos
	if !s.at('"') {
		return "", fmt.Errorf("offset %d: expected a quoted key", start)
	}
	if !s.skipString() {
		return "", fmt.Errorf("offset %d: unterminated key", start)
	}
	var k string
	if err := json.Unmarshal(s.data[start:s.pos], &k); err != nil {
		return "", fmt.Errorf("offset %d: %w", start, err)
	}
	return k, nil
}

// skipString moves past the string starting at pos. It reports false, with
// pos at the end of data, when the string never closes.
func (s *objectScanner) skipString() bool {
	escaped := false
	for i := s.pos + 1; i < len(s.data); i++ {
		c := s.data[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			s.pos = i + 1
			return true
		}
	}
	s.pos = len(s.data)
	return false
}

// value returns the raw bytes of the value at pos. An object or array runs
// to its matching bracket, or to the end of data when it never closes; a
// scalar runs to the next separator.
func (s *objectScanner) value() []byte {
	start := s.pos
	if s.done() {
		return nil
	}
	switch s.data[s.pos] {
	case '"':
		s.skipString()
		return s.data[start:s.pos]
	case '{', '[':
		depth := 0
		for !s.done() {
			switch s.data[s.pos] {
			case '"':
				s.skipString()
				continue
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
			s.pos++
			if depth == 0 {
				break
			}
		}
		return s.data[start:s.pos]
	}
	for !s.done() {
		c := s.data[s.pos]
		if c == ',' || c == '}' || c == ']' || isSpace(c) {
			break
		}
		s.pos++
	}
	return s.data[start:s.pos]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
