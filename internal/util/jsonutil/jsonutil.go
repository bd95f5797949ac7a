package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unmarshal is a compatibility wrapper around UnmarshalFlex.
// Use this when you previously called jsonutil.Unmarshal(...) in the pipeline.
func Unmarshal(data []byte, v any) error {
	return UnmarshalFlex(data, v)
}

// MarshalNoEscape encodes v into JSON, keeping <, > and & as they are instead
// of replacing them with JSON unicode escape sequences.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return out, nil
}

// UnescapeUnicodeString converts JSON unicode escape sequences (a backslash,
// 'u' and four hex digits) into the characters they stand for. One call
// removes one level of escaping: a double-escaped sequence comes out
// single-escaped.
func UnescapeUnicodeString(s string) (string, error) {
	// Trick: force JSON to treat the string as a quoted JSON string
	esc := strings.ReplaceAll(s, `"`, `\"`)
	var out string
	if err := json.Unmarshal([]byte(`"`+esc+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}

// NormalizeJSONUnicode parses JSON bytes and recursively unescapes any remaining
// double-escaped unicode sequences (e.g. "\\u003e") inside string values.
// Useful before unmarshalling into a struct to remove HTML escape sequences.
func NormalizeJSONUnicode(raw []byte) ([]byte, error) {
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err != nil {
		// Handle the case where the entire JSON is a quoted string
		var s string
		if err2 := json.Unmarshal(raw, &s); err2 != nil {
			return nil, err
		}
		raw = []byte(s)
		if err := json.Unmarshal(raw, &anyVal); err != nil {
			// Try one more level of unwrapping if still encoded
			var s2 string
			if err3 := json.Unmarshal(raw, &s2); err3 == nil {
				if err := json.Unmarshal([]byte(s2), &anyVal); err == nil {
					goto DONE
				}
			}
			return nil, errors.New("NormalizeJSONUnicode: cannot parse JSON payload")
		}
	}
DONE:
	normalized := deepUnescape(anyVal)
	return MarshalNoEscape(normalized)
}

// UnmarshalFlex tries to unmarshal JSON bytes into v with best effort:
// 1) Direct unmarshal
// 2) Normalize and unmarshal
// This helps when JSON contains double-escaped unicode sequences.
func UnmarshalFlex(raw []byte, v any) error {
	// First try direct unmarshal
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	// Normalize and try again
	norm, err := NormalizeJSONUnicode(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}

// LookupPath descends a decoded JSON tree (as produced by Unmarshal into an
// `any`) along a dotted path such as "a.b.c", returning the value
// string-formatted. A missing segment, or a segment that indexes into a
// non-container value, is reported via the second return, not an error:
// callers treat a missing JSON path as an empty string per spec.
func LookupPath(tree any, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	cur := tree
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return "", false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return "", false
			}
			cur = node[idx]
		default:
			return "", false
		}
	}
	return formatScalar(cur), true
}

// formatScalar renders a decoded JSON leaf value the way a test author
// would expect to see it inlined into response text: whole-number floats
// print without a trailing ".0", strings print unquoted, nil prints empty.
func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// deepUnescape recursively traverses maps and slices,
// unescaping unicode sequences in all string values.
func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := UnescapeUnicodeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}
