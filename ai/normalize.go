package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// CleanJSON trims model output and strips a surrounding markdown code fence.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeObject cleans raw and unmarshals it into v.
func DecodeObject(raw string, v any) error {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// listFields are looked up in order when a list element is an object.
var listFields = []string{
	"name", "value", "company", "role", "position", "skill",
	"achievement", "weakness", "recommendation", "keyword", "description",
}

// StringList decodes a JSON array of strings or of single-field objects.
// Anything it cannot decode becomes an empty list instead of an error.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	items, err := decodeStringList(data)
	if err != nil {
		slog.Warn("AI list field could not be decoded, using empty list", "error", err)
		*l = StringList{}
		return nil
	}
	*l = items
	return nil
}

// ParseStringList decodes a top-level list reply, returning an empty list when
// the reply is not a usable array.
func ParseStringList(raw string) []string {
	items, err := decodeStringList([]byte(CleanJSON(raw)))
	if err != nil {
		slog.Warn("AI list reply could not be decoded", "error", err)
		return []string{}
	}
	return items
}

func decodeStringList(data []byte) ([]string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(elems))
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 {
			continue
		}
		switch elem[0] {
		case '{':
			v, ok, err := objectValue(elem)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, v)
			}
		default:
			if v, ok := primitive(elem); ok {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// objectValue picks the first known field, or failing that the first primitive
// field in document order.
func objectValue(data []byte) (string, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return "", false, err
	}
	var keys []string
	fields := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", false, err
		}
		key, _ := tok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return "", false, err
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = val
	}

	for _, name := range listFields {
		if val, ok := fields[name]; ok {
			if v, ok := primitive(val); ok {
				return v, true, nil
			}
		}
	}
	for _, key := range keys {
		if v, ok := primitive(fields[key]); ok {
			return v, true, nil
		}
	}
	return "", false, nil
}

// primitive renders a JSON string, number or boolean as text. Null, objects and
// arrays are not primitives.
func primitive(data json.RawMessage) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", false
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n':
		return "", false
	default:
		return string(data), true
	}
}

// Score accepts a JSON number or a numeric string. NaN and infinities are
// rejected.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*s = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSuffix(strings.TrimSpace(str), "%")
		if i := strings.Index(str, "/"); i >= 0 {
			str = strings.TrimSpace(str[:i])
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("score %q is not numeric", str)
		}
		*s = Score(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
