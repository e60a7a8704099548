package models

import (
	"encoding/json"
	"strings"
)

// DecodeList reads a list column. JSON arrays are returned as is; anything else that is
// not valid JSON is treated as a comma separated legacy value.
func DecodeList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		out := []string{}
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	arr, ok := parsed.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case nil:
		default:
			b, _ := json.Marshal(t)
			out = append(out, string(b))
		}
	}
	return out
}

// EncodeList normalizes a request value for a list column. Nil and blank strings become
// "[]", strings are stored verbatim and everything else is JSON encoded.
func EncodeList(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "[]"
	case string:
		if strings.TrimSpace(t) == "" {
			return "[]"
		}
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "[]"
		}
		return string(b)
	}
}
