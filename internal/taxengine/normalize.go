// Package taxengine turns raw catalog rate data into normalized tax
// breakdowns. Every function in it is total: malformed or missing source
// data degrades to documented defaults instead of failing the caller, so
// one bad field in one catalog row never blocks computation.
package taxengine

import (
	"strconv"
	"strings"
)

// Normalize converts a heterogeneous rate or percentage encoding into a
// plain float64. It accepts absent values (nil), numbers, and strings in
// any of the catalog's encodings: "18.5", "18,5", "9%", " 12,5% ".
// Anything unparseable degrades to 0; Normalize never fails.
func Normalize(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case []byte:
		return parseLenient(string(x))
	case string:
		return parseLenient(x)
	default:
		return 0
	}
}

func parseLenient(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
