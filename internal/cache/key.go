package cache

import (
	"sort"
	"strconv"
	"strings"
)

// BuildKey derives a deterministic cache key from a handler identifier
// and the matched parameter map. Parameter names are sorted before
// concatenation: map enumeration order is not stable, and two
// semantically identical lookups must share a key.
func BuildKey(handlerID int, params map[string]string) string {
	var b strings.Builder
	b.WriteString("h")
	b.WriteString(strconv.Itoa(handlerID))

	if len(params) == 0 {
		return b.String()
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.WriteString(":")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(params[name])
	}

	return b.String()
}
