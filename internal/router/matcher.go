package router

import (
	"net/url"
	"regexp"
	"strings"
)

// placeholderPattern matches a ${name} token inside a path template.
var placeholderPattern = regexp.MustCompile(`\$\{([^/}]+)\}`)

// TemplateMatcher matches concrete input paths against a single path
// template and extracts named placeholder values plus query parameters.
type TemplateMatcher struct {
	template string
	names    []string

	// regex is nil when the template failed to compile. A broken
	// template matches nothing rather than failing dispatch.
	regex *regexp.Regexp
}

// NewTemplateMatcher compiles a path template. Every character in the
// template is matched literally except ${name} tokens, which each
// capture one path segment.
func NewTemplateMatcher(template string) *TemplateMatcher {
	m := &TemplateMatcher{template: template}

	var pattern strings.Builder
	pattern.WriteString("^")

	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(template, -1) {
		pattern.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		pattern.WriteString(`([^/]+)`)
		m.names = append(m.names, template[loc[2]:loc[3]])
		last = loc[1]
	}
	pattern.WriteString(regexp.QuoteMeta(template[last:]))
	pattern.WriteString("$")

	regex, err := regexp.Compile(pattern.String())
	if err == nil {
		m.regex = regex
	}

	return m
}

// Template returns the original template string.
func (m *TemplateMatcher) Template() string {
	return m.template
}

// Names returns the placeholder names in order of appearance.
func (m *TemplateMatcher) Names() []string {
	return m.names
}

// Match matches input against the template. The input is split at the
// last "?" into a path and a query string; the path is URL-decoded and
// must match the template in full. Query pairs seed the parameter map
// first and placeholder bindings are applied last, so a placeholder
// wins a name collision with a query parameter.
//
// Matching is all-or-nothing: when the path part does not match, any
// parsed query parameters are discarded and matched is false.
func (m *TemplateMatcher) Match(input string) (params map[string]string, matched bool) {
	if m.regex == nil {
		return nil, false
	}

	path := input
	query := ""
	if i := strings.LastIndex(input, "?"); i >= 0 {
		path = input[:i]
		query = input[i+1:]
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	captures := m.regex.FindStringSubmatch(path)
	if captures == nil {
		return nil, false
	}

	params = make(map[string]string, len(m.names))

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		if eq := strings.Index(pair, "="); eq >= 0 {
			params[pair[:eq]] = pair[eq+1:]
		} else {
			// A pair without "=" binds the bare name to an empty value.
			params[pair] = ""
		}
	}

	for i, name := range m.names {
		params[name] = captures[i+1]
	}

	return params, true
}
