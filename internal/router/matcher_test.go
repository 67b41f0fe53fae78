package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateMatcherLiteral(t *testing.T) {
	m := NewTemplateMatcher("/System/version")

	params, ok := m.Match("/System/version")
	require.True(t, ok)
	assert.Empty(t, params)

	_, ok = m.Match("/System/versions")
	assert.False(t, ok)
	_, ok = m.Match("/System/version/extra")
	assert.False(t, ok)
	_, ok = m.Match("/prefix/System/version")
	assert.False(t, ok)
}

func TestTemplateMatcherPlaceholders(t *testing.T) {
	m := NewTemplateMatcher("/System/${name}/${value}")

	assert.Equal(t, []string{"name", "value"}, m.Names())

	params, ok := m.Match("/System/a/b")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "a", "value": "b"}, params)

	// A placeholder never spans a slash.
	_, ok = m.Match("/System/a/b/c")
	assert.False(t, ok)

	// A placeholder must capture at least one character.
	_, ok = m.Match("/System//b")
	assert.False(t, ok)
}

func TestTemplateMatcherQueryParams(t *testing.T) {
	m := NewTemplateMatcher("/System/test")

	params, ok := m.Match("/System/test?type=Integer&verbose=yes")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"type": "Integer", "verbose": "yes"}, params)
}

func TestTemplateMatcherBareQueryParam(t *testing.T) {
	m := NewTemplateMatcher("/System/test")

	params, ok := m.Match("/System/test?flag")
	require.True(t, ok)

	value, present := params["flag"]
	assert.True(t, present)
	assert.Empty(t, value)
}

func TestTemplateMatcherPlaceholderWinsCollision(t *testing.T) {
	m := NewTemplateMatcher("/Record/${type}")

	params, ok := m.Match("/Record/User?type=Integer")
	require.True(t, ok)
	assert.Equal(t, "User", params["type"])
}

func TestTemplateMatcherSplitsAtLastQuestionMark(t *testing.T) {
	m := NewTemplateMatcher("/odd/a?b")

	params, ok := m.Match("/odd/a?b?type=String")
	require.True(t, ok)
	assert.Equal(t, "String", params["type"])
}

func TestTemplateMatcherAllOrNothing(t *testing.T) {
	m := NewTemplateMatcher("/System/version")

	// Query parameters from a non-matching path are discarded.
	params, ok := m.Match("/Other/path?type=Integer")
	assert.False(t, ok)
	assert.Nil(t, params)
}

func TestTemplateMatcherURLDecodesPath(t *testing.T) {
	m := NewTemplateMatcher("/System/${name}")

	params, ok := m.Match("/System/hello%20world")
	require.True(t, ok)
	assert.Equal(t, "hello world", params["name"])
}

func TestTemplateMatcherLiteralRegexChars(t *testing.T) {
	m := NewTemplateMatcher("/System/v1.0")

	_, ok := m.Match("/System/v1x0")
	assert.False(t, ok)

	_, ok = m.Match("/System/v1.0")
	assert.True(t, ok)
}

func TestTemplateMatcherRepeatedName(t *testing.T) {
	m := NewTemplateMatcher("/pair/${x}/${x}")

	params, ok := m.Match("/pair/a/b")
	require.True(t, ok)
	// The later binding wins for a repeated placeholder name.
	assert.Equal(t, "b", params["x"])
}
