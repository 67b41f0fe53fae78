package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name      string
		handlerID int
		params    map[string]string
		expected  string
	}{
		{
			name:      "no params",
			handlerID: 7,
			params:    nil,
			expected:  "h7",
		},
		{
			name:      "empty params",
			handlerID: 0,
			params:    map[string]string{},
			expected:  "h0",
		},
		{
			name:      "single param",
			handlerID: 3,
			params:    map[string]string{"id": "42"},
			expected:  "h3:id=42",
		},
		{
			name:      "params sorted by name",
			handlerID: 3,
			params:    map[string]string{"field": "Email", "id": "42", "active": "true"},
			expected:  "h3:active=true:field=Email:id=42",
		},
		{
			name:      "empty value kept",
			handlerID: 1,
			params:    map[string]string{"flag": ""},
			expected:  "h1:flag=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildKey(tt.handlerID, tt.params))
		})
	}
}

func TestBuildKeyDeterministic(t *testing.T) {
	params := map[string]string{"c": "3", "a": "1", "b": "2", "d": "4", "e": "5"}

	first := BuildKey(9, params)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, BuildKey(9, params))
	}
}

func TestBuildKeyDistinguishesHandlers(t *testing.T) {
	params := map[string]string{"id": "1"}
	assert.NotEqual(t, BuildKey(1, params), BuildKey(2, params))
}
