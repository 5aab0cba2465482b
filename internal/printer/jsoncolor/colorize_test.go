package jsoncolor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorize_ValidJSON(t *testing.T) {
	input := []byte(`{"key":"user:1","type":"string","count":42,"active":true,"ttl":null}`)
	result := Colorize(input)

	// Should contain pretty-printed structure
	assert.Contains(t, result, "user:1")
	assert.Contains(t, result, "42")
	assert.Contains(t, result, "true")
	assert.Contains(t, result, "null")
	// Should be multi-line (indented)
	assert.Contains(t, result, "\n", "expected multi-line output")
}

func TestColorize_InvalidJSON(t *testing.T) {
	input := []byte(`not json at all`)
	result := Colorize(input)
	assert.Equal(t, "not json at all", result)
}

func TestColorize_KeysAndValuesColoredDifferently(t *testing.T) {
	result := Colorize([]byte(`{"name":"value"}`))
	assert.Contains(t, result, colorKey+`"name"`)
	assert.Contains(t, result, colorString+`"value"`)
}

func TestColorize_LiteralInsideStringStaysString(t *testing.T) {
	// "true" as string content must not get the boolean color
	result := Colorize([]byte(`{"flag":"true"}`))
	assert.Contains(t, result, colorString+`"true"`)
	assert.NotContains(t, result, colorBool)
}

func TestColorize_Numbers(t *testing.T) {
	input := []byte(`{"int":42,"float":3.14,"neg":-1,"exp":1e10}`)
	result := Colorize(input)
	assert.Contains(t, result, "42")
	assert.Contains(t, result, "3.14")
	assert.Contains(t, result, "-1")
	assert.Contains(t, result, "1e10")
}

func TestColorize_EscapedStrings(t *testing.T) {
	input := []byte(`{"msg":"hello \"world\""}`)
	result := Colorize(input)
	assert.Contains(t, result, `hello \"world\"`)
}

func TestEnabled_NonFileWriter(t *testing.T) {
	assert.False(t, Enabled(&bytes.Buffer{}))
}

func TestFindStringEnd(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		pos      int
		expected int
	}{
		{"simple", `"hello"`, 0, 6},
		{"escaped quote", `"he\"llo"`, 0, 8},
		{"escaped backslash", `"he\\"`, 0, 5},
		{"empty string", `""`, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findStringEnd(tt.input, tt.pos)
			assert.Equal(t, tt.expected, got)
		})
	}
}
