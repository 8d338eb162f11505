package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `  {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"single line", "```{\"a\":1}```", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject("Here you go: {\"title\":\"Soup\",\"steps\":[\"boil\"]} enjoy!")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Soup","steps":["boil"]}`, got)

	_, err = ExtractJSONObject("sorry, I cannot help with that")
	assert.Error(t, err)

	_, err = ExtractJSONObject("} backwards {")
	assert.Error(t, err)
}

func TestQuoteJSONKeys(t *testing.T) {
	got := QuoteJSONKeys(`{title: "Soup", ingredients: [{name: "egg", quantity: "2"}]}`)
	assert.Equal(t, `{"title": "Soup", "ingredients": [{"name": "egg", "quantity": "2"}]}`, got)

	quoted := `{"title": "Soup"}`
	assert.Equal(t, quoted, QuoteJSONKeys(quoted))
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}

	require.NoError(t, ParseJSON(`{"a":1}  `, &v))
	assert.Equal(t, 1, v.A)

	assert.Error(t, ParseJSON(`{"a":1} {"a":2}`, &v))
	assert.Error(t, ParseJSON(`{"a":`, &v))
	assert.NoError(t, ParseJSON(`{"a":1,"b":2}`, &v))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "hé...", Truncate("héllo", 2))
}
