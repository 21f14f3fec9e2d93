package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sample struct {
	Name   string            `json:"name" yaml:"name"`
	Chunks []string          `json:"chunks" yaml:"chunks"`
	Alias  map[string]string `json:"alias" yaml:"alias"`
}

var value = sample{Name: "home/index.html", Chunks: []string{"vendor", "commonLibs"}, Alias: map[string]string{"jquery": "jQuery"}}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, value, JSON))
	assert.Contains(t, buf.String(), "\n  \"chunks\": [\n")

	var back sample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, value, back)
}

func TestEncode_JSONKeepsAngleBrackets(t *testing.T) {
	out, err := Bytes(map[string]string{"t": "<html>"}, JSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<html>")
}

func TestEncode_YAML(t *testing.T) {
	out, err := Bytes(value, YAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: home/index.html\n")

	var back sample
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, value, back)
}

func TestParseFormat(t *testing.T) {
	testCases := map[string]Format{"": JSON, "json": JSON, "YAML": YAML, "yml": YAML}
	for in, want := range testCases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("toml")
	assert.Error(t, err)
	assert.Error(t, Encode(&bytes.Buffer{}, value, Format("toml")))
}
