package rcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessArguments(t *testing.T) {
	remappings, params, specials, rest := processArguments([]string{
		"chatter:=/talk",
		"_rate:=10",
		"_label:=\"front\"",
		"__ns:=/demo",
		"--verbose",
	})

	assert.Equal(t, NameMap{"chatter": "/talk"}, remappings)
	require.Len(t, params, 2)
	assert.Equal(t, "rate", params[0].Name)
	assert.Equal(t, IntegerValue(10), params[0].Value)
	assert.Equal(t, "label", params[1].Name)
	assert.Equal(t, StringValue("front"), params[1].Value)
	assert.Equal(t, NameMap{"__ns": "/demo"}, specials)
	assert.Equal(t, []string{"--verbose"}, rest)
}

func TestParseParameterValue(t *testing.T) {
	cases := []struct {
		raw      string
		expected ParameterValue
	}{
		{"true", BoolValue(true)},
		{"42", IntegerValue(42)},
		{"-7", IntegerValue(-7)},
		{"1.5", DoubleValue(1.5)},
		{"2e3", DoubleValue(2000)},
		{"\"quoted\"", StringValue("quoted")},
		{"plain string", StringValue("plain string")},
		{"[1, 2, 3]", IntegerArrayValue([]int64{1, 2, 3})},
		{"[1.5, 2.5]", DoubleArrayValue([]float64{1.5, 2.5})},
		{"[true, false]", BoolArrayValue([]bool{true, false})},
		{"[\"a\", \"b\"]", StringArrayValue([]string{"a", "b"})},
		{"null", NotSetValue()},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, parseParameterValue(c.raw), c.raw)
	}
}

const paramsFileContent = `/**:
  ros__parameters:
    use_sim_time: false
    rate: 10
/demo/talker:
  ros__parameters:
    rate: 20
    label: front
    motors:
      left: 1.5
      right: 1.25
other_node:
  ros__parameters:
    rate: 99
`

func TestParseParametersYAML(t *testing.T) {
	params, err := ParseParametersYAML([]byte(paramsFileContent), "/demo/talker")
	require.NoError(t, err)

	byName := make(map[string]ParameterValue)
	for _, p := range params {
		byName[p.Name] = p.Value
	}
	assert.Equal(t, BoolValue(false), byName["use_sim_time"])
	// Node-specific entries override the wildcard.
	assert.Equal(t, IntegerValue(20), byName["rate"])
	assert.Equal(t, StringValue("front"), byName["label"])
	assert.Equal(t, DoubleValue(1.5), byName["motors/left"])
	assert.Equal(t, DoubleValue(1.25), byName["motors/right"])
	assert.NotContains(t, byName, "other_node")
	assert.Len(t, params, 5)
}

func TestParseParametersYAMLBareNodeName(t *testing.T) {
	params, err := ParseParametersYAML([]byte(paramsFileContent), "/elsewhere/other_node")
	require.NoError(t, err)

	byName := make(map[string]ParameterValue)
	for _, p := range params {
		byName[p.Name] = p.Value
	}
	// A bare selector matches regardless of namespace.
	assert.Equal(t, IntegerValue(99), byName["rate"])
}

func TestLoadParametersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(paramsFileContent), 0o644))

	params, err := LoadParametersFile(path, "/demo/talker")
	require.NoError(t, err)
	assert.Len(t, params, 5)

	_, err = LoadParametersFile(filepath.Join(t.TempDir(), "missing.yaml"), "/demo/talker")
	assert.Error(t, err)
}
