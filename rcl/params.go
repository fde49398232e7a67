package rcl

import (
	"os"
	"sort"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Remap separates the two sides of a command-line remapping rule.
const Remap = ":="

// processArguments splits command-line arguments into name remappings
// (`from:=to`), parameter overrides (`_name:=value`), special directives
// (`__name`, `__ns`, `__params`) and everything else. Parameter override
// values are JSON-encoded scalars or arrays.
func processArguments(args []string) (NameMap, []Parameter, NameMap, []string) {
	mapping := make(NameMap)
	var params []Parameter
	specials := make(NameMap)
	rest := make([]string, 0)
	for _, arg := range args {
		components := strings.SplitN(arg, Remap, 2)
		if len(components) == 2 {
			key := components[0]
			value := components[1]
			if strings.HasPrefix(key, "__") {
				specials[key] = value
			} else if strings.HasPrefix(key, "_") {
				params = append(params, Parameter{
					Name:  key[1:],
					Value: parseParameterValue(value),
				})
			} else {
				mapping[key] = value
			}
		} else {
			rest = append(rest, arg)
		}
	}
	return mapping, params, specials, rest
}

// parseParameterValue interprets a command-line override value. Anything
// that is not valid JSON is taken as a plain string.
func parseParameterValue(raw string) ParameterValue {
	data := []byte(strings.TrimSpace(raw))
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return StringValue(raw)
	}
	switch dataType {
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return StringValue(raw)
		}
		return BoolValue(b)
	case jsonparser.Number:
		return parseNumberValue(value, raw)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return StringValue(raw)
		}
		return StringValue(s)
	case jsonparser.Array:
		return parseArrayValue(data, raw)
	case jsonparser.Null:
		return NotSetValue()
	}
	return StringValue(raw)
}

func parseNumberValue(value []byte, raw string) ParameterValue {
	if !strings.ContainsAny(string(value), ".eE") {
		if i, err := jsonparser.ParseInt(value); err == nil {
			return IntegerValue(i)
		}
	}
	f, err := jsonparser.ParseFloat(value)
	if err != nil {
		return StringValue(raw)
	}
	return DoubleValue(f)
}

func parseArrayValue(data []byte, raw string) ParameterValue {
	var items []interface{}
	var bad bool
	_, err := jsonparser.ArrayEach(data, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		switch dataType {
		case jsonparser.Boolean:
			b, err := jsonparser.ParseBoolean(item)
			if err != nil {
				bad = true
				return
			}
			items = append(items, b)
		case jsonparser.Number:
			v := parseNumberValue(item, string(item))
			items = append(items, v.Interface())
		case jsonparser.String:
			s, err := jsonparser.ParseString(item)
			if err != nil {
				bad = true
				return
			}
			items = append(items, s)
		default:
			bad = true
		}
	})
	if err != nil || bad {
		return StringValue(raw)
	}
	v, err := arrayValue(items)
	if err != nil {
		return StringValue(raw)
	}
	return v
}

// paramsFileEntry is one node selector block of a params file.
type paramsFileEntry struct {
	Parameters map[string]interface{} `yaml:"ros__parameters"`
}

// LoadParametersFile reads a YAML params file and returns the parameters
// that apply to the node with the given fully qualified name. The file
// maps node selectors to a ros__parameters block; the selector "/**"
// matches every node, a bare node name matches regardless of namespace
// and anything else must equal the fully qualified name. Nested mappings
// are flattened with "/" so the resulting names pass the structural name
// validator.
func LoadParametersFile(path string, nodeFQN string) ([]Parameter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read params file %s", path)
	}
	params, err := ParseParametersYAML(data, nodeFQN)
	if err != nil {
		return nil, errors.Wrapf(err, "params file %s", path)
	}
	return params, nil
}

// ParseParametersYAML parses params-file content for the node with the
// given fully qualified name.
func ParseParametersYAML(data []byte, nodeFQN string) ([]Parameter, error) {
	var doc map[string]paramsFileEntry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid params file")
	}

	bareName := nodeFQN[strings.LastIndex(nodeFQN, Sep)+1:]

	merged := make(map[string]interface{})
	// Wildcard entries first so node-specific entries override them.
	if entry, ok := doc["/**"]; ok {
		flattenParams("", entry.Parameters, merged)
	}
	for selector, entry := range doc {
		if selector == "/**" {
			continue
		}
		if selector == nodeFQN || selector == bareName {
			flattenParams("", entry.Parameters, merged)
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		p, err := NewParameter(name, merged[name])
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func flattenParams(prefix string, in map[string]interface{}, out map[string]interface{}) {
	for key, value := range in {
		name := key
		if prefix != "" {
			name = prefix + Sep + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			flattenParams(name, nested, out)
			continue
		}
		out[name] = value
	}
}
