package rcl

import (
	"github.com/pkg/errors"
)

// ParameterType tags the variant held by a ParameterValue.
type ParameterType int

const (
	ParameterNotSet ParameterType = iota
	ParameterBool
	ParameterInteger
	ParameterDouble
	ParameterString
	ParameterByteArray
	ParameterBoolArray
	ParameterIntegerArray
	ParameterDoubleArray
	ParameterStringArray
)

func (t ParameterType) String() string {
	switch t {
	case ParameterNotSet:
		return "NOT_SET"
	case ParameterBool:
		return "BOOL"
	case ParameterInteger:
		return "INTEGER"
	case ParameterDouble:
		return "DOUBLE"
	case ParameterString:
		return "STRING"
	case ParameterByteArray:
		return "BYTE_ARRAY"
	case ParameterBoolArray:
		return "BOOL_ARRAY"
	case ParameterIntegerArray:
		return "INTEGER_ARRAY"
	case ParameterDoubleArray:
		return "DOUBLE_ARRAY"
	case ParameterStringArray:
		return "STRING_ARRAY"
	}
	return "UNKNOWN"
}

// ParameterValue is a tagged union. Only the field matching Type is
// meaningful. The NOT_SET case is deliberate API surface: setting a
// parameter to a NOT_SET value undeclares it.
type ParameterValue struct {
	Type              ParameterType
	BoolValue         bool
	IntegerValue      int64
	DoubleValue       float64
	StringValue       string
	ByteArrayValue    []byte
	BoolArrayValue    []bool
	IntegerArrayValue []int64
	DoubleArrayValue  []float64
	StringArrayValue  []string
}

// NotSetValue returns the unset variant.
func NotSetValue() ParameterValue {
	return ParameterValue{Type: ParameterNotSet}
}

func BoolValue(v bool) ParameterValue {
	return ParameterValue{Type: ParameterBool, BoolValue: v}
}

func IntegerValue(v int64) ParameterValue {
	return ParameterValue{Type: ParameterInteger, IntegerValue: v}
}

func DoubleValue(v float64) ParameterValue {
	return ParameterValue{Type: ParameterDouble, DoubleValue: v}
}

func StringValue(v string) ParameterValue {
	return ParameterValue{Type: ParameterString, StringValue: v}
}

func ByteArrayValue(v []byte) ParameterValue {
	return ParameterValue{Type: ParameterByteArray, ByteArrayValue: v}
}

func BoolArrayValue(v []bool) ParameterValue {
	return ParameterValue{Type: ParameterBoolArray, BoolArrayValue: v}
}

func IntegerArrayValue(v []int64) ParameterValue {
	return ParameterValue{Type: ParameterIntegerArray, IntegerArrayValue: v}
}

func DoubleArrayValue(v []float64) ParameterValue {
	return ParameterValue{Type: ParameterDoubleArray, DoubleArrayValue: v}
}

func StringArrayValue(v []string) ParameterValue {
	return ParameterValue{Type: ParameterStringArray, StringArrayValue: v}
}

// NewParameterValue infers the variant from a Go value. Supported inputs
// are nil, bool, integer and float types, string, []byte and homogeneous
// slices of the scalar types (including []interface{} as produced by
// YAML and JSON decoders).
func NewParameterValue(value interface{}) (ParameterValue, error) {
	switch v := value.(type) {
	case nil:
		return NotSetValue(), nil
	case ParameterValue:
		return v, nil
	case bool:
		return BoolValue(v), nil
	case int:
		return IntegerValue(int64(v)), nil
	case int32:
		return IntegerValue(int64(v)), nil
	case int64:
		return IntegerValue(v), nil
	case uint:
		return IntegerValue(int64(v)), nil
	case float32:
		return DoubleValue(float64(v)), nil
	case float64:
		return DoubleValue(v), nil
	case string:
		return StringValue(v), nil
	case []byte:
		return ByteArrayValue(v), nil
	case []bool:
		return BoolArrayValue(v), nil
	case []int64:
		return IntegerArrayValue(v), nil
	case []float64:
		return DoubleArrayValue(v), nil
	case []string:
		return StringArrayValue(v), nil
	case []interface{}:
		return arrayValue(v)
	}
	return NotSetValue(), errors.Errorf("cannot build a parameter value from %T", value)
}

func arrayValue(items []interface{}) (ParameterValue, error) {
	if len(items) == 0 {
		return StringArrayValue(nil), nil
	}
	switch items[0].(type) {
	case bool:
		out := make([]bool, len(items))
		for i, item := range items {
			v, ok := item.(bool)
			if !ok {
				return NotSetValue(), errors.New("array parameter has mixed element types")
			}
			out[i] = v
		}
		return BoolArrayValue(out), nil
	case string:
		out := make([]string, len(items))
		for i, item := range items {
			v, ok := item.(string)
			if !ok {
				return NotSetValue(), errors.New("array parameter has mixed element types")
			}
			out[i] = v
		}
		return StringArrayValue(out), nil
	case int, int64:
		out := make([]int64, len(items))
		for i, item := range items {
			switch v := item.(type) {
			case int:
				out[i] = int64(v)
			case int64:
				out[i] = v
			default:
				return NotSetValue(), errors.New("array parameter has mixed element types")
			}
		}
		return IntegerArrayValue(out), nil
	case float64:
		out := make([]float64, len(items))
		for i, item := range items {
			switch v := item.(type) {
			case float64:
				out[i] = v
			case int:
				out[i] = float64(v)
			case int64:
				out[i] = float64(v)
			default:
				return NotSetValue(), errors.New("array parameter has mixed element types")
			}
		}
		return DoubleArrayValue(out), nil
	}
	return NotSetValue(), errors.Errorf("unsupported array element type %T", items[0])
}

// Interface returns the held value as a plain Go value, or nil for the
// unset variant.
func (v ParameterValue) Interface() interface{} {
	switch v.Type {
	case ParameterBool:
		return v.BoolValue
	case ParameterInteger:
		return v.IntegerValue
	case ParameterDouble:
		return v.DoubleValue
	case ParameterString:
		return v.StringValue
	case ParameterByteArray:
		return v.ByteArrayValue
	case ParameterBoolArray:
		return v.BoolArrayValue
	case ParameterIntegerArray:
		return v.IntegerArrayValue
	case ParameterDoubleArray:
		return v.DoubleArrayValue
	case ParameterStringArray:
		return v.StringArrayValue
	}
	return nil
}

// ParameterDescriptor carries the attributes fixed at declaration time.
// ReadOnly blocks undeclaration only; a read-only parameter can still be
// assigned new values through the set operations.
type ParameterDescriptor struct {
	Name                  string
	Type                  ParameterType
	Description           string
	AdditionalConstraints string
	ReadOnly              bool
}

// Parameter is a named, typed value plus its descriptor.
type Parameter struct {
	Name       string
	Value      ParameterValue
	Descriptor ParameterDescriptor
}

// NewParameter builds a Parameter with an inferred value type and a
// default descriptor.
func NewParameter(name string, value interface{}) (Parameter, error) {
	v, err := NewParameterValue(value)
	if err != nil {
		return Parameter{}, errors.Wrapf(err, "parameter %s", name)
	}
	return Parameter{
		Name:       name,
		Value:      v,
		Descriptor: ParameterDescriptor{Name: name, Type: v.Type},
	}, nil
}

// ParameterDeclaration is one entry of a Declare call.
type ParameterDeclaration struct {
	Name       string
	Value      ParameterValue
	Descriptor ParameterDescriptor
}

// SetParametersResult is the outcome of a set operation or a validation
// callback.
type SetParametersResult struct {
	Successful bool
	Reason     string
}

// SetParametersCallback inspects a candidate batch before it is applied.
// Returning an unsuccessful result prevents the whole batch.
type SetParametersCallback func(parameters []Parameter) SetParametersResult

// ParameterEvent summarizes the effect of one successful atomic set. The
// entries carry name and value only.
type ParameterEvent struct {
	Node              string
	Stamp             Time
	NewParameters     []Parameter
	ChangedParameters []Parameter
	DeletedParameters []Parameter
}
