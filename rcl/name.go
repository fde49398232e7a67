package rcl

import (
	"strings"
)

const (
	// Sep separates name segments.
	Sep = "/"
	// GlobalNS prefixes fully qualified names.
	GlobalNS = "/"
	// PrivateNS prefixes names relative to the node itself.
	PrivateNS = "~"
)

// NameMap holds name remapping rules.
type NameMap map[string]string

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

// ValidateTopicName checks a topic name against the structural rules for
// not-yet-expanded names: it may be absolute, private or relative, every
// segment must start with a letter and contain only alphanumerics and
// underscores. On rejection the returned *InvalidNameError carries the
// offending byte index.
func ValidateTopicName(name string) error {
	if len(name) == 0 {
		return &InvalidNameError{Name: name, Reason: "name must not be empty", Index: -1}
	}
	if name == GlobalNS {
		return &InvalidNameError{Name: name, Reason: "name must contain at least one segment", Index: 0}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlnum(c) || c == '_' || c == '/' || c == '~' {
			continue
		}
		return &InvalidNameError{Name: name, Reason: "name contains an illegal character", Index: i}
	}
	if i := strings.Index(name, PrivateNS); i > 0 {
		return &InvalidNameError{Name: name, Reason: "'~' is only allowed at the beginning", Index: i}
	}
	if len(name) > 1 && name[0] == '~' && name[1] != '/' {
		return &InvalidNameError{Name: name, Reason: "'~' must be directly followed by '/'", Index: 1}
	}
	if i := strings.Index(name, "//"); i >= 0 {
		return &InvalidNameError{Name: name, Reason: "name must not contain repeated '/'", Index: i + 1}
	}
	if len(name) > 1 && name[len(name)-1] == '/' {
		return &InvalidNameError{Name: name, Reason: "name must not end with '/'", Index: len(name) - 1}
	}
	// Each segment must start with a letter or underscore.
	segStart := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '/' {
			if i > segStart {
				c := name[segStart]
				if isDigit(c) {
					return &InvalidNameError{Name: name, Reason: "segment must not start with a number", Index: segStart}
				}
			}
			segStart = i + 1
		}
	}
	return nil
}

// ValidateFullTopicName checks an already-expanded topic name, which must
// additionally be absolute and free of the private prefix.
func ValidateFullTopicName(name string) error {
	if err := ValidateTopicName(name); err != nil {
		return err
	}
	if name[0] != '/' {
		return &InvalidNameError{Name: name, Reason: "expanded name must start with '/'", Index: 0}
	}
	if strings.Contains(name, PrivateNS) {
		return &InvalidNameError{Name: name, Reason: "expanded name must not contain '~'", Index: strings.Index(name, PrivateNS)}
	}
	return nil
}

// ValidateParameterName checks a parameter name. Parameter names share the
// structural validator used for topic names.
func ValidateParameterName(name string) error {
	return ValidateTopicName(name)
}

// ValidateNodeName checks a node name: non-empty, alphanumerics and
// underscores only, must not start with a number.
func ValidateNodeName(name string) error {
	if len(name) == 0 {
		return &InvalidNameError{Name: name, Reason: "node name must not be empty", Index: -1}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isAlnum(c) && c != '_' {
			return &InvalidNameError{Name: name, Reason: "node name contains an illegal character", Index: i}
		}
	}
	if isDigit(name[0]) {
		return &InvalidNameError{Name: name, Reason: "node name must not start with a number", Index: 0}
	}
	return nil
}

// ValidateNamespace checks a node namespace: absolute, no trailing slash
// except for the root namespace itself.
func ValidateNamespace(namespace string) error {
	if len(namespace) == 0 {
		return &InvalidNameError{Name: namespace, Reason: "namespace must not be empty", Index: -1}
	}
	if namespace[0] != '/' {
		return &InvalidNameError{Name: namespace, Reason: "namespace must be absolute", Index: 0}
	}
	if namespace == GlobalNS {
		return nil
	}
	return ValidateFullTopicName(namespace)
}

// qualifiedName joins a namespace and a node name into the node's fully
// qualified name.
func qualifiedName(namespace string, name string) string {
	if namespace == GlobalNS {
		return GlobalNS + name
	}
	return namespace + Sep + name
}

// expandTopicName resolves a relative or private name against a node's
// name and namespace. Absolute names are returned unchanged.
func expandTopicName(name string, nodeName string, namespace string) string {
	if strings.HasPrefix(name, GlobalNS) {
		return name
	}
	if strings.HasPrefix(name, PrivateNS) {
		rest := strings.TrimPrefix(name, PrivateNS)
		return qualifiedName(namespace, nodeName) + rest
	}
	if namespace == GlobalNS {
		return GlobalNS + name
	}
	return namespace + Sep + name
}
