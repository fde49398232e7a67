package rcl

import (
	"testing"
)

func TestTopicNameValidation(t *testing.T) {
	// Positive testing
	positives := [...]string{
		"foo",
		"foo/bar",
		"/foo",
		"/foo/bar",
		"~",
		"~/foo",
		"foo_0/bar1_",
		"_hidden",
		"/foo/_bar",
	}
	for _, p := range positives {
		if err := ValidateTopicName(p); err != nil {
			t.Error(p, err)
		}
	}

	// Negative testing
	negatives := [...]string{
		"",
		"/",
		"foo//bar",
		"//foo",
		"foo/",
		"/foo/",
		"0foo",
		"foo/0bar",
		"foo bar",
		"foo~bar",
		"~foo",
		"foo-bar",
	}
	for _, n := range negatives {
		if err := ValidateTopicName(n); err == nil {
			t.Error(n)
		}
	}
}

func TestTopicNameValidationIndex(t *testing.T) {
	cases := []struct {
		name  string
		index int
	}{
		{"foo bar", 3},
		{"foo//bar", 4},
		{"foo/", 3},
		{"0foo", 0},
		{"foo/0bar", 4},
		{"foo~bar", 3},
		{"~foo", 1},
	}
	for _, c := range cases {
		err := ValidateTopicName(c.name)
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		invalid, ok := err.(*InvalidNameError)
		if !ok {
			t.Errorf("%s: expected *InvalidNameError but %T", c.name, err)
			continue
		}
		if invalid.Index != c.index {
			t.Errorf("%s: expected index %d but %d", c.name, c.index, invalid.Index)
		}
	}
}

func TestFullTopicNameValidation(t *testing.T) {
	if err := ValidateFullTopicName("/foo/bar"); err != nil {
		t.Error(err)
	}
	if err := ValidateFullTopicName("foo"); err == nil {
		t.Error("relative name accepted")
	}
	if err := ValidateFullTopicName("~/foo"); err == nil {
		t.Error("private name accepted")
	}
}

func TestNodeNameValidation(t *testing.T) {
	positives := [...]string{
		"talker",
		"talker_1",
		"_hidden",
	}
	for _, p := range positives {
		if err := ValidateNodeName(p); err != nil {
			t.Error(p, err)
		}
	}

	negatives := [...]string{
		"",
		"1talker",
		"talker/chatter",
		"talker node",
		"~talker",
	}
	for _, n := range negatives {
		if err := ValidateNodeName(n); err == nil {
			t.Error(n)
		}
	}
}

func TestNamespaceValidation(t *testing.T) {
	positives := [...]string{
		"/",
		"/foo",
		"/foo/bar",
	}
	for _, p := range positives {
		if err := ValidateNamespace(p); err != nil {
			t.Error(p, err)
		}
	}

	negatives := [...]string{
		"",
		"foo",
		"/foo/",
		"//foo",
	}
	for _, n := range negatives {
		if err := ValidateNamespace(n); err == nil {
			t.Error(n)
		}
	}
}

func TestExpandTopicName(t *testing.T) {
	cases := []struct {
		name      string
		nodeName  string
		namespace string
		expected  string
	}{
		{"chatter", "talker", "/", "/chatter"},
		{"chatter", "talker", "/demo", "/demo/chatter"},
		{"/chatter", "talker", "/demo", "/chatter"},
		{"~", "talker", "/demo", "/demo/talker"},
		{"~/status", "talker", "/demo", "/demo/talker/status"},
		{"~/status", "talker", "/", "/talker/status"},
	}
	for _, c := range cases {
		result := expandTopicName(c.name, c.nodeName, c.namespace)
		if result != c.expected {
			t.Errorf("expandTopicName(%q, %q, %q): expected %q but %q",
				c.name, c.nodeName, c.namespace, c.expected, result)
		}
	}
}

func TestQualifiedName(t *testing.T) {
	if qualifiedName("/", "talker") != "/talker" {
		t.Fail()
	}
	if qualifiedName("/demo", "talker") != "/demo/talker" {
		t.Fail()
	}
}
