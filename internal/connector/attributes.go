package connector

import (
	"fmt"
	"strconv"
)

// GuardedString wraps a secret value so it never leaks through logging or
// accidental serialization. The value is only recoverable through Reveal.
type GuardedString struct {
	value string
}

// NewGuardedString wraps a secret value.
func NewGuardedString(value string) GuardedString {
	return GuardedString{value: value}
}

// Reveal returns the wrapped secret.
func (g GuardedString) Reveal() string {
	return g.value
}

// Empty reports whether no secret is set.
func (g GuardedString) Empty() bool {
	return g.value == ""
}

func (g GuardedString) String() string {
	return "********"
}

func (g GuardedString) GoString() string {
	return "********"
}

func (g GuardedString) MarshalJSON() ([]byte, error) {
	return []byte(`"********"`), nil
}

// AttributeSet is a generic typed attribute bag keyed by attribute name.
// Multivalued attributes hold more than one value; scalar accessors reject
// them.
type AttributeSet map[string][]any

// NewAttributeSet builds an empty attribute set.
func NewAttributeSet() AttributeSet {
	return make(AttributeSet)
}

// Set replaces the values of an attribute. Setting no values removes the
// attribute entirely, keeping absence distinguishable from an empty value.
func (s AttributeSet) Set(name string, values ...any) AttributeSet {
	if len(values) == 0 {
		delete(s, name)
		return s
	}
	s[name] = values
	return s
}

// Has reports whether the attribute is present.
func (s AttributeSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the attribute names present in the set.
func (s AttributeSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

func (s AttributeSet) single(name string) (any, bool, error) {
	values, ok := s[name]
	if !ok || len(values) == 0 {
		return nil, false, nil
	}
	if len(values) > 1 {
		return nil, false, fmt.Errorf("attribute %s has %d values, expected one", name, len(values))
	}
	if values[0] == nil {
		return nil, false, nil
	}
	return values[0], true, nil
}

// String returns a scalar string value, or the empty string when absent.
func (s AttributeSet) String(name string) (string, error) {
	v, ok, err := s.single(name)
	if err != nil || !ok {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("attribute %s holds %T, expected string", name, v)
	}
	return str, nil
}

// Bool returns a scalar boolean value, or nil when absent.
func (s AttributeSet) Bool(name string) (*bool, error) {
	v, ok, err := s.single(name)
	if err != nil || !ok {
		return nil, err
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("attribute %s holds %T, expected bool", name, v)
	}
	return &b, nil
}

// Int returns a scalar integer value, or zero when absent. String values that
// parse as integers are accepted, since provisioning engines commonly send
// numbers as text.
func (s AttributeSet) Int(name string) (int, error) {
	v, ok, err := s.single(name)
	if err != nil || !ok {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("attribute %s value %q is not an integer", name, n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("attribute %s holds %T, expected integer", name, v)
	}
}

// Guarded returns a guarded-string value, or an empty GuardedString when
// absent. Plain strings are promoted for caller convenience.
func (s AttributeSet) Guarded(name string) (GuardedString, error) {
	v, ok, err := s.single(name)
	if err != nil || !ok {
		return GuardedString{}, err
	}
	switch g := v.(type) {
	case GuardedString:
		return g, nil
	case string:
		return NewGuardedString(g), nil
	default:
		return GuardedString{}, fmt.Errorf("attribute %s holds %T, expected guarded string", name, v)
	}
}

// Strings returns all values of a multivalued string attribute, or nil when
// absent.
func (s AttributeSet) Strings(name string) ([]string, error) {
	values, ok := s[name]
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("attribute %s holds %T, expected string values", name, v)
		}
		out = append(out, str)
	}
	return out, nil
}

// setString adds a string attribute unless the value is empty.
func (s AttributeSet) setString(name, value string) {
	if value != "" {
		s.Set(name, value)
	}
}

// setStrings adds a multivalued string attribute unless the slice is nil.
func (s AttributeSet) setStrings(name string, values []string) {
	if values == nil {
		return
	}
	anyValues := make([]any, len(values))
	for i, v := range values {
		anyValues[i] = v
	}
	s[name] = anyValues
}

// setBool adds a boolean attribute unless the pointer is nil.
func (s AttributeSet) setBool(name string, value *bool) {
	if value != nil {
		s.Set(name, *value)
	}
}
