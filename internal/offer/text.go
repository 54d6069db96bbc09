package offer

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Text is an optional document string. Numbers and booleans given where text
// is expected print as their literal; objects and arrays read as absent.
type Text struct {
	value string
	set   bool
}

// NewText builds a present Text.
func NewText(s string) *Text {
	return &Text{value: s, set: true}
}

// Present reports whether the value was given as printable text.
func (t *Text) Present() bool {
	return t != nil && t.set
}

// String returns the text, empty when absent.
func (t *Text) String() string {
	if !t.Present() {
		return ""
	}
	return t.value
}

func (t *Text) fromScalar(s Scalar) {
	switch s.kind {
	case kindNull, kindOther:
		*t = Text{}
	default:
		*t = Text{value: s.text, set: true}
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s Scalar
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	t.fromScalar(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	var s Scalar
	if err := s.UnmarshalYAML(node); err != nil {
		return err
	}
	t.fromScalar(s)
	return nil
}
