package offer

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// List is an optional document array. A value that is not an array reads as
// empty and elements that do not decode are skipped.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(List[T], 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *List[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		*l = nil
		return nil
	}
	out := make(List[T], 0, len(node.Content))
	for _, item := range node.Content {
		var v T
		if err := item.Decode(&v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// decodeObject fills v from a JSON object; any other value leaves v empty.
func decodeObject(data []byte, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	return json.Unmarshal(data, v)
}

// decodeObjectYAML fills v from a YAML mapping; any other node leaves v empty.
func decodeObjectYAML(node *yaml.Node, v any) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node.Decode(v)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	return decodeObject(data, (*plain)(d))
}

func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	type plain Document
	return decodeObjectYAML(node, (*plain)(d))
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	type plain Meta
	return decodeObject(data, (*plain)(m))
}

func (m *Meta) UnmarshalYAML(node *yaml.Node) error {
	type plain Meta
	return decodeObjectYAML(node, (*plain)(m))
}

func (l *Links) UnmarshalJSON(data []byte) error {
	type plain Links
	return decodeObject(data, (*plain)(l))
}

func (l *Links) UnmarshalYAML(node *yaml.Node) error {
	type plain Links
	return decodeObjectYAML(node, (*plain)(l))
}

func (o *Offer) UnmarshalJSON(data []byte) error {
	type plain Offer
	return decodeObject(data, (*plain)(o))
}

func (o *Offer) UnmarshalYAML(node *yaml.Node) error {
	type plain Offer
	return decodeObjectYAML(node, (*plain)(o))
}

func (g *Guarantee) UnmarshalJSON(data []byte) error {
	type plain Guarantee
	return decodeObject(data, (*plain)(g))
}

func (g *Guarantee) UnmarshalYAML(node *yaml.Node) error {
	type plain Guarantee
	return decodeObjectYAML(node, (*plain)(g))
}

func (t *TimerConfig) UnmarshalJSON(data []byte) error {
	type plain TimerConfig
	return decodeObject(data, (*plain)(t))
}

func (t *TimerConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain TimerConfig
	return decodeObjectYAML(node, (*plain)(t))
}

func (f *FAQItem) UnmarshalJSON(data []byte) error {
	type plain FAQItem
	return decodeObject(data, (*plain)(f))
}

func (f *FAQItem) UnmarshalYAML(node *yaml.Node) error {
	type plain FAQItem
	return decodeObjectYAML(node, (*plain)(f))
}

func (b *Bonus) UnmarshalJSON(data []byte) error {
	type plain Bonus
	return decodeObject(data, (*plain)(b))
}

func (b *Bonus) UnmarshalYAML(node *yaml.Node) error {
	type plain Bonus
	return decodeObjectYAML(node, (*plain)(b))
}

func (e *ExtraButton) UnmarshalJSON(data []byte) error {
	type plain ExtraButton
	return decodeObject(data, (*plain)(e))
}

func (e *ExtraButton) UnmarshalYAML(node *yaml.Node) error {
	type plain ExtraButton
	return decodeObjectYAML(node, (*plain)(e))
}

func (w *WhatsApp) UnmarshalJSON(data []byte) error {
	type plain WhatsApp
	return decodeObject(data, (*plain)(w))
}

func (w *WhatsApp) UnmarshalYAML(node *yaml.Node) error {
	type plain WhatsApp
	return decodeObjectYAML(node, (*plain)(w))
}
