package offer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type scalarKind uint8

const (
	kindNull scalarKind = iota
	kindString
	kindNumber
	kindBool
	kindOther
)

// Scalar holds a loosely typed document value exactly as the page prints it.
// Numbers keep their shortest decimal form (29.90 prints as 29.9), strings are
// kept verbatim, so amounts are never reformatted.
type Scalar struct {
	text string
	kind scalarKind
}

// NumberScalar builds a numeric Scalar.
func NumberScalar(f float64) *Scalar {
	return &Scalar{text: formatNumber(f), kind: kindNumber}
}

// StringScalar builds a textual Scalar.
func StringScalar(s string) *Scalar {
	return &Scalar{text: s, kind: kindString}
}

// String returns the printable text, empty for an absent value.
func (s *Scalar) String() string {
	if s == nil {
		return ""
	}
	return s.text
}

// Present reports whether the value was given and not null.
func (s *Scalar) Present() bool {
	return s != nil && s.kind != kindNull
}

// Float converts the value the way a numeric coercion would: blank strings are
// zero, booleans are 0 or 1, anything else unparsable reports false.
func (s *Scalar) Float() (float64, bool) {
	if !s.Present() {
		return 0, false
	}
	switch s.kind {
	case kindBool:
		if s.text == "true" {
			return 1, true
		}
		return 0, true
	case kindNumber, kindString:
		trimmed := strings.TrimSpace(s.text)
		if trimmed == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Truthy applies loose truthiness: false, 0, NaN, empty text and null are
// false, everything else is true. The text "false" is true.
func (s *Scalar) Truthy() bool {
	if !s.Present() {
		return false
	}
	switch s.kind {
	case kindString:
		return s.text != ""
	case kindBool:
		return s.text == "true"
	case kindNumber:
		f, err := strconv.ParseFloat(s.text, 64)
		return err == nil && f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, string(data) == "null":
		*s = Scalar{}
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Scalar{text: text, kind: kindString}
	case string(data) == "true", string(data) == "false":
		*s = Scalar{text: string(data), kind: kindBool}
	case data[0] == '{' || data[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*s = Scalar{text: buf.String(), kind: kindOther}
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		*s = Scalar{text: formatNumber(f), kind: kindNumber}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case kindNull:
		return []byte("null"), nil
	case kindNumber, kindBool:
		return []byte(s.text), nil
	case kindOther:
		if json.Valid([]byte(s.text)) {
			return []byte(s.text), nil
		}
	}
	return json.Marshal(s.text)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		*s = Scalar{text: node.Value, kind: kindOther}
		return nil
	}
	switch node.ShortTag() {
	case "!!null":
		*s = Scalar{}
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*s = Scalar{text: strconv.FormatBool(b), kind: kindBool}
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*s = Scalar{text: formatNumber(f), kind: kindNumber}
	default:
		*s = Scalar{text: node.Value, kind: kindString}
	}
	return nil
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 0) {
		if f > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
