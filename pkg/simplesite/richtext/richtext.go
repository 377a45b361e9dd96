// Package richtext classifies stored text fields as serialized rich-text
// documents, plain strings, or empty values.
//
// The admin editor saves rich text as a JSON document. Older rows and fields
// edited through plain inputs hold ordinary strings. Callers use Resolve to
// decide how a field should be painted without knowing which editor wrote it.
package richtext

import (
	"encoding/json"
)

// Kind identifies how a text field should be rendered
type Kind string

const (
	KindRichText Kind = "richtext"
	KindPlain    Kind = "plain"
	KindEmpty    Kind = "empty"
)

// Text is the resolved form of a stored text field
type Text struct {
	Kind Kind
	// Data holds the raw JSON document when Kind is KindRichText
	Data json.RawMessage
	// Plain holds the original string when Kind is KindPlain
	Plain string
}

// Resolve classifies s. Any string that parses as JSON is treated as a
// rich-text document; everything else non-empty is plain text.
func Resolve(s string) Text {
	if s == "" {
		return Text{Kind: KindEmpty}
	}
	if json.Valid([]byte(s)) {
		return Text{Kind: KindRichText, Data: json.RawMessage(s)}
	}
	return Text{Kind: KindPlain, Plain: s}
}

// ResolvePtr is Resolve for optional fields; nil resolves to empty.
func ResolvePtr(s *string) Text {
	if s == nil {
		return Text{Kind: KindEmpty}
	}
	return Resolve(*s)
}

// Plain wraps s as plain text without attempting a JSON parse. Empty input
// still resolves to empty.
func Plain(s string) Text {
	if s == "" {
		return Text{Kind: KindEmpty}
	}
	return Text{Kind: KindPlain, Plain: s}
}

// IsEmpty reports whether the text has nothing to render
func (t Text) IsEmpty() bool {
	return t.Kind == KindEmpty || t.Kind == ""
}

// String returns the stored representation of the text
func (t Text) String() string {
	switch t.Kind {
	case KindRichText:
		return string(t.Data)
	case KindPlain:
		return t.Plain
	default:
		return ""
	}
}

type wireText struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the text as {"kind": ..., "data": ...}
func (t Text) MarshalJSON() ([]byte, error) {
	w := wireText{Kind: t.Kind}
	switch t.Kind {
	case KindRichText:
		w.Data = t.Data
	case KindPlain:
		b, err := json.Marshal(t.Plain)
		if err != nil {
			return nil, err
		}
		w.Data = b
	default:
		w.Kind = KindEmpty
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON
func (t *Text) UnmarshalJSON(b []byte) error {
	var w wireText
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindRichText:
		*t = Text{Kind: KindRichText, Data: w.Data}
	case KindPlain:
		var s string
		if err := json.Unmarshal(w.Data, &s); err != nil {
			return err
		}
		*t = Text{Kind: KindPlain, Plain: s}
	default:
		*t = Text{Kind: KindEmpty}
	}
	return nil
}
