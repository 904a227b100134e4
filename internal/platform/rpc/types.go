package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// Number accepts a JSON number, a numeric string, an empty string or null.
// Empty values decode to zero.
type Number struct {
	decimal.Decimal
}

// NewNumber wraps a float for tests and internal callers.
func NewNumber(f float64) Number {
	return Number{Decimal: decimal.NewFromFloat(f)}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	}
	if raw == "" {
		n.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("rpc: %q is not a number", raw)
	}
	n.Decimal = d
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// Float64 returns the nearest float64, the way desk clients compare totals.
func (n Number) Float64() float64 {
	f, _ := n.Decimal.Float64()
	return f
}

func (Number) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "string", Pattern: `^-?[0-9,]*\.?[0-9]*$`},
			{Type: "null"},
		},
	}
}

// Flag is truthy for exactly true, the number 1 (1, 1.0) and the string "1";
// anything else, "true" included, is false.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(raw, []byte("true")):
		*f = true
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = s == "1"
	default:
		var n float64
		*f = Flag(json.Unmarshal(raw, &n) == nil && n == 1)
	}
	return nil
}

func (Flag) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "boolean"},
			{Type: "integer", Enum: []any{0, 1}},
			{Type: "string", Enum: []any{"0", "1"}},
		},
	}
}

// Embedded holds a value that may arrive either as JSON or as a string
// containing JSON.
type Embedded[T any] struct {
	Value T
	Set   bool
}

func (e *Embedded[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		trimmed = bytes.TrimSpace([]byte(s))
	}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, &e.Value); err != nil {
		return err
	}
	e.Set = true
	return nil
}

func (e Embedded[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value)
}

func (Embedded[T]) JSONSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true}
	inner := r.ReflectFromType(reflect.TypeOf((*T)(nil)).Elem())
	inner.Version = ""
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			inner,
			{Type: "string", Description: "the same value, JSON encoded"},
		},
	}
}

var dateLayouts = []string{time.DateOnly, time.DateTime, time.RFC3339, "02-01-2006"}

// Date is a calendar date sent as YYYY-MM-DD (a time part is ignored).
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("rpc: date must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

func (Date) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Format: "date"}
}

// ParseDate parses the date formats desk clients send.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("rpc: %q is not a date (want YYYY-MM-DD)", s)
}
