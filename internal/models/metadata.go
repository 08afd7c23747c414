package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Value is one entry in an account's metadata map. It is a tagged union over
// the JSON scalar types so that the server can attach arbitrary extra fields
// (credit card limits, portfolio snapshots, ...) without the engine losing
// them on a round trip.
type Value struct {
	Kind   ValueKind
	String string
	Number float64
	Bool   bool
}

type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

var ErrUnsupportedMetadataValue = errors.New("metadata values must be strings, numbers, booleans or null")

func StringValue(s string) Value  { return Value{Kind: KindString, String: s} }
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.String)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Arrays and objects are rejected, not flattened.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case nil:
		*v = Value{Kind: KindNull}
	case string:
		*v = StringValue(value)
	case float64:
		*v = NumberValue(value)
	case bool:
		*v = BoolValue(value)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedMetadataValue, raw)
	}

	return nil
}

// Metadata is the opaque metadata map on an Account. It is stored as a single
// JSON TEXT column since the engine never queries individual keys.
type Metadata map[string]Value

// Scan reads the value from the database.
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", value)
	}

	if len(data) == 0 {
		*m = nil
		return nil
	}

	return json.Unmarshal(data, m)
}

// Value returns the value for the SQL driver to write to the database.
func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Metadata) GormDataType() string {
	return "text"
}
