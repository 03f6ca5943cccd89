package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SettingType defines supported types for configuration values.
type SettingType string

const (
	SettingTypeString  SettingType = "string"
	SettingTypeNumber  SettingType = "number"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeJSON    SettingType = "json"
)

// Valid reports whether the type tag is known.
func (t SettingType) Valid() bool {
	switch t {
	case SettingTypeString, SettingTypeNumber, SettingTypeBoolean, SettingTypeJSON:
		return true
	}
	return false
}

// Setting represents a persisted policy setting in configuraciones.
// Invariant: Value always parses under Type; ParseTypedValue enforces it on
// every write path.
type Setting struct {
	Key       string      `db:"clave" json:"clave"`
	Value     string      `db:"valor" json:"valor"`
	Type      SettingType `db:"tipo" json:"tipo"`
	Editable  bool        `db:"editable" json:"editable"`
	Category  string      `db:"categoria" json:"categoria"`
	UpdatedBy *string     `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// TypedValue is a validated tagged variant of a setting value. Construction
// goes through ParseTypedValue so an instance always holds a value that
// parses under its declared type.
type TypedValue struct {
	kind    SettingType
	raw     string
	num     float64
	boolean bool
	js      json.RawMessage
}

// ParseTypedValue validates raw against the declared type and returns the
// tagged value. Unknown types and malformed values are rejected.
func ParseTypedValue(t SettingType, raw string) (TypedValue, error) {
	switch t {
	case SettingTypeString:
		return TypedValue{kind: t, raw: raw}, nil
	case SettingTypeNumber:
		num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return TypedValue{}, fmt.Errorf("value %q is not a number", raw)
		}
		return TypedValue{kind: t, raw: raw, num: num}, nil
	case SettingTypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			return TypedValue{kind: t, raw: "true", boolean: true}, nil
		case "false":
			return TypedValue{kind: t, raw: "false"}, nil
		default:
			return TypedValue{}, fmt.Errorf("value %q is not a boolean", raw)
		}
	case SettingTypeJSON:
		if !json.Valid([]byte(raw)) {
			return TypedValue{}, fmt.Errorf("value is not valid json")
		}
		return TypedValue{kind: t, raw: raw, js: json.RawMessage(raw)}, nil
	default:
		return TypedValue{}, fmt.Errorf("unsupported setting type %q", t)
	}
}

// Kind returns the declared type tag.
func (v TypedValue) Kind() SettingType { return v.kind }

// Raw returns the stored string form.
func (v TypedValue) Raw() string { return v.raw }

// Float returns the numeric value; zero unless Kind is number.
func (v TypedValue) Float() float64 { return v.num }

// Int returns the numeric value truncated to an integer.
func (v TypedValue) Int() int { return int(v.num) }

// Bool returns the boolean value; false unless Kind is boolean.
func (v TypedValue) Bool() bool { return v.boolean }

// JSON returns the raw JSON payload; nil unless Kind is json.
func (v TypedValue) JSON() json.RawMessage { return v.js }
