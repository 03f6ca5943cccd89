package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypedValueNumber(t *testing.T) {
	v, err := ParseTypedValue(SettingTypeNumber, "7")
	require.NoError(t, err)
	assert.Equal(t, SettingTypeNumber, v.Kind())
	assert.Equal(t, "7", v.Raw())
	assert.Equal(t, 7, v.Int())
	assert.Equal(t, 7.0, v.Float())

	v, err = ParseTypedValue(SettingTypeNumber, "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.Float())

	_, err = ParseTypedValue(SettingTypeNumber, "siete")
	assert.Error(t, err)
}

func TestParseTypedValueBoolean(t *testing.T) {
	v, err := ParseTypedValue(SettingTypeBoolean, "TRUE")
	require.NoError(t, err)
	assert.True(t, v.Bool())
	assert.Equal(t, "true", v.Raw())

	v, err = ParseTypedValue(SettingTypeBoolean, "false")
	require.NoError(t, err)
	assert.False(t, v.Bool())

	_, err = ParseTypedValue(SettingTypeBoolean, "1")
	assert.Error(t, err)
}

func TestParseTypedValueJSON(t *testing.T) {
	v, err := ParseTypedValue(SettingTypeJSON, `["2026-01-01","2026-12-25"]`)
	require.NoError(t, err)
	assert.JSONEq(t, `["2026-01-01","2026-12-25"]`, string(v.JSON()))

	_, err = ParseTypedValue(SettingTypeJSON, `{"broken":`)
	assert.Error(t, err)
}

func TestParseTypedValueString(t *testing.T) {
	v, err := ParseTypedValue(SettingTypeString, "anything goes")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", v.Raw())
}

func TestParseTypedValueUnknownType(t *testing.T) {
	_, err := ParseTypedValue(SettingType("decimal"), "1")
	assert.Error(t, err)
}
