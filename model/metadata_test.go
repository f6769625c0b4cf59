package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata(t *testing.T) {
	t.Run("Value marshals source metadata to JSON", func(t *testing.T) {
		m := Metadata{MetadataSource: "inbox/yaalini.txt"}

		value, err := m.Value()

		require.NoError(t, err)
		assert.Equal(t, []byte(`{"source":"inbox/yaalini.txt"}`), value, "Expected value to be JSON bytes")
	})

	t.Run("Nil and empty metadata marshal to an empty object", func(t *testing.T) {
		var m Metadata
		value, err := m.Value()
		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), value)

		value, err = Metadata{}.Value()
		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), value)
	})

	t.Run("Scan reads JSON bytes", func(t *testing.T) {
		var m Metadata

		err := m.Scan([]byte(`{"source":"cli","lines":3}`))

		require.NoError(t, err)
		assert.Equal(t, "cli", m.String(MetadataSource))
		assert.Equal(t, float64(3), m["lines"], "Expected JSON numbers to decode as float64")
	})

	t.Run("Scan reads JSON strings", func(t *testing.T) {
		var m Metadata

		err := m.Scan(`{"subject":"Budget"}`)

		require.NoError(t, err)
		assert.Equal(t, "Budget", m.String(MetadataSubject))
	})

	t.Run("Scan nil yields empty metadata", func(t *testing.T) {
		var m Metadata

		err := m.Scan(nil)

		require.NoError(t, err)
		assert.NotNil(t, m)
		assert.Len(t, m, 0)
	})

	t.Run("Scan copies Metadata values", func(t *testing.T) {
		var m Metadata

		err := m.Scan(Metadata{MetadataSource: "api"})

		require.NoError(t, err)
		assert.Equal(t, "api", m.String(MetadataSource))
	})

	t.Run("Scan rejects unsupported types", func(t *testing.T) {
		var m Metadata

		err := m.Scan(12345)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan metadata: unsupported type int")
	})

	t.Run("Scan rejects invalid JSON and keeps the old value", func(t *testing.T) {
		m := Metadata{MetadataSource: "old"}

		err := m.Scan([]byte(`{invalid json}`))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode metadata")
		assert.Equal(t, "old", m.String(MetadataSource))
	})
}

func TestMetadataString(t *testing.T) {
	m := Metadata{MetadataSubject: "Budget", "lines": 3}

	assert.Equal(t, "Budget", m.String(MetadataSubject), "Expected string value")
	assert.Equal(t, "", m.String("lines"), "Expected empty string for non string values")
	assert.Equal(t, "", m.String("missing"), "Expected empty string for missing keys")

	var empty Metadata
	assert.Equal(t, "", empty.String(MetadataSource), "Expected nil metadata to be safe")
}
