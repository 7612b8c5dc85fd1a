package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_ExtractsPartitions(t *testing.T) {
	doc, err := ParseDocument(map[string]any{
		"_id":    "runtime",
		"server": map[string]any{"SECRET": "x"},
		"public": map[string]any{"FEATURE_X": "on"},
	})
	require.NoError(t, err)

	assert.Equal(t, "runtime", doc.ID)
	assert.Equal(t, map[string]any{"SECRET": "x"}, doc.Server)
	assert.Equal(t, map[string]any{"FEATURE_X": "on"}, doc.Public)
}

func TestParseDocument_MissingPartitionsDefaultToEmpty(t *testing.T) {
	doc, err := ParseDocument(map[string]any{"_id": "runtime"})
	require.NoError(t, err)

	assert.NotNil(t, doc.Server)
	assert.NotNil(t, doc.Public)
	assert.Empty(t, doc.Server)
	assert.Empty(t, doc.Public)
}

func TestParseDocument_NilDocument(t *testing.T) {
	doc, err := ParseDocument(nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Server)
	assert.Empty(t, doc.Public)
}

func TestParseDocument_WrongShapeIsDropped(t *testing.T) {
	doc, err := ParseDocument(map[string]any{
		"server": "not-a-map",
		"public": map[string]any{"API": "v1"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	assert.Empty(t, doc.Server)
	assert.Equal(t, map[string]any{"API": "v1"}, doc.Public)
}

func TestParseDocument_NormalizesYAMLMaps(t *testing.T) {
	doc, err := ParseDocument(map[string]any{
		"public": map[any]any{
			"LIMITS": map[any]any{1: "one"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"1": "one"}, doc.Public["LIMITS"])
}

func TestParseDocument_CopiesInput(t *testing.T) {
	public := map[string]any{"API": "v1"}
	doc, err := ParseDocument(map[string]any{"public": public})
	require.NoError(t, err)

	public["API"] = "mutated"
	assert.Equal(t, "v1", doc.Public["API"])
}

func TestDocumentRaw_DefaultsID(t *testing.T) {
	raw := Document{Public: map[string]any{"A": 1}}.Raw()

	assert.Equal(t, RuntimeDocumentID, raw["_id"])
	assert.Equal(t, map[string]any{"A": 1}, raw["public"])
	assert.Equal(t, map[string]any{}, raw["server"])
}
