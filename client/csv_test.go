package client

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tntchem/devhub/store"
)

func TestWriteCSVColumnOrderAndAbsentValues(t *testing.T) {
	full, err := store.SeedForm().Normalize()
	require.NoError(t, err)
	bare, err := store.CompoundForm{Name: "Mystery Base"}.Normalize()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*store.Compound{full, bare}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"name", "formula", "pKa", "energy_eV", "geometry", "is_superbase", "synthesis_notes"}, records[0])
	assert.Equal(t, []string{"P4-t-Bu", "C32H60N4P", "42", "0.85", "bulky phosphazene, superbasic", "true", "Handle under inert atmosphere."}, records[1])
	// Absent values are empty cells; derived is_superbase is still present.
	assert.Equal(t, []string{"Mystery Base", "", "", "", "", "false", ""}, records[2])
}

func TestWriteCSVEscapesQuotesAndNewlines(t *testing.T) {
	c, err := store.CompoundForm{
		Name:  `2,6-di-tert-butylpyridine "hindered"`,
		Notes: "line one\nline two",
	}.Normalize()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*store.Compound{c}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `2,6-di-tert-butylpyridine "hindered"`, records[1][0])
	assert.Equal(t, "line one\nline two", records[1][6])
}

func TestExportCSVWritesFile(t *testing.T) {
	c, err := store.SeedForm().Normalize()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), CSVFileName)
	require.NoError(t, ExportCSV(path, []*store.Compound{c}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "P4-t-Bu")
}
