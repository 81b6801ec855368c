package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRequiresName(t *testing.T) {
	_, err := CompoundForm{Name: "   "}.Normalize()
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestNormalizeEmptyFieldsAreAbsent(t *testing.T) {
	c, err := CompoundForm{Name: "DBU"}.Normalize()
	require.NoError(t, err)

	assert.Nil(t, c.Formula)
	assert.Nil(t, c.SynthesisNotes)
	assert.Nil(t, c.Properties.PKa)
	assert.Nil(t, c.Properties.EnergyEV)
	assert.Nil(t, c.Properties.Geometry)

	// is_superbase is always derived, even without a pKa.
	require.NotNil(t, c.Properties.IsSuperbase)
	assert.False(t, *c.Properties.IsSuperbase)
}

func TestNormalizeSuperbaseThreshold(t *testing.T) {
	cases := []struct {
		pka  string
		want bool
	}{
		{"24.9", false},
		{"25", false}, // boundary is strictly greater-than
		{"25.01", true},
		{"42", true},
	}
	for _, tc := range cases {
		c, err := CompoundForm{Name: "X", PKa: tc.pka}.Normalize()
		require.NoError(t, err, tc.pka)
		require.NotNil(t, c.Properties.IsSuperbase)
		assert.Equal(t, tc.want, *c.Properties.IsSuperbase, "pKa %s", tc.pka)
	}
}

func TestNormalizeRejectsBadNumbers(t *testing.T) {
	_, err := CompoundForm{Name: "X", PKa: "strong"}.Normalize()
	require.Error(t, err)

	_, err = CompoundForm{Name: "X", Energy: "a lot"}.Normalize()
	require.Error(t, err)
}

func TestPropertiesRowsSkipAbsent(t *testing.T) {
	id := uuid.New()

	full, err := SeedForm().Normalize()
	require.NoError(t, err)
	assert.Len(t, full.Properties.Rows(id), 4)

	partial, err := CompoundForm{Name: "X", PKa: "12"}.Normalize()
	require.NoError(t, err)
	// pKa plus the always-present is_superbase.
	assert.Len(t, partial.Properties.Rows(id), 2)

	bare, err := CompoundForm{Name: "X"}.Normalize()
	require.NoError(t, err)
	assert.Len(t, bare.Properties.Rows(id), 1)
}

func TestSeedForm(t *testing.T) {
	c, err := SeedForm().Normalize()
	require.NoError(t, err)

	assert.Equal(t, SeedCompoundName, c.Name)
	require.NotNil(t, c.Formula)
	assert.Equal(t, "C32H60N4P", *c.Formula)
	require.NotNil(t, c.Properties.PKa)
	assert.Equal(t, 42.0, *c.Properties.PKa)
	require.NotNil(t, c.Properties.EnergyEV)
	assert.Equal(t, 0.85, *c.Properties.EnergyEV)
	require.NotNil(t, c.Properties.IsSuperbase)
	assert.True(t, *c.Properties.IsSuperbase)
}
