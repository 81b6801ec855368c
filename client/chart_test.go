package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tntchem/devhub/store"
)

func TestChartPointsExcludeIncompleteCompounds(t *testing.T) {
	full, err := store.SeedForm().Normalize()
	require.NoError(t, err)
	pkaOnly, err := store.CompoundForm{Name: "DBU", PKa: "24.3"}.Normalize()
	require.NoError(t, err)
	energyOnly, err := store.CompoundForm{Name: "X", Energy: "1.1"}.Normalize()
	require.NoError(t, err)

	points := ChartPoints([]*store.Compound{full, pkaOnly, energyOnly})
	require.Len(t, points, 1)
	assert.Equal(t, Point{X: 42, Y: 0.85, Name: "P4-t-Bu"}, points[0])
}

func TestTooltipLabel(t *testing.T) {
	p := Point{X: 42, Y: 0.85, Name: "P4-t-Bu"}
	assert.Equal(t, "P4-t-Bu: pKa=42, Energy=0.85 eV", p.TooltipLabel())
}
