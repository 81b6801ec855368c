package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrationsOrderAndFiltering(t *testing.T) {
	pending, err := pendingMigrations(map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql"}, pending)

	pending, err = pendingMigrations(map[string]bool{"0001_init": true})
	require.NoError(t, err)
	assert.Empty(t, pending)
}
