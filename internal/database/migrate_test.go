//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/cloo-solutions/linkshelf/internal/database"
	"github.com/cloo-solutions/linkshelf/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_UpDown(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	version, err := database.Migrate(pc.ConnectionString(), "../../migrations", database.MigrateUp, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	version, err = database.Migrate(pc.ConnectionString(), "../../migrations", database.MigrateUp, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	pool, err := database.NewPool(ctx, database.Config{URL: pc.ConnectionString(), MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()

	var exists bool
	err = pool.QueryRow(ctx, `SELECT to_regclass('public.items') IS NOT NULL`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)

	version, err = database.Migrate(pc.ConnectionString(), "../../migrations", database.MigrateDown, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := database.NewPool(context.Background(), database.Config{URL: "::not a url"})
	assert.Error(t, err)
}
