package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcdash/domain/dashboard"
	"calcdash/internal/config"
	"calcdash/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, URL: ":memory:"},
		Upload: config.UploadConfig{
			MaxFileSizeMB: 1,
			TempDir:       t.TempDir(),
			TempTTL:       time.Minute,
		},
		LogLevel: "ERROR",
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInitWiresServices(t *testing.T) {
	ctx := context.Background()
	c, err := New(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, c.Init(ctx))
	defer c.Shutdown(ctx)

	require.NotNil(t, c.Dashboard)
	require.NotNil(t, c.Uploads)
	require.NotNil(t, c.TempStore)

	// migrations ran: the store is readable and empty
	data, err := c.Dashboard.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Defaults().KPIs, data.KPIs)

	c.StartCleanup(time.Hour)
	assert.NoError(t, c.Shutdown(ctx))
}

func TestOpenDatabaseUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(context.Background(), config.DatabaseConfig{Driver: "mysql", URL: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}
