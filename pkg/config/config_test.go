package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/lotscraper/engine/dealer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", c.MongoURL)
	assert.Equal(t, "test_database", c.DBName)
	assert.Equal(t, 30, c.MaxVehiclesPerDealer)
	assert.Equal(t, 15*time.Second, c.ListingTimeout)
	assert.Equal(t, 10*time.Second, c.DetailTimeout)
	assert.Equal(t, 8*time.Second, c.ImageTimeout)
	assert.Equal(t, time.Second, c.DetailDelay)
	assert.Equal(t, 50_000, c.MinImageBytes)
	assert.Equal(t, "lotscraper.vehicles.saved", c.NATSSubject)
	assert.Empty(t, c.NATSURL)
	assert.Equal(t, slog.LevelInfo, c.SlogLevel())
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "MONGO_URL=mongodb://mongo:27017\nDB_NAME=lots\nDETAIL_DELAY=250ms\nMAX_VEHICLES_PER_DEALER=5\nLOG_LEVEL=debug\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://mongo:27017", c.MongoURL)
	assert.Equal(t, "lots", c.DBName)
	assert.Equal(t, 250*time.Millisecond, c.DetailDelay)
	assert.Equal(t, 5, c.MaxVehiclesPerDealer)
	assert.Equal(t, slog.LevelDebug, c.SlogLevel())
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := writeFile(t, ".env", "DB_NAME=from_file\n")
	t.Setenv("DB_NAME", "from_env")
	t.Setenv("MIN_IMAGE_BYTES", "1234")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", c.DBName)
	assert.Equal(t, 1234, c.MinImageBytes)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("MIN_IMAGE_BYTES", "0")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_IMAGE_BYTES")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoadDealersDefault(t *testing.T) {
	ds, err := LoadDealers("")
	require.NoError(t, err)
	assert.Equal(t, dealer.Defaults(), ds)
}

func TestLoadDealersFile(t *testing.T) {
	path := writeFile(t, "dealers.yaml", `
dealers:
  - name: Motor Max
    url: https://www.motormaxga.com
    inventory_path: /vehicles
    city: Atlanta
    state: GA
  - name: Test Lot
    url: https://lot.example
    inventory_path: /inventory
    city: Nashville
    state: TN
`)
	ds, err := LoadDealers(path)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "https://www.motormaxga.com/vehicles", ds[0].InventoryURL())
	assert.Equal(t, "Nashville", ds[1].City)
}

func TestLoadDealersInvalid(t *testing.T) {
	path := writeFile(t, "dealers.yaml", "dealers:\n  - name: Broken\n    url: not-a-url\n")
	_, err := LoadDealers(path)
	assert.ErrorIs(t, err, dealer.ErrInvalidDescriptor)

	path = writeFile(t, "empty.yaml", "dealers: []\n")
	_, err = LoadDealers(path)
	assert.Error(t, err)
}
