package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const managerConfig = `
provider:
  name: openai
  api_key: sk-test
budget:
  daily_units: 1000
`

func TestManager_Get(t *testing.T) {
	path := writeConfig(t, managerConfig)

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	defer m.Close()

	cfg := m.Get()
	require.NotNil(t, cfg)
	assert.Equal(t, 1000, cfg.Budget.DailyUnits)
}

func TestManager_RejectsInvalidFile(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: redis\n")
	_, err := NewManager(path, nil)
	require.Error(t, err)
}

func TestManager_HotReload(t *testing.T) {
	path := writeConfig(t, managerConfig)

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	defer m.Close()

	changed := make(chan *Config, 1)
	m.OnChange(func(c *Config) { changed <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Watch(ctx))

	updated := `
provider:
  name: openai
  api_key: sk-test
budget:
  daily_units: 2000
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 2000, cfg.Budget.DailyUnits)
		assert.Equal(t, 2000, m.Get().Budget.DailyUnits)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload not observed")
	}
}

func TestManager_SkipsNoopReload(t *testing.T) {
	path := writeConfig(t, managerConfig)

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	defer m.Close()

	var calls int
	m.OnChange(func(*Config) { calls++ })

	// A rewrite with identical content must not poke subscribers.
	m.reload()
	assert.Equal(t, 0, calls)

	require.NoError(t, os.WriteFile(path, []byte(managerConfig+"\nmetrics:\n  enabled: false\n"), 0o644))
	m.reload()
	assert.Equal(t, 1, calls)
	assert.False(t, m.Get().Metrics.Enabled)
}

func TestChangedSections(t *testing.T) {
	old := DefaultConfig()

	assert.Empty(t, changedSections(old, DefaultConfig()))

	updated := DefaultConfig()
	updated.Budget.DailyUnits = 5000
	updated.Logging.Level = "debug"
	assert.Equal(t, []string{"budget", "logging"}, changedSections(old, updated))
}

func TestManager_KeepsCurrentOnBadReload(t *testing.T) {
	path := writeConfig(t, managerConfig)

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: redis\n"), 0o644))

	// Give the debounce window time to fire; the old config must survive.
	time.Sleep(time.Second)
	assert.Equal(t, 1000, m.Get().Budget.DailyUnits)
}
