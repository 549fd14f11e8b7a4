package command

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/scribe/internal/config"
	"github.com/stolasapp/scribe/internal/storage"
)

func TestUserList(t *testing.T) { //nolint:paralleltest // the root command replaces the default logger
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SecretKey = "test"
	cfg.LogLevel = "error"
	cfg.DatabaseURL = filepath.Join(dir, "db.sqlite")
	configPath := filepath.Join(dir, "scribe.yaml")
	require.NoError(t, config.Save(configPath, cfg))

	store, err := storage.NewDB(t.Context(), cfg.DatabaseURL, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	for _, name := range []string{"carol", "alice", "bob"} {
		_, err = store.CreateUser(t.Context(), name, []byte("hash"))
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	out := &bytes.Buffer{}
	cmd := RootCommand()
	cmd.SetOut(out)
	cmd.SetArgs([]string{
		"--config", configPath,
		"--env-file", filepath.Join(dir, ".env"),
		"user", "list",
	})
	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Equal(t, "alice\nbob\ncarol\n", out.String())
}

func TestLoadOrInitConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "scribe.yaml")
	dotenvPath := filepath.Join(dir, ".env")

	cfg := config.Default()
	cfg.SecretKey = "from-file"
	require.NoError(t, config.Save(configPath, cfg))
	require.NoError(t, os.WriteFile(dotenvPath, []byte("SCRIBE_BCRYPT_COST=5\n"), 0o600))

	loaded, err := loadOrInitConfig(configPath, dotenvPath)
	require.NoError(t, err)
	assert.Equal(t, "from-file", loaded.SecretKey)
	assert.Equal(t, 5, loaded.BcryptCost)
}
