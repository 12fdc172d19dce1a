package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sennabot/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestGuildRoundTrip(t *testing.T) {
	st := newTestStore(t)

	doc := st.Guild("g1")
	assert.Empty(t, doc.Users)

	doc.Users["u1"] = models.NewUserAccount("u1", "senna", 50)
	doc.Users["u1"].Pockets = 123
	require.NoError(t, st.SaveGuild("g1", doc))

	loaded := st.Guild("g1")
	require.Contains(t, loaded.Users, "u1")
	assert.Equal(t, int64(123), loaded.Users["u1"].Pockets)
	assert.Equal(t, int64(50), loaded.Users["u1"].Savings)
	assert.Equal(t, "senna", loaded.Users["u1"].Username)
}

func TestGuildReturnsDefensiveCopy(t *testing.T) {
	st := newTestStore(t)

	doc := st.Guild("g1")
	doc.Users["u1"] = models.NewUserAccount("u1", "senna", 50)
	require.NoError(t, st.SaveGuild("g1", doc))

	// mutating a returned copy must not leak into the cache
	first := st.Guild("g1")
	first.Users["u1"].Pockets = 999

	second := st.Guild("g1")
	assert.Equal(t, int64(0), second.Users["u1"].Pockets)
}

func TestSaveGuildKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	doc := st.Guild("g1")
	doc.Users["u1"] = models.NewUserAccount("u1", "senna", 50)
	require.NoError(t, st.SaveGuild("g1", doc))

	doc.Users["u1"].Pockets = 77
	require.NoError(t, st.SaveGuild("g1", doc))

	_, err = os.Stat(filepath.Join(dir, "guilds", "g1.json.backup"))
	assert.NoError(t, err)
}

func TestCorruptFileFallsBackToBackup(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	doc := st.Guild("g1")
	doc.Users["u1"] = models.NewUserAccount("u1", "senna", 50)
	require.NoError(t, st.SaveGuild("g1", doc))
	require.NoError(t, st.SaveGuild("g1", doc))

	// trash the live file; the backup still carries the account
	path := filepath.Join(dir, "guilds", "g1.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	fresh, err := New(dir)
	require.NoError(t, err)
	loaded := fresh.Guild("g1")
	assert.Contains(t, loaded.Users, "u1")
}

func TestCorruptFileWithoutBackupDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "guilds", "g1.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	loaded := st.Guild("g1")
	assert.Empty(t, loaded.Users)
}

func TestGuildCacheExpires(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	current := time.Unix(1_000_000, 0)
	st.now = func() time.Time { return current }

	doc := st.Guild("g1")
	doc.Users["u1"] = models.NewUserAccount("u1", "senna", 50)
	require.NoError(t, st.SaveGuild("g1", doc))

	// rewrite the file behind the store's back
	other, err := New(dir)
	require.NoError(t, err)
	doc2 := other.Guild("g1")
	doc2.Users["u1"].Pockets = 42
	require.NoError(t, other.SaveGuild("g1", doc2))

	// inside the TTL the stale cache is served
	assert.Equal(t, int64(0), st.Guild("g1").Users["u1"].Pockets)

	// past the TTL the file is re-read
	current = current.Add(cacheTTL + time.Second)
	assert.Equal(t, int64(42), st.Guild("g1").Users["u1"].Pockets)
}

func TestGuildIDs(t *testing.T) {
	st := newTestStore(t)

	assert.Empty(t, st.GuildIDs())

	require.NoError(t, st.SaveGuild("g1", models.NewGuildDocument()))
	require.NoError(t, st.SaveGuild("g2", models.NewGuildDocument()))

	ids := st.GuildIDs()
	assert.ElementsMatch(t, []string{"g1", "g2"}, ids)
}

func TestSettingsDefaultsAndPersistence(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	settings := st.Settings()
	assert.Equal(t, int64(50), settings.StartingBalance)
	assert.Equal(t, 2, settings.CriticalSuccessChance)

	settings.StartingBalance = 75
	require.NoError(t, st.SaveSettings(settings))

	fresh, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(75), fresh.Settings().StartingBalance)
}

func TestGuildPermissionsPersistence(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	assert.Nil(t, st.GuildPermissions("g1"))

	gp := models.NewGuildPermissions("Test Server", true)
	require.NoError(t, st.SaveGuildPermissions("g1", gp))

	fresh, err := New(dir)
	require.NoError(t, err)
	loaded := fresh.GuildPermissions("g1")
	require.NotNil(t, loaded)
	assert.Equal(t, "Test Server", loaded.ServerName)
	assert.True(t, loaded.Categories[models.PermissionGeneral])
}
