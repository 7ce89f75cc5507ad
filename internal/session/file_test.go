package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maynagashev/roomrent/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := session.NewFilePersister(dir)
	assert.Equal(t, filepath.Join(dir, "userInfo.json"), p.Path())

	_, err := p.Load()
	require.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, p.Save(testSession()))
	info, err := os.Stat(p.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, testSession(), loaded)

	require.NoError(t, p.Remove())
	_, err = p.Load()
	require.ErrorIs(t, err, session.ErrNoSession)
	require.NoError(t, p.Remove(), "повторное удаление не ошибка")
}

func TestFilePersister_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "profile")
	p := session.NewFilePersister(dir)
	require.NoError(t, p.Save(testSession()))
	_, err := os.Stat(p.Path())
	require.NoError(t, err)
}

func TestFilePersister_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	p := session.NewFilePersister(dir)
	require.NoError(t, os.WriteFile(p.Path(), []byte("{not json"), 0600))

	_, err := p.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNoSession)
	assert.Contains(t, err.Error(), "ошибка декодирования файла сессии")
}

func TestFilePersister_WithStoreReload(t *testing.T) {
	dir := t.TempDir()
	first := session.NewStore(session.NewFilePersister(dir))
	require.NoError(t, first.Set(testSession()))

	// Новый процесс: новое хранилище над тем же каталогом
	second := session.NewStore(session.NewFilePersister(dir))
	got, ok := second.Get()
	require.True(t, ok)
	assert.Equal(t, testSession(), got)

	require.NoError(t, second.Clear())
	third := session.NewStore(session.NewFilePersister(dir))
	_, ok = third.Get()
	assert.False(t, ok)
}
