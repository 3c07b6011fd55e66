package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spendlens/spendlens/internal/tags"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestFileSystemRepository_LoadsYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "groceries.yaml", `
name: groceries
conditions:
  - description.lower:
      contains: [super, market]
`)
	write(t, dir, "food.json", `{"name": "food", "conditions": {"amount": {"less": -0.5}}}`)
	write(t, dir, "notes.txt", "ignored")
	write(t, dir, "empty.yml", "# nothing yet\n")

	repo, err := NewFileSystemRepository(dir)
	require.NoError(t, err)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "food", list[0].Name)
	require.Equal(t, "groceries", list[1].Name)
	require.Len(t, list[1].Fingerprint, 64)
}

func TestFileSystemRepository_DuplicateNameFails(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", "name: dup\nconditions: {amount: {less: 0}}\n")
	write(t, dir, "b.yaml", "name: dup\nconditions: {amount: {greater: 0}}\n")

	_, err := NewFileSystemRepository(dir)
	require.ErrorContains(t, err, "duplicate name")
}

func TestFileSystemRepository_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "bad.yaml", "name: [unclosed\n")

	_, err := NewFileSystemRepository(dir)
	require.ErrorContains(t, err, "parsing tag file")
}

func TestFileSystemRepository_MissingDirIsEmpty(t *testing.T) {
	repo, err := NewFileSystemRepository(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestFileSystemRepository_SaveAndDeleteWriteThrough(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewFileSystemRepository(dir)
	require.NoError(t, err)

	def, err := tags.NewDefinition("rent", map[string]any{"description.lower": map[string]any{"contains": "rent"}}, timeNow())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, def))

	reloaded, err := NewFileSystemRepository(dir)
	require.NoError(t, err)
	got, err := reloaded.Get(ctx, "rent")
	require.NoError(t, err)
	require.Equal(t, def.Fingerprint, got.Fingerprint)

	require.NoError(t, repo.Delete(ctx, "rent"))
	_, err = os.Stat(filepath.Join(dir, "rent.yaml"))
	require.True(t, os.IsNotExist(err))
	_, err = repo.Get(ctx, "rent")
	require.ErrorIs(t, err, tags.ErrNotFound)

	bad, err := tags.NewDefinition("../escape", map[string]any{}, timeNow())
	require.NoError(t, err)
	require.Error(t, repo.Save(ctx, bad))
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	def, err := tags.NewDefinition("x", map[string]any{}, timeNow())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, def))

	got, err := repo.Get(ctx, "x")
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := repo.Get(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "x", again.Name)
}
