package file

import (
	"os"
	"path/filepath"
	"testing"

	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*OptionRepository, string) {
	t.Helper()
	root := t.TempDir()
	return NewOptionRepository(root, logger.NewNopLogger()), root
}

func TestLoadMissingFilesYieldsEmptyLists(t *testing.T) {
	repo, _ := newRepo(t)

	emotions, tags := repo.Load("nobody")

	assert.NotNil(t, emotions)
	assert.NotNil(t, tags)
	assert.Empty(t, emotions)
	assert.Empty(t, tags)
}

func TestLoadKeepsOrderDuplicatesAndBlankLines(t *testing.T) {
	repo, root := newRepo(t)
	dir := filepath.Join(root, "SergeyAY")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emotions.txt"), []byte("joy\r\nfear\n\njoy\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.txt"), []byte("work"), 0o644))

	emotions, tags := repo.Load("SergeyAY")

	assert.Equal(t, []string{"joy", "fear", "", "joy"}, emotions)
	assert.Equal(t, []string{"work"}, tags)
}

func TestAppendCreatesDirectoryAndFile(t *testing.T) {
	repo, root := newRepo(t)

	written, err := repo.Append("newbie", store.CategoryTags, " work , , home,  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "home"}, written)

	data, err := os.ReadFile(filepath.Join(root, "newbie", "tags.txt"))
	require.NoError(t, err)
	assert.Equal(t, "work\nhome", string(data))
}

func TestAppendToNonEmptyFileAddsOneSeparator(t *testing.T) {
	repo, root := newRepo(t)

	_, err := repo.Append("u", store.CategoryEmotions, "joy")
	require.NoError(t, err)
	_, err = repo.Append("u", store.CategoryEmotions, "fear, anger")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "u", "emotions.txt"))
	require.NoError(t, err)
	assert.Equal(t, "joy\nfear\nanger", string(data))

	emotions, _ := repo.Load("u")
	assert.Equal(t, []string{"joy", "fear", "anger"}, emotions)
}

func TestAppendToExistingEmptyFileHasNoLeadingBlankLine(t *testing.T) {
	repo, root := newRepo(t)
	dir := filepath.Join(root, "u")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.txt"), nil, 0o644))

	_, err := repo.Append("u", store.CategoryTags, "a,b")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "tags.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(data))
}

func TestAppendNothingStillCreatesDirectory(t *testing.T) {
	repo, root := newRepo(t)

	written, err := repo.Append("u", store.CategoryTags, " , ,")
	require.NoError(t, err)
	assert.Empty(t, written)

	info, err := os.Stat(filepath.Join(root, "u"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(root, "u", "tags.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestPath(t *testing.T) {
	repo, root := newRepo(t)
	assert.Equal(t, filepath.Join(root, "u", "emotions.txt"), repo.Path("u", store.CategoryEmotions))
	assert.Equal(t, filepath.Join(root, "u", "tags.txt"), repo.Path("u", store.CategoryTags))
}
