package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, allowedTypes string) (*Storage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	return NewStorage(dir, "/images", allowedTypes, logger.NewLogger()), dir
}

func filesIn(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStorage_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresFileAndReturnsUniqueIDs", func(t *testing.T) {
		s, dir := newTestStorage(t, "image/jpeg,image/png")

		first, err := s.Save(ctx, []byte("first image"), "image/jpeg", "car.jpg")
		require.NoError(t, err)
		second, err := s.Save(ctx, []byte("second image"), "image/jpeg", "car.jpg")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.FileExists(t, filepath.Join(dir, first))
		assert.FileExists(t, filepath.Join(dir, second))

		content, err := os.ReadFile(filepath.Join(dir, first))
		require.NoError(t, err)
		assert.Equal(t, []byte("first image"), content)
	})

	t.Run("KeepsExtensionFromOriginalName", func(t *testing.T) {
		s, _ := newTestStorage(t, "image/png")

		id, err := s.Save(ctx, []byte("png bytes"), "image/png", "photo.png")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(id, ".png"))
	})

	t.Run("DefaultsToJpgWithoutExtension", func(t *testing.T) {
		s, _ := newTestStorage(t, "image/jpeg")

		id, err := s.Save(ctx, []byte("raw"), "image/jpeg", "noextension")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(id, ".jpg"))
	})

	t.Run("RejectsEmptyContent", func(t *testing.T) {
		s, dir := newTestStorage(t, "image/jpeg")

		_, err := s.Save(ctx, nil, "image/jpeg", "car.jpg")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, filesIn(t, dir))
	})

	t.Run("RejectsDisallowedContentType", func(t *testing.T) {
		s, dir := newTestStorage(t, "image/jpeg,image/png")

		_, err := s.Save(ctx, []byte("gif bytes"), "image/gif", "anim.gif")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, filesIn(t, dir))
	})

	t.Run("TrimsDeclaredContentType", func(t *testing.T) {
		s, _ := newTestStorage(t, " image/jpeg , image/png ")

		_, err := s.Save(ctx, []byte("bytes"), " image/png ", "car.png")
		assert.NoError(t, err)
	})
}

func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesStoredFile", func(t *testing.T) {
		s, dir := newTestStorage(t, "image/jpeg")

		id, err := s.Save(ctx, []byte("bytes"), "image/jpeg", "car.jpg")
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, id))
		assert.NoFileExists(t, filepath.Join(dir, id))
	})

	t.Run("MissingFileIsNoOp", func(t *testing.T) {
		s, _ := newTestStorage(t, "image/jpeg")

		assert.NoError(t, s.Delete(ctx, "does-not-exist.jpg"))
	})

	t.Run("BlankIdentifierIsNoOp", func(t *testing.T) {
		s, _ := newTestStorage(t, "image/jpeg")

		assert.NoError(t, s.Delete(ctx, ""))
		assert.NoError(t, s.Delete(ctx, "   "))
	})
}

func TestStorage_URL(t *testing.T) {
	s, _ := newTestStorage(t, "image/jpeg")

	assert.Equal(t, "", s.URL(""))

	ctx := context.Background()
	id, err := s.Save(ctx, []byte("bytes"), "image/jpeg", "car.jpg")
	require.NoError(t, err)

	url := s.URL(id)
	assert.True(t, strings.HasPrefix(url, "/images/"))
	assert.Contains(t, url, id)
}
