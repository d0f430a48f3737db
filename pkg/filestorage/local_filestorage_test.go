package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalFileStorage(base)
	require.NoError(t, err)
	storage.(*LocalFileStorage).now = func() time.Time { return time.Date(2024, 8, 21, 10, 0, 0, 0, time.UTC) }

	url, err := storage.Save(strings.NewReader("jpeg-bytes"), "Photo.JPG", "orders")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/orders/2024/08/21/2024-08-21-"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	onDisk := filepath.Join(base, strings.TrimPrefix(url, PublicPrefix))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, storage.Delete(url))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Delete(url), "повторное удаление не ошибка")
	assert.NoError(t, storage.Delete("https://example.com/photo.jpg"))
	assert.Error(t, storage.Delete("/uploads/../../etc/passwd"))
}
