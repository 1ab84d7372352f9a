package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	var fs FileStorage = NewMemoryStorage()

	_, err := fs.GeneratePresignedDownloadURL(ctx, "missing.json", 0)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, fs.PutObject(ctx, "exports/a.json", "application/json", []byte(`{}`)))
	url, err := fs.GeneratePresignedDownloadURL(ctx, "exports/a.json", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://exports/a.json?expires=60", url)

	obj, ok := fs.(*MemoryStorage).Get("exports/a.json")
	require.True(t, ok)
	assert.Equal(t, "application/json", obj.ContentType)

	require.NoError(t, fs.DeleteObject(ctx, "exports/a.json"))
	assert.ErrorIs(t, fs.DeleteObject(ctx, "exports/a.json"), ErrObjectNotFound)
}
