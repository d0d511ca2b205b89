package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/go-faster/errors"
)

var sentAt = time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC)

func TestTargetBaseDeterministic(t *testing.T) {
	a := NewArchiver("telegram_media", zap.NewNop())

	first := a.TargetBase("@news", 42, sentAt)
	second := a.TargetBase("@news", 42, sentAt)

	assert.Equal(t, first, second)
	assert.Equal(t, filepath.Join("telegram_media", "@news", "20240315_093005_42"), first)
}

func TestTargetBaseDistinctMessages(t *testing.T) {
	a := NewArchiver("telegram_media", zap.NewNop())

	assert.NotEqual(t,
		a.TargetBase("@news", 1, sentAt),
		a.TargetBase("@news", 2, sentAt))
	assert.NotEqual(t,
		a.TargetBase("@news", 1, sentAt),
		a.TargetBase("@other", 1, sentAt))
}

func TestArchiveCreatesSourceDirectory(t *testing.T) {
	base := t.TempDir()
	a := NewArchiver(base, zap.NewNop())

	path := a.Archive(context.Background(), "@news", 1, sentAt,
		func(_ context.Context, basePath string) (string, error) {
			return basePath + ".jpg", nil
		})

	assert.NotEmpty(t, path)
	info, err := os.Stat(filepath.Join(base, "@news"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestArchiveIdempotentDirCreation(t *testing.T) {
	base := t.TempDir()
	a := NewArchiver(base, zap.NewNop())
	transfer := func(_ context.Context, basePath string) (string, error) {
		return basePath + ".png", nil
	}

	first := a.Archive(context.Background(), "@news", 1, sentAt, transfer)
	second := a.Archive(context.Background(), "@news", 1, sentAt, transfer)

	assert.Equal(t, first, second)
}

func TestArchiveTransferFailureReturnsNoMedia(t *testing.T) {
	a := NewArchiver(t.TempDir(), zap.NewNop())

	path := a.Archive(context.Background(), "@news", 1, sentAt,
		func(_ context.Context, _ string) (string, error) {
			return "", errors.New("file reference expired")
		})

	assert.Empty(t, path)
}

func TestArchiveReturnsWorkingDirRelativePath(t *testing.T) {
	base := t.TempDir()
	a := NewArchiver(base, zap.NewNop())

	path := a.Archive(context.Background(), "@news", 7, sentAt,
		func(_ context.Context, basePath string) (string, error) {
			return basePath + ".jpg", nil
		})

	require.NotEmpty(t, path)
	assert.False(t, filepath.IsAbs(path))

	wd, err := os.Getwd()
	require.NoError(t, err)
	resolved := filepath.Join(wd, path)
	assert.Equal(t, filepath.Join(base, "@news", "20240315_093005_7.jpg"), filepath.Clean(resolved))
}
