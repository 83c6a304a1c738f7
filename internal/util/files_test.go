package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "1680.pdf", "1680.pdf"},
		{"forward slash directories", "WB73B6961  30-1/1680.pdf", "1680.pdf"},
		{"windows path", `C:\scans\weighbridge.jpg`, "weighbridge.jpg"},
		{"control characters", "inv\x00oice.png", "invoice.png"},
		{"reserved characters", `bill:no?.jpg`, "bill-no-.jpg"},
		{"trailing separator", "folder/", "upload"},
		{"dot dot", "../..", "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFileName(tt.in))
		})
	}
}

func TestExtAndStem(t *testing.T) {
	assert.Equal(t, ".pdf", Ext("Challan.PDF"))
	assert.Equal(t, ".tar.gz", Ext("batch.tar.gz"))
	assert.Equal(t, "", Ext("README"))
	assert.Equal(t, "batch", Stem("batch.tar.gz"))
	assert.Equal(t, "page.1", Stem("page.1.jpg"))
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(base, "uploads", "nested")
		require.NoError(t, EnsureDir(dir))
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects a regular file", func(t *testing.T) {
		file := filepath.Join(base, "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		assert.Error(t, EnsureDir(file))
	})

	t.Run("rejects empty path", func(t *testing.T) {
		assert.Error(t, EnsureDir(""))
	})
}

func TestRemoveQuietly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o644))

	RemoveQuietly(path)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Missing files and empty paths are ignored.
	RemoveQuietly(path)
	RemoveQuietly("")
}
