package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeDirForFile(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "logs", "unitrie.log")
		require.NoError(t, MakeDirForFile(filePath, "logger"))

		f, err := os.Create(filePath)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	})
	t.Run("file in the way", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(filePath, []byte{1}, 0o644))
		require.Error(t, MakeDirForFile(filepath.Join(filePath, "sub", "unitrie.log"), "logger"))
	})
}
