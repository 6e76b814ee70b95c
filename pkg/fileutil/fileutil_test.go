package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/pkg/fileutil"
)

func TestEnsureDir_CreatesNestedDirectories(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "c")

	err := fileutil.EnsureDir(root, "a", "b", "c")
	require.Nil(t, err)

	info, statErr := os.Stat(target)
	require.NoError(t, statErr)
	require.True(t, info.IsDir())
}

func TestEnsureDir_IdempotentOnExistingDir(t *testing.T) {
	root := t.TempDir()

	require.Nil(t, fileutil.EnsureDir(root, "data"))
	require.Nil(t, fileutil.EnsureDir(root, "data"))
}
