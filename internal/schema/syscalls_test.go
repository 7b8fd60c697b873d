package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestOS_FileLifecycle(t *testing.T) {
	t.Parallel()

	osHandler := &OS{}
	dir := t.TempDir()
	path := filepath.Join(dir, "file")

	f, err := osHandler.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("content")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	info, err := osHandler.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size())

	renamed := filepath.Join(dir, "renamed")
	require.NoError(t, osHandler.Rename(path, renamed))

	entries, err := osHandler.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "renamed", entries[0].Name())

	f, err = osHandler.Open(renamed)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, osHandler.Remove(renamed))

	_, err = osHandler.Stat(renamed)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestUnix_MkdirAndStatfs(t *testing.T) {
	t.Parallel()

	unixHandler := &Unix{}
	path := filepath.Join(t.TempDir(), "dir")

	require.NoError(t, unixHandler.Mkdir(path, 0o755))
	require.ErrorIs(t, unixHandler.Mkdir(path, 0o755), unix.EEXIST)

	var stat unix.Statfs_t
	require.NoError(t, unixHandler.Statfs(path, &stat))
	assert.Positive(t, stat.Bsize)
}
