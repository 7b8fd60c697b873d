package boxfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/boxfs/internal/boxpath"
	"github.com/desertwitch/boxfs/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()

	f, err := Create(filepath.Join(t.TempDir(), "test.box"))
	require.NoError(t, err)

	t.Cleanup(func() {
		f.Close()
	})

	return f
}

func p(s string) boxpath.Path {
	return boxpath.MustParse(s)
}

func pattern(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*31 + i/251)
	}

	return data
}

func mustCreateDirectory(t *testing.T, f *FS, s string) {
	t.Helper()

	created, err := f.CreateDirectory(p(s))
	require.NoError(t, err)
	require.True(t, created, s)
}

func mustCreateFile(t *testing.T, f *FS, s string, content []byte) {
	t.Helper()

	created, err := f.CreateFile(p(s), 0)
	require.NoError(t, err)
	require.True(t, created, s)

	written, err := f.WriteFile(p(s), content)
	require.NoError(t, err)
	require.True(t, written, s)
}

func listing(t *testing.T, f *FS, s string) []string {
	t.Helper()

	paths, ok, err := f.ListDirectory(p(s))
	require.NoError(t, err)
	require.True(t, ok, s)

	out := make([]string, 0, len(paths))
	for _, path := range paths {
		out = append(out, path.String())
	}

	return out
}

func TestCreate_Success(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)

	exists, err := f.Exists(boxpath.Root())
	require.NoError(t, err)
	assert.True(t, exists)

	isDir, err := f.IsDirectory(boxpath.Root())
	require.NoError(t, err)
	assert.True(t, isDir)

	assert.Empty(t, listing(t, f, "/"))
	assert.Positive(t, f.Size())
}

func TestCreate_Fail_Exists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.box")
	require.NoError(t, os.WriteFile(path, []byte("taken"), 0o644))

	_, err := Create(path)
	require.ErrorIs(t, err, os.ErrExist)
}

func TestOpen_Fail_Missing(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing.box"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.box")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	mustCreateDirectory(t, f, "/dir")
	assert.Equal(t, []string{"/dir"}, listing(t, f, "/"))
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.box")

	f, err := Create(path)
	require.NoError(t, err)

	mustCreateDirectory(t, f, "/docs")
	mustCreateFile(t, f, "/docs/readme.txt", []byte("persisted"))
	require.NoError(t, f.Close())

	f, err = Open(path)
	require.NoError(t, err)
	defer f.Close()

	content, ok, err := f.ReadFile(p("/docs/readme.txt"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", string(content))
}

func TestClose_UseAfterClose(t *testing.T) {
	t.Parallel()

	f, err := Create(filepath.Join(t.TempDir(), "test.box"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.Exists(p("/anything"))
	require.ErrorIs(t, err, storage.ErrClosed)

	require.ErrorIs(t, f.Close(), storage.ErrClosed)
}

func TestExists(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/dir")
	mustCreateFile(t, f, "/dir/file", []byte("x"))

	tests := []struct {
		name   string
		path   string
		exists bool
		isDir  bool
		isFile bool
	}{
		{"Directory", "/dir", true, true, false},
		{"File", "/dir/file", true, false, true},
		{"Missing", "/missing", false, false, false},
		{"MissingParent", "/missing/file", false, false, false},
		{"FileAsParent", "/dir/file/child", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := f.Exists(p(tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.exists, exists)

			isDir, err := f.IsDirectory(p(tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.isDir, isDir)

			isFile, err := f.IsFile(p(tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.isFile, isFile)
		})
	}
}

func TestEndToEnd_Readme(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	readme := p("/README.md")

	created, err := f.CreateFile(readme, 0)
	require.NoError(t, err)
	require.True(t, created)

	written, err := f.WriteFile(readme, []byte("Hello World!"))
	require.NoError(t, err)
	require.True(t, written)

	size, ok, err := f.FileSize(readme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(12), size)

	content, ok, err := f.ReadFile(readme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hello World!", string(content))

	written, err = f.WriteFile(readme, []byte("Bye!"))
	require.NoError(t, err)
	require.True(t, written)

	size, _, err = f.FileSize(readme)
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	content, _, err = f.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "Bye!", string(content))
}
