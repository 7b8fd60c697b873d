package boxfs

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/desertwitch/boxfs/internal/boxpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirectory_Success(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/a")
	mustCreateDirectory(t, f, "/a/b")

	assert.Equal(t, []string{"/a"}, listing(t, f, "/"))
	assert.Equal(t, []string{"/a/b"}, listing(t, f, "/a"))
	assert.Empty(t, listing(t, f, "/a/b"))
}

func TestCreateDirectory_Fail_Exists(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/a")
	mustCreateFile(t, f, "/file", nil)

	created, err := f.CreateDirectory(p("/a"))
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.CreateDirectory(p("/file"))
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, []string{"/a", "/file"}, listing(t, f, "/"))
}

func TestCreateDirectory_Fail_MissingParent(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateFile(t, f, "/file", nil)

	created, err := f.CreateDirectory(p("/missing/a"))
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.CreateDirectory(p("/file/a"))
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.CreateDirectory(boxpath.Root())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateDirectory_Deep(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)

	current := boxpath.Root()
	for i := 1; i <= 10; i++ {
		next, err := current.With(strconv.Itoa(i))
		require.NoError(t, err)

		created, err := f.CreateDirectory(next)
		require.NoError(t, err)
		require.True(t, created)

		current = next
	}

	exists, err := f.Exists(p("/1/2/3/4/5/6/7/8/9/10"))
	require.NoError(t, err)
	assert.True(t, exists)

	current = boxpath.Root()
	for i := 1; i <= 10; i++ {
		next, err := current.With(strconv.Itoa(i))
		require.NoError(t, err)

		assert.Equal(t, []string{next.String()}, listing(t, f, current.String()))

		current = next
	}
}

func TestCreateDirectory_ManyEntries(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)

	var expected []string
	for i := range 50 {
		name := fmt.Sprintf("/dir%02d", i)
		mustCreateDirectory(t, f, name)
		expected = append(expected, name)
	}

	assert.Equal(t, expected, listing(t, f, "/"))

	for _, name := range expected {
		isDir, err := f.IsDirectory(p(name))
		require.NoError(t, err)
		assert.True(t, isDir, name)
	}
}

func TestCreateDirectories(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)

	created, err := f.CreateDirectories(p("/a/b/c"))
	require.NoError(t, err)
	assert.True(t, created)

	exists, err := f.Exists(p("/a/b/c"))
	require.NoError(t, err)
	assert.True(t, exists)

	created, err = f.CreateDirectories(p("/a/b/c"))
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.CreateDirectories(p("/a/b/d/e"))
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, []string{"/a/b/c", "/a/b/d"}, listing(t, f, "/a/b"))
}

func TestCreateDirectories_FileInTheWay(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateFile(t, f, "/a", nil)

	created, err := f.CreateDirectories(p("/a/b"))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateFile_Fail_Exists(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateFile(t, f, "/file", []byte("keep"))
	mustCreateDirectory(t, f, "/dir")

	created, err := f.CreateFile(p("/file"), 0)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.CreateFile(p("/dir"), 0)
	require.NoError(t, err)
	assert.False(t, created)

	content, _, err := f.ReadFile(p("/file"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(content))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/dir")
	mustCreateDirectory(t, f, "/dir/sub")
	mustCreateFile(t, f, "/dir/sub/file", []byte("data"))
	mustCreateFile(t, f, "/other", []byte("data"))

	deleted, err := f.Delete(p("/dir"))
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, path := range []string{"/dir", "/dir/sub", "/dir/sub/file"} {
		exists, err := f.Exists(p(path))
		require.NoError(t, err)
		assert.False(t, exists, path)
	}

	assert.Equal(t, []string{"/other"}, listing(t, f, "/"))

	deleted, err = f.Delete(p("/dir"))
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = f.Delete(boxpath.Root())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDelete_RefillsChain(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)

	var expected []string
	for i := range 20 {
		name := fmt.Sprintf("/f%02d", i)
		mustCreateFile(t, f, name, []byte(name))
		if i%3 != 0 {
			expected = append(expected, name)
		}
	}

	for i := 0; i < 20; i += 3 {
		deleted, err := f.Delete(p(fmt.Sprintf("/f%02d", i)))
		require.NoError(t, err)
		require.True(t, deleted)
	}

	assert.Equal(t, expected, listing(t, f, "/"))

	mustCreateFile(t, f, "/new", nil)
	assert.Equal(t, append(expected, "/new"), listing(t, f, "/"))

	for _, name := range expected {
		content, ok, err := f.ReadFile(p(name))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, name, string(content))
	}
}

func TestMove_Success(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/src")
	mustCreateDirectory(t, f, "/dst")
	mustCreateDirectory(t, f, "/src/tree")
	mustCreateFile(t, f, "/src/tree/file", []byte("moved"))

	moved, err := f.Move(p("/src/tree"), p("/dst/a-much-longer-name"))
	require.NoError(t, err)
	require.True(t, moved)

	assert.Empty(t, listing(t, f, "/src"))
	assert.Equal(t, []string{"/dst/a-much-longer-name"}, listing(t, f, "/dst"))

	content, ok, err := f.ReadFile(p("/dst/a-much-longer-name/file"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "moved", string(content))
}

func TestMove_Fail_Collision(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/dst")
	mustCreateFile(t, f, "/file", []byte("src"))
	mustCreateFile(t, f, "/dst/file", []byte("dst"))

	moved, err := f.Move(p("/file"), p("/dst/file"))
	require.NoError(t, err)
	assert.False(t, moved)

	content, ok, err := f.ReadFile(p("/file"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "src", string(content))

	content, _, err = f.ReadFile(p("/dst/file"))
	require.NoError(t, err)
	assert.Equal(t, "dst", string(content))
}

func TestMove_Fail_Invalid(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/dir")
	mustCreateDirectory(t, f, "/dir/sub")

	tests := []struct {
		name string
		from string
		to   string
	}{
		{"MissingSource", "/missing", "/dir/x"},
		{"MissingDestinationParent", "/dir/sub", "/missing/sub"},
		{"IntoItself", "/dir", "/dir/sub/dir"},
		{"OntoItself", "/dir", "/dir"},
		{"Root", "/", "/dir/root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved, err := f.Move(p(tt.from), p(tt.to))
			require.NoError(t, err)
			assert.False(t, moved)
		})
	}

	assert.Equal(t, []string{"/dir"}, listing(t, f, "/"))
	assert.Equal(t, []string{"/dir/sub"}, listing(t, f, "/dir"))
}

func TestRename_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		to   string
	}{
		{"Shorter", "/dir/b"},
		{"Longer", "/dir/a-much-longer-name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newTestFS(t)
			mustCreateDirectory(t, f, "/dir")
			mustCreateFile(t, f, "/dir/first", nil)
			mustCreateFile(t, f, "/dir/name", []byte("content"))
			mustCreateFile(t, f, "/dir/last", nil)

			renamed, err := f.Rename(p("/dir/name"), p(tt.to))
			require.NoError(t, err)
			require.True(t, renamed)

			assert.Equal(t, []string{"/dir/first", tt.to, "/dir/last"}, listing(t, f, "/dir"))

			content, ok, err := f.ReadFile(p(tt.to))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "content", string(content))
		})
	}
}

func TestRename_Fail_DifferentParents(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/a")
	mustCreateDirectory(t, f, "/b")
	mustCreateFile(t, f, "/a/file", nil)

	renamed, err := f.Rename(p("/a/file"), p("/b/file"))
	require.NoError(t, err)
	assert.False(t, renamed)

	assert.Equal(t, []string{"/a/file"}, listing(t, f, "/a"))
	assert.Empty(t, listing(t, f, "/b"))
}

func TestRename_Fail_Collision(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateFile(t, f, "/a", []byte("a"))
	mustCreateFile(t, f, "/b", []byte("b"))

	renamed, err := f.Rename(p("/a"), p("/b"))
	require.NoError(t, err)
	assert.False(t, renamed)

	renamed, err = f.Rename(p("/missing"), p("/c"))
	require.NoError(t, err)
	assert.False(t, renamed)

	assert.Equal(t, []string{"/a", "/b"}, listing(t, f, "/"))
}

func TestCopy_File(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	data := pattern(1000)
	mustCreateFile(t, f, "/src", data)

	copied, err := f.Copy(p("/src"), p("/dst"))
	require.NoError(t, err)
	require.True(t, copied)

	content, ok, err := f.ReadFile(p("/dst"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, data, content)

	written, err := f.WriteFile(p("/dst"), []byte("changed"))
	require.NoError(t, err)
	require.True(t, written)

	content, _, err = f.ReadFile(p("/src"))
	require.NoError(t, err)
	assert.Equal(t, data, content)
}

func TestCopy_Directory(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/src")
	mustCreateDirectory(t, f, "/src/sub")
	mustCreateFile(t, f, "/src/a", []byte("a"))
	mustCreateFile(t, f, "/src/sub/b", pattern(500))
	mustCreateDirectory(t, f, "/target")

	copied, err := f.Copy(p("/src"), p("/target/copy"))
	require.NoError(t, err)
	require.True(t, copied)

	srcTree, _, err := f.VisualTree(p("/src"))
	require.NoError(t, err)

	dstTree, _, err := f.VisualTree(p("/target/copy"))
	require.NoError(t, err)
	assert.Equal(t, srcTree, dstTree)

	content, ok, err := f.ReadFile(p("/target/copy/sub/b"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pattern(500), content)
}

func TestCopy_Fail(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateDirectory(t, f, "/dir")
	mustCreateFile(t, f, "/file", nil)

	tests := []struct {
		name string
		from string
		to   string
	}{
		{"MissingSource", "/missing", "/copy"},
		{"IntoItself", "/dir", "/dir/copy"},
		{"DestinationExists", "/file", "/dir"},
		{"MissingDestinationParent", "/file", "/missing/copy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copied, err := f.Copy(p(tt.from), p(tt.to))
			require.NoError(t, err)
			assert.False(t, copied)
		})
	}

	assert.Equal(t, []string{"/dir", "/file"}, listing(t, f, "/"))
	assert.Empty(t, listing(t, f, "/dir"))
}

func TestListDirectory_Fail(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	mustCreateFile(t, f, "/file", nil)

	_, ok, err := f.ListDirectory(p("/file"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.ListDirectory(p("/missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}
