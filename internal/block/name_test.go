package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamePayloadSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4+len("something"), NamePayloadSize("something"))
	assert.Equal(t, 4+len("größe"), NamePayloadSize("größe"))
}

func TestNameBlock_CreateAndGet(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t)

	created, err := c.CreateNameBlock("hello")
	require.NoError(t, err)

	nb, err := c.NameBlock(created.Offset())
	require.NoError(t, err)

	name, err := nb.Name()
	require.NoError(t, err)
	assert.Equal(t, "hello", name)

	length, err := nb.Length()
	require.NoError(t, err)
	assert.Equal(t, 5, length)
	assert.Equal(t, NamePayloadSize("hello"), nb.PayloadSize())
}

func TestNameBlock_Fits(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t)

	nb, err := c.CreateNameBlock("hello")
	require.NoError(t, err)

	assert.True(t, nb.Fits("abc"))
	assert.True(t, nb.Fits("world"))
	assert.False(t, nb.Fits("hello1"))
	assert.False(t, nb.Fits("héllo"))
}

func TestNameBlock_SetName_InPlace(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t)

	nb, err := c.CreateNameBlock("hello")
	require.NoError(t, err)

	require.NoError(t, nb.SetName("abc"))

	name, err := nb.Name()
	require.NoError(t, err)
	assert.Equal(t, "abc", name)
}

func TestNameBlock_SetName_Fail_TooLong(t *testing.T) {
	t.Parallel()

	c := newTestCatalog(t)

	nb, err := c.CreateNameBlock("hello")
	require.NoError(t, err)

	require.Error(t, nb.SetName("hello world"))

	name, err := nb.Name()
	require.NoError(t, err)
	assert.Equal(t, "hello", name)
}
