package pathindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_RegisterIsIdempotent(t *testing.T) {
	x := New()
	assert.Equal(t, int64(0), x.Register("/"))
	assert.Equal(t, int64(1), x.Register("/docs/"))
	assert.Equal(t, int64(2), x.Register("/notes.txt"))
	assert.Equal(t, int64(1), x.Register("/docs/"))
	assert.Equal(t, 3, x.Len())
}

func TestIndex_Contiguous(t *testing.T) {
	x := New()
	paths := []string{"/", "/a/", "/a/b", "/c/", "/a/b"}
	for _, p := range paths {
		x.Register(p)
	}
	require.Equal(t, 4, x.Len())
	for i := int64(0); i < int64(x.Len()); i++ {
		p, ok := x.Path(i)
		require.True(t, ok)
		id, ok := x.Get(p)
		require.True(t, ok)
		assert.Equal(t, i, id)
	}
	_, ok := x.Path(4)
	assert.False(t, ok)
	_, ok = x.Path(-1)
	assert.False(t, ok)
}

func TestIndex_LookupTrailingSeparator(t *testing.T) {
	x := New()
	x.Register("/")
	x.Register("/Desktop/")
	x.Register("/file")

	t.Run("directory without separator", func(t *testing.T) {
		id, ok := x.Lookup("/Desktop")
		require.True(t, ok)
		assert.Equal(t, int64(1), id)
	})

	t.Run("directory with separator", func(t *testing.T) {
		id, ok := x.Lookup("/Desktop/")
		require.True(t, ok)
		assert.Equal(t, int64(1), id)
	})

	t.Run("file with separator", func(t *testing.T) {
		id, ok := x.Lookup("/file/")
		require.True(t, ok)
		assert.Equal(t, int64(2), id)
	})

	t.Run("root", func(t *testing.T) {
		id, ok := x.Lookup("/")
		require.True(t, ok)
		assert.Equal(t, int64(0), id)
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := x.Lookup("/missing")
		assert.False(t, ok)
	})
}
