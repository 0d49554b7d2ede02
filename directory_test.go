package pak

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameEq(t *testing.T) {
	desc := FileDescriptor([]byte("foo"))

	tail, ok := NameEq(&desc, []byte("foo"))
	require.True(t, ok)
	require.Empty(t, tail)

	tail, ok = NameEq(&desc, []byte("foo/bar"))
	require.True(t, ok)
	require.Equal(t, []byte("bar"), tail)

	_, ok = NameEq(&desc, []byte("foobar"))
	require.False(t, ok)

	_, ok = NameEq(&desc, []byte("fo"))
	require.False(t, ok)
}

func TestNextSiblingFile(t *testing.T) {
	desc := FileDescriptor([]byte("a"))
	require.Equal(t, 3, NextSibling(&desc, 2, 10))
}

func TestNextSiblingDirClampsCorruptCount(t *testing.T) {
	desc := DirDescriptor([]byte("a"), 1000)
	require.Equal(t, 5, NextSibling(&desc, 0, 5))
}

func TestFindEmpty(t *testing.T) {
	var dir []Descriptor
	result := Find(dir, []byte("anything"))
	require.Empty(t, result)
}

func TestFindSimple(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a"))
	Create(&dir, []byte("b"))

	result := Find(dir, []byte("a"))
	require.Len(t, result, 1)
	require.Equal(t, "a", string(result[0].Name()))

	result = Find(dir, []byte("missing"))
	require.Empty(t, result)
}

func TestFindNestedDir(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("sub/foo"))

	result := Find(dir, []byte("sub"))
	require.Len(t, result, 2)
	require.True(t, result[0].IsDir())
	require.Equal(t, "foo", string(result[1].Name()))

	result = Find(dir, []byte("sub/foo"))
	require.Len(t, result, 1)
	require.Equal(t, "foo", string(result[0].Name()))
}

func TestCreateSimple(t *testing.T) {
	var dir []Descriptor
	desc := Create(&dir, []byte("file"))
	require.Equal(t, "file", string(desc.Name()))
	require.Len(t, dir, 1)
}

func TestCreateSimpleDirs(t *testing.T) {
	var dir []Descriptor
	desc := Create(&dir, []byte("a/b/c"))
	require.Equal(t, "c", string(desc.Name()))
	require.Len(t, dir, 3)
	require.Equal(t, "a", string(dir[0].Name()))
	require.True(t, dir[0].IsDir())
	require.Equal(t, "b", string(dir[1].Name()))
	require.True(t, dir[1].IsDir())
	require.Equal(t, "c", string(dir[2].Name()))
}

func TestCreateReusesExistingDescriptor(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a/b"))
	before := len(dir)

	desc := Create(&dir, []byte("a/b"))
	require.Len(t, dir, before)
	require.Equal(t, "b", string(desc.Name()))
}

func TestCreateIncrementsAncestorCounts(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a/x"))
	Create(&dir, []byte("a/y"))
	Create(&dir, []byte("a/z"))

	require.True(t, dir[0].IsDir())
	require.Equal(t, uint32(3), dir[0].ContentSize)
}

func TestFindEncrypted(t *testing.T) {
	key := Key{1, 2}
	nonce := Block{3, 4}

	var dir []Descriptor
	Create(&dir, []byte("sub/foo"))
	Create(&dir, []byte("bar"))

	plain := make([]Descriptor, len(dir))
	copy(plain, dir)

	encrypted := make([]Descriptor, len(dir))
	copy(encrypted, dir)
	blocks := descriptorsAsBlocks(encrypted)
	n := nonce
	cryptInplace(blocks, &n, &key)

	desc, ok := FindEncrypted(encrypted, []byte("sub/foo"), &nonce, &key)
	require.True(t, ok)
	require.Equal(t, "foo", string(desc.Name()))

	desc, ok = FindEncrypted(encrypted, []byte("bar"), &nonce, &key)
	require.True(t, ok)
	require.Equal(t, "bar", string(desc.Name()))

	_, ok = FindEncrypted(encrypted, []byte("missing"), &nonce, &key)
	require.False(t, ok)
}

func TestRemoveLeaf(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a"))
	Create(&dir, []byte("b"))

	var deleted Descriptor
	ok := Remove(&dir, []byte("a"), &deleted)
	require.True(t, ok)
	require.Equal(t, "a", string(deleted.Name()))
	require.Len(t, dir, 1)
	require.Equal(t, "b", string(dir[0].Name()))
}

func TestRemoveMissingReturnsFalse(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a"))

	ok := Remove(&dir, []byte("nope"), nil)
	require.False(t, ok)
	require.Len(t, dir, 1)
}

func TestRemovePromotesChildren(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a/b"))
	Create(&dir, []byte("a/c"))

	ok := Remove(&dir, []byte("a"), nil)
	require.True(t, ok)

	// The two children now sit at the top level.
	_, ok = FindDesc(dir, []byte("b"))
	require.True(t, ok)
	_, ok = FindDesc(dir, []byte("c"))
	require.True(t, ok)
}

func TestUpdateDirAddress(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a/b"))
	Create(&dir, []byte("a/c"))

	UpdateDirAddress(dir)

	require.True(t, dir[0].IsDir())
	require.Equal(t, uint32(1), dir[0].Section.Offset)
	require.Equal(t, uint32(2), dir[0].Section.Size)
}

func TestTreeRendersFilesAndDirs(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a/b"))
	Create(&dir, []byte("c"))

	out := Tree(dir, ArtASCII)
	require.Contains(t, out, "a/")
	require.Contains(t, out, "b")
	require.Contains(t, out, "c")
}

func TestWriteTreeMatchesTree(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("a/b"))
	Create(&dir, []byte("c"))

	var buf bytes.Buffer
	err := WriteTree(&buf, dir, ArtUnicode)
	require.NoError(t, err)
	require.Equal(t, Tree(dir, ArtUnicode), buf.String())
}

func TestWriteTreePropagatesWriterError(t *testing.T) {
	var dir []Descriptor
	Create(&dir, []byte("x"))

	err := WriteTree(failingWriter{}, dir, ArtASCII)
	require.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errSentinel{}
}
