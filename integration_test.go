package pak

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIntegrationRoundTrip builds a small tree of files and directories,
// finishes the archive, then reopens it with a fresh MemoryReader and walks
// it back, the way an on-disk archive would be produced and consumed.
func TestIntegrationRoundTrip(t *testing.T) {
	key := Key{13, 42}

	editor := NewMemoryEditor()
	editor.CreateDir([]byte("empty"))
	require.NoError(t, editor.CreateFile([]byte("readme.txt"), []byte("hello pak"), &key))
	require.NoError(t, editor.CreateFile([]byte("sub/foo"), bytes.Repeat([]byte{0xCF}, 65), &key))
	require.NoError(t, editor.CreateFile([]byte("sub/deeper/bar"), []byte("nested"), &key))

	blocks, _ := editor.Finish(&key)
	require.True(t, len(blocks) > HeaderBlocks)

	reader := NewMemoryReader(blocks, &key)
	require.False(t, reader.IsEmpty())

	desc, ok := reader.Find([]byte("readme.txt"))
	require.True(t, ok)
	require.True(t, reader.IsValidFile(&desc))
	require.Equal(t, []byte("hello pak"), reader.ReadData(&desc))

	desc, ok = reader.Find([]byte("sub/foo"))
	require.True(t, ok)
	require.Equal(t, bytes.Repeat([]byte{0xCF}, 65), reader.ReadData(&desc))

	desc, ok = reader.Find([]byte("sub/deeper/bar"))
	require.True(t, ok)
	require.Equal(t, []byte("nested"), reader.ReadData(&desc))

	desc, ok = reader.Find([]byte("empty"))
	require.True(t, ok)
	require.True(t, reader.IsValidDir(&desc))

	_, ok = reader.Find([]byte("does/not/exist"))
	require.False(t, ok)
}

// TestIntegrationReopenViaFromBlocks exercises round-tripping an archive
// through the editor side: finish once, reopen with FromBlocks, add another
// file, and finish again.
func TestIntegrationReopenViaFromBlocks(t *testing.T) {
	key := Key{1, 2}

	editor := NewMemoryEditor()
	require.NoError(t, editor.CreateFile([]byte("a"), []byte("one"), &key))
	blocks, _ := editor.Finish(&key)

	editor2 := FromBlocks(blocks, &key)
	require.NoError(t, editor2.CreateFile([]byte("b"), []byte("two"), &key))
	blocks2, _ := editor2.Finish(&key)

	reader := NewMemoryReader(blocks2, &key)
	descA, ok := reader.Find([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("one"), reader.ReadData(&descA))

	descB, ok := reader.Find([]byte("b"))
	require.True(t, ok)
	require.Equal(t, []byte("two"), reader.ReadData(&descB))
}

// TestIntegrationIterChildren walks a directory's direct children through
// MemoryReader.Iter, confirming it matches what Find returns.
func TestIntegrationIterChildren(t *testing.T) {
	key := Key{7, 7}

	editor := NewMemoryEditor()
	require.NoError(t, editor.CreateFile([]byte("dir/one"), []byte("1"), &key))
	require.NoError(t, editor.CreateFile([]byte("dir/two"), []byte("2"), &key))
	blocks, _ := editor.Finish(&key)

	reader := NewMemoryReader(blocks, &key)
	root := Descriptor{Section: Section{Offset: 0, Size: uint32(len(reader.directory))}}

	names := map[string]bool{}
	it := reader.Iter(&root)
	for {
		desc, ok := it.Next()
		if !ok {
			break
		}
		names[string(desc.Name())] = true
	}
	require.True(t, names["dir"])
}

// TestIntegrationWrongKeyProducesGarbage confirms that reading with the
// wrong key does not panic and does not recover the original plaintext.
func TestIntegrationWrongKeyProducesGarbage(t *testing.T) {
	key := Key{1, 1}
	wrongKey := Key{2, 2}

	editor := NewMemoryEditor()
	require.NoError(t, editor.CreateFile([]byte("secret"), []byte("top secret data"), &key))
	blocks, _ := editor.Finish(&key)

	reader := NewMemoryReader(blocks, &wrongKey)
	require.True(t, reader.IsEmpty() || len(reader.directory) > 0)
	_, ok := reader.Find([]byte("secret"))
	require.False(t, ok)
}
