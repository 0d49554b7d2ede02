package pak

import (
	"bytes"
	"io"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func blocksToBytes(blocks []Block) []byte {
	if len(blocks) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&blocks[0])), len(blocks)*BlockSize)
}

func TestReadRoundTrip(t *testing.T) {
	key := Key{1, 2}
	editor := NewMemoryEditor()
	require.NoError(t, editor.CreateFile([]byte("a"), []byte("archived content"), &key))
	blocks, _ := editor.Finish(&key)

	r := bytes.NewReader(blocksToBytes(blocks))
	got, err := Read(r, &key)
	require.NoError(t, err)
	require.Equal(t, blocks, got)

	reader := NewMemoryReader(got, &key)
	desc, ok := reader.Find([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("archived content"), reader.ReadData(&desc))
}

func TestReadRejectsNilKey(t *testing.T) {
	_, err := Read(bytes.NewReader(nil), nil)
	require.Error(t, err)
	require.True(t, IsValidationError(err))
}

func TestReadShortHeaderIsIOError(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, 4)), &Key{1, 1})
	require.Error(t, err)
	require.True(t, IsIOError(err))
}

func TestReadShortBodyIsIOError(t *testing.T) {
	key := Key{1, 1}
	editor := NewMemoryEditor()
	require.NoError(t, editor.CreateFile([]byte("a"), []byte("hello there"), &key))
	blocks, _ := editor.Finish(&key)

	full := blocksToBytes(blocks)
	truncated := full[:len(full)-BlockSize]

	_, err := Read(bytes.NewReader(truncated), &key)
	require.Error(t, err)
	require.True(t, IsIOError(err))
}

func TestReadUnsupportedVersionIsIOError(t *testing.T) {
	key := Key{1, 1}
	var header Header
	randomBlocks(headerBlocks(&header)[:])
	header.Info.Version = InfoHeaderVersion + 1
	header.Info.Directory = Section{Offset: HeaderBlocks, Size: 0}
	EncryptHeaderInplace(&header, &key)

	buf := make([]byte, HeaderBlocks*BlockSize)
	copy(buf, blocksToBytes(headerBlocks(&header)[:]))

	_, err := Read(bytes.NewReader(buf), &key)
	require.Error(t, err)
	require.True(t, IsIOError(err))
}

func TestReadInvalidHeaderDirectoryOverlapsHeader(t *testing.T) {
	key := Key{1, 1}
	var header Header
	randomBlocks(headerBlocks(&header)[:])
	header.Info.Version = InfoHeaderVersion
	header.Info.Directory = Section{Offset: HeaderBlocks - 1, Size: 1}
	EncryptHeaderInplace(&header, &key)

	buf := make([]byte, HeaderBlocks*BlockSize)
	copy(buf, blocksToBytes(headerBlocks(&header)[:]))

	_, err := Read(bytes.NewReader(buf), &key)
	require.Error(t, err)
	require.True(t, IsIOError(err))
	require.ErrorIs(t, err, ErrInvalidHeader)
}

var _ io.Reader = (*bytes.Reader)(nil)
