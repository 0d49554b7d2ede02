package pak

import (
	"fmt"
	"io"
	"unsafe"
)

// Read reads an entire PAK archive from r: the header first, then enough
// additional blocks to cover the directory located by the header. Unlike
// the rest of this package, this is the one place a malformed input
// produces a real error rather than a silent empty result, since an I/O
// stream can genuinely run short.
func Read(r io.Reader, key *Key) ([]Block, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	blocks := make([]Block, HeaderBlocks)
	headerBytes := unsafe.Slice((*byte)(unsafe.Pointer(&blocks[0])), HeaderBlocks*BlockSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, NewIOError("read header", err)
	}

	header := (*Header)(unsafe.Pointer(&blocks[0]))
	info := DecryptHeader(header, key)
	if info.Version != InfoHeaderVersion {
		return nil, NewIOError("read header", fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, info.Version))
	}
	if info.Directory.Offset < HeaderBlocks {
		return nil, NewIOError("read header", fmt.Errorf("%w: directory offset %d overlaps the header", ErrInvalidHeader, info.Directory.Offset))
	}

	// info.Directory.Offset >= HeaderBlocks is now guaranteed by the check
	// above, so totalBlocks is always at least HeaderBlocks.
	totalBlocks := int(info.Directory.Offset) + int(info.Directory.Size)*DescriptorBlocks

	full := make([]Block, totalBlocks)
	copy(full, blocks)
	if totalBlocks > HeaderBlocks {
		restBytes := unsafe.Slice((*byte)(unsafe.Pointer(&full[HeaderBlocks])), (totalBlocks-HeaderBlocks)*BlockSize)
		if _, err := io.ReadFull(r, restBytes); err != nil {
			return nil, NewIOError("read body", err)
		}
	}

	return full, nil
}
