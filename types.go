package pak

import "errors"

// BlockSize is the size in bytes of a single cipher block.
const BlockSize = 16

// KeySize is the size in bytes of a Speck-128/128 key.
const KeySize = 16

// Block is a 128-bit cipher block, represented as two little-endian 64-bit
// words. It doubles as a nonce.
type Block [2]uint64

// Key is a 128-bit Speck-128/128 key.
type Key [2]uint64

// Section addresses a contiguous span inside the archive, in blocks.
//
// For every section except the header's directory section, Size counts
// blocks. For the directory section, Size counts descriptors (64 bytes / 4
// blocks each) instead.
type Section struct {
	Offset uint32 // block index
	Size   uint32 // block count, or descriptor count for the directory section
	Nonce  Block  // counter-mode nonce for this section
}

// Range returns the half-open block range [Offset, Offset+Size) as a pair of
// ints suitable for slicing. It performs no bounds checking against any
// particular slice; callers must check the result against len(blocks).
func (s *Section) Range() (start, end int) {
	return int(s.Offset), int(s.Offset) + int(s.Size)
}

// InfoHeaderBlocks is the number of blocks occupied by an InfoHeader.
const InfoHeaderBlocks = 2

// InfoHeader carries the archive's version and directory location. It is
// the portion of the header protected by CBC encryption.
type InfoHeader struct {
	Version   uint32  // must be zero
	Unused    uint32  // must be zero on write, ignored on read
	Directory Section // locates the descriptor table
}

// InfoHeaderVersion is the only version this package understands.
const InfoHeaderVersion = uint32(0)

// HeaderBlocks is the number of blocks occupied by a Header: two for HMAC,
// one for the IV, two for the CBC-encrypted info header.
const HeaderBlocks = 5

// Header is the first five blocks of an archive.
type Header struct {
	HMAC [32]byte   // reserved for a future MAC, never computed or checked here
	IV   Block      // CBC IV protecting Info
	Info InfoHeader // version and directory location
}

// DescriptorBlocks is the number of blocks occupied by a single descriptor.
const DescriptorBlocks = 4

// DescriptorSize is the size in bytes of a single descriptor (64 bytes).
const DescriptorSize = DescriptorBlocks * BlockSize

// nameBufLen is the size of the name buffer inside a Descriptor.
const nameBufLen = 32

// maxNameLen is the largest name that fits in the name buffer: its last byte
// holds the length complement (32 - length), leaving 31 bytes for the name.
const maxNameLen = nameBufLen - 1

// Descriptor is a single 64-byte node of the flattened descriptor tree.
//
// ContentType == 0 marks a directory descriptor; ContentSize then holds the
// total number of descendants (direct and transitive) immediately following
// this descriptor in the flattened tree. ContentType != 0 marks a file
// descriptor; ContentSize then holds the payload length in bytes.
type Descriptor struct {
	ContentType uint32
	ContentSize uint32
	Section     Section
	NameBuf     [nameBufLen]byte
}

// NewDescriptor builds a descriptor with the given name, content type and
// size. A ContentType of zero marks a directory; ContentSize is then the
// descendant count. A non-zero ContentType marks a file; ContentSize is
// then the byte length.
func NewDescriptor(name []byte, contentType, contentSize uint32) Descriptor {
	var d Descriptor
	d.ContentType = contentType
	d.ContentSize = contentSize
	d.SetName(name)
	return d
}

// FileDescriptor builds an empty file descriptor with the given name.
func FileDescriptor(name []byte) Descriptor {
	return NewDescriptor(name, 1, 0)
}

// DirDescriptor builds a directory descriptor with the given name and
// descendant count.
func DirDescriptor(name []byte, descendants uint32) Descriptor {
	return NewDescriptor(name, 0, descendants)
}

// nameLen returns the length encoded in the name buffer's last byte.
func (d *Descriptor) nameLen() int {
	return nameBufLen - int(d.NameBuf[nameBufLen-1])
}

// Name returns the descriptor's name.
func (d *Descriptor) Name() []byte {
	n := d.nameLen()
	if n < 0 || n > maxNameLen {
		n = 0
	}
	return d.NameBuf[:n]
}

// SetName encodes name into the descriptor's name buffer. Names longer than
// 31 bytes are truncated.
func (d *Descriptor) SetName(name []byte) {
	n := len(name)
	if n > maxNameLen {
		n = maxNameLen
	}
	d.NameBuf[nameBufLen-1] = byte(nameBufLen - n)
	copy(d.NameBuf[:n], name[:n])
}

// IsDir reports whether this descriptor is a directory.
func (d *Descriptor) IsDir() bool {
	return d.ContentType == 0
}

// IsFile reports whether this descriptor is a file.
func (d *Descriptor) IsFile() bool {
	return d.ContentType != 0
}

// bytes2blocks returns the number of blocks required to hold byteSize bytes,
// rounding up, with 0 bytes requiring 0 blocks.
func bytes2blocks(byteSize uint32) uint32 {
	if byteSize == 0 {
		return 0
	}
	return (byteSize-1)/BlockSize + 1
}

// Sentinel errors. Structured error types in errors.go wrap most of these;
// they remain exported for callers that prefer errors.Is.
var (
	ErrInvalidKey         = errors.New("pak: invalid key")
	ErrInvalidHeader      = errors.New("pak: invalid header")
	ErrUnsupportedVersion = errors.New("pak: unsupported archive version")
	ErrNilBuffer          = errors.New("pak: buffer cannot be nil")
	ErrNegativeOffset     = errors.New("pak: negative offset not allowed")
)
