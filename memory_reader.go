package pak

import "unsafe"

// readDirectorySlice reinterprets the (still encrypted) directory section of
// blocks as a descriptor slice, without decrypting it. Returns nil if the
// section does not fit within blocks.
func readDirectorySlice(blocks []Block, info *InfoHeader) []Descriptor {
	start := int(info.Directory.Offset)
	count := int(info.Directory.Size)
	end := start + count*DescriptorBlocks
	if start < 0 || end > len(blocks) || end < start || count == 0 {
		return nil
	}
	return unsafe.Slice((*Descriptor)(unsafe.Pointer(&blocks[start])), count)
}

// MemoryReader borrows an encrypted archive's block buffer and a key. It
// decrypts the header on construction but otherwise leaves everything
// encrypted, decrypting only what a particular query touches.
type MemoryReader struct {
	blocks    []Block
	key       Key
	directory []Descriptor // still encrypted; reinterpreted, not decrypted
	dirNonce  Block
}

// NewMemoryReader builds a reader over blocks using key. If blocks is too
// small to contain a header, or the header's version is unrecognized, the
// result is an empty reader: IsEmpty reports true and every query returns no
// match — this package never errors out of a corrupt read.
func NewMemoryReader(blocks []Block, key *Key) *MemoryReader {
	if len(blocks) < HeaderBlocks {
		return &MemoryReader{blocks: blocks, key: *key}
	}
	header := (*Header)(unsafe.Pointer(&blocks[0]))
	info := DecryptHeader(header, key)
	if info.Version != InfoHeaderVersion {
		return &MemoryReader{blocks: blocks, key: *key}
	}
	directory := readDirectorySlice(blocks, &info)
	return &MemoryReader{
		blocks:    blocks,
		key:       *key,
		directory: directory,
		dirNonce:  info.Directory.Nonce,
	}
}

// IsEmpty reports whether this reader holds no directory at all, either
// because the archive was too small or its header was invalid.
func (r *MemoryReader) IsEmpty() bool {
	return len(r.directory) == 0
}

// Find locates the descriptor at path, decrypting exactly the descriptors it
// visits along the way.
func (r *MemoryReader) Find(path []byte) (Descriptor, bool) {
	return FindEncrypted(r.directory, path, &r.dirNonce, &r.key)
}

// FindSub locates a descriptor at path within the subtree rooted at root (a
// directory descriptor previously returned by Find), decrypting exactly the
// descriptors it visits.
func (r *MemoryReader) FindSub(root *Descriptor, path []byte) (Descriptor, bool) {
	start, end := root.Section.Range()
	if start < 0 || end > len(r.directory) {
		return Descriptor{}, false
	}
	subdir := r.directory[start:end]
	nonce := counter(&r.dirNonce, int(root.Section.Offset)*DescriptorBlocks)
	return FindEncrypted(subdir, path, &nonce, &r.key)
}

// IsValidFile reports whether desc is a file descriptor whose section lies
// entirely past the header and within the reader's block buffer, and whose
// declared content size is consistent with its section's block count.
func (r *MemoryReader) IsValidFile(desc *Descriptor) bool {
	if !desc.IsFile() {
		return false
	}
	// The offset lower bound of HeaderBlocks is documented, intentional
	// behavior inherited from the reference implementation: it rejects any
	// file section that would overlap the header, not merely ones that
	// start at block zero.
	if desc.Section.Offset < HeaderBlocks {
		return false
	}
	start, end := desc.Section.Range()
	if start < 0 || end > len(r.blocks) {
		return false
	}
	return bytes2blocks(desc.ContentSize) <= desc.Section.Size
}

// IsValidDir reports whether desc is a directory descriptor whose section
// addresses a range within the reader's directory slice consistent with its
// declared descendant count.
func (r *MemoryReader) IsValidDir(desc *Descriptor) bool {
	if !desc.IsDir() {
		return false
	}
	if desc.Section.Size != desc.ContentSize {
		return false
	}
	start, end := desc.Section.Range()
	return start >= 0 && end <= len(r.directory)
}

// Validate reports whether desc (found at path, used only for the error
// message) is internally consistent, returning a *CorruptionError instead of
// a bool. IsValidFile/IsValidDir remain the total predicates this package
// otherwise relies on; Validate is for callers that want an explicit error
// to log or propagate.
func (r *MemoryReader) Validate(desc *Descriptor, path string) error {
	switch {
	case desc.IsFile() && !r.IsValidFile(desc):
		return NewCorruptionError(path, "file section is out of range or inconsistent with content size")
	case desc.IsDir() && !r.IsValidDir(desc):
		return NewCorruptionError(path, "directory section is out of range or inconsistent with descendant count")
	default:
		return nil
	}
}

// ReadData decrypts and returns desc's entire payload. Given a directory
// descriptor, it returns an empty slice. If desc's section is not a valid
// range within the reader's blocks, the result is all zero bytes.
func (r *MemoryReader) ReadData(desc *Descriptor) []byte {
	if !desc.IsFile() {
		return nil
	}
	dest := make([]byte, desc.ContentSize)
	start, end := desc.Section.Range()
	if start >= 0 && end <= len(r.blocks) {
		DecryptData(r.blocks[start:end], &desc.Section.Nonce, &r.key, 0, dest)
	}
	return dest
}

// ReadInto decrypts byteOffset..byteOffset+len(dest) of desc's payload into
// dest. Given a directory descriptor, or a range that doesn't fit within
// desc's section, dest is left untouched.
func (r *MemoryReader) ReadInto(desc *Descriptor, byteOffset int, dest []byte) {
	if !desc.IsFile() {
		return
	}
	if validateBuffer(dest, "dest") != nil || validateOffset(byteOffset, "byteOffset") != nil {
		return
	}
	start, end := desc.Section.Range()
	if start < 0 || end > len(r.blocks) {
		return
	}
	DecryptData(r.blocks[start:end], &desc.Section.Nonce, &r.key, byteOffset, dest)
}

// Iter returns an iterator over the direct children of the directory
// descriptor desc.
func (r *MemoryReader) Iter(desc *Descriptor) *MemoryReadIter {
	start, end := desc.Section.Range()
	return &MemoryReadIter{
		dir:   r.directory,
		key:   r.key,
		nonce: counter(&r.dirNonce, start*DescriptorBlocks),
		i:     start,
		end:   end,
	}
}

// MemoryReadIter iterates the siblings of an encrypted directory slice,
// decrypting one descriptor at a time and skipping past each one's
// descendants, tracking the running nonce as it goes.
type MemoryReadIter struct {
	dir   []Descriptor
	key   Key
	nonce Block
	i     int
	end   int
}

// Next returns the next sibling descriptor, or false when iteration is
// finished.
func (it *MemoryReadIter) Next() (Descriptor, bool) {
	if it.i >= it.end || it.i >= len(it.dir) {
		return Descriptor{}, false
	}
	desc := DecryptDesc(&it.dir[it.i], &it.nonce, &it.key)
	nextI := NextSibling(&desc, it.i, it.end)
	it.nonce = counter(&it.nonce, (nextI-it.i)*DescriptorBlocks)
	it.i = nextI
	return desc, true
}
