package pak

import "unsafe"

// MemoryEditor builds or edits a PAK archive entirely in memory. It owns a
// block vector (the first HeaderBlocks blocks reserved for the header) and a
// plaintext descriptor vector describing the flattened directory tree.
type MemoryEditor struct {
	blocks []Block
	dir    []Descriptor
}

// NewMemoryEditor returns an empty editor with just the header reservation.
func NewMemoryEditor() *MemoryEditor {
	return &MemoryEditor{
		blocks: make([]Block, HeaderBlocks),
	}
}

// FromBlocks builds an editor from a previously finished archive, decrypting
// its header and directory with key. If blocks is too small to hold a
// header, the result is an empty editor padded with zero blocks. Otherwise
// the trailing encrypted directory is dropped from the editor's block
// vector if it occupies the tail, since Finish will re-derive and re-append
// it.
func FromBlocks(blocks []Block, key *Key) *MemoryEditor {
	if len(blocks) < HeaderBlocks {
		padded := make([]Block, HeaderBlocks)
		copy(padded, blocks)
		return &MemoryEditor{blocks: padded}
	}

	header := headerFromBlocks(blocks)
	info := DecryptHeader(header, key)
	dir := DecryptDir(blocks, &info.Directory, key)

	dirBlocksLen := int(info.Directory.Size) * DescriptorBlocks
	if len(blocks) == int(info.Directory.Offset)+dirBlocksLen {
		blocks = blocks[:info.Directory.Offset]
	}

	owned := make([]Block, len(blocks))
	copy(owned, blocks)
	return &MemoryEditor{blocks: owned, dir: dir}
}

// headerFromBlocks reinterprets the first HeaderBlocks blocks as a Header.
func headerFromBlocks(blocks []Block) *Header {
	return (*Header)(unsafe.Pointer(&blocks[0]))
}

// maxContentSize is the largest file content this package will accept via
// CreateFile: content_size is a uint32 field, so anything larger would wrap
// around and silently allocate too small a section.
const maxContentSize = 1<<32 - 1

// CreateFile creates (or replaces) a file descriptor at path, encrypting
// content into a freshly allocated section under key. content larger than a
// uint32 can represent is rejected rather than silently truncated.
func (e *MemoryEditor) CreateFile(path []byte, content []byte, key *Key) error {
	if err := validateSize(len(content), 0, maxContentSize, "content"); err != nil {
		return err
	}
	e.EditFile(path).SetContent(1, uint32(len(content))).AllocateData().InitData(content, key)
	return nil
}

// CreateSymlink creates a descriptor at path that reuses the content type,
// size and section of an existing descriptor, effectively aliasing its data.
func (e *MemoryEditor) CreateSymlink(path []byte, fileDesc *Descriptor) {
	e.EditFile(path).SetContent(fileDesc.ContentType, fileDesc.ContentSize).SetSection(&fileDesc.Section)
}

// EditFile finds or creates a descriptor at path, creating missing parent
// directories as needed, and returns a handle for editing its content and
// section.
func (e *MemoryEditor) EditFile(path []byte) *MemoryEditFile {
	desc := Create(&e.dir, path)
	return &MemoryEditFile{desc: desc, blocks: &e.blocks}
}

// CreateDir creates (or replaces) a directory descriptor at path.
func (e *MemoryEditor) CreateDir(path []byte) {
	desc := Create(&e.dir, path)
	desc.ContentType = 0
	desc.ContentSize = 0
	desc.Section = Section{}
}

// Remove removes the descriptor at path. See the package-level Remove for
// the exact semantics, including directory-children promotion.
func (e *MemoryEditor) Remove(path []byte, deleted *Descriptor) bool {
	return Remove(&e.dir, path, deleted)
}

// GC rebuilds the block vector, keeping only the payload of file
// descriptors whose section still addresses a valid range of the old block
// vector. Descriptors whose section has gone stale have their section
// zeroed; their payload is lost. Directory descriptors are untouched here —
// their sections are rebuilt by Finish.
func (e *MemoryEditor) GC() {
	newBlocks := make([]Block, HeaderBlocks)

	for i := range e.dir {
		desc := &e.dir[i]
		if !desc.IsFile() {
			continue
		}
		start, end := desc.Section.Range()
		if start < 0 || end > len(e.blocks) || start > end {
			desc.Section = Section{}
			continue
		}
		offset := len(newBlocks)
		newBlocks = append(newBlocks, e.blocks[start:end]...)
		desc.Section.Offset = uint32(offset)
	}

	e.blocks = newBlocks
}

// Finish finalizes directory addresses, randomizes and encrypts the header,
// and appends the counter-mode-encrypted directory to the block vector. It
// returns the finished archive and the plaintext directory for inspection;
// the returned directory is not part of the archive.
func (e *MemoryEditor) Finish(key *Key) ([]Block, []Descriptor) {
	UpdateDirAddress(e.dir)

	header := headerFromBlocks(e.blocks)
	randomBlocks(headerBlocks(header)[:])
	header.Info.Version = InfoHeaderVersion
	header.Info.Unused = 0
	header.Info.Directory.Offset = uint32(len(e.blocks))
	header.Info.Directory.Size = uint32(len(e.dir))
	directory := header.Info.Directory
	EncryptHeaderInplace(header, key)

	dirBlocksLen := int(directory.Size) * DescriptorBlocks
	encrypted := make([]Block, dirBlocksLen)
	plainBlocks := descriptorsAsBlocks(e.dir)
	cryptBlocks(plainBlocks, &directory.Nonce, key, encrypted)
	e.blocks = append(e.blocks, encrypted...)

	return e.blocks, e.dir
}

// MemoryEditFile is a handle for editing a single file descriptor's content
// and section, returned by MemoryEditor.EditFile. Incorrect use (writing
// past an unallocated section, skipping InitData/ZeroData before CopyData)
// can corrupt the archive.
type MemoryEditFile struct {
	desc   *Descriptor
	blocks *[]Block
}

// SetContent sets the descriptor's content type and size. A content type of
// zero is reserved for directories and is silently raised to 1.
func (f *MemoryEditFile) SetContent(contentType, contentSize uint32) *MemoryEditFile {
	if contentType < 1 {
		contentType = 1
	}
	f.desc.ContentType = contentType
	f.desc.ContentSize = contentSize
	return f
}

// ContentType returns the descriptor's content type.
func (f *MemoryEditFile) ContentType() uint32 { return f.desc.ContentType }

// ContentSize returns the descriptor's content size in bytes.
func (f *MemoryEditFile) ContentSize() uint32 { return f.desc.ContentSize }

// SetSection assigns an existing section to this descriptor, making it
// alias another descriptor's payload.
func (f *MemoryEditFile) SetSection(section *Section) *MemoryEditFile {
	f.desc.Section = *section
	return f
}

// Section returns the descriptor's current section.
func (f *MemoryEditFile) Section() *Section { return &f.desc.Section }

// AllocateData bump-allocates bytes2blocks(ContentSize) fresh blocks from the
// end of the block vector, assigns them to the descriptor's section, and
// samples a fresh random nonce. The allocated blocks are logically
// uninitialized until InitData, ZeroData, or CopyData is called.
func (f *MemoryEditFile) AllocateData() *MemoryEditFile {
	blocks := *f.blocks
	f.desc.Section.Offset = uint32(len(blocks))
	f.desc.Section.Size = bytes2blocks(f.desc.ContentSize)

	newLen := len(blocks) + int(f.desc.Section.Size)
	grown := make([]Block, newLen)
	copy(grown, blocks)
	*f.blocks = grown

	randomBlocks(unsafe.Slice(&f.desc.Section.Nonce, 1))
	return f
}

// InitData encrypts content into the descriptor's section using PadZero: the
// unmentioned bytes of a partial trailing block are treated as zero.
func (f *MemoryEditFile) InitData(content []byte, key *Key) *MemoryEditFile {
	start, end := f.desc.Section.Range()
	EncryptData((*f.blocks)[start:end], &f.desc.Section.Nonce, key, 0, content, PadZero)
	return f
}

// ZeroData fills the descriptor's section with the ciphertext of an all-zero
// plaintext.
func (f *MemoryEditFile) ZeroData(key *Key) *MemoryEditFile {
	start, end := f.desc.Section.Range()
	EncryptZero((*f.blocks)[start:end], &f.desc.Section.Nonce, key)
	return f
}

// CopyData encrypts content into a subrange of an already-initialized
// section, using PadTransparent to preserve the untouched bytes of any
// partial blocks at the edges.
func (f *MemoryEditFile) CopyData(byteOffset int, content []byte, key *Key) *MemoryEditFile {
	if validateOffset(byteOffset, "byteOffset") != nil {
		return f
	}
	start, end := f.desc.Section.Range()
	EncryptData((*f.blocks)[start:end], &f.desc.Section.Nonce, key, byteOffset, content, PadTransparent)
	return f
}

// ReencryptData transforms the descriptor's section from oldKey to newKey,
// sampling a fresh nonce, without exposing the plaintext to the caller.
func (f *MemoryEditFile) ReencryptData(oldKey, newKey *Key) {
	start, end := f.desc.Section.Range()
	oldNonce := f.desc.Section.Nonce
	randomBlocks(unsafe.Slice(&f.desc.Section.Nonce, 1))
	ReencryptData((*f.blocks)[start:end], &oldNonce, &f.desc.Section.Nonce, oldKey, newKey)
}
