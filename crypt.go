package pak

import (
	"crypto/rand"
	"unsafe"
)

// Pad selects how encryptData fills the unmentioned bytes of a partial
// block.
type Pad uint8

const (
	// PadZero treats the unmentioned bytes of a partial block as zero. Use
	// this for freshly allocated, never-written sections.
	PadZero Pad = iota
	// PadTransparent first decrypts the partial block in place, writes the
	// new bytes over it, and re-encrypts. Use this to update a section that
	// already holds initialized plaintext, preserving the untouched bytes.
	PadTransparent
)

func xorBlock(a, b Block) Block {
	return Block{a[0] ^ b[0], a[1] ^ b[1]}
}

// counter returns the block obtained by advancing nonce by ctr counter-mode
// steps.
func counter(nonce *Block, ctr int) Block {
	return Block{nonce[0], nonce[1] + uint64(ctr)}
}

// randomBlocks fills blocks with cryptographically strong randomness. It
// panics if the system randomness source fails, which per this package's
// design is the only unrecoverable error in the core (spec §5).
func randomBlocks(blocks []Block) {
	if len(blocks) == 0 {
		return
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&blocks[0])), len(blocks)*BlockSize)
	if _, err := rand.Read(buf); err != nil {
		panic("pak: random source failed: " + err.Error())
	}
}

//----------------------------------------------------------------
// Header (CBC mode)

// headerBlocks reinterprets a Header as its five constituent cipher blocks:
// two for hmac, one for iv, and two for the CBC-encrypted info header.
func headerBlocks(h *Header) *[5]Block {
	return (*[5]Block)(unsafe.Pointer(h))
}

// EncryptHeaderInplace CBC-encrypts the info portion of header using iv as
// chaining value, leaving hmac and iv themselves untouched (they are stored
// in the clear, though filled with random bytes by MemoryEditor.Finish so
// this has no observable effect).
func EncryptHeaderInplace(header *Header, key *Key) {
	fs := headerBlocks(header)
	fs[3] = xorBlock(speckEncrypt(fs[3], key), fs[2])
	fs[4] = xorBlock(speckEncrypt(fs[4], key), fs[3])
}

// DecryptHeaderInplace inverts EncryptHeaderInplace.
func DecryptHeaderInplace(header *Header, key *Key) {
	fs := headerBlocks(header)
	fs[4] = speckDecrypt(xorBlock(fs[4], fs[3]), key)
	fs[3] = speckDecrypt(xorBlock(fs[3], fs[2]), key)
}

// DecryptHeader returns the decrypted InfoHeader without mutating header.
func DecryptHeader(header *Header, key *Key) InfoHeader {
	fs := headerBlocks(header)
	dest := [2]Block{
		speckDecrypt(xorBlock(fs[3], fs[2]), key),
		speckDecrypt(xorBlock(fs[4], fs[3]), key),
	}
	return *(*InfoHeader)(unsafe.Pointer(&dest))
}

//----------------------------------------------------------------
// Directory and generic block streams (counter mode)

// cryptInplace XORs each block in blocks with the counter-mode keystream
// derived from nonce and key, in place. Encryption and decryption are the
// same XOR operation.
func cryptInplace(blocks []Block, nonce *Block, key *Key) {
	for i := range blocks {
		ctr := counter(nonce, i)
		blocks[i] = xorBlock(blocks[i], speckEncrypt(ctr, key))
	}
}

// EncryptDirInplace counter-mode encrypts a plaintext directory in place.
func EncryptDirInplace(dir []Descriptor, nonce *Block, key *Key) {
	blocks := descriptorsAsBlocks(dir)
	cryptInplace(blocks, nonce, key)
}

// DecryptDir decrypts the directory section described by section out of
// blocks, returning a fresh, owned slice of plaintext descriptors.
func DecryptDir(blocks []Block, section *Section, key *Key) []Descriptor {
	start := int(section.Offset)
	count := int(section.Size)
	end := start + count*DescriptorBlocks
	if start < 0 || end > len(blocks) || end < start {
		return nil
	}
	dest := make([]Block, count*DescriptorBlocks)
	cryptBlocks(blocks[start:end], &section.Nonce, key, dest)
	return blocksAsDescriptors(dest)
}

// cryptBlocks XORs src with the counter-mode keystream into dest. src and
// dest must have equal length.
func cryptBlocks(src []Block, nonce *Block, key *Key, dest []Block) {
	for i := range src {
		dest[i] = xorBlock(src[i], speckEncrypt(counter(nonce, i), key))
	}
}

// DecryptDesc decrypts a single 4-block descriptor, starting the counter at
// zero for the given nonce.
func DecryptDesc(encrypted *Descriptor, nonce *Block, key *Key) Descriptor {
	src := descriptorAsBlocks(encrypted)
	var dest [DescriptorBlocks]Block
	cryptBlocks(src[:], nonce, key, dest[:])
	return *blocksAsDescriptor(&dest)
}

//----------------------------------------------------------------
// Data (ranged, byte-accurate)

// DecryptData decrypts dest.len() bytes starting at byteOffset within
// blocks, using counter mode with nonce and key. If the requested range does
// not fit within blocks, this is a silent no-op.
func DecryptData(blocks []Block, nonce *Block, key *Key, byteOffset int, dest []byte) {
	byteEnd := byteOffset + len(dest)
	if byteOffset < 0 || byteEnd > len(blocks)*BlockSize {
		return
	}
	if len(dest) == 0 {
		return
	}

	blockStart := byteOffset / BlockSize
	blockEnd := byteEnd / BlockSize
	blockOffset := byteOffset - blockStart*BlockSize

	if blockStart == blockEnd {
		decryptSubdata(&blocks[blockStart], counter(nonce, blockStart), key, blockOffset, dest)
		return
	}

	if blockOffset != 0 {
		prefixSize := BlockSize - blockOffset
		decryptSubdata(&blocks[blockStart], counter(nonce, blockStart), key, blockOffset, dest[:prefixSize])
		dest = dest[prefixSize:]
		blockStart++
	}

	for blockI := blockStart; blockI < blockEnd; blockI++ {
		block := xorBlock(blocks[blockI], speckEncrypt(counter(nonce, blockI), key))
		copyBlockToBytes(dest[:BlockSize], &block)
		dest = dest[BlockSize:]
	}

	if len(dest) != 0 {
		decryptSubdata(&blocks[blockEnd], counter(nonce, blockEnd), key, 0, dest)
	}
}

func decryptSubdata(blockRef *Block, nonce Block, key *Key, byteOffset int, dest []byte) {
	xorKey := speckEncrypt(nonce, key)
	block := xorBlock(*blockRef, xorKey)
	blockBytes := blockAsBytes(&block)
	n := len(dest)
	if byteOffset+n > BlockSize {
		n = BlockSize - byteOffset
	}
	copy(dest[:n], blockBytes[byteOffset:byteOffset+n])
}

// EncryptData encrypts src into dest.len() bytes of blocks starting at
// byteOffset, using counter mode with nonce and key. The padding policy
// governs how a partial block's unmentioned bytes are treated. If the
// requested range does not fit within blocks, this is a silent no-op.
func EncryptData(blocks []Block, nonce *Block, key *Key, byteOffset int, src []byte, pad Pad) {
	byteEnd := byteOffset + len(src)
	if byteOffset < 0 || byteEnd > len(blocks)*BlockSize {
		return
	}
	if len(src) == 0 {
		return
	}

	blockStart := byteOffset / BlockSize
	blockEnd := byteEnd / BlockSize
	blockOffset := byteOffset - blockStart*BlockSize

	if blockStart == blockEnd {
		encryptSubdata(&blocks[blockStart], counter(nonce, blockStart), key, blockOffset, src, pad)
		return
	}

	if blockOffset != 0 {
		prefixSize := BlockSize - blockOffset
		encryptSubdata(&blocks[blockStart], counter(nonce, blockStart), key, blockOffset, src[:prefixSize], pad)
		src = src[prefixSize:]
		blockStart++
	}

	for blockI := blockStart; blockI < blockEnd; blockI++ {
		var block Block
		copyBytesToBlock(&block, src[:BlockSize])
		blocks[blockI] = xorBlock(block, speckEncrypt(counter(nonce, blockI), key))
		src = src[BlockSize:]
	}

	if len(src) != 0 {
		encryptSubdata(&blocks[blockEnd], counter(nonce, blockEnd), key, 0, src, pad)
	}
}

func encryptSubdata(blockMut *Block, nonce Block, key *Key, byteOffset int, src []byte, pad Pad) {
	xorKey := speckEncrypt(nonce, key)
	var block Block
	if pad == PadTransparent {
		block = xorBlock(*blockMut, xorKey)
	}
	blockBytes := blockAsBytesMut(&block)
	n := len(src)
	if byteOffset+n > BlockSize {
		n = BlockSize - byteOffset
	}
	copy(blockBytes[byteOffset:byteOffset+n], src[:n])
	*blockMut = xorBlock(block, xorKey)
}

// EncryptZero writes the raw keystream into blocks, i.e. the ciphertext of
// an all-zero plaintext.
func EncryptZero(blocks []Block, nonce *Block, key *Key) {
	for i := range blocks {
		blocks[i] = speckEncrypt(counter(nonce, i), key)
	}
}

// ReencryptData transforms blocks encrypted under (oldNonce, oldKey) into
// blocks encrypted under (newNonce, newKey), without ever materializing the
// plaintext: each block becomes oldKeystream XOR ciphertext XOR
// newKeystream.
func ReencryptData(blocks []Block, oldNonce, newNonce *Block, oldKey, newKey *Key) {
	for i := range blocks {
		block := xorBlock(blocks[i], speckEncrypt(counter(oldNonce, i), oldKey))
		blocks[i] = xorBlock(block, speckEncrypt(counter(newNonce, i), newKey))
	}
}

//----------------------------------------------------------------
// Unsafe reinterpretation helpers
//
// These mirror the original implementation's Pod/transmute reinterpret
// casts. Go has no direct equivalent for borrowing a slice of one struct
// type as another in place without unsafe; the casts below are confined to
// this file and are only ever applied to the fixed-layout, no-pointer types
// declared in types.go.

func blockAsBytes(b *Block) *[BlockSize]byte {
	return (*[BlockSize]byte)(unsafe.Pointer(b))
}

func blockAsBytesMut(b *Block) *[BlockSize]byte {
	return (*[BlockSize]byte)(unsafe.Pointer(b))
}

func copyBlockToBytes(dest []byte, b *Block) {
	copy(dest, blockAsBytes(b)[:])
}

func copyBytesToBlock(b *Block, src []byte) {
	copy(blockAsBytesMut(b)[:], src)
}

func descriptorAsBlocks(d *Descriptor) *[DescriptorBlocks]Block {
	return (*[DescriptorBlocks]Block)(unsafe.Pointer(d))
}

func descriptorsAsBlocks(dir []Descriptor) []Block {
	if len(dir) == 0 {
		return nil
	}
	return unsafe.Slice((*Block)(unsafe.Pointer(&dir[0])), len(dir)*DescriptorBlocks)
}

func blocksAsDescriptor(blocks *[DescriptorBlocks]Block) *Descriptor {
	return (*Descriptor)(unsafe.Pointer(blocks))
}

func blocksAsDescriptors(blocks []Block) []Descriptor {
	if len(blocks) == 0 {
		return nil
	}
	return unsafe.Slice((*Descriptor)(unsafe.Pointer(&blocks[0])), len(blocks)/DescriptorBlocks)
}
