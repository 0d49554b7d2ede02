// Package pak implements an encrypted, content-addressed block archive.
//
// # Overview
//
// A PAK archive is a flat vector of fixed-size 16-byte blocks. The first
// five blocks hold a header (encrypted with CBC), the tail holds a flattened,
// pre-order descriptor tree (encrypted with counter mode) describing files
// and directories, and everything in between holds payload sections
// addressed by descriptors in the tree.
//
// # Cipher
//
// The entire archive is encrypted with Speck-128/128, a 32-round ARX block
// cipher operating on a pair of 64-bit words. The header uses CBC mode; the
// directory and file payloads use counter mode, which allows byte-accurate
// ranged decryption without touching unrelated blocks.
//
// # Basic usage
//
//	editor := pak.NewMemoryEditor()
//	key := pak.Key{13, 42}
//	editor.CreateFile([]byte("sub/foo"), content, &key)
//	blocks, _ := editor.Finish(&key)
//
//	reader := pak.NewMemoryReader(blocks, &key)
//	desc, ok := reader.Find([]byte("sub/foo"))
//	data := reader.ReadData(&desc)
//
// # Security considerations
//
// Protected against:
//   - Casual inspection of archive contents at rest.
//   - Partial-block tampering being silently folded into adjacent data
//     (counter mode keeps blocks independent of one another).
//
// Not protected against (see Non-goals below):
//   - Tampering: the header reserves an HMAC field but this package neither
//     computes nor verifies it.
//   - Key derivation from a password: callers supply a raw 128-bit key.
//   - Cryptographic agility: the cipher is fixed to Speck-128/128.
//
// # Non-goals
//
// Payload authentication, key derivation, compression, streaming
// construction, concurrent writers and cipher agility are all out of scope;
// an archive editor builds entirely in memory and is serialized once, with
// [MemoryEditor.Finish].
//
// # File layout
//
//	bytes   0..80   : header (5 blocks): hmac[32], iv[16], info[32]
//	bytes  80..D     : opaque payload sections, addressed by descriptors
//	bytes   D..D+64n : encrypted directory, n descriptors of 64 bytes each
//
// where D = info.directory.offset*16 and n = info.directory.size.
package pak
