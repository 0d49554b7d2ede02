package pak

import "math/bits"

// speckRounds is the number of rounds in Speck-128/128.
const speckRounds = 32

// speckEncrypt encrypts a single block with Speck-128/128.
//
// The round function on (x, y, k) is:
//
//	x = rotr(x, 8) + y; x ^= k
//	y = rotl(y, 3); y ^= x
//
// The key schedule advances (a, b) with the same round function, subkey i,
// and uses b as the round key before each advance.
func speckEncrypt(block Block, key *Key) Block {
	y, x := block[0], block[1]
	b, a := key[0], key[1]
	for i := uint64(0); i < speckRounds; i++ {
		y = bits.RotateLeft64(y, -8) + x
		y ^= b
		x = bits.RotateLeft64(x, 3)
		x ^= y

		a = bits.RotateLeft64(a, -8) + b
		a ^= i
		b = bits.RotateLeft64(b, 3)
		b ^= a
	}
	return Block{y, x}
}

// speckDecrypt decrypts a single block with Speck-128/128.
func speckDecrypt(block Block, key *Key) Block {
	var roundKeys [speckRounds]uint64
	b, a := key[0], key[1]
	for i := uint64(0); i < speckRounds; i++ {
		roundKeys[i] = b
		a = bits.RotateLeft64(a, -8) + b
		a ^= i
		b = bits.RotateLeft64(b, 3)
		b ^= a
	}
	y, x := block[0], block[1]
	for i := speckRounds - 1; i >= 0; i-- {
		k := roundKeys[i]
		x ^= y
		x = bits.RotateLeft64(x, -3)
		y = (y ^ k) - x
		y = bits.RotateLeft64(y, 8)
	}
	return Block{y, x}
}
