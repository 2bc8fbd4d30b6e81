// Package hashing holds the digests the ledger protocol is built on.
package hashing

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160"
)

// Sha512Half returns the first 32 bytes of SHA-512 over the concatenation
// of parts.
func Sha512Half(parts ...[]byte) [32]byte {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil)[:32])
	return out
}

func DoubleSha256(in []byte) [32]byte {
	a := sha256.Sum256(in)
	return sha256.Sum256(a[:])
}

// Checksum is the 4-byte Base58Check suffix.
func Checksum(in []byte) [4]byte {
	d := DoubleSha256(in)
	var out [4]byte
	copy(out[:], d[:4])
	return out
}

// AccountID hashes a public key into its 20-byte account identifier,
// RIPEMD160(SHA256(publicKey)).
func AccountID(publicKey []byte) [20]byte {
	a := sha256.Sum256(publicKey)
	rmd := ripemd160.New()
	rmd.Write(a[:])
	var out [20]byte
	copy(out[:], rmd.Sum(nil))
	return out
}
