// Package addresscodec implements the ledger's Base58Check encodings for
// account IDs, public keys, seeds and X-Addresses.
package addresscodec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"xrpl-crypto/go-core/pkg/hashing"
)

const AlphabetString = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

var (
	ErrDecode = errors.New("decode failed")
	ErrEncode = errors.New("encode failed")

	Alphabet = base58.NewAlphabet(AlphabetString)
)

// Version is the raw prefix placed in front of a payload before checksumming.
type Version string

const (
	AccountIDVersion        Version = "\x00"
	Ed25519SeedVersion      Version = "\x01\xE1\x4B"
	NodePublicVersion       Version = "\x1C"
	NodePrivateVersion      Version = "\x20"
	FamilySeedVersion       Version = "\x21"
	AccountSecretKeyVersion Version = "\x22"
	AccountPublicKeyVersion Version = "\x23"
)

const checksumLen = 4

func (v Version) Bytes() []byte {
	return []byte(v)
}

// EncodeBase58 encodes raw bytes with the ledger alphabet. Leading zero
// bytes are preserved as leading 'r' characters.
func EncodeBase58(b []byte) string {
	return base58.EncodeAlphabet(b, Alphabet)
}

func DecodeBase58(s string) ([]byte, error) {
	b, err := base58.DecodeAlphabet(s, Alphabet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

// EncodeChecked returns Base58(version ‖ payload ‖ checksum).
func EncodeChecked(payload []byte, version Version) string {
	buf := make([]byte, 0, len(version)+len(payload)+checksumLen)
	buf = append(buf, version.Bytes()...)
	buf = append(buf, payload...)
	sum := hashing.Checksum(buf)
	buf = append(buf, sum[:]...)
	return EncodeBase58(buf)
}

// DecodeChecked verifies the checksum of s and matches its prefix against
// the acceptable versions, in order. When expectedLen is positive the
// payload must have exactly that length.
func DecodeChecked(s string, versions []Version, expectedLen int) ([]byte, Version, error) {
	raw, err := DecodeBase58(s)
	if err != nil {
		return nil, "", err
	}
	if len(raw) < checksumLen+1 {
		return nil, "", fmt.Errorf("%w: input too short", ErrDecode)
	}
	body, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	want := hashing.Checksum(body)
	if !bytes.Equal(sum, want[:]) {
		return nil, "", fmt.Errorf("%w: checksum mismatch", ErrDecode)
	}
	for _, v := range versions {
		if len(body) < len(v) || !bytes.HasPrefix(body, v.Bytes()) {
			continue
		}
		payload := body[len(v):]
		if expectedLen > 0 && len(payload) != expectedLen {
			continue
		}
		return append([]byte(nil), payload...), v, nil
	}
	if expectedLen > 0 {
		return nil, "", fmt.Errorf("%w: version or payload length mismatch", ErrDecode)
	}
	return nil, "", fmt.Errorf("%w: version mismatch", ErrDecode)
}
