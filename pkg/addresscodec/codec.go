package addresscodec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"xrpl-crypto/go-core/pkg/hashing"
)

const (
	AccountIDLength = 20
	PublicKeyLength = 33
	SeedLength      = 16
)

// AccountID is the 20-byte account identifier, RIPEMD160(SHA256(publicKey)).
type AccountID [AccountIDLength]byte

func AccountIDFromPublicKey(publicKey []byte) AccountID {
	return AccountID(hashing.AccountID(publicKey))
}

func AccountIDFromBytes(b []byte) (AccountID, error) {
	var id AccountID
	if len(b) != AccountIDLength {
		return id, fmt.Errorf("%w: account id must be %d bytes, got %d", ErrEncode, AccountIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String returns the classic "r..." address.
func (id AccountID) String() string {
	return EncodeChecked(id[:], AccountIDVersion)
}

func (id AccountID) Hex() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

func EncodeClassicAddress(accountID []byte) (string, error) {
	id, err := AccountIDFromBytes(accountID)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func DecodeClassicAddress(address string) (AccountID, error) {
	payload, _, err := DecodeChecked(address, []Version{AccountIDVersion}, AccountIDLength)
	if err != nil {
		return AccountID{}, err
	}
	return AccountIDFromBytes(payload)
}

func IsValidClassicAddress(address string) bool {
	_, err := DecodeClassicAddress(address)
	return err == nil
}

// EncodeClassicAddressFromPublicKey hashes a 33-byte public key and renders
// the resulting account ID as a classic address.
func EncodeClassicAddressFromPublicKey(publicKey []byte) (string, error) {
	if len(publicKey) != PublicKeyLength {
		return "", fmt.Errorf("%w: public key must be %d bytes, got %d", ErrEncode, PublicKeyLength, len(publicKey))
	}
	return AccountIDFromPublicKey(publicKey).String(), nil
}

func EncodeNodePublicKey(publicKey []byte) (string, error) {
	return encodeFixed(publicKey, NodePublicVersion, PublicKeyLength, "node public key")
}

func DecodeNodePublicKey(s string) ([]byte, error) {
	payload, _, err := DecodeChecked(s, []Version{NodePublicVersion}, PublicKeyLength)
	return payload, err
}

func EncodeAccountPublicKey(publicKey []byte) (string, error) {
	return encodeFixed(publicKey, AccountPublicKeyVersion, PublicKeyLength, "account public key")
}

func DecodeAccountPublicKey(s string) ([]byte, error) {
	payload, _, err := DecodeChecked(s, []Version{AccountPublicKeyVersion}, PublicKeyLength)
	return payload, err
}

// EncodeSeed encodes 16 bytes of entropy under one of the two seed versions.
func EncodeSeed(entropy []byte, version Version) (string, error) {
	if version != Ed25519SeedVersion && version != FamilySeedVersion {
		return "", fmt.Errorf("%w: unsupported seed version %x", ErrEncode, []byte(version))
	}
	return encodeFixed(entropy, version, SeedLength, "seed entropy")
}

// DecodeSeed accepts either seed version and reports which one matched.
func DecodeSeed(seed string) ([]byte, Version, error) {
	return DecodeChecked(seed, []Version{Ed25519SeedVersion, FamilySeedVersion}, SeedLength)
}

func encodeFixed(payload []byte, version Version, size int, what string) (string, error) {
	if len(payload) != size {
		return "", fmt.Errorf("%w: %s must be %d bytes, got %d", ErrEncode, what, size, len(payload))
	}
	return EncodeChecked(payload, version), nil
}
