// Package keys turns entropy into seeds and seeds into ledger key pairs for
// both supported signature algorithms.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"xrpl-crypto/go-core/pkg/addresscodec"
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrDerivationExhausted  = errors.New("key derivation exhausted")
	ErrInvalidKey           = errors.New("invalid key")
)

type Algorithm uint8

const (
	Ed25519 Algorithm = iota + 1
	Secp256k1
)

const (
	ed25519Prefix   byte = 0xED
	secp256k1Prefix byte = 0x00

	// PrivateKeyLength is the prefixed form: one algorithm byte plus 32
	// bytes of key material.
	PrivateKeyLength = 33
)

func (a Algorithm) String() string {
	switch a {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ed25519":
		return Ed25519, nil
	case "secp256k1":
		return Secp256k1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}

func (a Algorithm) seedVersion() (addresscodec.Version, error) {
	switch a {
	case Ed25519:
		return addresscodec.Ed25519SeedVersion, nil
	case Secp256k1:
		return addresscodec.FamilySeedVersion, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, a)
	}
}

func algorithmForVersion(v addresscodec.Version) (Algorithm, error) {
	switch v {
	case addresscodec.Ed25519SeedVersion:
		return Ed25519, nil
	case addresscodec.FamilySeedVersion:
		return Secp256k1, nil
	default:
		return 0, fmt.Errorf("%w: seed version %x", ErrUnsupportedAlgorithm, []byte(v))
	}
}
