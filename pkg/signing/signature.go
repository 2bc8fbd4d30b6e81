// Package signing produces and checks ledger signatures: DER-encoded ECDSA
// over SHA512-half for secp256k1 and raw Ed25519 over the signable bytes.
package signing

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"xrpl-crypto/go-core/pkg/hashing"
	"xrpl-crypto/go-core/pkg/keys"
)

// Signature is a DER blob for secp256k1 or 64 raw bytes for Ed25519.
type Signature []byte

func (s Signature) Hex() string {
	return strings.ToUpper(hex.EncodeToString(s))
}

func ParseSignatureHex(s string) (Signature, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return Signature(b), nil
}

// Sign signs msg with the key's algorithm. secp256k1 signatures use RFC 6979
// nonces and are always low-S.
func Sign(priv *keys.PrivateKey, msg []byte) (Signature, error) {
	var sig Signature
	err := priv.Use(func(natural []byte) error {
		switch priv.Algorithm() {
		case keys.Ed25519:
			sk := ed25519.NewKeyFromSeed(natural)
			defer zero(sk)
			sig = ed25519.Sign(sk, msg)
			return nil
		case keys.Secp256k1:
			hash := hashing.Sha512Half(msg)
			sk := secp256k1.PrivKeyFromBytes(natural)
			defer sk.Zero()
			der := ecdsa.Sign(sk, hash[:]).Serialize()
			if err := CheckCanonical(der); err != nil {
				return err
			}
			sig = der
			return nil
		default:
			return fmt.Errorf("%w: %s", keys.ErrUnsupportedAlgorithm, priv.Algorithm())
		}
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// Verify reports whether sig is a valid signature of msg under pub. It never
// errors: malformed keys or signatures simply fail.
func Verify(pub keys.PublicKey, msg []byte, sig Signature) bool {
	alg, err := pub.Algorithm()
	if err != nil {
		return false
	}
	raw := pub.Bytes()
	switch alg {
	case keys.Ed25519:
		if len(sig) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(raw[1:]), msg, sig)
	case keys.Secp256k1:
		if CheckCanonical(sig) != nil {
			return false
		}
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return false
		}
		pk, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return false
		}
		hash := hashing.Sha512Half(msg)
		return parsed.Verify(hash[:], pk)
	default:
		return false
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
