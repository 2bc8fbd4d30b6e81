package keys

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"xrpl-crypto/go-core/pkg/curve"
	"xrpl-crypto/go-core/pkg/hashing"
	"xrpl-crypto/go-core/pkg/secret"
)

// maxDerivationAttempts bounds the counter in deriveScalar. The counter is
// 32 bits wide on the wire.
var maxDerivationAttempts uint64 = 1 << 32

// deriveScalar hashes input ‖ [discriminator] ‖ counter until the
// SHA512-half digest is a valid scalar.
func deriveScalar(input []byte, discriminator *uint32) (curve.Scalar, error) {
	buf := make([]byte, 0, len(input)+8)
	buf = append(buf, input...)
	if discriminator != nil {
		buf = binary.BigEndian.AppendUint32(buf, *discriminator)
	}
	counterAt := len(buf)
	buf = append(buf, 0, 0, 0, 0)
	defer secret.Zero(buf)

	for i := uint64(0); i < maxDerivationAttempts; i++ {
		binary.BigEndian.PutUint32(buf[counterAt:], uint32(i))
		digest := hashing.Sha512Half(buf)
		s := curve.Scalar(digest)
		secret.Zero(digest[:])
		if s.IsValid() {
			return s, nil
		}
	}
	return curve.Scalar{}, ErrDerivationExhausted
}

func deriveSecp256k1Root(entropy []byte) (*KeyPair, error) {
	privateGen, err := deriveScalar(entropy, nil)
	if err != nil {
		return nil, err
	}
	defer privateGen.Zero()
	return newSecp256k1KeyPair(privateGen)
}

// deriveSecp256k1Account applies the ledger's account-family tweak:
// account = deriveScalar(publicGen, 0) + privateGen mod n.
func deriveSecp256k1Account(entropy []byte) (*KeyPair, error) {
	privateGen, err := deriveScalar(entropy, nil)
	if err != nil {
		return nil, err
	}
	defer privateGen.Zero()
	publicGen, err := curve.BaseMul(privateGen).Bytes()
	if err != nil {
		return nil, err
	}
	var family uint32
	tweak, err := deriveScalar(publicGen, &family)
	if err != nil {
		return nil, err
	}
	defer tweak.Zero()
	account := curve.ScalarAdd(tweak, privateGen)
	defer account.Zero()
	if !account.IsValid() {
		return nil, fmt.Errorf("%w: account scalar is zero", ErrDerivationExhausted)
	}
	return newSecp256k1KeyPair(account)
}

func newSecp256k1KeyPair(k curve.Scalar) (*KeyPair, error) {
	pub, err := curve.BaseMul(k).Bytes()
	if err != nil {
		return nil, err
	}
	prefixed := make([]byte, PrivateKeyLength)
	prefixed[0] = secp256k1Prefix
	copy(prefixed[1:], k[:])
	return &KeyPair{
		PrivateKey: &PrivateKey{alg: Secp256k1, buf: secret.Adopt(prefixed)},
		PublicKey:  PublicKey{b: pub},
	}, nil
}

// deriveEd25519 uses SHA512-half(entropy) as the RFC 8032 private seed.
func deriveEd25519(entropy []byte) (*KeyPair, error) {
	digest := hashing.Sha512Half(entropy)
	defer secret.Zero(digest[:])
	return newEd25519KeyPair(digest[:])
}

func newEd25519KeyPair(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: ed25519 seed must be %d bytes", ErrInvalidKey, ed25519.SeedSize)
	}
	sk := ed25519.NewKeyFromSeed(seed)
	defer secret.Zero(sk)
	pk := sk.Public().(ed25519.PublicKey)

	prefixed := make([]byte, PrivateKeyLength)
	prefixed[0] = ed25519Prefix
	copy(prefixed[1:], seed)
	pub := make([]byte, 0, PrivateKeyLength)
	pub = append(pub, ed25519Prefix)
	pub = append(pub, pk...)
	return &KeyPair{
		PrivateKey: &PrivateKey{alg: Ed25519, buf: secret.Adopt(prefixed)},
		PublicKey:  PublicKey{b: pub},
	}, nil
}
