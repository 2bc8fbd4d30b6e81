package keys

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"xrpl-crypto/go-core/pkg/addresscodec"
	"xrpl-crypto/go-core/pkg/curve"
	"xrpl-crypto/go-core/pkg/secret"
)

// PrivateKey is held in its 33-byte prefixed form: 0xED ‖ seed for Ed25519,
// 0x00 ‖ scalar for secp256k1.
type PrivateKey struct {
	alg Algorithm
	buf *secret.Buffer
}

// PrivateKeyFromBytes parses a 33-byte prefixed private key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeyLength {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrInvalidKey, PrivateKeyLength, len(b))
	}
	switch b[0] {
	case ed25519Prefix:
		return &PrivateKey{alg: Ed25519, buf: secret.New(b)}, nil
	case secp256k1Prefix:
		return NewSecp256k1PrivateKey(b)
	default:
		return nil, fmt.Errorf("%w: unknown private key prefix %02X", ErrInvalidKey, b[0])
	}
}

func ParsePrivateKeyHex(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	defer secret.Zero(b)
	return PrivateKeyFromBytes(b)
}

// NewSecp256k1PrivateKey accepts any big-endian rendering of the scalar from
// 1 to 33 bytes. Shorter and zero-padded forms of the same value normalize to
// the same key.
func NewSecp256k1PrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) == 0 || len(b) > PrivateKeyLength {
		return nil, fmt.Errorf("%w: secp256k1 key must be 1..%d bytes, got %d", ErrInvalidKey, PrivateKeyLength, len(b))
	}
	k, err := curve.ScalarFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	defer k.Zero()
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidKey)
	}
	prefixed := make([]byte, PrivateKeyLength)
	prefixed[0] = secp256k1Prefix
	copy(prefixed[1:], k[:])
	return &PrivateKey{alg: Secp256k1, buf: secret.Adopt(prefixed)}, nil
}

func (k *PrivateKey) Algorithm() Algorithm {
	return k.alg
}

func (k *PrivateKey) Prefixed() []byte {
	return k.buf.Bytes()
}

// Natural returns the 32 bytes of key material without the prefix.
func (k *PrivateKey) Natural() []byte {
	b := k.buf.Bytes()
	if len(b) == 0 {
		return b
	}
	out := append([]byte(nil), b[1:]...)
	secret.Zero(b)
	return out
}

// Use runs fn over the natural key bytes without copying them out.
func (k *PrivateKey) Use(fn func(natural []byte) error) error {
	return k.buf.Use(func(b []byte) error {
		return fn(b[1:])
	})
}

// Scalar returns the secp256k1 private scalar.
func (k *PrivateKey) Scalar() (curve.Scalar, error) {
	if k.alg != Secp256k1 {
		return curve.Scalar{}, fmt.Errorf("%w: %s key has no secp256k1 scalar", ErrUnsupportedAlgorithm, k.alg)
	}
	var s curve.Scalar
	err := k.Use(func(natural []byte) error {
		var err error
		s, err = curve.ParseScalar(natural)
		return err
	})
	return s, err
}

// PublicKey re-derives the public key from the private material.
func (k *PrivateKey) PublicKey() (PublicKey, error) {
	var kp *KeyPair
	err := k.Use(func(natural []byte) error {
		var err error
		switch k.alg {
		case Ed25519:
			kp, err = newEd25519KeyPair(natural)
		case Secp256k1:
			var s curve.Scalar
			s, err = curve.ParseScalar(natural)
			if err != nil {
				return err
			}
			defer s.Zero()
			kp, err = newSecp256k1KeyPair(s)
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, k.alg)
		}
		return err
	})
	if err != nil {
		return PublicKey{}, err
	}
	kp.PrivateKey.Destroy()
	return kp.PublicKey, nil
}

func (k *PrivateKey) Clone() *PrivateKey {
	return &PrivateKey{alg: k.alg, buf: k.buf.Clone()}
}

func (k *PrivateKey) Destroy() {
	k.buf.Destroy()
}

func (k *PrivateKey) Destroyed() bool {
	return k.buf.Destroyed()
}

func (k *PrivateKey) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("algorithm", k.alg.String()),
		slog.String("private_key", "[REDACTED]"),
	)
}

// PublicKey is an immutable 33-byte public key. The zero value is the empty
// key used as the signing-key placeholder on multi-signed transactions.
type PublicKey struct {
	b []byte
}

func EmptyPublicKey() PublicKey {
	return PublicKey{}
}

// PublicKeyFromBytes accepts a 33-byte key (0xED-prefixed Ed25519 or
// compressed secp256k1) or an empty slice for the placeholder.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) == 0 {
		return PublicKey{}, nil
	}
	if len(b) != addresscodec.PublicKeyLength {
		return PublicKey{}, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidKey, addresscodec.PublicKeyLength, len(b))
	}
	switch b[0] {
	case ed25519Prefix:
	case 0x02, 0x03:
		if _, err := curve.ParsePoint(b); err != nil {
			return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
	default:
		return PublicKey{}, fmt.Errorf("%w: unknown public key prefix %02X", ErrInvalidKey, b[0])
	}
	return PublicKey{b: append([]byte(nil), b...)}, nil
}

func ParsePublicKeyHex(s string) (PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return PublicKeyFromBytes(b)
}

func (p PublicKey) Bytes() []byte {
	return append([]byte(nil), p.b...)
}

func (p PublicKey) Hex() string {
	return strings.ToUpper(hex.EncodeToString(p.b))
}

func (p PublicKey) String() string {
	return p.Hex()
}

func (p PublicKey) IsEmpty() bool {
	return len(p.b) == 0
}

func (p PublicKey) Algorithm() (Algorithm, error) {
	if p.IsEmpty() {
		return 0, fmt.Errorf("%w: empty public key", ErrInvalidKey)
	}
	if p.b[0] == ed25519Prefix {
		return Ed25519, nil
	}
	return Secp256k1, nil
}

func (p PublicKey) Equal(q PublicKey) bool {
	return bytes.Equal(p.b, q.b)
}

func (p PublicKey) AccountID() addresscodec.AccountID {
	return addresscodec.AccountIDFromPublicKey(p.b)
}

// Address returns the classic "r..." address of the key's account.
func (p PublicKey) Address() string {
	return p.AccountID().String()
}

func (p PublicKey) NodePublicBase58() (string, error) {
	return addresscodec.EncodeNodePublicKey(p.b)
}

func (p PublicKey) AccountPublicBase58() (string, error) {
	return addresscodec.EncodeAccountPublicKey(p.b)
}

type KeyPair struct {
	PrivateKey *PrivateKey
	PublicKey  PublicKey
}

func (kp *KeyPair) Algorithm() Algorithm {
	return kp.PrivateKey.Algorithm()
}

func (kp *KeyPair) Address() string {
	return kp.PublicKey.Address()
}

// Clone copies the private key so the clone can be destroyed independently.
func (kp *KeyPair) Clone() *KeyPair {
	return &KeyPair{PrivateKey: kp.PrivateKey.Clone(), PublicKey: kp.PublicKey}
}

func (kp *KeyPair) Destroy() {
	if kp == nil || kp.PrivateKey == nil {
		return
	}
	kp.PrivateKey.Destroy()
}
