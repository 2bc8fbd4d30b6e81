// Package curve exposes the secp256k1 scalar and point operations used by
// key derivation and the proof layer. Scalars always travel as fixed 32-byte
// big-endian arrays.
package curve

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const ScalarSize = 32

var (
	ErrInvalidScalar = errors.New("invalid scalar")
	ErrInvalidPoint  = errors.New("invalid point")

	// Order is the secp256k1 group order n.
	Order = new(big.Int).Set(secp256k1.S256().N)

	maxRandomScalarAttempts = 128
)

// Scalar is a 32-byte big-endian integer. Arithmetic helpers reduce their
// results mod n; validity (0 < s < n) is checked explicitly.
type Scalar [ScalarSize]byte

// ScalarFromBytes normalizes a variable-length big-endian integer to 32
// bytes. Leading zero bytes are stripped before the width check, so 31-,
// 32- and 33-byte renderings of the same value produce the same Scalar.
func ScalarFromBytes(b []byte) (Scalar, error) {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	b = b[i:]
	var s Scalar
	if len(b) > ScalarSize {
		return s, fmt.Errorf("%w: %d significant bytes", ErrInvalidScalar, len(b))
	}
	copy(s[ScalarSize-len(b):], b)
	return s, nil
}

func ScalarFromBigInt(v *big.Int) (Scalar, error) {
	var s Scalar
	if v == nil || v.Sign() < 0 || v.BitLen() > 8*ScalarSize {
		return s, ErrInvalidScalar
	}
	v.FillBytes(s[:])
	return s, nil
}

// ParseScalar requires exactly 32 bytes holding a value in [1, n-1].
func ParseScalar(b []byte) (Scalar, error) {
	var s Scalar
	if len(b) != ScalarSize {
		return s, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidScalar, ScalarSize, len(b))
	}
	copy(s[:], b)
	if !s.IsValid() {
		return Scalar{}, ErrInvalidScalar
	}
	return s, nil
}

// ScalarFromHash reduces a 32-byte digest mod n.
func ScalarFromHash(digest [32]byte) Scalar {
	var m secp256k1.ModNScalar
	m.SetBytes(&digest)
	return fromModN(&m)
}

// RandomScalar samples a valid scalar by rejection.
func RandomScalar(r io.Reader) (Scalar, error) {
	if r == nil {
		r = rand.Reader
	}
	var s Scalar
	for i := 0; i < maxRandomScalarAttempts; i++ {
		if _, err := io.ReadFull(r, s[:]); err != nil {
			return Scalar{}, err
		}
		if s.IsValid() {
			return s, nil
		}
	}
	return Scalar{}, fmt.Errorf("%w: rejection sampling exhausted", ErrInvalidScalar)
}

func (s Scalar) IsValid() bool {
	var m secp256k1.ModNScalar
	overflow := m.SetBytes((*[32]byte)(&s))
	return overflow == 0 && !m.IsZero()
}

func (s Scalar) IsZero() bool {
	return s == Scalar{}
}

func (s Scalar) BigInt() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

func (s Scalar) Bytes() []byte {
	return append([]byte(nil), s[:]...)
}

func ScalarAdd(a, b Scalar) Scalar {
	ma, mb := toModN(a), toModN(b)
	return fromModN(new(secp256k1.ModNScalar).Add2(&ma, &mb))
}

func ScalarMul(a, b Scalar) Scalar {
	ma, mb := toModN(a), toModN(b)
	return fromModN(new(secp256k1.ModNScalar).Mul2(&ma, &mb))
}

func ScalarNegate(a Scalar) Scalar {
	ma := toModN(a)
	return fromModN(new(secp256k1.ModNScalar).NegateVal(&ma))
}

func ScalarInverse(a Scalar) (Scalar, error) {
	ma := toModN(a)
	if ma.IsZero() {
		return Scalar{}, fmt.Errorf("%w: inverse of zero", ErrInvalidScalar)
	}
	return fromModN(new(secp256k1.ModNScalar).InverseValNonConst(&ma)), nil
}

// Zero overwrites the scalar in place.
func (s *Scalar) Zero() {
	for i := range s {
		s[i] = 0
	}
}

func toModN(s Scalar) secp256k1.ModNScalar {
	var m secp256k1.ModNScalar
	m.SetBytes((*[32]byte)(&s))
	return m
}

func fromModN(m *secp256k1.ModNScalar) Scalar {
	return Scalar(m.Bytes())
}
