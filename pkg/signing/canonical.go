package signing

import (
	"errors"
	"fmt"
	"math/big"

	"xrpl-crypto/go-core/pkg/curve"
)

var ErrNonCanonical = errors.New("non-canonical signature")

const (
	minDERLength = 8
	maxDERLength = 72
	maxIntLength = 33
)

var halfOrder = new(big.Int).Rsh(curve.Order, 1)

// CheckCanonical enforces strict DER encoding and low S on an ECDSA
// signature. A signature that fails here is rejected even if it would verify.
func CheckCanonical(der []byte) error {
	if len(der) < minDERLength || len(der) > maxDERLength {
		return fmt.Errorf("%w: length %d", ErrNonCanonical, len(der))
	}
	if der[0] != 0x30 {
		return fmt.Errorf("%w: missing sequence tag", ErrNonCanonical)
	}
	if int(der[1]) != len(der)-2 {
		return fmt.Errorf("%w: sequence length mismatch", ErrNonCanonical)
	}
	r, rest, err := readInteger(der[2:])
	if err != nil {
		return fmt.Errorf("%w: r: %v", ErrNonCanonical, err)
	}
	s, rest, err := readInteger(rest)
	if err != nil {
		return fmt.Errorf("%w: s: %v", ErrNonCanonical, err)
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: trailing bytes", ErrNonCanonical)
	}
	if r.Cmp(curve.Order) >= 0 || s.Cmp(curve.Order) >= 0 {
		return fmt.Errorf("%w: component out of range", ErrNonCanonical)
	}
	if s.Cmp(halfOrder) > 0 {
		return fmt.Errorf("%w: high S", ErrNonCanonical)
	}
	return nil
}

// readInteger consumes one DER INTEGER that must be positive, non-zero and
// minimally encoded.
func readInteger(b []byte) (*big.Int, []byte, error) {
	if len(b) < 2 || b[0] != 0x02 {
		return nil, nil, errors.New("missing integer tag")
	}
	n := int(b[1])
	if n < 1 || n > maxIntLength {
		return nil, nil, fmt.Errorf("bad integer length %d", n)
	}
	if len(b) < 2+n {
		return nil, nil, errors.New("truncated integer")
	}
	v := b[2 : 2+n]
	if v[0]&0x80 != 0 {
		return nil, nil, errors.New("negative integer")
	}
	if n > 1 && v[0] == 0 && v[1]&0x80 == 0 {
		return nil, nil, errors.New("excess padding")
	}
	out := new(big.Int).SetBytes(v)
	if out.Sign() == 0 {
		return nil, nil, errors.New("zero integer")
	}
	return out, b[2+n:], nil
}
