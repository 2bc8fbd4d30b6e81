package curve

import (
	"bytes"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const PointSize = 33

// Point is a secp256k1 group element kept in affine form. The zero value is
// the point at infinity.
type Point struct {
	p secp256k1.JacobianPoint
}

func newPoint(j *secp256k1.JacobianPoint) Point {
	var out Point
	out.p.Set(j)
	out.p.ToAffine()
	return out
}

// ParsePoint accepts only the 33-byte compressed encoding.
func ParsePoint(b []byte) (Point, error) {
	if len(b) != PointSize || (b[0] != 0x02 && b[0] != 0x03) {
		return Point{}, fmt.Errorf("%w: expected %d-byte compressed encoding", ErrInvalidPoint, PointSize)
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	var j secp256k1.JacobianPoint
	pub.AsJacobian(&j)
	return newPoint(&j), nil
}

func Generator() Point {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	var j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&one, &j)
	return newPoint(&j)
}

// BaseMul returns k·G.
func BaseMul(k Scalar) Point {
	mk := toModN(k)
	var j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&mk, &j)
	return newPoint(&j)
}

// Mul returns k·P.
func Mul(p Point, k Scalar) Point {
	if p.IsInfinity() {
		return Point{}
	}
	mk := toModN(k)
	var j secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&mk, &p.p, &j)
	return newPoint(&j)
}

func Add(a, b Point) Point {
	switch {
	case a.IsInfinity():
		return b
	case b.IsInfinity():
		return a
	}
	var j secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a.p, &b.p, &j)
	return newPoint(&j)
}

func Negate(a Point) Point {
	if a.IsInfinity() {
		return Point{}
	}
	out := a
	out.p.Y.Negate(1).Normalize()
	return out
}

func (p Point) IsInfinity() bool {
	return (p.p.X.IsZero() && p.p.Y.IsZero()) || p.p.Z.IsZero()
}

// Bytes returns the compressed encoding. The point at infinity has none.
func (p Point) Bytes() ([]byte, error) {
	if p.IsInfinity() {
		return nil, fmt.Errorf("%w: point at infinity", ErrInvalidPoint)
	}
	return secp256k1.NewPublicKey(&p.p.X, &p.p.Y).SerializeCompressed(), nil
}

// Equal compares compressed encodings; two infinities are equal.
func (p Point) Equal(q Point) bool {
	pInf, qInf := p.IsInfinity(), q.IsInfinity()
	if pInf || qInf {
		return pInf && qInf
	}
	pb, _ := p.Bytes()
	qb, _ := q.Bytes()
	return bytes.Equal(pb, qb)
}
