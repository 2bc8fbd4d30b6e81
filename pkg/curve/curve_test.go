package curve

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"
)

func mustScalar(t *testing.T) Scalar {
	t.Helper()
	s, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar failed: %v", err)
	}
	return s
}

func TestGeneratorEncoding(t *testing.T) {
	b, err := Generator().Bytes()
	if err != nil {
		t.Fatalf("encode generator failed: %v", err)
	}
	want := "0279BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798"
	if got := strings.ToUpper(hex.EncodeToString(b)); got != want {
		t.Fatalf("unexpected generator: %s", got)
	}
	var one Scalar
	one[31] = 1
	if !BaseMul(one).Equal(Generator()) {
		t.Fatal("1·G should equal G")
	}
}

func TestScalarPaddingInvariance(t *testing.T) {
	natural := make([]byte, 31)
	for i := range natural {
		natural[i] = byte(i + 1)
	}
	padded32 := append([]byte{0}, natural...)
	padded33 := append([]byte{0, 0}, natural...)

	a, err := ScalarFromBytes(natural)
	if err != nil {
		t.Fatalf("31-byte form failed: %v", err)
	}
	b, err := ScalarFromBytes(padded32)
	if err != nil {
		t.Fatalf("32-byte form failed: %v", err)
	}
	c, err := ScalarFromBytes(padded33)
	if err != nil {
		t.Fatalf("33-byte form failed: %v", err)
	}
	if a != b || b != c {
		t.Fatalf("padding changed value: %x %x %x", a, b, c)
	}
	if a.BigInt().Cmp(new(big.Int).SetBytes(natural)) != 0 {
		t.Fatal("numeric value changed by normalization")
	}
	if _, err := ScalarFromBytes(bytes.Repeat([]byte{1}, 33)); !errors.Is(err, ErrInvalidScalar) {
		t.Fatalf("expected ErrInvalidScalar for 33 significant bytes, got %v", err)
	}
}

func TestScalarValidity(t *testing.T) {
	var zero Scalar
	if zero.IsValid() {
		t.Fatal("zero must be invalid")
	}
	n, err := ScalarFromBigInt(Order)
	if err != nil {
		t.Fatalf("order conversion failed: %v", err)
	}
	if n.IsValid() {
		t.Fatal("n must be invalid")
	}
	nMinus1, err := ScalarFromBigInt(new(big.Int).Sub(Order, big.NewInt(1)))
	if err != nil {
		t.Fatalf("n-1 conversion failed: %v", err)
	}
	if !nMinus1.IsValid() {
		t.Fatal("n-1 must be valid")
	}
	if _, err := ParseScalar(n[:]); !errors.Is(err, ErrInvalidScalar) {
		t.Fatalf("expected ErrInvalidScalar, got %v", err)
	}
	if _, err := ParseScalar(nMinus1[:31]); !errors.Is(err, ErrInvalidScalar) {
		t.Fatalf("expected ErrInvalidScalar for short input, got %v", err)
	}
	if _, err := ScalarFromBigInt(big.NewInt(-1)); !errors.Is(err, ErrInvalidScalar) {
		t.Fatalf("expected ErrInvalidScalar for negative, got %v", err)
	}
}

func TestScalarArithmetic(t *testing.T) {
	a, b := mustScalar(t), mustScalar(t)

	sum := ScalarAdd(a, b)
	want := new(big.Int).Add(a.BigInt(), b.BigInt())
	want.Mod(want, Order)
	if sum.BigInt().Cmp(want) != 0 {
		t.Fatal("addition mismatch")
	}

	prod := ScalarMul(a, b)
	want = new(big.Int).Mul(a.BigInt(), b.BigInt())
	want.Mod(want, Order)
	if prod.BigInt().Cmp(want) != 0 {
		t.Fatal("multiplication mismatch")
	}

	if !ScalarAdd(a, ScalarNegate(a)).IsZero() {
		t.Fatal("a + (-a) should be zero")
	}

	inv, err := ScalarInverse(a)
	if err != nil {
		t.Fatalf("inverse failed: %v", err)
	}
	if ScalarMul(a, inv).BigInt().Cmp(big.NewInt(1)) != 0 {
		t.Fatal("a * a^-1 should be one")
	}
	if _, err := ScalarInverse(Scalar{}); !errors.Is(err, ErrInvalidScalar) {
		t.Fatalf("expected ErrInvalidScalar for inverse of zero, got %v", err)
	}
}

func TestPointArithmetic(t *testing.T) {
	a, b := mustScalar(t), mustScalar(t)
	aG, bG := BaseMul(a), BaseMul(b)

	if !Add(aG, bG).Equal(BaseMul(ScalarAdd(a, b))) {
		t.Fatal("aG + bG != (a+b)G")
	}
	if !Mul(aG, b).Equal(BaseMul(ScalarMul(a, b))) {
		t.Fatal("b·(aG) != (ab)G")
	}
	if !Add(aG, Negate(aG)).IsInfinity() {
		t.Fatal("P + (-P) should be infinity")
	}
	if !Negate(aG).Equal(BaseMul(ScalarNegate(a))) {
		t.Fatal("-(aG) != (-a)G")
	}
	if !Add(Point{}, aG).Equal(aG) || !Add(aG, Point{}).Equal(aG) {
		t.Fatal("infinity must be the identity")
	}
	if aG.Equal(bG) {
		t.Fatal("distinct scalars should give distinct points")
	}
	if _, err := (Point{}).Bytes(); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint encoding infinity, got %v", err)
	}
}

func TestParsePointRoundTripAndRejects(t *testing.T) {
	p := BaseMul(mustScalar(t))
	enc, err := p.Bytes()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	back, err := ParsePoint(enc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !back.Equal(p) {
		t.Fatal("round trip mismatch")
	}

	bad := append([]byte(nil), enc...)
	bad[0] = 0x04
	if _, err := ParsePoint(bad); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint for bad prefix, got %v", err)
	}
	if _, err := ParsePoint(enc[:32]); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint for short input, got %v", err)
	}
	offCurve := make([]byte, 33)
	offCurve[0] = 0x02
	for i := 1; i < 33; i++ {
		offCurve[i] = 0xFF
	}
	if _, err := ParsePoint(offCurve); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint for x >= p, got %v", err)
	}
}

func TestScalarFromHashReduces(t *testing.T) {
	var digest [32]byte
	for i := range digest {
		digest[i] = 0xFF
	}
	s := ScalarFromHash(digest)
	want := new(big.Int).SetBytes(digest[:])
	want.Mod(want, Order)
	if s.BigInt().Cmp(want) != 0 {
		t.Fatal("hash reduction mismatch")
	}
}
