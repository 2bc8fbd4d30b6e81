// Package zkp holds the proof-side helpers for confidential balances: the
// Schnorr proof of secret-key knowledge, transaction context hashes that bind
// proofs to one transaction, and the send-proof blob layout.
package zkp

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"xrpl-crypto/go-core/pkg/curve"
)

// Domain separates secret-key registration challenges from any other hash.
const Domain = "MPT_POK_SK_REGISTER"

const SecretKeyProofLength = curve.PointSize + curve.ScalarSize

// maxProofAttempts bounds the nonce retries when the response s reduces to
// zero. A healthy reader needs one attempt.
var maxProofAttempts = 128

var (
	ErrInvalidProof  = errors.New("invalid proof")
	ErrInvalidLength = errors.New("invalid length")
)

// SecretKeyProof is T ‖ s: a compressed commitment point and the response.
type SecretKeyProof [SecretKeyProofLength]byte

func (p SecretKeyProof) Bytes() []byte {
	return append([]byte(nil), p[:]...)
}

func (p SecretKeyProof) Hex() string {
	return strings.ToUpper(hex.EncodeToString(p[:]))
}

// GenerateSecretKeyProof proves knowledge of sk for pk = sk·G. contextID is
// either nil or exactly 32 bytes; when nil it is left out of the challenge.
func GenerateSecretKeyProof(r io.Reader, sk curve.Scalar, pk curve.Point, contextID []byte) (SecretKeyProof, error) {
	var proof SecretKeyProof
	if !sk.IsValid() {
		return proof, fmt.Errorf("%w: secret key out of range", curve.ErrInvalidScalar)
	}
	if contextID != nil && len(contextID) != ContextHashLength {
		return proof, fmt.Errorf("%w: context id must be %d bytes, got %d", ErrInvalidLength, ContextHashLength, len(contextID))
	}
	if !curve.BaseMul(sk).Equal(pk) {
		return proof, fmt.Errorf("%w: public key does not match secret key", curve.ErrInvalidPoint)
	}
	pkBytes, err := pk.Bytes()
	if err != nil {
		return proof, err
	}

	for i := 0; i < maxProofAttempts; i++ {
		k, err := curve.RandomScalar(r)
		if err != nil {
			return proof, err
		}
		tBytes, err := curve.BaseMul(k).Bytes()
		if err != nil {
			k.Zero()
			return proof, err
		}
		e := challenge(pkBytes, tBytes, contextID)
		s := curve.ScalarAdd(k, curve.ScalarMul(e, sk))
		k.Zero()
		if !s.IsValid() {
			continue
		}
		copy(proof[:curve.PointSize], tBytes)
		copy(proof[curve.PointSize:], s[:])
		return proof, nil
	}
	return proof, fmt.Errorf("%w: proof nonce retries exhausted", curve.ErrInvalidScalar)
}

// VerifySecretKeyProof checks s·G == T + e·P. It returns false for any
// malformed input rather than an error.
func VerifySecretKeyProof(proof []byte, pk curve.Point, contextID []byte) bool {
	if len(proof) != SecretKeyProofLength {
		return false
	}
	if contextID != nil && len(contextID) != ContextHashLength {
		return false
	}
	if pk.IsInfinity() {
		return false
	}
	t, err := curve.ParsePoint(proof[:curve.PointSize])
	if err != nil {
		return false
	}
	s, err := curve.ParseScalar(proof[curve.PointSize:])
	if err != nil {
		return false
	}
	pkBytes, err := pk.Bytes()
	if err != nil {
		return false
	}
	e := challenge(pkBytes, proof[:curve.PointSize], contextID)
	return curve.BaseMul(s).Equal(curve.Add(t, curve.Mul(pk, e)))
}

func challenge(pk, t, contextID []byte) curve.Scalar {
	h := sha256.New()
	h.Write([]byte(Domain))
	h.Write(pk)
	h.Write(t)
	if contextID != nil {
		h.Write(contextID)
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return curve.ScalarFromHash(digest)
}
