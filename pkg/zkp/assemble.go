package zkp

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"xrpl-crypto/go-core/pkg/curve"
	"xrpl-crypto/go-core/pkg/secret"
)

const (
	SendParticipants = 3

	// LinkageProofLength is three commitment points and three responses.
	LinkageProofLength = 3*curve.PointSize + 3*curve.ScalarSize
)

// SamePlaintextProofLength is the size of a same-plaintext multi-proof over
// n ciphertexts: 1+2n points and 1+n scalars.
func SamePlaintextProofLength(n int) int {
	return curve.PointSize*(1+2*n) + curve.ScalarSize*(1+n)
}

var SendProofLength = SamePlaintextProofLength(SendParticipants) + 2*LinkageProofLength

// AssembleSendProof concatenates samePlaintext ‖ amountLinkage ‖
// balanceLinkage after checking each part's length.
func AssembleSendProof(samePlaintext, amountLinkage, balanceLinkage []byte) ([]byte, error) {
	if want := SamePlaintextProofLength(SendParticipants); len(samePlaintext) != want {
		return nil, fmt.Errorf("%w: same-plaintext proof must be %d bytes, got %d", ErrInvalidLength, want, len(samePlaintext))
	}
	if len(amountLinkage) != LinkageProofLength {
		return nil, fmt.Errorf("%w: amount linkage proof must be %d bytes, got %d", ErrInvalidLength, LinkageProofLength, len(amountLinkage))
	}
	if len(balanceLinkage) != LinkageProofLength {
		return nil, fmt.Errorf("%w: balance linkage proof must be %d bytes, got %d", ErrInvalidLength, LinkageProofLength, len(balanceLinkage))
	}
	out := make([]byte, 0, SendProofLength)
	out = append(out, samePlaintext...)
	out = append(out, amountLinkage...)
	return append(out, balanceLinkage...), nil
}

func SplitSendProof(blob []byte) (samePlaintext, amountLinkage, balanceLinkage []byte, err error) {
	if len(blob) != SendProofLength {
		return nil, nil, nil, fmt.Errorf("%w: send proof must be %d bytes, got %d", ErrInvalidLength, SendProofLength, len(blob))
	}
	n := SamePlaintextProofLength(SendParticipants)
	samePlaintext = append([]byte(nil), blob[:n]...)
	amountLinkage = append([]byte(nil), blob[n:n+LinkageProofLength]...)
	balanceLinkage = append([]byte(nil), blob[n+LinkageProofLength:]...)
	return samePlaintext, amountLinkage, balanceLinkage, nil
}

func SendProofHex(blob []byte) string {
	return strings.ToUpper(hex.EncodeToString(blob))
}

func ParseSendProofHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: send proof: %v", ErrInvalidLength, err)
	}
	if len(b) != SendProofLength {
		return nil, fmt.Errorf("%w: send proof must be %d bytes, got %d", ErrInvalidLength, SendProofLength, len(b))
	}
	return b, nil
}

// BlindingFactor is the secret randomness of a commitment, a scalar in
// [1, n-1].
type BlindingFactor struct {
	buf *secret.Buffer
}

func GenerateBlindingFactor(r io.Reader) (*BlindingFactor, error) {
	s, err := curve.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	defer s.Zero()
	return &BlindingFactor{buf: secret.New(s[:])}, nil
}

func BlindingFactorFromBytes(b []byte) (*BlindingFactor, error) {
	s, err := curve.ParseScalar(b)
	if err != nil {
		return nil, err
	}
	defer s.Zero()
	return &BlindingFactor{buf: secret.New(s[:])}, nil
}

func (f *BlindingFactor) Bytes() []byte {
	return f.buf.Bytes()
}

func (f *BlindingFactor) Scalar() (curve.Scalar, error) {
	var s curve.Scalar
	err := f.buf.Use(func(b []byte) error {
		copy(s[:], b)
		return nil
	})
	return s, err
}

func (f *BlindingFactor) Destroy() {
	f.buf.Destroy()
}

func (f *BlindingFactor) Destroyed() bool {
	return f.buf.Destroyed()
}

func (f *BlindingFactor) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}
