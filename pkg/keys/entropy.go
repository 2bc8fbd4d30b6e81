package keys

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"xrpl-crypto/go-core/pkg/addresscodec"
	"xrpl-crypto/go-core/pkg/secret"
)

const EntropyLength = addresscodec.SeedLength

// Entropy is the 16 bytes of randomness a seed is built from.
type Entropy struct {
	buf *secret.Buffer
}

func GenerateEntropy() (*Entropy, error) {
	return generateEntropy(rand.Reader)
}

func generateEntropy(r io.Reader) (*Entropy, error) {
	b := make([]byte, EntropyLength)
	if _, err := io.ReadFull(r, b); err != nil {
		secret.Zero(b)
		return nil, err
	}
	return &Entropy{buf: secret.Adopt(b)}, nil
}

// NewEntropy copies b, which must be exactly 16 bytes.
func NewEntropy(b []byte) (*Entropy, error) {
	if len(b) != EntropyLength {
		return nil, fmt.Errorf("%w: entropy must be %d bytes, got %d", addresscodec.ErrEncode, EntropyLength, len(b))
	}
	return &Entropy{buf: secret.New(b)}, nil
}

// EntropyFromMnemonic recovers entropy from a 12-word BIP-39 mnemonic.
func EntropyFromMnemonic(mnemonic string) (*Entropy, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("%w: invalid mnemonic", addresscodec.ErrDecode)
	}
	b, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", addresscodec.ErrDecode, err)
	}
	defer secret.Zero(b)
	return NewEntropy(b)
}

func (e *Entropy) Bytes() []byte {
	return e.buf.Bytes()
}

// Mnemonic renders the entropy as a 12-word BIP-39 phrase. The phrase is a
// backup form only; derivation always uses the raw entropy.
func (e *Entropy) Mnemonic() (string, error) {
	var out string
	err := e.buf.Use(func(b []byte) error {
		m, err := bip39.NewMnemonic(b)
		out = m
		return err
	})
	return out, err
}

func (e *Entropy) Destroy() {
	e.buf.Destroy()
}

func (e *Entropy) Destroyed() bool {
	return e.buf.Destroyed()
}

func (e *Entropy) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}
