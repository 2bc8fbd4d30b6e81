package keys

import (
	"crypto/sha512"
	"fmt"
	"log/slog"

	"xrpl-crypto/go-core/pkg/addresscodec"
	"xrpl-crypto/go-core/pkg/secret"
)

// Seed is 16 bytes of entropy tagged with the algorithm its key pair is
// derived under.
type Seed struct {
	alg     Algorithm
	entropy *secret.Buffer
}

func GenerateSeed(alg Algorithm) (*Seed, error) {
	e, err := GenerateEntropy()
	if err != nil {
		return nil, err
	}
	defer e.Destroy()
	return SeedFromEntropy(e, alg)
}

// SeedFromEntropy encodes entropy under the algorithm's seed version and
// decodes the result back, so every Seed has been through the codec.
func SeedFromEntropy(e *Entropy, alg Algorithm) (*Seed, error) {
	version, err := alg.seedVersion()
	if err != nil {
		return nil, err
	}
	var encoded string
	err = e.buf.Use(func(b []byte) error {
		s, err := addresscodec.EncodeSeed(b, version)
		encoded = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return DecodeSeedAs(encoded, alg)
}

// SeedFromPassphrase derives entropy as the first 16 bytes of
// SHA-512(passphrase). The result is only as strong as the passphrase; it
// exists for compatibility with legacy deterministic accounts.
func SeedFromPassphrase(passphrase string, alg Algorithm) (*Seed, error) {
	sum := sha512.Sum512([]byte(passphrase))
	defer secret.Zero(sum[:])
	e, err := NewEntropy(sum[:EntropyLength])
	if err != nil {
		return nil, err
	}
	defer e.Destroy()
	return SeedFromEntropy(e, alg)
}

// DecodeSeed accepts either seed encoding and infers the algorithm from its
// version prefix.
func DecodeSeed(encoded string) (*Seed, error) {
	payload, version, err := addresscodec.DecodeSeed(encoded)
	if err != nil {
		return nil, err
	}
	alg, err := algorithmForVersion(version)
	if err != nil {
		secret.Zero(payload)
		return nil, err
	}
	return &Seed{alg: alg, entropy: secret.Adopt(payload)}, nil
}

// DecodeSeedAs decodes a seed that must carry the version of alg.
func DecodeSeedAs(encoded string, alg Algorithm) (*Seed, error) {
	version, err := alg.seedVersion()
	if err != nil {
		return nil, err
	}
	payload, _, err := addresscodec.DecodeChecked(encoded, []addresscodec.Version{version}, addresscodec.SeedLength)
	if err != nil {
		return nil, err
	}
	return &Seed{alg: alg, entropy: secret.Adopt(payload)}, nil
}

func (s *Seed) Algorithm() Algorithm {
	return s.alg
}

// Encode re-renders the seed in its Base58Check form.
func (s *Seed) Encode() (string, error) {
	version, err := s.alg.seedVersion()
	if err != nil {
		return "", err
	}
	var out string
	err = s.entropy.Use(func(b []byte) error {
		enc, err := addresscodec.EncodeSeed(b, version)
		out = enc
		return err
	})
	return out, err
}

func (s *Seed) Entropy() []byte {
	return s.entropy.Bytes()
}

func (s *Seed) Destroy() {
	s.entropy.Destroy()
}

func (s *Seed) Destroyed() bool {
	return s.entropy.Destroyed()
}

func (s *Seed) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("algorithm", s.alg.String()),
		slog.String("seed", "[REDACTED]"),
	)
}

// DeriveKeyPair derives the account key pair for the seed's algorithm.
func (s *Seed) DeriveKeyPair() (*KeyPair, error) {
	var kp *KeyPair
	err := s.entropy.Use(func(b []byte) error {
		var err error
		switch s.alg {
		case Ed25519:
			kp, err = deriveEd25519(b)
		case Secp256k1:
			kp, err = deriveSecp256k1Account(b)
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, s.alg)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return kp, nil
}

// DeriveValidatorKeyPair derives the node key pair. For secp256k1 this is the
// root generator pair; Ed25519 seeds have a single key pair.
func (s *Seed) DeriveValidatorKeyPair() (*KeyPair, error) {
	var kp *KeyPair
	err := s.entropy.Use(func(b []byte) error {
		var err error
		switch s.alg {
		case Ed25519:
			kp, err = deriveEd25519(b)
		case Secp256k1:
			kp, err = deriveSecp256k1Root(b)
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, s.alg)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return kp, nil
}
