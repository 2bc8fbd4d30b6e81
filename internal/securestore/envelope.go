// Package securestore seals small secrets at rest: argon2id stretches the
// passphrase, XChaCha20-Poly1305 encrypts, and the JSON envelope records the
// KDF parameters used.
package securestore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	saltSize        = 16
	filePrefix      = "XRPLKS1\n"
	kdfName         = "argon2id"

	defaultKDFTime     = 2
	defaultKDFMemoryKB = 64 * 1024
	defaultKDFThreads  = 1
)

var (
	ErrAuthFailed         = errors.New("securestore authentication failed")
	ErrInvalid            = errors.New("securestore envelope is invalid")
	ErrUnknownFormat      = errors.New("securestore data has unknown format")
	ErrPassphraseRequired = errors.New("securestore passphrase is required")
)

type Envelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Encrypt seals plaintext and returns the prefixed file form.
func Encrypt(passphrase string, plaintext []byte) ([]byte, error) {
	env, err := EncryptEnvelope(passphrase, plaintext)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(filePrefix), raw...), nil
}

func EncryptEnvelope(passphrase string, plaintext []byte) (*Envelope, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, ErrPassphraseRequired
	}
	env := &Envelope{
		Version:     envelopeVersion,
		KDF:         kdfName,
		KDFTime:     defaultKDFTime,
		KDFMemoryKB: defaultKDFMemoryKB,
		KDFThreads:  defaultKDFThreads,
		Salt:        make([]byte, saltSize),
		Nonce:       make([]byte, chacha20poly1305.NonceSizeX),
	}
	if _, err := rand.Read(env.Salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, err
	}
	key := env.deriveKey(passphrase)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	env.Ciphertext = aead.Seal(nil, env.Nonce, plaintext, []byte(filePrefix))
	return env, nil
}

func Decrypt(passphrase string, data []byte) ([]byte, error) {
	if !strings.HasPrefix(string(data), filePrefix) {
		return nil, ErrUnknownFormat
	}
	var env Envelope
	if err := json.Unmarshal(data[len(filePrefix):], &env); err != nil {
		return nil, ErrInvalid
	}
	return DecryptEnvelope(passphrase, &env)
}

func DecryptEnvelope(passphrase string, env *Envelope) ([]byte, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	key := env.deriveKey(passphrase)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, []byte(filePrefix))
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// validate bounds the KDF parameters so a crafted file cannot demand
// unbounded memory.
func (e *Envelope) validate() error {
	switch {
	case e == nil, e.Version != envelopeVersion, e.KDF != kdfName:
		return ErrInvalid
	case len(e.Salt) != saltSize, len(e.Nonce) != chacha20poly1305.NonceSizeX:
		return ErrInvalid
	case e.KDFTime == 0 || e.KDFTime > 16:
		return ErrInvalid
	case e.KDFMemoryKB < 8*1024 || e.KDFMemoryKB > 1024*1024:
		return ErrInvalid
	case e.KDFThreads == 0:
		return ErrInvalid
	}
	return nil
}

func (e *Envelope) deriveKey(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), e.Salt, e.KDFTime, e.KDFMemoryKB, e.KDFThreads, chacha20poly1305.KeySize)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
