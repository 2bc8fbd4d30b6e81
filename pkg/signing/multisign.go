package signing

import (
	"errors"
	"fmt"

	"xrpl-crypto/go-core/pkg/addresscodec"
	"xrpl-crypto/go-core/pkg/keys"
)

var ErrNoApplier = errors.New("transaction signer has no applier")

var (
	singleSignPrefix = []byte{'S', 'T', 'X', 0}
	multiSignPrefix  = []byte{'S', 'M', 'T', 0}
)

// Encoder produces the bytes a signature covers. Multi-sign bytes must
// include the signer's account so a contribution cannot be replayed as
// another signer's.
type Encoder[T any] interface {
	SignableBytes(tx T) ([]byte, error)
	MultiSignableBytes(tx T, signer addresscodec.AccountID) ([]byte, error)
}

// Applier attaches a finished signature to a transaction.
type Applier[T any] interface {
	AddSignature(tx T, pub keys.PublicKey, sig Signature) (T, error)
}

type SignerSignature struct {
	PublicKey keys.PublicKey
	Signature Signature
}

type TransactionSigner[T any] struct {
	encoder Encoder[T]
	applier Applier[T]
}

// NewTransactionSigner wires an encoder and an optional applier. Without an
// applier SignTransaction returns ErrNoApplier.
func NewTransactionSigner[T any](encoder Encoder[T], applier Applier[T]) *TransactionSigner[T] {
	return &TransactionSigner[T]{encoder: encoder, applier: applier}
}

func (s *TransactionSigner[T]) Sign(priv *keys.PrivateKey, tx T) (Signature, error) {
	msg, err := s.encoder.SignableBytes(tx)
	if err != nil {
		return nil, fmt.Errorf("signable bytes: %w", err)
	}
	return Sign(priv, msg)
}

// SignTransaction signs tx and hands the signature to the applier.
func (s *TransactionSigner[T]) SignTransaction(priv *keys.PrivateKey, tx T) (T, error) {
	var zeroTx T
	if s.applier == nil {
		return zeroTx, ErrNoApplier
	}
	pub, err := priv.PublicKey()
	if err != nil {
		return zeroTx, err
	}
	sig, err := s.Sign(priv, tx)
	if err != nil {
		return zeroTx, err
	}
	return s.applier.AddSignature(tx, pub, sig)
}

func (s *TransactionSigner[T]) MultiSign(priv *keys.PrivateKey, tx T) (Signature, error) {
	pub, err := priv.PublicKey()
	if err != nil {
		return nil, err
	}
	msg, err := s.encoder.MultiSignableBytes(tx, pub.AccountID())
	if err != nil {
		return nil, fmt.Errorf("multi-signable bytes: %w", err)
	}
	return Sign(priv, msg)
}

func (s *TransactionSigner[T]) Verify(pub keys.PublicKey, tx T, sig Signature) bool {
	msg, err := s.encoder.SignableBytes(tx)
	if err != nil {
		return false
	}
	return Verify(pub, msg, sig)
}

// VerifyMultiSigned checks every signer independently against its own
// multi-sign bytes and succeeds when at least minSigners distinct accounts
// verify. One bad entry does not invalidate the rest.
func (s *TransactionSigner[T]) VerifyMultiSigned(sigs []SignerSignature, tx T, minSigners int) bool {
	if minSigners < 1 {
		return false
	}
	valid := make(map[addresscodec.AccountID]struct{}, len(sigs))
	for _, entry := range sigs {
		if entry.PublicKey.IsEmpty() {
			continue
		}
		account := entry.PublicKey.AccountID()
		if _, seen := valid[account]; seen {
			continue
		}
		msg, err := s.encoder.MultiSignableBytes(tx, account)
		if err != nil {
			continue
		}
		if Verify(entry.PublicKey, msg, entry.Signature) {
			valid[account] = struct{}{}
		}
	}
	return len(valid) >= minSigners
}

// PrefixEncoder signs already-serialized transactions using the ledger hash
// prefixes: STX\0 for single signing, SMT\0 ‖ tx ‖ account for multi-signing.
type PrefixEncoder struct{}

func (PrefixEncoder) SignableBytes(tx []byte) ([]byte, error) {
	out := make([]byte, 0, len(singleSignPrefix)+len(tx))
	out = append(out, singleSignPrefix...)
	return append(out, tx...), nil
}

func (PrefixEncoder) MultiSignableBytes(tx []byte, signer addresscodec.AccountID) ([]byte, error) {
	out := make([]byte, 0, len(multiSignPrefix)+len(tx)+len(signer))
	out = append(out, multiSignPrefix...)
	out = append(out, tx...)
	return append(out, signer[:]...), nil
}
