package keyservice

import (
	"crypto/rand"
	"fmt"

	"xrpl-crypto/go-core/pkg/curve"
	"xrpl-crypto/go-core/pkg/keys"
	"xrpl-crypto/go-core/pkg/zkp"
)

// ProveSecretKey proves knowledge of keyID's secp256k1 private key, bound to
// contextID (nil or a 32-byte context hash). It returns the proof together
// with the public key it is about.
func (s *Service) ProveSecretKey(keyID string, contextID []byte) (zkp.SecretKeyProof, keys.PublicKey, error) {
	if s.alg != keys.Secp256k1 {
		return zkp.SecretKeyProof{}, keys.PublicKey{}, fmt.Errorf("%w: proofs need secp256k1 keys, service uses %s", keys.ErrUnsupportedAlgorithm, s.alg)
	}
	kp, err := s.keyPair(keyID)
	if err != nil {
		return zkp.SecretKeyProof{}, keys.PublicKey{}, err
	}
	defer kp.Destroy()

	sk, err := kp.PrivateKey.Scalar()
	if err != nil {
		return zkp.SecretKeyProof{}, keys.PublicKey{}, err
	}
	defer sk.Zero()
	pk, err := curve.ParsePoint(kp.PublicKey.Bytes())
	if err != nil {
		return zkp.SecretKeyProof{}, keys.PublicKey{}, err
	}
	proof, err := zkp.GenerateSecretKeyProof(rand.Reader, sk, pk, contextID)
	s.metrics.Proof("generate", err == nil)
	if err != nil {
		s.logger.Error("proof generation failed", "key_id", keyID, "error", err)
		return zkp.SecretKeyProof{}, keys.PublicKey{}, err
	}
	return proof, kp.PublicKey, nil
}

// VerifySecretKeyProof never errors; a malformed key simply fails.
func (s *Service) VerifySecretKeyProof(proof []byte, pub keys.PublicKey, contextID []byte) bool {
	pk, err := curve.ParsePoint(pub.Bytes())
	ok := err == nil && zkp.VerifySecretKeyProof(proof, pk, contextID)
	s.metrics.Proof("verify", ok)
	return ok
}
