// Package keyservice derives per-identifier key pairs from one server secret
// and keeps recently used pairs in a short-lived cache. Every caller gets an
// independent copy of the private key; cache eviction destroys the cached one.
package keyservice

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"xrpl-crypto/go-core/internal/metrics"
	"xrpl-crypto/go-core/internal/platform/privacylog"
	"xrpl-crypto/go-core/internal/platform/ratelimiter"
	"xrpl-crypto/go-core/pkg/keys"
	"xrpl-crypto/go-core/pkg/secret"
	"xrpl-crypto/go-core/pkg/signing"
)

const (
	DefaultCacheSize = 10_000
	DefaultCacheTTL  = 30 * time.Second

	minServerSecretLength = 32
	maxKeyIDLength        = 256
)

var (
	ErrRateLimited  = errors.New("key id rate limited")
	ErrInvalidKeyID = errors.New("invalid key id")
	ErrClosed       = errors.New("key service closed")
	ErrWeakSecret   = errors.New("server secret too short")
)

type Options struct {
	ServerSecret []byte
	Algorithm    keys.Algorithm
	CacheSize    int
	CacheTTL     time.Duration

	// Encoder defaults to signing.PrefixEncoder.
	Encoder signing.Encoder[[]byte]
	Limiter *ratelimiter.MapLimiter
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

type Service struct {
	serverSecret *secret.Buffer
	alg          keys.Algorithm
	signer       *signing.TransactionSigner[[]byte]
	limiter      *ratelimiter.MapLimiter
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time

	// mu serializes cache misses so a concurrent Add never silently
	// replaces (and leaks) a live key pair.
	mu     sync.Mutex
	cache  *expirable.LRU[string, *keys.KeyPair]
	closed bool
}

func New(opts Options) (*Service, error) {
	if len(opts.ServerSecret) < minServerSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, minServerSecretLength)
	}
	switch opts.Algorithm {
	case keys.Ed25519, keys.Secp256k1:
	default:
		return nil, fmt.Errorf("%w: %s", keys.ErrUnsupportedAlgorithm, opts.Algorithm)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Encoder == nil {
		opts.Encoder = signing.PrefixEncoder{}
	}
	if opts.Logger == nil {
		opts.Logger = privacylog.DefaultLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		serverSecret: secret.New(opts.ServerSecret),
		alg:          opts.Algorithm,
		signer:       signing.NewTransactionSigner[[]byte](opts.Encoder, nil),
		limiter:      opts.Limiter,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		now:          opts.Now,
	}
	s.cache = expirable.NewLRU[string, *keys.KeyPair](opts.CacheSize, s.onEvict, opts.CacheTTL)
	return s, nil
}

func (s *Service) Algorithm() keys.Algorithm {
	return s.alg
}

func (s *Service) PublicKey(keyID string) (keys.PublicKey, error) {
	kp, err := s.keyPair(keyID)
	if err != nil {
		return keys.PublicKey{}, err
	}
	defer kp.Destroy()
	return kp.PublicKey, nil
}

func (s *Service) Address(keyID string) (string, error) {
	pub, err := s.PublicKey(keyID)
	if err != nil {
		return "", err
	}
	return pub.Address(), nil
}

// Sign returns the signature and the public key that verifies it. One call
// consumes one rate-limit token.
func (s *Service) Sign(keyID string, tx []byte) (signing.Signature, keys.PublicKey, error) {
	return s.sign(keyID, tx, false)
}

func (s *Service) MultiSign(keyID string, tx []byte) (signing.Signature, keys.PublicKey, error) {
	return s.sign(keyID, tx, true)
}

func (s *Service) sign(keyID string, tx []byte, multi bool) (signing.Signature, keys.PublicKey, error) {
	kp, err := s.keyPair(keyID)
	if err != nil {
		return nil, keys.PublicKey{}, err
	}
	defer kp.Destroy()
	kind := "single"
	var sig signing.Signature
	if multi {
		kind = "multi"
		sig, err = s.signer.MultiSign(kp.PrivateKey, tx)
	} else {
		sig, err = s.signer.Sign(kp.PrivateKey, tx)
	}
	if err != nil {
		s.logger.Error("sign failed", "key_id", keyID, "kind", kind, "error", err)
		return nil, keys.PublicKey{}, err
	}
	s.metrics.Signature(s.alg.String(), kind)
	return sig, kp.PublicKey, nil
}

func (s *Service) Verify(pub keys.PublicKey, tx []byte, sig signing.Signature) bool {
	ok := s.signer.Verify(pub, tx, sig)
	s.metrics.Verification("single", ok)
	return ok
}

func (s *Service) VerifyMultiSigned(sigs []signing.SignerSignature, tx []byte, minSigners int) bool {
	ok := s.signer.VerifyMultiSigned(sigs, tx, minSigners)
	s.metrics.Verification("multi", ok)
	return ok
}

// Close destroys every cached key and the server secret. Later calls fail
// with ErrClosed.
//
// The cache's expiry goroutine cannot be stopped (golang-lru v2.0.7 has no
// close hook), so each Service keeps one goroutine alive after Close. Build
// one Service per process and share it, as cmd/xrpl-keyd does.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cache.Purge()
	s.serverSecret.Destroy()
}

// keyPair returns a clone of the cached pair for keyID, deriving it on miss.
// The caller owns the clone and must destroy it.
func (s *Service) keyPair(keyID string) (*keys.KeyPair, error) {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" || len(keyID) > maxKeyIDLength {
		return nil, ErrInvalidKeyID
	}
	if !s.limiter.Allow(keyID, s.now()) {
		s.metrics.RateLimited()
		s.logger.Warn("key id rate limited", "key_id", keyID)
		return nil, ErrRateLimited
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if kp, ok := s.cache.Get(keyID); ok {
		// The expiry sweeper may destroy kp between Get and Clone.
		if clone := kp.Clone(); !clone.PrivateKey.Destroyed() {
			s.metrics.CacheHit()
			return clone, nil
		}
	}
	s.metrics.CacheMiss()

	started := time.Now()
	kp, err := s.derive(keyID)
	if err != nil {
		s.logger.Error("derive failed", "key_id", keyID, "error", err)
		return nil, err
	}
	s.metrics.ObserveDerivation(time.Since(started).Seconds())
	s.logger.Debug("derived key", "key_id", keyID, "algorithm", s.alg.String(), "address", kp.Address())
	// Add overwrites an expired entry without calling onEvict, so drop it
	// explicitly first.
	s.cache.Remove(keyID)
	s.cache.Add(keyID, kp)
	return kp.Clone(), nil
}

// derive computes entropy = HMAC-SHA256(serverSecret, keyID)[:16] and the
// key pair of the resulting seed.
func (s *Service) derive(keyID string) (*keys.KeyPair, error) {
	var sum []byte
	err := s.serverSecret.Use(func(b []byte) error {
		mac := hmac.New(sha256.New, b)
		mac.Write([]byte(keyID))
		sum = mac.Sum(nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer secret.Zero(sum)

	entropy, err := keys.NewEntropy(sum[:keys.EntropyLength])
	if err != nil {
		return nil, err
	}
	defer entropy.Destroy()
	seed, err := keys.SeedFromEntropy(entropy, s.alg)
	if err != nil {
		return nil, err
	}
	defer seed.Destroy()
	return seed.DeriveKeyPair()
}

func (s *Service) onEvict(_ string, kp *keys.KeyPair) {
	kp.Destroy()
	s.metrics.CacheEviction()
}
