// Package rpc serves a key service over JSON-RPC 2.0 on HTTP, together with
// health and Prometheus endpoints.
package rpc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xrpl-crypto/go-core/internal/metrics"
	"xrpl-crypto/go-core/internal/platform/privacylog"
	"xrpl-crypto/go-core/internal/platform/ratelimiter"
	"xrpl-crypto/go-core/pkg/keys"
	"xrpl-crypto/go-core/pkg/signing"
	"xrpl-crypto/go-core/pkg/zkp"
)

const (
	DefaultRPCAddr = "127.0.0.1:8787"
	TokenHeader    = "X-XRPL-RPC-Token"

	defaultShutdownPeriod = 5 * time.Second
)

// KeyService is what the daemon exposes. *keyservice.Service satisfies it.
type KeyService interface {
	Algorithm() keys.Algorithm
	PublicKey(keyID string) (keys.PublicKey, error)
	Sign(keyID string, tx []byte) (signing.Signature, keys.PublicKey, error)
	MultiSign(keyID string, tx []byte) (signing.Signature, keys.PublicKey, error)
	Verify(pub keys.PublicKey, tx []byte, sig signing.Signature) bool
	VerifyMultiSigned(sigs []signing.SignerSignature, tx []byte, minSigners int) bool
	ProveSecretKey(keyID string, contextID []byte) (zkp.SecretKeyProof, keys.PublicKey, error)
	VerifySecretKeyProof(proof []byte, pub keys.PublicKey, contextID []byte) bool
}

type Options struct {
	Addr  string
	Token string

	// Gatherer is served on /metrics when set.
	Gatherer       prometheus.Gatherer
	ClientLimiter  *ratelimiter.MapLimiter
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	ShutdownPeriod time.Duration
	Now            func() time.Time
}

type Server struct {
	httpServer     *http.Server
	service        KeyService
	token          string
	limiter        *ratelimiter.MapLimiter
	metrics        *metrics.Metrics
	logger         *slog.Logger
	shutdownPeriod time.Duration
	now            func() time.Time
}

func NewServerWithService(svc KeyService, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultRPCAddr
	}
	if opts.Logger == nil {
		opts.Logger = privacylog.DefaultLogger()
	}
	if opts.ShutdownPeriod <= 0 {
		opts.ShutdownPeriod = defaultShutdownPeriod
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		service:        svc,
		token:          strings.TrimSpace(opts.Token),
		limiter:        opts.ClientLimiter,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		shutdownPeriod: opts.ShutdownPeriod,
		now:            opts.Now,
	}
	if s.token == "" {
		s.logger.Warn("rpc token is not set; rpc auth disabled", "addr", opts.Addr)
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/rpc", s.handleRPC)
	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully. It does not
// close the key service; the owner does that after Run returns.
func (s *Server) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	default:
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()
	s.logger.Info("rpc listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownPeriod)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.handleHealth(w, r)
}

func (s *Server) HandleRPC(w http.ResponseWriter, r *http.Request) {
	s.handleRPC(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) authorizeRPC(w http.ResponseWriter, r *http.Request) bool {
	if s.token == "" {
		return true
	}
	token := extractRPCToken(r)
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func extractRPCToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get(TokenHeader))
	if token != "" {
		return token
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

// rpcClientKey buckets callers by token when they present one, otherwise by
// remote host.
func rpcClientKey(r *http.Request) string {
	if token := extractRPCToken(r); token != "" {
		return "token:" + privacylog.FingerprintID(token)
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	if strings.TrimSpace(host) == "" {
		return "ip:unknown"
	}
	return "ip:" + host
}
