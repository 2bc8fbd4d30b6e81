// Package composition wires configuration into a key service and, for the
// daemon, into the JSON-RPC transport around it.
package composition

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"xrpl-crypto/go-core/internal/adapters/rpc"
	"xrpl-crypto/go-core/internal/config"
	"xrpl-crypto/go-core/internal/keyservice"
	"xrpl-crypto/go-core/internal/metrics"
	"xrpl-crypto/go-core/internal/platform/privacylog"
	"xrpl-crypto/go-core/internal/platform/ratelimiter"
	"xrpl-crypto/go-core/pkg/keys"
)

// NewLogger builds the sanitizing JSON logger at cfg's level.
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := privacylog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return privacylog.NewLogger(w, level), nil
}

// BuildKeyService starts a key service from cfg. m may be nil.
func BuildKeyService(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (*keyservice.Service, error) {
	if err := cfg.RequireServerSecret(); err != nil {
		return nil, err
	}
	alg, err := keys.ParseAlgorithm(cfg.KeyService.Algorithm)
	if err != nil {
		return nil, err
	}
	ks := cfg.KeyService
	return keyservice.New(keyservice.Options{
		ServerSecret: []byte(ks.ServerSecret),
		Algorithm:    alg,
		CacheSize:    ks.CacheSize,
		CacheTTL:     ks.CacheTTL,
		Limiter:      ratelimiter.New(ks.RateLimitRPS, ks.RateLimitBurst, ks.RateLimitIdleTTL),
		Metrics:      m,
		Logger:       logger,
	})
}

// Daemon is one process-wide key service behind the JSON-RPC server. The
// cache, rate limiter and metrics live as long as the daemon does.
type Daemon struct {
	Server   *rpc.Server
	Service  *keyservice.Service
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

func NewDaemon(cfg config.Config, logOut io.Writer) (*Daemon, error) {
	if err := cfg.RequireRPCToken(); err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	svc, err := BuildKeyService(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	server := rpc.NewServerWithService(svc, rpc.Options{
		Addr:           cfg.RPC.Addr,
		Token:          cfg.RPC.Token,
		Gatherer:       reg,
		ClientLimiter:  ratelimiter.New(cfg.RPC.ClientRPS, cfg.RPC.ClientBurst, cfg.RPC.ClientIdleTTL),
		Metrics:        m,
		Logger:         logger,
		ShutdownPeriod: cfg.RPC.ShutdownPeriod,
	})
	return &Daemon{Server: server, Service: svc, Registry: reg, Logger: logger}, nil
}

// Run serves until ctx is cancelled and closes the key service on the way out.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.Service.Close()
	return d.Server.Run(ctx)
}
