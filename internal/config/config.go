// Package config loads the key tool's YAML configuration and applies
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"xrpl-crypto/go-core/internal/platform/privacylog"
	"xrpl-crypto/go-core/pkg/keys"
)

const (
	EnvServerSecret = "XRPL_KEYSERVICE_SECRET"
	EnvAlgorithm    = "XRPL_KEYSERVICE_ALGORITHM"
	EnvLogLevel     = "XRPL_LOG_LEVEL"
	EnvRPCAddr      = "XRPL_RPC_ADDR"
	EnvRPCToken     = "XRPL_RPC_TOKEN"

	DefaultRPCAddr = "127.0.0.1:8787"

	minServerSecretLength = 32
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	KeyService KeyServiceConfig
	RPC        RPCConfig
	Log        LogConfig
}

type KeyServiceConfig struct {
	Algorithm        string
	ServerSecret     string
	CacheSize        int
	CacheTTL         time.Duration
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitIdleTTL time.Duration
}

// RPCConfig configures the signing daemon. The per-client limit applies to
// every JSON-RPC call before the per-key limit of the key service.
type RPCConfig struct {
	Addr           string
	Token          string
	ClientRPS      float64
	ClientBurst    int
	ClientIdleTTL  time.Duration
	ShutdownPeriod time.Duration
}

type LogConfig struct {
	Level string
}

// FileConfig mirrors the YAML document. Zero values mean "keep the default".
type FileConfig struct {
	KeyService FileKeyServiceConfig `yaml:"keyService"`
	RPC        FileRPCConfig        `yaml:"rpc"`
	Log        FileLogConfig        `yaml:"log"`
}

type FileKeyServiceConfig struct {
	Algorithm        string        `yaml:"algorithm"`
	ServerSecret     string        `yaml:"serverSecret"`
	CacheSize        int           `yaml:"cacheSize"`
	CacheTTL         time.Duration `yaml:"cacheTTL"`
	RateLimitRPS     float64       `yaml:"rateLimitRPS"`
	RateLimitBurst   int           `yaml:"rateLimitBurst"`
	RateLimitIdleTTL time.Duration `yaml:"rateLimitIdleTTL"`
}

type FileRPCConfig struct {
	Addr           string        `yaml:"addr"`
	Token          string        `yaml:"token"`
	ClientRPS      float64       `yaml:"clientRPS"`
	ClientBurst    int           `yaml:"clientBurst"`
	ClientIdleTTL  time.Duration `yaml:"clientIdleTTL"`
	ShutdownPeriod time.Duration `yaml:"shutdownPeriod"`
}

type FileLogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		KeyService: KeyServiceConfig{
			Algorithm:        keys.Secp256k1.String(),
			CacheSize:        10_000,
			CacheTTL:         30 * time.Second,
			RateLimitRPS:     50,
			RateLimitBurst:   100,
			RateLimitIdleTTL: 10 * time.Minute,
		},
		RPC: RPCConfig{
			Addr:           DefaultRPCAddr,
			ClientRPS:      30,
			ClientBurst:    60,
			ClientIdleTTL:  10 * time.Minute,
			ShutdownPeriod: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadFromPath reads configPath, or the first default location that exists
// when configPath is empty. A missing default file is not an error; a named
// file that cannot be read or parsed is.
func LoadFromPath(configPath string) (Config, error) {
	cfg := Default()

	candidates := []string{configPath}
	if configPath == "" {
		candidates = []string{"configs/keytool.yaml", "keytool.yaml"}
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if configPath != "" {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
			continue
		}
		var parsed FileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		Merge(&cfg, parsed)
		break
	}

	ApplyEnvOverrides(&cfg, os.Getenv)
	return cfg, cfg.Validate()
}

func Merge(dst *Config, src FileConfig) {
	ks := src.KeyService
	if ks.Algorithm != "" {
		dst.KeyService.Algorithm = ks.Algorithm
	}
	if ks.ServerSecret != "" {
		dst.KeyService.ServerSecret = ks.ServerSecret
	}
	if ks.CacheSize != 0 {
		dst.KeyService.CacheSize = ks.CacheSize
	}
	if ks.CacheTTL != 0 {
		dst.KeyService.CacheTTL = ks.CacheTTL
	}
	if ks.RateLimitRPS != 0 {
		dst.KeyService.RateLimitRPS = ks.RateLimitRPS
	}
	if ks.RateLimitBurst != 0 {
		dst.KeyService.RateLimitBurst = ks.RateLimitBurst
	}
	if ks.RateLimitIdleTTL != 0 {
		dst.KeyService.RateLimitIdleTTL = ks.RateLimitIdleTTL
	}
	rpc := src.RPC
	if rpc.Addr != "" {
		dst.RPC.Addr = rpc.Addr
	}
	if rpc.Token != "" {
		dst.RPC.Token = rpc.Token
	}
	if rpc.ClientRPS != 0 {
		dst.RPC.ClientRPS = rpc.ClientRPS
	}
	if rpc.ClientBurst != 0 {
		dst.RPC.ClientBurst = rpc.ClientBurst
	}
	if rpc.ClientIdleTTL != 0 {
		dst.RPC.ClientIdleTTL = rpc.ClientIdleTTL
	}
	if rpc.ShutdownPeriod != 0 {
		dst.RPC.ShutdownPeriod = rpc.ShutdownPeriod
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
}

// ApplyEnvOverrides lets the environment win over the file. The server
// secret is normally supplied this way so it never lands in a config file.
func ApplyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvServerSecret)); v != "" {
		cfg.KeyService.ServerSecret = v
	}
	if v := strings.TrimSpace(getenv(EnvAlgorithm)); v != "" {
		cfg.KeyService.Algorithm = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvRPCAddr)); v != "" {
		cfg.RPC.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvRPCToken)); v != "" {
		cfg.RPC.Token = v
	}
}

// Validate checks the static fields. The server secret is only required by
// commands that start the key service, see RequireServerSecret.
func (c Config) Validate() error {
	if _, err := keys.ParseAlgorithm(c.KeyService.Algorithm); err != nil {
		return fmt.Errorf("%w: keyService.algorithm: %v", ErrInvalidConfig, err)
	}
	if c.KeyService.CacheSize <= 0 {
		return fmt.Errorf("%w: keyService.cacheSize must be positive", ErrInvalidConfig)
	}
	if c.KeyService.CacheTTL <= 0 {
		return fmt.Errorf("%w: keyService.cacheTTL must be positive", ErrInvalidConfig)
	}
	if _, _, err := net.SplitHostPort(c.RPC.Addr); err != nil {
		return fmt.Errorf("%w: rpc.addr: %v", ErrInvalidConfig, err)
	}
	if c.RPC.ShutdownPeriod <= 0 {
		return fmt.Errorf("%w: rpc.shutdownPeriod must be positive", ErrInvalidConfig)
	}
	if _, err := privacylog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) RequireServerSecret() error {
	if len(c.KeyService.ServerSecret) < minServerSecretLength {
		return fmt.Errorf("%w: server secret must be at least %d bytes (set %s)", ErrInvalidConfig, minServerSecretLength, EnvServerSecret)
	}
	return nil
}

// RequireRPCToken fails closed: a daemon listening beyond loopback must
// authenticate its callers.
func (c Config) RequireRPCToken() error {
	if strings.TrimSpace(c.RPC.Token) != "" {
		return nil
	}
	host, _, err := net.SplitHostPort(c.RPC.Addr)
	if err != nil {
		return fmt.Errorf("%w: rpc.addr: %v", ErrInvalidConfig, err)
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("%w: rpc token required when listening on %q (set %s)", ErrInvalidConfig, c.RPC.Addr, EnvRPCToken)
}
