// Package common provides shared configuration and setup helpers for the
// reviewnet command-line binaries.
package common

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/fhe"
	"github.com/OswaldHeaney/reviewnet/ledger"
	"github.com/OswaldHeaney/reviewnet/services"
)

// Config holds the settings for a reviewnet node.
type Config struct {
	// ListenAddr is the public HTTP address.
	ListenAddr string `yaml:"listen_addr"`

	// MetricsAddr serves Prometheus metrics. Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// EnablePprof mounts the pprof API under /debug.
	EnablePprof bool `yaml:"enable_pprof"`

	// AllowedOrigins enables CORS for browser clients. Empty disables CORS.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Superuser is the hex-encoded principal permitted to force-deactivate
	// papers. Required.
	Superuser string `yaml:"superuser"`

	// CipherSeed optionally makes the ciphertext service deterministic, so
	// clients holding the same seed can encode values the node accepts.
	// Hex-encoded; empty generates a fresh random service identity.
	CipherSeed string `yaml:"cipher_seed"`

	// Log controls output format and verbosity.
	Log LogConfig `yaml:"log"`

	// Postgres enables durable archiving when Database is set; otherwise the
	// node runs on the in-memory archive and loses state on restart.
	Postgres services.PostgresConfig `yaml:"postgres"`

	// Drain and shutdown windows.
	DrainDuration            time.Duration `yaml:"drain_duration"`
	GracefulShutdownDuration time.Duration `yaml:"graceful_shutdown_duration"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	JSON  bool `yaml:"json"`
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a configuration with development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:               ":8080",
		MetricsAddr:              ":8090",
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
	}
}

// LoadConfig reads a YAML configuration file, layering it over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger per the configuration.
func NewLogger(cfg LogConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// ParsePrincipal decodes a hex-encoded principal identity.
func ParsePrincipal(hexKey string) (crypto.Principal, error) {
	p, err := crypto.NewPrincipalFromString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid principal hex: %w", err)
	}
	if p.IsZero() {
		return nil, fmt.Errorf("principal must not be empty")
	}
	return p, nil
}

// LoadOrGenerateSigningKey loads an Ed25519 private key from a hex string,
// or generates a new key pair if hexKey is empty.
func LoadOrGenerateSigningKey(hexKey string) (crypto.PrivateKey, error) {
	if hexKey != "" {
		keyBytes, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return crypto.NewPrivateKeyFromBytes(keyBytes), nil
	}
	_, privKey, err := crypto.GenerateKeyPair()
	return privKey, err
}

// NewCipherService creates the ciphertext service, seeded when a seed is
// configured.
func NewCipherService(seedHex string) (*fhe.InMemoryService, error) {
	if seedHex == "" {
		return fhe.NewInMemoryService()
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid cipher seed hex: %w", err)
	}
	return fhe.NewInMemoryServiceFromSeed(seed)
}

// NewArchiver creates the persistence backend: PostgreSQL when a database is
// configured, the in-memory archive otherwise.
func NewArchiver(cfg services.PostgresConfig) (ledger.Archiver, error) {
	if cfg.Database == "" {
		return services.NewMemoryArchive(), nil
	}
	return services.NewPostgresArchive(&cfg)
}
