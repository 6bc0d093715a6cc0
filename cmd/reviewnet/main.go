// Command reviewnet runs a peer-review ledger node.
//
// # Configuration File
//
// Create a YAML file with node settings:
//
//	listen_addr: ":8080"
//	metrics_addr: ":8090"
//	superuser: "<hex-encoded principal>"
//	cipher_seed: ""
//	log:
//	  json: true
//	  debug: false
//	postgres:
//	  host: "localhost"
//	  port: 5432
//	  user: "reviewnet"
//	  password: "secret"
//	  database: "reviewnet"
//
// # Endpoints
//
// Signed (request body is a signed envelope):
//   - POST /papers - Submit a paper
//   - POST /reviews - Submit an encrypted review
//   - POST /papers/toggle-active - Flip a paper's active flag (author)
//   - POST /papers/force-deactivate - Deactivate a paper (superuser)
//   - POST /reviews/encrypted - Retrieve a review's ciphertext handles
//
// Public:
//   - GET /papers/reviewable?principal=<hex> - Papers the caller may review
//   - GET /papers/own?principal=<hex> - Papers the caller authored
//   - GET /papers/{paper_id}/reviews - Reviews of a paper
//   - GET /counts - Ledger totals
//   - GET /livez, /readyz, /drain, /undrain - Health and readiness
//
// # Usage
//
//	go run ./cmd/reviewnet --config=node.yaml
//	go run ./cmd/reviewnet --addr=:8080 --superuser=<hex>
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OswaldHeaney/reviewnet/api/httpserver"
	"github.com/OswaldHeaney/reviewnet/cmd/common"
	"github.com/OswaldHeaney/reviewnet/ledger"
	"github.com/OswaldHeaney/reviewnet/server"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		addr        = flag.String("addr", "", "HTTP listen address")
		metricsAddr = flag.String("metrics-addr", "", "Metrics listen address")
		superuser   = flag.String("superuser", "", "Hex-encoded superuser principal")
		cipherSeed  = flag.String("cipher-seed", "", "Hex seed for a deterministic ciphertext service")
		enablePprof = flag.Bool("pprof", false, "Enable pprof API under /debug")
		logJSON     = flag.Bool("log-json", false, "Log in JSON format")
		logDebug    = flag.Bool("log-debug", false, "Log at debug level")
	)
	flag.Parse()

	cfg, err := loadConfiguration(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	applyFlagOverrides(cfg, *addr, *metricsAddr, *superuser, *cipherSeed,
		*enablePprof, *logJSON, *logDebug)

	if err := run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfiguration(configPath string) (*common.Config, error) {
	if configPath != "" {
		return common.LoadConfig(configPath)
	}
	return common.DefaultConfig(), nil
}

func applyFlagOverrides(cfg *common.Config, addr, metricsAddr, superuser, cipherSeed string,
	enablePprof, logJSON, logDebug bool) {

	if addr != "" {
		cfg.ListenAddr = addr
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if superuser != "" {
		cfg.Superuser = superuser
	}
	if cipherSeed != "" {
		cfg.CipherSeed = cipherSeed
	}
	if enablePprof {
		cfg.EnablePprof = true
	}
	if logJSON {
		cfg.Log.JSON = true
	}
	if logDebug {
		cfg.Log.Debug = true
	}
}

func run(cfg *common.Config) error {
	log := common.NewLogger(cfg.Log)

	superuser, err := common.ParsePrincipal(cfg.Superuser)
	if err != nil {
		return fmt.Errorf("superuser: %w", err)
	}

	cipher, err := common.NewCipherService(cfg.CipherSeed)
	if err != nil {
		return fmt.Errorf("cipher service: %w", err)
	}

	archive, err := common.NewArchiver(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if cfg.Postgres.Database == "" {
		log.Warn("No database configured, ledger state will not survive restarts")
	}

	l, err := ledger.New(ledger.Config{
		Cipher:    cipher,
		Superuser: superuser,
		Archive:   archive,
	})
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	counts := l.Counts()
	log.Info("Ledger ready", "papers", counts.Papers, "reviews", counts.Reviews,
		"superuser", superuser.String())

	srv, err := httpserver.New(&httpserver.Config{
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		EnablePprof:              cfg.EnablePprof,
		AllowedOrigins:           cfg.AllowedOrigins,
		Log:                      log,
		DrainDuration:            cfg.DrainDuration,
		GracefulShutdownDuration: cfg.GracefulShutdownDuration,
	})
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	handler := server.NewHandler(l, log, srv.Metrics())
	srv.Mount(handler)
	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	srv.Shutdown()
	return nil
}
