// Package cmd provides the reviewnet command-line binaries.
//
// # Commands
//
// reviewnet: Runs a peer-review ledger node.
//
//	go run ./cmd/reviewnet --config=node.yaml
//	go run ./cmd/reviewnet --addr=:8080 --superuser=<hex>
//
// reviewnet-cli: CLI for interacting with a deployed node.
//
//	go run ./cmd/reviewnet-cli submit --node=http://localhost:8080 --title="..." --abstract="..." --category=systems
//	go run ./cmd/reviewnet-cli papers --node=http://localhost:8080 --key=<hex>
//
// # Configuration
//
// The node supports YAML configuration files via the --config flag.
// Command-line flags override config file values.
//
// Example node configuration:
//
//	listen_addr: ":8080"
//	metrics_addr: ":8090"
//	superuser: "<hex-encoded principal>"
//	cipher_seed: ""
//	log:
//	  json: true
//	postgres:
//	  host: "localhost"
//	  port: 5432
//	  user: "reviewnet"
//	  password: "secret"
//	  database: "reviewnet"
//
// When no database is configured the node runs on an in-memory archive and
// loses state on restart. Review scores are encoded client-side against the
// node's ciphertext service; sharing cipher_seed with clients makes their
// encodings acceptable to the node.
package cmd
