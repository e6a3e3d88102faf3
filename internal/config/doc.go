// Package config loads runtime configuration for the cryptonaut CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. src/config.yaml, then /etc/dracoon/config.yaml, when they exist.
//  3. The file passed with --config, which must exist.
//  4. CRYPTONAUT_* environment variables, e.g. CRYPTONAUT_REFRESH_TOKEN.
//
// Later sources override earlier ones.
//
// # YAML schema
//
//	client_id: cryptonaut
//	client_secret: s3cr3t
//	refresh_token: eyJ...
//	rescue_key: ""        # prompted for on the terminal when empty
//	timeout: 30s
//	max_batches: 1000     # 0 disables the limit
package config
