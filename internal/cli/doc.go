// Package cli implements the cryptonaut command.
//
// # Usage
//
//	cryptonaut [--debug] [--log-file-path FILE] [--config FILE] <target_path>
//
// target_path is a DRACOON address such as dracoon.example.com/room/folder.
// The https:// prefix is optional, http:// is rejected. A bare host (or a
// trailing "/") addresses every node of the instance.
//
// # Flow
//
//  1. Open the log file and tag the run with a run_id.
//  2. Load and validate configuration (see package config).
//  3. Split the target into base URL and node path.
//  4. Read the rescue key from configuration or prompt for it without echo.
//  5. Connect, resolve the path to a scope and distribute missing keys until
//     the server reports none left, then print a summary.
//
// Errors are logged, printed to stderr by main and turned into exit status 1.
package cli
