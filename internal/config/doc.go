// Package config handles loading the ferry configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/ferry/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. FERRY_API_URL, when set, replaces the API URL from any of the above
//
// The -url flag of cmd/ferry is applied by the caller after Load.
//
// # Default Values
//
//   - Config file: ~/.config/ferry/config.toml
//   - API URL: http://localhost:8080/api
//   - Log directory: ~/.local/share/ferry/logs
//   - Diagnostics log: <log_dir>/ferry.log
//   - Request timeout: none
//
// # TOML Format
//
//	api_url = "http://localhost:8080/api"
//	log_dir = "~/.local/share/ferry/logs"
//	request_timeout = "30s"
//
// All fields are optional. Tilde expansion is performed on log_dir.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and invalid durations. A missing file is
// not an error.
package config
