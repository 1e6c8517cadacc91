// Package config loads runtime configuration for the msgboard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. MSGBOARD_SERVER_URL, MSGBOARD_DOWNLOAD_DIR, MSGBOARD_REQUEST_TIMEOUT.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the board server
//	-o string   download directory
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "download_dir": "downloads",
//	  "request_timeout": "30s"
//	}
package config
