package config

import "time"

// Config holds runtime settings for the msgboard CLI.
//
// Fields:
//   - ServerURL: base URL of the board's HTTP API.
//   - DownloadDir: where fetched images and recordings are written.
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	ServerURL      string
	DownloadDir    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with defaults suitable for a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DownloadDir = "downloads"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then MSGBOARD_*
// environment variables, then command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
