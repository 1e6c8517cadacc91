package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/msgboard/internal/flagx"
	"github.com/dmitrijs2005/msgboard/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration file.
// Absent keys leave the current values untouched.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	DownloadDir    *string         `json:"download_dir"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.DownloadDir != nil {
		cfg.DownloadDir = *jc.DownloadDir
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
