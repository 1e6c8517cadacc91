package config

import (
	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/flagx"
)

func parseEnv(cfg *Config) {
	p := common.EnvPrefix

	flagx.EnvString(p+"SERVER_URL", &cfg.ServerURL)
	flagx.EnvString(p+"DOWNLOAD_DIR", &cfg.DownloadDir)
	if err := flagx.EnvDuration(p+"REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		panic(err)
	}
}
