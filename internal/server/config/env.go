package config

import (
	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/flagx"
)

// parseEnv overlays MSGBOARD_* environment variables. Malformed numeric or
// duration values panic, like malformed flags do.
func parseEnv(config *Config) {
	p := common.EnvPrefix

	flagx.EnvString(p+"HTTP_ADDR", &config.EndpointAddrHTTP)
	flagx.EnvString(p+"GRPC_ADDR", &config.EndpointAddrGRPC)
	flagx.EnvString(p+"DATABASE_DSN", &config.DatabaseDSN)
	flagx.EnvString(p+"SECRET_KEY", &config.SecretKey)
	flagx.EnvString(p+"SHARED_PASSWORD", &config.SharedPassword)
	flagx.EnvString(p+"SHARED_PASSWORD_HASH", &config.SharedPasswordHash)
	flagx.EnvString(p+"MEDIA_KEY", &config.MediaKey)
	flagx.EnvString(p+"MEDIA_STORAGE", &config.MediaStorage)
	flagx.EnvString(p+"S3_ROOT_USER", &config.S3RootUser)
	flagx.EnvString(p+"S3_ROOT_PASSWORD", &config.S3RootPassword)
	flagx.EnvString(p+"S3_BUCKET", &config.S3Bucket)
	flagx.EnvString(p+"S3_REGION", &config.S3Region)
	flagx.EnvString(p+"S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	flagx.EnvList(p+"ALLOWED_ORIGINS", &config.AllowedOrigins)
	flagx.EnvString(p+"LOG_LEVEL", &config.LogLevel)
	flagx.EnvString(p+"SEED_LOGIN", &config.SeedLogin)
	flagx.EnvString(p+"SEED_TEXT", &config.SeedText)

	if err := flagx.EnvDuration(p+"ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration); err != nil {
		panic(err)
	}
	if err := flagx.EnvInt64(p+"MAX_UPLOAD_BYTES", &config.MaxUploadBytes); err != nil {
		panic(err)
	}
}
