package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/msgboard/internal/flagx"
	"github.com/dmitrijs2005/msgboard/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "1h" and integer nanoseconds are accepted.
// Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	SharedPassword              *string         `json:"shared_password"`
	SharedPasswordHash          *string         `json:"shared_password_hash"`
	MediaKey                    *string         `json:"media_key"`
	MediaStorage                *string         `json:"media_storage"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	AllowedOrigins              []string        `json:"allowed_origins"`
	MaxUploadBytes              *int64          `json:"max_upload_bytes"`
	LogLevel                    *string         `json:"log_level"`
	SeedLogin                   *string         `json:"seed_login"`
	SeedText                    *string         `json:"seed_text"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err = json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	setString(&config.SharedPassword, c.SharedPassword)
	setString(&config.SharedPasswordHash, c.SharedPasswordHash)
	setString(&config.MediaKey, c.MediaKey)
	setString(&config.MediaStorage, c.MediaStorage)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.MaxUploadBytes != nil {
		config.MaxUploadBytes = *c.MaxUploadBytes
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SeedLogin, c.SeedLogin)
	setString(&config.SeedText, c.SeedText)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
