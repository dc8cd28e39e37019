// Copyright © 2018 One Concern

// Package config resolves the git-bin settings.
//
// Settings are layered, from lowest to highest precedence: defaults, an
// optional config file, the git-bin section of the git configuration,
// GIT_BIN_* environment variables, then command line flags.
package config

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"github.com/oneconcern/gitbin/pkg/dlogger"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/spf13/viper"
)

// SectionName is both the git config section and the default cache directory name
const SectionName = "git-bin"

// Setting names, as found in the git config
const (
	KeyChunkSize           = "chunkSize"
	KeyMaxCacheSize        = "maxCacheSize"
	KeyCacheDirectory      = "cacheDirectory"
	KeyRemote              = "remote"
	KeyProtocol            = "protocol"
	KeyS3SystemName        = "s3SystemName"
	KeyS3Bucket            = "s3bucket"
	KeyS3Key               = "s3key"
	KeyS3SecretKey         = "s3secretKey"
	KeyS3Endpoint          = "s3endpoint"
	KeyGCSBucket           = "gcsBucket"
	KeyGCSCredentials      = "gcsCredentials"
	KeyLocalRemote         = "localRemote"
	KeyRemotePrefix        = "remotePrefix"
	KeyUploadConcurrency   = "uploadConcurrency"
	KeyDownloadConcurrency = "downloadConcurrency"
	KeyDownloadAttempts    = "downloadAttempts"
	KeyLogLevel            = "logLevel"
)

// Remote kinds
const (
	RemoteS3    = "s3"
	RemoteGCS   = "gcs"
	RemoteLocal = "local"
)

// Protocols to reach S3
const (
	ProtocolHTTPS = "HTTPS"
	ProtocolHTTP  = "HTTP"
)

// EnvPrefix for environment variables overriding settings
const EnvPrefix = "GIT_BIN"

// Config holds resolved settings
type Config struct {
	ChunkSize           int64
	MaxCacheSize        int64
	CacheDirectory      string
	Remote              string
	Protocol            string
	RemotePrefix        string
	S3                  S3Config
	GCS                 GCSConfig
	LocalRemote         string
	UploadConcurrency   int
	DownloadConcurrency int
	DownloadAttempts    int
	LogLevel            string
}

// S3Config holds the settings of an S3 remote
type S3Config struct {
	Region    string
	Bucket    string
	Key       string
	SecretKey string
	Endpoint  string
}

// GCSConfig holds the settings of a gcs remote
type GCSConfig struct {
	Bucket      string
	Credentials string
}

// SetDefaults registers default values
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyChunkSize, "1MiB")
	v.SetDefault(KeyMaxCacheSize, "")
	v.SetDefault(KeyCacheDirectory, SectionName)
	v.SetDefault(KeyRemote, RemoteS3)
	v.SetDefault(KeyProtocol, ProtocolHTTPS)
	v.SetDefault(KeyS3SystemName, "us-east-1")
	v.SetDefault(KeyUploadConcurrency, 1)
	v.SetDefault(KeyDownloadConcurrency, 10)
	v.SetDefault(KeyDownloadAttempts, 5)
	v.SetDefault(KeyLogLevel, dlogger.LogLevelWarn)
}

// Loader resolves settings from all sources
type Loader struct {
	Viper      *viper.Viper
	Git        GitExecutor
	ConfigFile string
}

// Load the configuration
func (l Loader) Load(ctx context.Context) (*Config, error) {
	v := l.Viper
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if l.ConfigFile != "" {
		v.SetConfigFile(l.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, status.ErrConfiguration.Wrapf("reading config file %q: %w", l.ConfigFile, err)
		}
	}

	if l.Git != nil {
		fromGit, err := ReadGitConfig(ctx, l.Git)
		if err != nil {
			return nil, err
		}
		if err = v.MergeConfigMap(fromGit); err != nil {
			return nil, status.ErrConfiguration.Wrapf("merging git config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.CacheDirectory) {
		if l.Git == nil {
			return nil, status.ErrConfiguration.Wrap(fmt.Errorf("%s must be absolute outside of a git repository", KeyCacheDirectory))
		}
		gitDir, err := GitDir(ctx, l.Git)
		if err != nil {
			return nil, err
		}
		cfg.CacheDirectory = filepath.Join(gitDir, cfg.CacheDirectory)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var err error
	cfg := &Config{
		CacheDirectory: strings.TrimSpace(v.GetString(KeyCacheDirectory)),
		Remote:         strings.ToLower(strings.TrimSpace(v.GetString(KeyRemote))),
		Protocol:       strings.ToUpper(strings.TrimSpace(v.GetString(KeyProtocol))),
		RemotePrefix:   v.GetString(KeyRemotePrefix),
		S3: S3Config{
			Region:    v.GetString(KeyS3SystemName),
			Bucket:    v.GetString(KeyS3Bucket),
			Key:       v.GetString(KeyS3Key),
			SecretKey: v.GetString(KeyS3SecretKey),
			Endpoint:  v.GetString(KeyS3Endpoint),
		},
		GCS: GCSConfig{
			Bucket:      v.GetString(KeyGCSBucket),
			Credentials: v.GetString(KeyGCSCredentials),
		},
		LocalRemote: v.GetString(KeyLocalRemote),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
	}

	if cfg.ChunkSize, err = parseSize(KeyChunkSize, v.GetString(KeyChunkSize)); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(v.GetString(KeyMaxCacheSize)); raw == "" {
		cfg.MaxCacheSize = math.MaxInt64
	} else if cfg.MaxCacheSize, err = parseSize(KeyMaxCacheSize, raw); err != nil {
		return nil, err
	}
	if cfg.UploadConcurrency, err = parseInt(KeyUploadConcurrency, v.GetString(KeyUploadConcurrency)); err != nil {
		return nil, err
	}
	if cfg.DownloadConcurrency, err = parseInt(KeyDownloadConcurrency, v.GetString(KeyDownloadConcurrency)); err != nil {
		return nil, err
	}
	if cfg.DownloadAttempts, err = parseInt(KeyDownloadAttempts, v.GetString(KeyDownloadAttempts)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseSize accepts a number of bytes or a human readable size such as 2MiB
func parseSize(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		n, err = units.RAMInBytes(raw)
		if err != nil {
			return 0, status.ErrConfiguration.Wrapf("%s: invalid size %q: %w", name, raw, err)
		}
	}
	if n < 0 {
		return 0, status.ErrConfiguration.Wrap(fmt.Errorf("%s cannot be negative", name))
	}
	return n, nil
}

func parseInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, status.ErrConfiguration.Wrapf("%s: invalid number %q: %w", name, raw, err)
	}
	if n < 0 {
		return 0, status.ErrConfiguration.Wrap(fmt.Errorf("%s cannot be negative", name))
	}
	return n, nil
}

// Validate checks settings which do not depend on the remote
func (c *Config) Validate() error {
	switch {
	case c.ChunkSize <= 0 || c.ChunkSize > math.MaxInt32:
		return status.ErrConfiguration.Wrap(fmt.Errorf("%s must be positive and below 2GiB, got %d", KeyChunkSize, c.ChunkSize))
	case c.UploadConcurrency < 1:
		return status.ErrConfiguration.Wrap(fmt.Errorf("%s must be at least 1", KeyUploadConcurrency))
	case c.DownloadConcurrency < 1:
		return status.ErrConfiguration.Wrap(fmt.Errorf("%s must be at least 1", KeyDownloadConcurrency))
	case c.DownloadAttempts < 1:
		return status.ErrConfiguration.Wrap(fmt.Errorf("%s must be at least 1", KeyDownloadAttempts))
	case c.CacheDirectory == "":
		return status.ErrConfiguration.Wrap(fmt.Errorf("[%s] must be set", KeyCacheDirectory))
	}

	switch c.Protocol {
	case ProtocolHTTPS, ProtocolHTTP:
	default:
		return status.ErrConfiguration.Wrap(fmt.Errorf("%s must be %s or %s, got %q", KeyProtocol, ProtocolHTTPS, ProtocolHTTP, c.Protocol))
	}
	switch c.Remote {
	case RemoteS3, RemoteGCS, RemoteLocal:
	default:
		return status.ErrConfiguration.Wrap(fmt.Errorf("%s must be one of %s, %s or %s, got %q", KeyRemote, RemoteS3, RemoteGCS, RemoteLocal, c.Remote))
	}
	if c.LogLevel != dlogger.LogLevelNone {
		if _, err := dlogger.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRemote checks that the settings required by the configured remote are present
func (c *Config) ValidateRemote() error {
	var required map[string]string
	switch c.Remote {
	case RemoteS3:
		required = map[string]string{KeyS3Bucket: c.S3.Bucket, KeyS3Key: c.S3.Key, KeyS3SecretKey: c.S3.SecretKey}
	case RemoteGCS:
		required = map[string]string{KeyGCSBucket: c.GCS.Bucket}
	case RemoteLocal:
		required = map[string]string{KeyLocalRemote: c.LocalRemote}
	}
	for _, name := range []string{KeyS3Bucket, KeyS3Key, KeyS3SecretKey, KeyGCSBucket, KeyLocalRemote} {
		if value, ok := required[name]; ok && strings.TrimSpace(value) == "" {
			return status.ErrConfiguration.Wrap(fmt.Errorf("[%s] must be set", name))
		}
	}
	return nil
}

// Insecure tells if S3 must be reached over plain HTTP
func (c *Config) Insecure() bool {
	return c.Protocol == ProtocolHTTP
}
