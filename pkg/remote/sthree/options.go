package sthree

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"go.uber.org/zap"
)

// DefaultPageSize is the number of keys requested per listing page
const DefaultPageSize = 1000

// Option is a functor to pass optional parameters to the s3 remote
type Option func(*Store)

// Bucket holding the chunks
func Bucket(bucket string) Option {
	return func(s *Store) {
		s.bucket = bucket
	}
}

// Prefix for object keys, e.g. a directory in a shared bucket
func Prefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// AWSConfig sets the configuration of the AWS session
func AWSConfig(cfg *aws.Config) Option {
	return func(s *Store) {
		s.awsConfig = cfg
	}
}

// PageSize sets the number of keys requested per listing page
func PageSize(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// Logger specifies a logger for this remote
func Logger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.l = logger
		}
	}
}

// Settings to reach an S3 compatible service
type Settings struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Insecure  bool
}

// Config builds an AWS configuration with static credentials.
//
// A custom endpoint, such as a minio server, implies path-style addressing.
func (s Settings) Config() *aws.Config {
	cfg := aws.NewConfig().
		WithCredentials(credentials.NewStaticCredentials(s.AccessKey, s.SecretKey, "")).
		WithRegion(s.Region).
		WithDisableSSL(s.Insecure)
	if s.Endpoint != "" {
		cfg = cfg.WithEndpoint(s.Endpoint).WithS3ForcePathStyle(true)
	}
	return cfg
}
