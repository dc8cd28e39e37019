// Copyright © 2018 One Concern

// Package sthree implements a remote on AWS S3 or any S3 compatible service.
package sthree

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/remote"
	"github.com/oneconcern/gitbin/pkg/status"
	"go.uber.org/zap"
)

var _ remote.Remote = &Store{}

// Store is a remote on an S3 bucket
type Store struct {
	bucket    string
	prefix    string
	pageSize  int64
	awsConfig *aws.Config
	s3        *s3.S3
	uploader  *s3manager.Uploader
	l         *zap.Logger
}

// New S3 remote
func New(opts ...Option) (*Store, error) {
	s := &Store{
		pageSize:  DefaultPageSize,
		awsConfig: aws.NewConfig(),
		l:         zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	if s.bucket == "" {
		return nil, status.ErrConfiguration.Wrap(fmt.Errorf("an S3 bucket is required"))
	}

	sess, err := session.NewSession(s.awsConfig)
	if err != nil {
		return nil, status.ErrConfiguration.Wrapf("creating AWS session: %w", err)
	}
	s.s3 = s3.New(sess)
	s.uploader = s3manager.NewUploaderWithClient(s.s3)
	return s, nil
}

func (s *Store) String() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

func (s *Store) key(addr chunk.Address) string {
	if s.prefix == "" {
		return string(addr)
	}
	return path.Join(s.prefix, string(addr))
}

func (s *Store) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return strings.TrimSuffix(s.prefix, "/") + "/"
}

// List all chunks in the bucket, under the prefix if one is configured
func (s *Store) List(ctx context.Context) (chunk.Records, error) {
	prefix := s.listPrefix()
	var res chunk.Records
	eachPage := func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			addr := chunk.Address(strings.TrimPrefix(aws.StringValue(obj.Key), prefix))
			if !addr.Valid() {
				continue
			}
			res = append(res, chunk.Record{Address: addr, Size: aws.Int64Value(obj.Size)})
		}
		return true
	}

	params := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int64(s.pageSize),
	}
	if prefix != "" {
		params.Prefix = aws.String(prefix)
	}
	if err := s.s3.ListObjectsV2PagesWithContext(ctx, params, eachPage); err != nil {
		return nil, toSentinelErrors(err)
	}
	s.l.Debug("listed remote", zap.Stringer("remote", s), zap.Int("count", len(res)))
	return res, nil
}

// Upload a chunk
func (s *Store) Upload(ctx context.Context, addr chunk.Address, content []byte, progress remote.ProgressFunc) error {
	body := newProgressBody(content, progress)
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(addr)),
		Body:   body,
	})
	if err != nil {
		return toSentinelErrors(err)
	}
	body.Report(int64(len(content)))
	s.l.Debug("uploaded chunk", zap.Stringer("address", addr), zap.Int("size", len(content)))
	return nil
}

// Download a chunk
func (s *Store) Download(ctx context.Context, addr chunk.Address, progress remote.ProgressFunc) ([]byte, error) {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(addr)),
	})
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	defer func() { _ = obj.Body.Close() }()

	content, err := remote.ReadAll(obj.Body, aws.Int64Value(obj.ContentLength), progress)
	if err != nil {
		return nil, status.ErrBackend.Wrapf("reading chunk %s: %w", addr, err)
	}
	return content, nil
}

// progressBody is a seekable upload body reporting the furthest offset read.
//
// The SDK may read the body once to sign it before sending it, so the report
// only tracks the high-water mark.
type progressBody struct {
	r        *bytes.Reader
	size     int64
	reporter *remote.ProgressReader
	high     int64
}

func newProgressBody(content []byte, progress remote.ProgressFunc) *progressBody {
	return &progressBody{
		r:        bytes.NewReader(content),
		size:     int64(len(content)),
		reporter: remote.NewProgressReader(nil, int64(len(content)), progress),
	}
}

func (b *progressBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if offset := b.size - int64(b.r.Len()); offset > b.high {
		b.high = offset
		b.reporter.Report(offset)
	}
	return n, err
}

func (b *progressBody) Seek(offset int64, whence int) (int64, error) {
	return b.r.Seek(offset, whence)
}

func (b *progressBody) Report(done int64) {
	b.reporter.Report(done)
}

var _ io.ReadSeeker = &progressBody{}
