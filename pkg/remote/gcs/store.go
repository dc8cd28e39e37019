// Copyright © 2018 One Concern

// Package gcs implements a remote on a Google Cloud Storage bucket.
//
// The STORAGE_EMULATOR_HOST environment variable redirects the client to an emulator.
package gcs

import (
	"context"
	"fmt"
	"path"
	"strings"

	gcsStorage "cloud.google.com/go/storage"
	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/remote"
	"github.com/oneconcern/gitbin/pkg/status"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var _ remote.Remote = &gcs{}

type gcs struct {
	client      *gcsStorage.Client
	bucket      string
	prefix      string
	credentials string
	l           *zap.Logger
}

// New gcs remote on a bucket
func New(ctx context.Context, bucket string, opts ...Option) (remote.Remote, error) {
	if bucket == "" {
		return nil, status.ErrConfiguration.Wrap(fmt.Errorf("a gcs bucket is required"))
	}
	g := &gcs{
		bucket: bucket,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(g)
	}
	if g.client == nil {
		clientOpts := []option.ClientOption{option.WithScopes(gcsStorage.ScopeFullControl)}
		if g.credentials != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(g.credentials))
		}
		var err error
		g.client, err = gcsStorage.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, status.ErrConfiguration.Wrapf("creating gcs client: %w", err)
		}
	}
	return g, nil
}

func (g *gcs) String() string {
	return "gcs://" + path.Join(g.bucket, g.prefix)
}

func (g *gcs) objectName(addr chunk.Address) string {
	if g.prefix == "" {
		return string(addr)
	}
	return path.Join(g.prefix, string(addr))
}

func (g *gcs) listPrefix() string {
	if g.prefix == "" {
		return ""
	}
	return strings.TrimSuffix(g.prefix, "/") + "/"
}

func (g *gcs) List(ctx context.Context) (chunk.Records, error) {
	prefix := g.listPrefix()
	query := &gcsStorage.Query{Prefix: prefix}
	if err := query.SetAttrSelection([]string{"Name", "Size"}); err != nil {
		return nil, status.ErrBackend.Wrap(err)
	}

	var res chunk.Records
	objects := g.client.Bucket(g.bucket).Objects(ctx, query)
	for {
		attrs, err := objects.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, toSentinelErrors(err)
		}
		addr := chunk.Address(strings.TrimPrefix(attrs.Name, prefix))
		if !addr.Valid() {
			continue
		}
		res = append(res, chunk.Record{Address: addr, Size: attrs.Size})
	}
	g.l.Debug("listed remote", zap.Stringer("remote", g), zap.Int("count", len(res)))
	return res, nil
}

// Upload a chunk if not present
func (g *gcs) Upload(ctx context.Context, addr chunk.Address, content []byte, progress remote.ProgressFunc) error {
	reporter := remote.NewProgressReader(nil, int64(len(content)), progress)

	writer := g.client.Bucket(g.bucket).Object(g.objectName(addr)).If(gcsStorage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ProgressFunc = reporter.Report
	if _, err := writer.Write(content); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			reporter.Report(int64(len(content)))
			return nil
		}
		return toSentinelErrors(err)
	}
	if err := writer.Close(); err != nil {
		if !isPreconditionFailed(err) {
			return toSentinelErrors(err)
		}
		g.l.Debug("chunk already on remote", zap.Stringer("address", addr))
	}
	reporter.Report(int64(len(content)))
	return nil
}

func (g *gcs) Download(ctx context.Context, addr chunk.Address, progress remote.ProgressFunc) ([]byte, error) {
	reader, err := g.client.Bucket(g.bucket).Object(g.objectName(addr)).NewReader(ctx)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	defer func() { _ = reader.Close() }()

	content, err := remote.ReadAll(reader, reader.Attrs.Size, progress)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return content, nil
}
