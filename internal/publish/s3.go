// Package publish uploads rendered documentation to S3-compatible object
// storage.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/julianshen/repodoc/internal/config"
	"github.com/julianshen/repodoc/internal/docgen"
)

// S3Config describes the target bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3Publisher writes documents under <prefix>/<runID>/ in one bucket,
// creating the bucket on first use.
type S3Publisher struct {
	client   *minio.Client
	bucket   string
	region   string
	prefix   string
	initOnce sync.Once
	initErr  error
}

// NewS3Publisher validates cfg and creates the client.
func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Publisher{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// NewS3PublisherFromConfig resolves credentials and builds a publisher.
// The access key follows access_key_source (env REPODOC_S3_ACCESS_KEY);
// the secret comes from secret_key or REPODOC_S3_SECRET_KEY.
func NewS3PublisherFromConfig(cfg config.S3Config) (*S3Publisher, error) {
	access, err := config.ResolveAPIKey(cfg.AccessKeySource, cfg.AccessKey, "REPODOC_S3_ACCESS_KEY")
	if err != nil {
		return nil, fmt.Errorf("resolving S3 access key: %w", err)
	}
	secret, err := config.ResolveOptionalToken(cfg.AccessKeySource, cfg.SecretKey, "REPODOC_S3_SECRET_KEY")
	if err != nil {
		return nil, fmt.Errorf("resolving S3 secret key: %w", err)
	}

	return NewS3Publisher(S3Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		AccessKey: access,
		SecretKey: secret,
		Bucket:    cfg.Bucket,
		Prefix:    cfg.Prefix,
		UseSSL:    cfg.UseSSL,
	})
}

func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Publish uploads files and returns their s3:// URLs in order.
func (p *S3Publisher) Publish(ctx context.Context, runID string, files []docgen.Document) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if err := p.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		key := objectKey(p.prefix, runID, f.Path)
		content := []byte(f.Content)
		_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
			ContentType: contentType(f.Path),
		})
		if err != nil {
			return urls, fmt.Errorf("put %s: %w", key, err)
		}
		urls = append(urls, "s3://"+p.bucket+"/"+key)
	}
	return urls, nil
}

func objectKey(prefix, runID, p string) string {
	p = strings.TrimLeft(path.Clean("/"+p), "/")
	if prefix == "" {
		return runID + "/" + p
	}
	return prefix + "/" + runID + "/" + p
}

func contentType(p string) string {
	switch path.Ext(p) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".toml":
		return "application/toml"
	case ".js":
		return "text/javascript; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
