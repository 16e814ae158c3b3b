// Package storage uploads a finished corpus directory to S3 for training
// pipelines that consume from object storage.
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Config holds the upload destination.
type S3Config struct {
	Bucket          string
	Region          string
	KeyPrefix       string // key prefix inside the bucket, may be empty
	Endpoint        string // optional custom S3-compatible endpoint
	AccessKeyID     string // optional static credentials
	SecretAccessKey string
}

// Uploader copies local files into an S3 bucket.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	log    zerolog.Logger
}

// NewUploader builds an S3 client from the given configuration, falling
// back to the default AWS credential chain when no static credentials are
// provided.
func NewUploader(ctx context.Context, cfg S3Config, log zerolog.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	var configOpts []func(*config.LoadOptions) error
	configOpts = append(configOpts, config.WithRegion(cfg.Region))
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &Uploader{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
		prefix: cfg.KeyPrefix,
		log:    log,
	}, nil
}

// UploadDir uploads every regular file under dir, keyed by its path
// relative to dir. It returns the number of uploaded files.
func (u *Uploader) UploadDir(ctx context.Context, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := path.Join(u.prefix, filepath.ToSlash(rel))
		if err := u.uploadFile(ctx, p, key); err != nil {
			return fmt.Errorf("storage: upload %s: %w", rel, err)
		}
		uploaded++
		u.log.Debug().Str("key", key).Msg("uploaded")
		return nil
	})
	return uploaded, err
}

func (u *Uploader) uploadFile(ctx context.Context, p, key string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	return err
}
