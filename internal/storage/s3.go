package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BruksfildServices01/barber-marketplace/internal/config"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
)

// ObjectStore persists public assets (profile photos) in an S3-compatible
// bucket and returns the public URL for each stored object.
type ObjectStore struct {
	client     *s3.Client
	bucket     string
	assetsBase string
}

func NewObjectStore(cfg *config.Config) *ObjectStore {
	awsCfg := aws.Config{
		Region: cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{
		client:     client,
		bucket:     cfg.S3Bucket,
		assetsBase: strings.TrimRight(cfg.AssetsBase, "/"),
	}
}

// Put uploads data under key with the given content type and returns the
// public URL.
func (s *ObjectStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", httperr.ErrUpstream("s3_put_object", err)
	}
	return fmt.Sprintf("%s/%s", s.assetsBase, key), nil
}
