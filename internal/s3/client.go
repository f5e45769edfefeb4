// Package s3 archives processed outputs to S3-compatible object storage.
package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"trend-audio-remux/internal"
	"trend-audio-remux/internal/logging"
)

type Client interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

type s3Client struct {
	bucket string
	upl    *manager.Uploader
}

func New(cfg internal.Config) (Client, error) {
	endpoint := cfg.S3Endpoint
	forcePathStyle := !strings.Contains(endpoint, "amazonaws.com")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = forcePathStyle
		o.BaseEndpoint = &endpoint
	})

	return &s3Client{
		bucket: cfg.S3Bucket,
		upl:    manager.NewUploader(client),
	}, nil
}

// Put streams body through the multipart uploader, so large outputs never
// sit in memory.
func (c *s3Client) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.upl.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	return err
}

type Archiver struct {
	client Client
	prefix string
	log    *logging.Logger
}

func NewArchiver(client Client, prefix string, log *logging.Logger) *Archiver {
	return &Archiver{client: client, prefix: prefix, log: log}
}

// Key is the object key a local file is archived under.
func (a *Archiver) Key(localPath string) string {
	return path.Join(a.prefix, filepath.Base(localPath))
}

// Archive uploads localPath and returns its object key.
func (a *Archiver) Archive(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := a.Key(localPath)
	if err := a.client.Put(ctx, key, f, "video/mp4"); err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	a.log.Infof("s3: archived %s -> %s", filepath.Base(localPath), key)
	return key, nil
}
