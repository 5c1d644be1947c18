package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3PutClient is the part of the S3 API the uploader needs.
type S3PutClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader handles uploading generated workbooks to S3.
type S3Uploader struct {
	Client S3PutClient
	Bucket string
	Prefix string
}

// NewS3Uploader creates a new uploader.
func NewS3Uploader(cfg aws.Config, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Prefix: prefix,
	}
}

// Key returns the object key for a local file: its base name under Prefix.
func (u *S3Uploader) Key(localPath string) string {
	key := path.Join(strings.ReplaceAll(u.Prefix, "\\", "/"), filepath.Base(localPath))
	return strings.TrimPrefix(key, "/")
}

// UploadFiles uploads each file and returns the keys written, in order.
func (u *S3Uploader) UploadFiles(ctx context.Context, paths []string) ([]string, error) {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key := u.Key(p)
		if err := u.UploadFile(ctx, p, key); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// UploadFile uploads a single file to S3.
func (u *S3Uploader) UploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	slog.Info("Uploading to S3", "local", localPath, "bucket", u.Bucket, "key", key)

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}

func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}
