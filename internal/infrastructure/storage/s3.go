package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"insurance-marketplace/config"
	"insurance-marketplace/pkg/apperror"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

type S3Storage struct {
	client        *s3.Client
	uploader      *manager.Uploader
	region        string
	bucket        string
	publicBaseURL string
}

func NewS3Storage(ctx context.Context, cfg config.StorageConfig, log *logrus.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3_REGION not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Infof("Object storage ready (bucket %s)", cfg.Bucket)

	return &S3Storage{
		client:        client,
		uploader:      manager.NewUploader(client),
		region:        cfg.Region,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, u Upload) (string, error) {
	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := s.uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        u.Body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperror.Wrap(apperror.KindUnavailable, "storage.Upload", err)
	}
	return s.URL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	ctxDel, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctxDel, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperror.Wrap(apperror.KindUnavailable, "storage.Delete", err)
	}
	return nil
}

// URL is the public download URL of key.
func (s *S3Storage) URL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
