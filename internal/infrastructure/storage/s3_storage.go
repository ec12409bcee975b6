// Package storage holds artifact storage backends beyond the local file system.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/schoolfin/voucher/internal/infrastructure/config"
	"github.com/schoolfin/voucher/internal/infrastructure/printing"
)

const pdfContentType = "application/pdf"

// S3ArtifactStorage keeps generated PDFs in an S3-compatible bucket
// (AWS S3, MinIO, RustFS). Downloads are served through presigned URLs.
type S3ArtifactStorage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	presignExpiry time.Duration
	logger        *zap.Logger
}

// S3Option configures S3ArtifactStorage
type S3Option func(*S3ArtifactStorage)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3ArtifactStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPresignExpiry overrides the lifetime of download URLs
func WithPresignExpiry(d time.Duration) S3Option {
	return func(s *S3ArtifactStorage) {
		if d > 0 {
			s.presignExpiry = d
		}
	}
}

// NewS3ArtifactStorage builds a client from the storage section of the config
func NewS3ArtifactStorage(cfg *config.StorageConfig, opts ...S3Option) (*S3ArtifactStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.S3Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.S3AccessKey == "") != (cfg.S3SecretKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	endpoint := cfg.S3Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.S3AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3ArtifactStorage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.S3Bucket,
		presignExpiry: cfg.PresignExpiry,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignExpiry <= 0 {
		s.presignExpiry = 15 * time.Minute
	}
	return s, nil
}

// Bucket returns the bucket name
func (s *S3ArtifactStorage) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket when it does not exist yet. Call it once
// at startup.
func (s *S3ArtifactStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("creating artifact bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads the PDF under {type}/{yyyy}/{mm}/{job}.pdf with the
// download filename as Content-Disposition
func (s *S3ArtifactStorage) Store(ctx context.Context, req *printing.StoreRequest) (*printing.StoreResult, error) {
	if err := printing.ValidateStoreRequest(req); err != nil {
		return nil, err
	}

	key := printing.ArtifactKey(req.DocType, req.JobID, time.Now())
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(req.PDFData),
		ContentLength: aws.Int64(int64(len(req.PDFData))),
		ContentType:   aws.String(pdfContentType),
		Metadata:      map[string]string{"job-id": req.JobID.String(), "doc-type": req.DocType},
	}
	if req.Filename != "" {
		input.ContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": req.Filename}))
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to upload PDF", err)
	}

	s.logger.Info("PDF stored",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(req.PDFData)))

	return &printing.StoreResult{Key: key, Size: int64(len(req.PDFData))}, nil
}

// Get streams the object; the caller closes the reader
func (s *S3ArtifactStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if !printing.ValidKey(key) {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "invalid path", nil)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, printing.ErrArtifactNotFound
		}
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to download PDF", err)
	}
	return out.Body, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3ArtifactStorage) Delete(ctx context.Context, key string) error {
	if !printing.ValidKey(key) {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "invalid path", nil)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to delete PDF", err)
	}
	return nil
}

// URL returns a presigned GET URL valid for the configured expiry
func (s *S3ArtifactStorage) URL(ctx context.Context, key string) (string, error) {
	if !printing.ValidKey(key) {
		return "", printing.NewRenderError(printing.ErrCodeStorageFailed, "invalid path", nil)
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return "", printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to presign download URL", err)
	}
	return req.URL, nil
}

// isNotFound matches the typed errors and the bare codes some
// S3-compatible servers send instead
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

var _ printing.ArtifactStorage = (*S3ArtifactStorage)(nil)
