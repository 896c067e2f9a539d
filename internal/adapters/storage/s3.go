// Package storage uploads payment proofs and other files to S3.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxProofSize is the maximum decoded size of an uploaded file (5MB)
	MaxProofSize = 5 * 1024 * 1024
	// FolderProofs is the S3 prefix for payment proofs
	FolderProofs = "payment-proofs"
	// FolderUploads is the S3 prefix for generic uploads
	FolderUploads = "uploads"
)

var extensionByType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// S3Config holds S3 client configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3 uploads objects to a single bucket
type S3 struct {
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client. Static credentials are used when both keys are
// set, otherwise the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else {
		logger.Warn("S3 client using default credential chain")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	logger.Info("S3 storage ready", zap.String("region", cfg.Region), zap.String("bucket", cfg.Bucket))

	return &S3{
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// PublicObjectURL returns the public URL for an object key
func (s *S3) PublicObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// Upload stores data under key and returns its public URL
func (s *S3) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	s.logger.Debug("object uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return s.PublicObjectURL(key), nil
}

// DecodeBase64 decodes a plain or data-URL base64 payload and returns the
// bytes and the content type found in the data URL, if any.
func DecodeBase64(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	contentType := ""
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("malformed data url")
		}
		meta := payload[len("data:"):comma]
		contentType, _, _ = strings.Cut(meta, ";")
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty payload")
	}
	if len(data) > MaxProofSize {
		return nil, "", fmt.Errorf("payload exceeds %d bytes", MaxProofSize)
	}
	return data, contentType, nil
}

// ProofKey returns the object key for an invoice's payment proof:
// payment-proofs/{invoice_id}/{uuid}{ext}
func ProofKey(invoiceID uint, contentType string) string {
	return path.Join(FolderProofs, fmt.Sprint(invoiceID), uuid.NewString()+extensionByType[strings.ToLower(contentType)])
}

// UploadKey sanitizes a client supplied key into the uploads folder
func UploadKey(key string) string {
	base := path.Base(path.Clean("/" + key))
	if base == "/" || base == "." {
		base = uuid.NewString()
	}
	return path.Join(FolderUploads, uuid.NewString()[:8]+"-"+base)
}
