package filestorage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// s3API is the subset of the S3 client used by S3Storage
type s3API interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
	DeleteObjectWithContext(ctx aws.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error)
	HeadObjectWithContext(ctx aws.Context, input *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error)
}

// S3Config configures the S3 photo backend
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// S3Storage stores photos as objects in an S3 bucket. References are object
// keys relative to the configured prefix.
type S3Storage struct {
	client s3API
	bucket string
	region string
	prefix string
}

// NewS3Storage creates an S3 backed storage. Static credentials are used
// when given, otherwise the SDK's default chain applies.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	logger.Info().Str("bucket", cfg.Bucket).Str("region", cfg.Region).Msg("S3 photo storage configured")

	return newS3Storage(s3.New(sess), cfg), nil
}

func newS3Storage(client s3API, cfg S3Config) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}
}

func (s *S3Storage) key(ref string) (string, error) {
	cleaned, err := cleanRef(ref)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return cleaned, nil
	}
	return s.prefix + "/" + cleaned, nil
}

// SaveFile uploads the file under subPath with a fresh unique name
func (s *S3Storage) SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	ref := path.Join(subPath, uuid.New().String()+strings.ToLower(path.Ext(fileHeader.Filename)))
	key, err := s.key(ref)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to upload photo to S3")
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("key", key).Msg("File uploaded to S3")
	return ref, nil
}

// DeleteFile removes the object. S3 deletes are idempotent.
func (s *S3Storage) DeleteFile(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	key, err := s.key(ref)
	if err != nil {
		return fmt.Errorf("%w: %s", err, ref)
	}

	if _, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to delete photo from S3")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists issues a HEAD request for the object
func (s *S3Storage) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := s.key(ref)
	if err != nil {
		return false, nil
	}

	_, err = s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) && (aerr.Code() == "NotFound" || aerr.Code() == s3.ErrCodeNoSuchKey) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check file: %w", err)
}

// URL returns the virtual-hosted style object URL
func (s *S3Storage) URL(ref string) string {
	key, err := s.key(ref)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
