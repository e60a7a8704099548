package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/utils"
)

const folderContentType = "application/x-directory"

// s3API is the part of *s3.Client the backend uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// swapped in tests
var (
	loadAWSConfig = awsconfig.LoadDefaultConfig
	newS3Client   = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Storage keeps media in a single bucket under a key prefix.
type S3Storage struct {
	client s3API
	cfg    config.StorageConfig
	keys   *KeyBuilder
}

// NewS3 creates the S3 client from static credentials in cfg. S3_ENDPOINT points it at an
// S3 compatible service and switches to path-style addressing.
func NewS3(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3_BUCKET_NAME is required for the s3 driver")
	}
	if cfg.Region == "" {
		return nil, errors.New("AWS_REGION is required for the s3 driver")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken,
		)))
	}
	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3Client(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Storage(client, cfg), nil
}

func newS3Storage(client s3API, cfg config.StorageConfig) *S3Storage {
	return &S3Storage{
		client: client,
		cfg:    cfg,
		keys:   NewKeyBuilder(cfg.Prefix),
	}
}

func (s *S3Storage) Driver() Driver { return DriverS3 }

// Prefix is the normalized key prefix, "media" unless configured.
func (s *S3Storage) Prefix() string { return s.keys.Prefix }

// Bucket returns the configured bucket name.
func (s *S3Storage) Bucket() string { return s.cfg.Bucket }

func (s *S3Storage) ObjectKey(folder, originalName, desiredBaseName string) string {
	return s.keys.Build(folder, originalName, desiredBaseName)
}

func (s *S3Storage) PublicURL(key string) string {
	return PublicURLForKey(s.cfg, key)
}

func (s *S3Storage) acl() types.ObjectCannedACL {
	return types.ObjectCannedACL(s.cfg.ObjectACL)
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if s.cfg.ObjectACL != "" {
		in.ACL = s.acl()
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, urlOrKey string) (bool, error) {
	key, ok := ExtractKeyFor(s.cfg, urlOrKey)
	if !ok {
		return false, nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("delete object %s: %w", key, err)
	}
	return true, nil
}

// Copy duplicates srcKey to dstKey inside the bucket, applying the configured ACL.
func (s *S3Storage) Copy(ctx context.Context, srcKey, dstKey string) error {
	in := &s3.CopyObjectInput{
		Bucket:     aws.String(s.cfg.Bucket),
		CopySource: aws.String(s.cfg.Bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	}
	if s.cfg.ObjectACL != "" {
		in.ACL = s.acl()
	}
	if _, err := s.client.CopyObject(ctx, in); err != nil {
		return fmt.Errorf("copy object %s -> %s: %w", srcKey, dstKey, err)
	}
	return nil
}

// EnsureFolder writes the zero byte "{prefix}/{folder}/" marker that makes the folder show
// up in bucket browsers. Failures are logged and returned in the result, never raised.
func (s *S3Storage) EnsureFolder(ctx context.Context, folder string) FolderResult {
	safe := SanitizeFolder(folder)
	if safe == "" {
		return FolderResult{Status: FolderSkipped}
	}
	key := joinKey(s.keys.Prefix, safe) + "/"

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
		ContentType:   aws.String(folderContentType),
	}
	if s.cfg.ObjectACL != "" {
		in.ACL = s.acl()
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		utils.Logger.Warn("ensure folder failed", zap.String("key", key), zap.Error(err))
		return FolderResult{Status: FolderFailed, Key: key, Err: err}
	}
	return FolderResult{Status: FolderCreated, Key: key}
}
