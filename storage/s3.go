package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/CreativeUnicorns/widgetprefs"
)

const updatedAtMetadata = "updated-at"

// S3Config configures an S3 or S3-compatible (MinIO) bucket.
type S3Config struct {
	Bucket          string `koanf:"bucket"`
	Prefix          string `koanf:"prefix"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	PathStyle       bool   `koanf:"path_style"`

	// ClientOptions are applied to the s3.Client after the fields above.
	ClientOptions []func(*s3.Options) `koanf:"-"`
}

// S3Storage stores each record as one object. Keys map to object keys under Prefix.
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Storage creates an S3Storage. Credentials fall back to the default
// AWS chain when AccessKeyID is empty.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3: bucket is required", widgetprefs.ErrInvalidInput)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range cfg.ClientOptions {
			fn(o)
		}
	})
	return &S3Storage{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Get downloads the object for key.
func (s *S3Storage) Get(ctx context.Context, key string) (*widgetprefs.Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if isNotFound(err) {
		return nil, widgetprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("s3: failed to get %q: %w", key, err)
	}
	defer out.Body.Close()

	value, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to read %q: %w", key, err)
	}

	updated := aws.ToTime(out.LastModified)
	if raw, ok := out.Metadata[updatedAtMetadata]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			updated = ts
		}
	}
	return &widgetprefs.Record{Key: key, Value: value, UpdatedAt: updated}, nil
}

// Set uploads rec, replacing any existing object.
func (s *S3Storage) Set(ctx context.Context, rec *widgetprefs.Record) error {
	if rec == nil || rec.Key == "" {
		return widgetprefs.ErrInvalidInput
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(rec.Key)),
		Body:        bytes.NewReader(rec.Value),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{updatedAtMetadata: updated.UTC().Format(time.RFC3339Nano)},
	})
	if err != nil {
		return fmt.Errorf("s3: failed to put %q: %w", rec.Key, err)
	}
	return nil
}

// Delete removes the object for key. S3 deletes are idempotent, so existence
// is checked first to report widgetprefs.ErrNotFound.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	objectKey := aws.String(s.objectKey(key))
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: objectKey})
	if isNotFound(err) {
		return widgetprefs.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("s3: failed to head %q: %w", key, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: objectKey}); err != nil {
		return fmt.Errorf("s3: failed to delete %q: %w", key, err)
	}
	return nil
}

// List pages through ListObjectsV2 and returns the matching keys, sorted.
func (s *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.objectKey(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: failed to list keys: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), s.prefix))
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *S3Storage) Close() error {
	return nil
}

func (s *S3Storage) objectKey(key string) string {
	return s.prefix + key
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
