package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Source provides the raw YAML document for a ConfigurationStore.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileSource reads a YAML file from disk.
type FileSource string

func (f FileSource) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Join(ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("read tenant configuration %s: %w", string(f), err)
	}
	return data, nil
}

// BytesSource serves an in-memory YAML document.
type BytesSource []byte

func (b BytesSource) Load(context.Context) ([]byte, error) {
	return b, nil
}

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a YAML document from an S3 or S3-compatible bucket.
type S3Source struct {
	client S3API
	bucket string
	key    string
}

// S3Config describes where the tenant document lives. Credentials fall back
// to the default AWS chain when AccessKeyID is empty.
type S3Config struct {
	Bucket          string `env:"TENANTS_S3_BUCKET"`
	Key             string `env:"TENANTS_S3_KEY" envDefault:"tenants.yaml"`
	Region          string `env:"TENANTS_S3_REGION"`
	Endpoint        string `env:"TENANTS_S3_ENDPOINT"`
	UsePathStyle    bool   `env:"TENANTS_S3_USE_PATH_STYLE" envDefault:"false"`
	AccessKeyID     string `env:"TENANTS_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"TENANTS_S3_SECRET_ACCESS_KEY"`
}

func NewS3Source(client S3API, bucket, key string) (*S3Source, error) {
	if client == nil || bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: s3 source needs a client, bucket and key", ErrInvalidConfiguration)
	}
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

// NewS3SourceFromConfig builds an S3 client from cfg and the default AWS configuration.
func NewS3SourceFromConfig(ctx context.Context, cfg S3Config) (*S3Source, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3Source(client, cfg.Bucket, cfg.Key)
}

func (s *S3Source) Load(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, errors.Join(ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return data, nil
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
