// Package s3 implements the existence check against an R2 bucket through the
// S3-compatible API.
package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker/storage"
)

// Config options for the R2 store
type Config struct {
	AccountID       string // R2 account identifier
	AccessKeyID     string // access key ID
	SecretAccessKey string // secret access key
	Bucket          string // bucket name
	Endpoint        string // optional endpoint override for tests
}

// Store checks object presence in an R2 bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// NewStore creates a Store for the configured bucket. R2 buckets sign with
// the fixed "auto" region.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.AccountID == "" {
		return nil, errors.New("storage credentials are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				SigningRegion:     "auto",
				HostnameImmutable: true,
			}, nil
		})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &Store{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Exists performs a metadata-only HeadObject; no bytes are transferred.
func (s *Store) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, &storage.StorageError{Op: "head", Key: objectKey, Err: err}
	}
	return true, nil
}
