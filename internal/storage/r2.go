package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gobreaker "github.com/sony/gobreaker/v2"

	"omegavideos/internal/config"
	"omegavideos/internal/logging"
	"omegavideos/internal/model"
)

// objectAPI is the part of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// BreakerConfig tunes the breaker in front of R2.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

var defaultBreaker = BreakerConfig{FailureThreshold: 5, Timeout: 30 * time.Second}

// R2Store stores media in a Cloudflare R2 bucket through the S3 API.
type R2Store struct {
	client    objectAPI
	bucket    string
	publicURL string
	breaker   *gobreaker.CircuitBreaker[any]
}

// NewR2Store constructs an S3-compatible client for Cloudflare R2.
func NewR2Store(ctx context.Context, cfg *config.Config) (*R2Store, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return newR2Store(client, cfg.R2BucketName, cfg.R2PublicURL, defaultBreaker), nil
}

func newR2Store(client objectAPI, bucket, publicURL string, bc BreakerConfig) *R2Store {
	log := logging.Component("R2Store")
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "r2",
		Timeout: bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &R2Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		breaker:   breaker,
	}
}

func (s *R2Store) Put(ctx context.Context, key string, body io.ReadSeeker, contentType, cacheControl string) (*model.UploadResult, error) {
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(s.bucket),
			Key:          aws.String(key),
			Body:         body,
			ContentType:  aws.String(contentType),
			CacheControl: aws.String(cacheControl),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to r2: %w", err)
	}
	return &model.UploadResult{URL: fmt.Sprintf("%s/%s", s.publicURL, key), Key: key}, nil
}

func (s *R2Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}
