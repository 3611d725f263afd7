package promo

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectGetter is the subset of the S3 client used to fetch code lists.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source opens code lists stored as objects under a bucket prefix.
type s3Source struct {
	client objectGetter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Source creates a Source backed by S3 using the default AWS credential chain.
func NewS3Source(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 promo source initialised")

	return newS3Source(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Source(client objectGetter, bucket, prefix string, logger zerolog.Logger) *s3Source {
	return &s3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "promo-s3-source").Logger(),
	}
}

func (s *s3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.prefix + name

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	return out.Body, nil
}
