package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const s3Scheme = "s3://"

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads documents addressed as s3://bucket/key.
type S3Sink struct {
	client objectPutter
}

// NewS3Sink creates an S3 sink. Credentials come from the AWS default chain;
// a non-empty endpoint switches to path-style addressing for S3-compatible
// stores.
func NewS3Sink(ctx context.Context, region, endpoint string) (*S3Sink, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Sink{client: client}, nil
}

func (s *S3Sink) Save(ctx context.Context, path string, data []byte) error {
	bucket, key, err := parseS3Path(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/xml"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to upload catalog to S3")
		return &WriteError{Path: path, Err: err}
	}

	log.Info().Str("bucket", bucket).Str("key", key).Msg("Successfully uploaded catalog to S3")
	return nil
}

// parseS3Path splits s3://bucket/key.
func parseS3Path(path string) (bucket, key string, err error) {
	if !isS3Path(path) {
		return "", "", fmt.Errorf("not an s3 path: %q", path)
	}
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.New("s3 path must be s3://bucket/key")
	}
	return bucket, key, nil
}

func isS3Path(path string) bool {
	return strings.HasPrefix(strings.ToLower(path), s3Scheme)
}
