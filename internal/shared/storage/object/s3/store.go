package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-parser/internal/shared/storage/object"
)

// getObjectAPI is the slice of the S3 client the store needs.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store fetches s3://bucket/key references.
type Store struct {
	client   getObjectAPI
	maxBytes int64
}

// New creates an S3-backed fetcher using the default AWS credential chain.
func New(ctx context.Context, region string, maxBytes int64) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if strings.TrimSpace(region) != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client:   s3.NewFromConfig(cfg),
		maxBytes: maxBytes,
	}, nil
}

// Fetch downloads the object named by ref.
func (s *Store) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	bucket, key, err := splitRef(ref)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", bucket, key, &object.StatusError{StatusCode: 404})
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && s.maxBytes > 0 && *out.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", object.ErrTooLarge, *out.ContentLength)
	}
	data, err := object.ReadLimited(out.Body, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read s3 object key=%s: %w", key, err)
	}
	return data, nil
}

func splitRef(ref *url.URL) (string, string, error) {
	bucket := strings.TrimSpace(ref.Host)
	key := strings.TrimLeft(ref.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url must look like s3://bucket/key")
	}
	return bucket, key, nil
}

var _ object.Fetcher = (*Store)(nil)
