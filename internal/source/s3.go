package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"sparkload/pkg/errors"
)

// S3 reads the objects under an s3://bucket/prefix URI
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 source. Credentials come from the default chain
// unless opts.Anonymous is set.
func NewS3(ctx context.Context, uri string, opts Options) (*S3, error) {
	bucket, prefix, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	var client *s3.Client
	if opts.Anonymous {
		// explicit anonymous credentials keep the SDK from walking the
		// credential chain for public buckets
		client = s3.New(s3.Options{
			Region:      opts.Region,
			Credentials: aws.AnonymousCredentials{},
		})
	} else {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "Failed to load AWS config")
		}
		client = s3.NewFromConfig(cfg)
	}

	return &S3{client: client, bucket: bucket, prefix: prefix}, nil
}

// ParseS3URI splits s3://bucket/prefix
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("Invalid S3 URI %q", uri)).
			WithSuggestions("Use the form s3://bucket/prefix")
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func (s *S3) URI() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// List returns every non-empty object under the prefix in key order
func (s *S3) List(ctx context.Context) ([]Object, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}

	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, fmt.Sprintf("Failed to list %s", s.URI())).
				WithSuggestions("Check the bucket region and the credentials' s3:ListBucket permission")
		}

		for _, obj := range page.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue
			}
			size := aws.ToInt64(obj.Size)
			if size == 0 {
				continue
			}
			objects = append(objects, Object{Key: *obj.Key, Size: size})
		}
	}
	return objects, nil
}

func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, fmt.Sprintf("Failed to fetch s3://%s/%s", s.bucket, key))
	}
	return result.Body, nil
}
