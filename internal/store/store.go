// Package store wraps the S3 bucket that holds short-link marker objects.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ContentType is set on every marker object.
const ContentType = "text/plain"

// ErrKeyTaken is returned by a conditional write when the key already exists.
var ErrKeyTaken = errors.New("object key already exists")

// ObjectAPI is the subset of *s3.Client used by Store.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Status tells whether a probed object exists.
type Status int

const (
	// NotFound means the object is absent, or the bucket policy hides it behind a 403.
	NotFound Status = iota
	// Found means the object exists.
	Found
)

func (s Status) String() string {
	if s == Found {
		return "found"
	}
	return "not_found"
}

// HeadResult is the outcome of a metadata probe.
type HeadResult struct {
	Status         Status
	RedirectTarget string
	ContentType    string
}

// HasRedirect reports whether the object carries a redirect target.
func (r HeadResult) HasRedirect() bool {
	return r.Status == Found && r.RedirectTarget != ""
}

// Store reads and writes marker objects in a single bucket.
type Store struct {
	api    ObjectAPI
	bucket string
}

// New creates a Store backed by an S3 client built from the default AWS config.
func New(ctx context.Context, bucket, region string) (*Store, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithAPI(s3.NewFromConfig(cfg), bucket), nil
}

// NewWithAPI creates a Store over an existing client.
func NewWithAPI(api ObjectAPI, bucket string) *Store {
	return &Store{api: api, bucket: bucket}
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// Head probes the object metadata without fetching the body.
// Not-found and forbidden responses are reported as NotFound; every other
// failure is returned as an error.
func (s *Store) Head(ctx context.Context, key string) (HeadResult, error) {
	out, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isAbsent(err) {
			return HeadResult{Status: NotFound}, nil
		}
		return HeadResult{}, fmt.Errorf("failed to head s3://%s/%s: %w", s.bucket, key, err)
	}

	return HeadResult{
		Status:         Found,
		RedirectTarget: aws.ToString(out.WebsiteRedirectLocation),
		ContentType:    aws.ToString(out.ContentType),
	}, nil
}

// Exists reports whether an object is stored under key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	res, err := s.Head(ctx, key)
	if err != nil {
		return false, err
	}
	return res.Status == Found, nil
}

// PutRedirect writes a zero-byte object whose metadata points at target.
// With ifAbsent set the write only succeeds if no object exists under key,
// otherwise ErrKeyTaken is returned.
func (s *Store) PutRedirect(ctx context.Context, key, target string, ifAbsent bool) error {
	input := &s3.PutObjectInput{
		Bucket:                  aws.String(s.bucket),
		Key:                     aws.String(key),
		Body:                    bytes.NewReader(nil),
		ContentLength:           aws.Int64(0),
		ContentType:             aws.String(ContentType),
		WebsiteRedirectLocation: aws.String(target),
	}
	if ifAbsent {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		if ifAbsent && isPreconditionFailure(err) {
			return fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrKeyTaken)
		}
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}

	return nil
}

// isAbsent treats 404 and 403 alike: without s3:ListBucket permission S3
// answers a HEAD on a missing key with 403.
func isAbsent(err error) bool {
	switch statusCode(err) {
	case http.StatusNotFound, http.StatusForbidden:
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "Forbidden", "AccessDenied":
			return true
		}
	}
	return false
}

func isPreconditionFailure(err error) bool {
	switch statusCode(err) {
	case http.StatusPreconditionFailed, http.StatusConflict:
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}

func statusCode(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.ResponseError != nil &&
		respErr.Response != nil && respErr.Response.Response != nil {
		return respErr.HTTPStatusCode()
	}
	return 0
}
