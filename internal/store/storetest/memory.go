// Package storetest provides an in-memory stand-in for the S3 object API.
package storetest

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Object is a stored marker object.
type Object struct {
	Body           []byte
	ContentType    string
	RedirectTarget string
}

// MemoryAPI implements store.ObjectAPI over a map.
// HeadErrors are returned in order by the next HeadObject calls before
// falling back to the map; a nil entry means "use the map".
type MemoryAPI struct {
	mu sync.Mutex

	Objects map[string]Object

	// HideMissing answers missing keys with 403 Forbidden instead of 404,
	// as S3 does when the caller lacks s3:ListBucket.
	HideMissing bool

	HeadErrors []error
	PutErr     error

	HeadCalls []string
	PutCalls  []*s3.PutObjectInput
}

// NewMemoryAPI creates an empty MemoryAPI.
func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{Objects: make(map[string]Object)}
}

// HeadObject implements store.ObjectAPI.
func (m *MemoryAPI) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := aws.ToString(params.Key)
	m.HeadCalls = append(m.HeadCalls, key)

	if len(m.HeadErrors) > 0 {
		err := m.HeadErrors[0]
		m.HeadErrors = m.HeadErrors[1:]
		if err != nil {
			return nil, err
		}
	}

	obj, ok := m.Objects[key]
	if !ok {
		if m.HideMissing {
			return nil, &smithy.GenericAPIError{Code: "Forbidden", Message: "Forbidden"}
		}
		return nil, &types.NotFound{Message: aws.String("Not Found")}
	}

	out := &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.Body))),
	}
	if obj.ContentType != "" {
		out.ContentType = aws.String(obj.ContentType)
	}
	if obj.RedirectTarget != "" {
		out.WebsiteRedirectLocation = aws.String(obj.RedirectTarget)
	}
	return out, nil
}

// PutObject implements store.ObjectAPI.
func (m *MemoryAPI) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PutCalls = append(m.PutCalls, params)
	if m.PutErr != nil {
		return nil, m.PutErr
	}

	key := aws.ToString(params.Key)
	if aws.ToString(params.IfNoneMatch) == "*" {
		if _, exists := m.Objects[key]; exists {
			return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
		}
	}

	var body []byte
	if params.Body != nil {
		b, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	m.Objects[key] = Object{
		Body:           body,
		ContentType:    aws.ToString(params.ContentType),
		RedirectTarget: aws.ToString(params.WebsiteRedirectLocation),
	}
	return &s3.PutObjectOutput{}, nil
}

// Seed stores an object directly, bypassing call recording.
func (m *MemoryAPI) Seed(key, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = Object{ContentType: "text/plain", RedirectTarget: target}
}
