package store_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/pricofy/shortlink/internal/store"
	"github.com/pricofy/shortlink/internal/store/storetest"
)

func responseError(status int) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      errors.New(http.StatusText(status)),
		},
		RequestID: "req-1",
	}
}

func TestHead_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		headErr    error
		wantStatus store.Status
		wantErr    bool
	}{
		{name: "404 status", headErr: responseError(http.StatusNotFound), wantStatus: store.NotFound},
		{name: "403 status", headErr: responseError(http.StatusForbidden), wantStatus: store.NotFound},
		{name: "NotFound code", headErr: &smithy.GenericAPIError{Code: "NotFound"}, wantStatus: store.NotFound},
		{name: "Forbidden code", headErr: &smithy.GenericAPIError{Code: "Forbidden"}, wantStatus: store.NotFound},
		{name: "AccessDenied code", headErr: &smithy.GenericAPIError{Code: "AccessDenied"}, wantStatus: store.NotFound},
		{name: "500 status", headErr: responseError(http.StatusInternalServerError), wantErr: true},
		{name: "throttling", headErr: &smithy.GenericAPIError{Code: "SlowDown"}, wantErr: true},
		{name: "plain error", headErr: errors.New("connection reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := storetest.NewMemoryAPI()
			api.HeadErrors = []error{tt.headErr}
			s := store.NewWithAPI(api, "bucket")

			res, err := s.Head(context.Background(), "u/abc1234")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Head() should have returned error")
				}
				if !errors.Is(err, tt.headErr) {
					t.Errorf("Head() error %v should wrap %v", err, tt.headErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Head() unexpected error: %v", err)
			}
			if res.Status != tt.wantStatus {
				t.Errorf("Head() status = %v, want %v", res.Status, tt.wantStatus)
			}
		})
	}
}

func TestHead_Found(t *testing.T) {
	api := storetest.NewMemoryAPI()
	api.Seed("u/abc1234", "https://example.com/page")
	s := store.NewWithAPI(api, "bucket")

	res, err := s.Head(context.Background(), "u/abc1234")
	if err != nil {
		t.Fatalf("Head() unexpected error: %v", err)
	}
	if res.Status != store.Found {
		t.Fatalf("Head() status = %v, want found", res.Status)
	}
	if res.RedirectTarget != "https://example.com/page" {
		t.Errorf("Head() redirect = %q, want %q", res.RedirectTarget, "https://example.com/page")
	}
	if !res.HasRedirect() {
		t.Errorf("HasRedirect() = false, want true")
	}
	if res.ContentType != store.ContentType {
		t.Errorf("Head() content type = %q, want %q", res.ContentType, store.ContentType)
	}

	exists, err := s.Exists(context.Background(), "u/abc1234")
	if err != nil {
		t.Fatalf("Exists() unexpected error: %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false for a stored key")
	}
}

func TestHead_HiddenMissing(t *testing.T) {
	api := storetest.NewMemoryAPI()
	api.HideMissing = true
	s := store.NewWithAPI(api, "bucket")

	exists, err := s.Exists(context.Background(), "u/missing")
	if err != nil {
		t.Fatalf("Exists() unexpected error: %v", err)
	}
	if exists {
		t.Errorf("Exists() = true for a key hidden behind 403")
	}
}

func TestPutRedirect(t *testing.T) {
	api := storetest.NewMemoryAPI()
	s := store.NewWithAPI(api, "bucket")

	if err := s.PutRedirect(context.Background(), "u/abc1234", "https://example.com", false); err != nil {
		t.Fatalf("PutRedirect() unexpected error: %v", err)
	}

	if len(api.PutCalls) != 1 {
		t.Fatalf("expected 1 put, got %d", len(api.PutCalls))
	}
	in := api.PutCalls[0]
	if in.IfNoneMatch != nil {
		t.Errorf("unconditional put should not set IfNoneMatch")
	}

	obj := api.Objects["u/abc1234"]
	if len(obj.Body) != 0 {
		t.Errorf("marker body length = %d, want 0", len(obj.Body))
	}
	if obj.ContentType != store.ContentType {
		t.Errorf("content type = %q, want %q", obj.ContentType, store.ContentType)
	}
	if obj.RedirectTarget != "https://example.com" {
		t.Errorf("redirect target = %q, want %q", obj.RedirectTarget, "https://example.com")
	}
}

func TestPutRedirect_IfAbsent(t *testing.T) {
	api := storetest.NewMemoryAPI()
	api.Seed("u/taken00", "https://first.example.com")
	s := store.NewWithAPI(api, "bucket")

	err := s.PutRedirect(context.Background(), "u/taken00", "https://second.example.com", true)
	if !errors.Is(err, store.ErrKeyTaken) {
		t.Fatalf("PutRedirect() error = %v, want ErrKeyTaken", err)
	}
	if got := api.Objects["u/taken00"].RedirectTarget; got != "https://first.example.com" {
		t.Errorf("conditional put overwrote target: %q", got)
	}

	if err := s.PutRedirect(context.Background(), "u/free000", "https://second.example.com", true); err != nil {
		t.Fatalf("PutRedirect() on free key unexpected error: %v", err)
	}
}

func TestPutRedirect_ConflictStatusIsTaken(t *testing.T) {
	api := storetest.NewMemoryAPI()
	api.PutErr = responseError(http.StatusConflict)
	s := store.NewWithAPI(api, "bucket")

	err := s.PutRedirect(context.Background(), "u/abc1234", "https://example.com", true)
	if !errors.Is(err, store.ErrKeyTaken) {
		t.Errorf("PutRedirect() error = %v, want ErrKeyTaken", err)
	}
}

func TestPutRedirect_Failure(t *testing.T) {
	api := storetest.NewMemoryAPI()
	api.PutErr = &smithy.GenericAPIError{Code: "InternalError"}
	s := store.NewWithAPI(api, "bucket")

	err := s.PutRedirect(context.Background(), "u/abc1234", "https://example.com", false)
	if err == nil {
		t.Fatal("PutRedirect() should have returned error")
	}
	if errors.Is(err, store.ErrKeyTaken) {
		t.Errorf("unconditional failure must not be reported as ErrKeyTaken")
	}
}
