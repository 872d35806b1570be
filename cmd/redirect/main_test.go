package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/pricofy/shortlink/internal/domain"
	"github.com/pricofy/shortlink/internal/handler"
	"github.com/pricofy/shortlink/internal/store"
	"github.com/pricofy/shortlink/internal/store/storetest"
	"github.com/pricofy/shortlink/internal/warmup"
)

func TestHandleRequest(t *testing.T) {
	tests := []struct {
		name         string
		event        string
		headErrors   []error
		expectError  bool
		expectWarm   bool
		wantRedirect string
		wantError    string
	}{
		{
			name:       "warmup event",
			event:      `{"source":"warmup"}`,
			expectWarm: true,
		},
		{
			name:        "malformed event",
			event:       `{"Key":`,
			expectError: true,
		},
		{
			name:         "existing key",
			event:        `{"Key":"abc1234"}`,
			wantRedirect: "https://example.com/page",
		},
		{
			name:      "missing key",
			event:     `{"Key":"missing"}`,
			wantError: "Unable to load redirect url for object: s3://links/u/missing",
		},
		{
			name:        "storage failure",
			event:       `{"Key":"abc1234"}`,
			headErrors:  []error{&smithy.GenericAPIError{Code: "InternalError"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := storetest.NewMemoryAPI()
			api.Seed("u/abc1234", "https://example.com/page")
			api.HeadErrors = tt.headErrors
			logger = zerolog.Nop()
			redirector = handler.NewRedirector(store.NewWithAPI(api, "links"), logger, 0)

			result, err := handleRequest(context.Background(), json.RawMessage(tt.event))

			if len(api.PutCalls) != 0 {
				t.Errorf("redirect lookups must not write")
			}
			if tt.expectError {
				if err == nil {
					t.Errorf("handleRequest() should have returned error")
				}
				return
			}
			if err != nil {
				t.Fatalf("handleRequest() unexpected error: %v", err)
			}

			if tt.expectWarm {
				out, ok := result.(map[string]interface{})
				if !ok {
					t.Fatalf("warmup result has type %T", result)
				}
				if body, ok := out["body"].(warmup.Response); !ok || body.Status != "warm" {
					t.Errorf("unexpected warmup body: %v", out["body"])
				}
				if len(api.HeadCalls) != 0 {
					t.Errorf("warmup event reached storage")
				}
				return
			}

			resp, ok := result.(*domain.RedirectResponse)
			if !ok {
				t.Fatalf("result has type %T, want *domain.RedirectResponse", result)
			}
			if resp.Redirect != tt.wantRedirect {
				t.Errorf("Redirect = %q, want %q", resp.Redirect, tt.wantRedirect)
			}
			if resp.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}
