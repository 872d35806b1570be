package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/pricofy/shortlink/internal/domain"
	"github.com/pricofy/shortlink/internal/store"
)

// Redirector resolves short ids to their redirect targets.
type Redirector struct {
	store *store.Store
	log   zerolog.Logger
	cache *cache.Cache
}

// NewRedirector creates a Redirector. A positive cacheTTL keeps resolved
// targets in memory for the lifetime of the container; marker objects are
// never rewritten, so a cached target cannot go stale.
func NewRedirector(s *store.Store, log zerolog.Logger, cacheTTL time.Duration) *Redirector {
	r := &Redirector{store: s, log: log}
	if cacheTTL > 0 {
		r.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return r
}

// Handle looks up the redirect target for req.Key. A missing object or an
// object without a target yields a response with Error set; storage
// failures are returned as errors.
func (r *Redirector) Handle(ctx context.Context, req domain.RedirectRequest) (*domain.RedirectResponse, error) {
	key := domain.ObjectKey(req.Key)

	if req.Key == "" {
		return r.missing(key), nil
	}

	if r.cache != nil {
		if target, ok := r.cache.Get(key); ok {
			r.log.Debug().Str("key", key).Msg("redirect served from cache")
			return &domain.RedirectResponse{Redirect: target.(string)}, nil
		}
	}

	res, err := r.store.Head(ctx, key)
	if err != nil {
		return nil, err
	}
	if !res.HasRedirect() {
		return r.missing(key), nil
	}

	if r.cache != nil {
		r.cache.SetDefault(key, res.RedirectTarget)
	}

	r.log.Info().
		Str("key", key).
		Str("redirect", res.RedirectTarget).
		Str("content_type", res.ContentType).
		Msg("redirect resolved")
	return &domain.RedirectResponse{Redirect: res.RedirectTarget}, nil
}

func (r *Redirector) missing(key string) *domain.RedirectResponse {
	msg := fmt.Sprintf("Unable to load redirect url for object: s3://%s/%s", r.store.Bucket(), key)
	r.log.Warn().Str("key", key).Msg(msg)
	return &domain.RedirectResponse{Error: msg}
}
