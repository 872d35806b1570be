// Package handler provides the Lambda handlers for creating and resolving short links.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pricofy/shortlink/internal/domain"
	"github.com/pricofy/shortlink/internal/keygen"
	"github.com/pricofy/shortlink/internal/store"
)

// DefaultMaxAttempts bounds the collision loop when no limit is configured.
const DefaultMaxAttempts = 10

var (
	// ErrInvalidRequest is returned for requests missing a required field.
	ErrInvalidRequest = errors.New("invalid shorten request")

	// ErrKeySpaceExhausted is returned when every attempt produced a key
	// that was already taken.
	ErrKeySpaceExhausted = errors.New("no free short key found")
)

// ShortenerOptions configures a Shortener.
type ShortenerOptions struct {
	// MaxAttempts caps how many candidate keys are tried.
	MaxAttempts int

	// ConditionalWrite sends the final put as write-if-absent, closing the
	// window between the existence probe and the write.
	ConditionalWrite bool

	// NewID overrides the id generator. Defaults to keygen.New(keygen.DefaultLength).
	NewID func() (string, error)
}

// Shortener creates short links backed by marker objects.
type Shortener struct {
	store            *store.Store
	log              zerolog.Logger
	newID            func() (string, error)
	maxAttempts      int
	conditionalWrite bool
}

// NewShortener creates a Shortener.
func NewShortener(s *store.Store, log zerolog.Logger, opts ShortenerOptions) *Shortener {
	sh := &Shortener{
		store:            s,
		log:              log,
		newID:            opts.NewID,
		maxAttempts:      opts.MaxAttempts,
		conditionalWrite: opts.ConditionalWrite,
	}
	if sh.newID == nil {
		sh.newID = keygen.New(keygen.DefaultLength)
	}
	if sh.maxAttempts <= 0 {
		sh.maxAttempts = DefaultMaxAttempts
	}
	return sh
}

// Handle allocates a free key, writes the redirect marker and returns the
// public short URL. Storage errors other than not-found abort the request.
func (s *Shortener) Handle(ctx context.Context, req domain.ShortenRequest) (*domain.ShortenResponse, error) {
	if err := validateShortenRequest(req); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("url_long", req.URLLong).
		Str("cdn_prefix", req.CDNPrefix).
		Msg("shorten request")

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		shortID, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate short id: %w", err)
		}
		key := domain.ObjectKey(shortID)

		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check key %s: %w", key, err)
		}
		if exists {
			s.log.Warn().Str("key", key).Int("attempt", attempt).Msg("short key collision, retrying")
			continue
		}

		err = s.store.PutRedirect(ctx, key, req.URLLong, s.conditionalWrite)
		if errors.Is(err, store.ErrKeyTaken) {
			s.log.Warn().Str("key", key).Int("attempt", attempt).Msg("short key taken during write, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create redirect object: %w", err)
		}

		s.log.Info().Str("key", key).Int("attempts", attempt).Msg("short key allocated")

		return &domain.ShortenResponse{
			URLShort: "http://" + req.CDNPrefix + "/" + shortID,
			URLLong:  req.URLLong,
		}, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrKeySpaceExhausted, s.maxAttempts)
}

// validateShortenRequest checks the request is valid.
func validateShortenRequest(req domain.ShortenRequest) error {
	if req.URLLong == "" {
		return fmt.Errorf("%w: url_long is required", ErrInvalidRequest)
	}
	if req.CDNPrefix == "" {
		return fmt.Errorf("%w: cdn_prefix is required", ErrInvalidRequest)
	}
	return nil
}
