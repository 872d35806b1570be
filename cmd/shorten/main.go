// Package main is the entry point for the URL shortener Lambda function.
package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"github.com/pricofy/shortlink/internal/config"
	"github.com/pricofy/shortlink/internal/domain"
	"github.com/pricofy/shortlink/internal/handler"
	"github.com/pricofy/shortlink/internal/logging"
	"github.com/pricofy/shortlink/internal/store"
	"github.com/pricofy/shortlink/internal/warmup"
)

var (
	logger    zerolog.Logger
	shortener *handler.Shortener
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger = logging.New("info", false)
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger = logging.New(cfg.LogLevel, false).With().
		Str("function", "shorten").
		Str("environment", cfg.Environment).
		Logger()

	s, err := store.New(context.Background(), cfg.Bucket, cfg.Region)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create store")
	}

	shortener = handler.NewShortener(s, logger, handler.ShortenerOptions{
		MaxAttempts:      cfg.MaxAttempts,
		ConditionalWrite: cfg.ConditionalWrite,
	})

	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if ev, ok := warmup.Parse(event); ok {
		return warmup.Handle(ctx, ev, logger)
	}

	logger.Debug().RawJSON("event", event).Msg("received event")

	var req domain.ShortenRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	resp, err := shortener.Handle(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("shorten failed")
		return nil, err
	}
	return resp, nil
}
