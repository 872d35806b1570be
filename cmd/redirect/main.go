// Package main is the entry point for the short-link redirect Lambda function.
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
	logger     zerolog.Logger
	redirector *handler.Redirector
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger = logging.New("info", false)
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger = logging.New(cfg.LogLevel, false).With().
		Str("function", "redirect").
		Str("environment", cfg.Environment).
		Logger()

	s, err := store.New(context.Background(), cfg.Bucket, cfg.Region)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create store")
	}

	redirector = handler.NewRedirector(s, logger, cfg.CacheTTL)

	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if ev, ok := warmup.Parse(event); ok {
		return warmup.Handle(ctx, ev, logger)
	}

	logger.Debug().RawJSON("event", event).Msg("received event")

	var req domain.RedirectRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	resp, err := redirector.Handle(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("key", req.Key).Msg("redirect lookup failed")
		return nil, err
	}
	return resp, nil
}
