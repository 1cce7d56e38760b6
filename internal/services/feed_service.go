package services

import (
	"context"
	"log/slog"

	"sirius/internal/feed"
)

// FeedService runs on-demand feed generation through the feed registry.
type FeedService struct {
	feeds  *feed.Registry
	logger *slog.Logger
}

// NewFeedService creates the feed service.
func NewFeedService(feeds *feed.Registry, logger *slog.Logger) *FeedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedService{
		feeds:  feeds,
		logger: logger.With(slog.String("service", "feed")),
	}
}

// Engines returns the registered feed engines.
func (s *FeedService) Engines() []feed.Engine {
	return s.feeds.List()
}

// Generate resolves the named feed engine and runs one generation.
func (s *FeedService) Generate(ctx context.Context, feedType string, data feed.Data) (feed.Result, error) {
	engine, err := s.feeds.Get(feedType)
	if err != nil {
		return feed.Result{}, err
	}

	result, err := engine.GenerateFeed(ctx, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "feed generation failed",
			slog.String("feed_type", feedType),
			slog.String("error", err.Error()))
		return feed.Result{}, err
	}

	s.logger.InfoContext(ctx, "feed generated",
		slog.String("feed_type", feedType),
		slog.Int("record_count", result.RecordCount),
		slog.String("file_name", result.FileName))
	return result, nil
}
