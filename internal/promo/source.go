package promo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileSource opens code lists from the local file system.
type fileSource struct {
	dir    string
	logger zerolog.Logger
}

// NewFileSource creates a Source reading files relative to dir. An empty dir
// uses names as given.
func NewFileSource(dir string, logger zerolog.Logger) Source {
	return &fileSource{
		dir:    dir,
		logger: logger.With().Str("component", "promo-file-source").Logger(),
	}
}

func (s *fileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	path := name
	if s.dir != "" && !filepath.IsAbs(name) {
		path = filepath.Join(s.dir, name)
	}

	f, err := os.Open(path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to open code list")
		return nil, fmt.Errorf("failed to open code list %s: %w", path, err)
	}

	s.logger.Debug().Str("file", path).Msg("opened code list")
	return f, nil
}

// fallbackSource tries a primary source first and a secondary one on failure.
type fallbackSource struct {
	primary   Source
	secondary Source
	logger    zerolog.Logger
}

// NewFallbackSource creates a Source that tries primary, then secondary.
// A nil primary means secondary only.
func NewFallbackSource(primary, secondary Source, logger zerolog.Logger) Source {
	return &fallbackSource{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "promo-fallback-source").Logger(),
	}
}

func (s *fallbackSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.primary != nil {
		rc, err := s.primary.Open(ctx, name)
		if err == nil {
			return rc, nil
		}
		s.logger.Warn().
			Err(err).
			Str("name", name).
			Msg("primary source failed, falling back")
	}

	return s.secondary.Open(ctx, name)
}
