package promo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BookConfig holds configuration for a promo book.
type BookConfig struct {
	// Files names the code lists to load from the source.
	Files []string

	// MinMatchCount is the minimum number of lists a code must appear in.
	MinMatchCount int

	// MinLength and MaxLength bound the accepted code length.
	MinLength int
	MaxLength int

	// DiscountPercent is the share of the subtotal a valid code takes off.
	DiscountPercent decimal.Decimal
}

// book implements Book over code lists loaded once at start-up.
// Sets are read-only after construction.
type book struct {
	sets   []CodeSet
	cfg    BookConfig
	logger zerolog.Logger
}

// NewBook loads every configured list from source concurrently.
func NewBook(ctx context.Context, cfg BookConfig, source Source, logger zerolog.Logger) (Book, error) {
	logger = logger.With().Str("component", "promo-book").Logger()

	if cfg.MinMatchCount < 1 {
		cfg.MinMatchCount = 1
	}

	logger.Info().
		Int("file_count", len(cfg.Files)).
		Int("min_match_count", cfg.MinMatchCount).
		Msg("loading promo code lists")

	type loadResult struct {
		set CodeSet
		err error
	}

	results := make([]loadResult, len(cfg.Files))
	var wg sync.WaitGroup

	for i, name := range cfg.Files {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			rc, err := source.Open(ctx, name)
			if err != nil {
				results[i] = loadResult{err: err}
				return
			}
			defer rc.Close()

			set, err := readCodes(ctx, rc)
			results[i] = loadResult{set: set, err: err}
		}(i, name)
	}
	wg.Wait()

	b := &book{
		sets:   make([]CodeSet, 0, len(cfg.Files)),
		cfg:    cfg,
		logger: logger,
	}

	total := 0
	for i, r := range results {
		if r.err != nil {
			logger.Error().Err(r.err).Str("file", cfg.Files[i]).Msg("failed to load code list")
			return nil, fmt.Errorf("failed to load code list %s: %w", cfg.Files[i], r.err)
		}
		b.sets = append(b.sets, r.set)
		total += r.set.Size()
	}

	logger.Info().Int("total_codes", total).Msg("promo book ready")

	return b, nil
}

// NewBookFromSets builds a book over already loaded sets.
func NewBookFromSets(cfg BookConfig, sets []CodeSet, logger zerolog.Logger) Book {
	if cfg.MinMatchCount < 1 {
		cfg.MinMatchCount = 1
	}
	return &book{
		sets:   sets,
		cfg:    cfg,
		logger: logger.With().Str("component", "promo-book").Logger(),
	}
}

func (b *book) Discount(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.TrimSpace(code)

	if n := len(code); n < b.cfg.MinLength || (b.cfg.MaxLength > 0 && n > b.cfg.MaxLength) {
		b.logger.Debug().Int("length", n).Msg("promo code length out of range")
		return decimal.Zero, model.ErrInvalidPromoCode
	}

	matches := b.countMatches(ctx, code)
	if matches < b.cfg.MinMatchCount {
		b.logger.Debug().
			Str("promo_code", code).
			Int("match_count", matches).
			Msg("promo code not found in enough lists")
		return decimal.Zero, model.ErrInvalidPromoCode
	}

	return b.cfg.DiscountPercent, nil
}

// countMatches counts how many lists contain code, stopping as soon as the
// outcome is decided either way.
func (b *book) countMatches(ctx context.Context, code string) int {
	need := b.cfg.MinMatchCount

	found := make(chan bool, len(b.sets))
	done := make(chan struct{})
	defer close(done)

	for _, set := range b.sets {
		go func(s CodeSet) {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
			}

			select {
			case found <- s.Contains(code):
			case <-done:
			case <-ctx.Done():
			}
		}(set)
	}

	matches, checked := 0, 0
	for checked < len(b.sets) {
		select {
		case hit := <-found:
			checked++
			if hit {
				matches++
				if matches >= need {
					return matches
				}
			}
			if matches+len(b.sets)-checked < need {
				return matches
			}
		case <-ctx.Done():
			return matches
		}
	}

	return matches
}

func (b *book) Close() error {
	b.sets = nil
	b.logger.Info().Msg("promo book closed")
	return nil
}

// disabledBook rejects every code.
type disabledBook struct{}

// NewDisabledBook returns a Book that accepts no codes.
func NewDisabledBook() Book {
	return disabledBook{}
}

func (disabledBook) Discount(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, model.ErrInvalidPromoCode
}

func (disabledBook) Close() error { return nil }
