package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"upi-pay-bot/internal/content"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/repository"
)

// QuoteStore is the quote persistence used by QuoteService.
type QuoteStore interface {
	Random(ctx context.Context, exclude []int64) (*model.Quote, error)
	MarkRead(ctx context.Context, userID, quoteID int64) error
	ReadIDs(ctx context.Context, userID int64) ([]int64, error)
}

// QuoteSource supplies remote and static quotes.
type QuoteSource interface {
	RemoteQuote(ctx context.Context) (*content.Quote, error)
	FallbackQuote() content.Quote
}

// StatCounter increments user counters.
type StatCounter interface {
	IncrementStat(ctx context.Context, userID int64, field model.StatField) error
}

// QuoteService picks the next quote for a user.
type QuoteService struct {
	quotes  QuoteStore
	source  QuoteSource
	counter StatCounter
}

// NewQuoteService creates a new QuoteService instance.
func NewQuoteService(quotes QuoteStore, source QuoteSource, counter StatCounter) *QuoteService {
	return &QuoteService{quotes: quotes, source: source, counter: counter}
}

// Next returns a quote: remote first, then a stored quote the user has not
// seen (or any stored quote once all are seen), then a static one.
// The read counter is incremented whichever source answered.
func (s *QuoteService) Next(ctx context.Context, userID int64) content.Quote {
	defer func() {
		if err := s.counter.IncrementStat(ctx, userID, model.StatQuotesRead); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("Failed to count quote read")
		}
	}()

	if q, err := s.source.RemoteQuote(ctx); err == nil && q != nil {
		return *q
	}

	if q, ok := s.stored(ctx, userID); ok {
		return q
	}
	return s.source.FallbackQuote()
}

func (s *QuoteService) stored(ctx context.Context, userID int64) (content.Quote, bool) {
	seen, err := s.quotes.ReadIDs(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load read quotes")
		seen = nil
	}

	q, err := s.quotes.Random(ctx, seen)
	if errors.Is(err, repository.ErrQuoteNotFound) && len(seen) > 0 {
		q, err = s.quotes.Random(ctx, nil)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrQuoteNotFound) {
			log.Error().Err(err).Msg("Failed to load stored quote")
		}
		return content.Quote{}, false
	}

	if err := s.quotes.MarkRead(ctx, userID, q.ID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("quote_id", q.ID).Msg("Failed to mark quote read")
	}
	return content.Quote{Text: q.Text, Author: q.Author, Category: q.Category}, true
}

// MsgQuoteLiked acknowledges a like.
const MsgQuoteLiked = "❤️ Quote liked!"

// Like acknowledges a like. Likes are not stored.
func (s *QuoteService) Like(_ context.Context, userID int64) string {
	log.Debug().Int64("user_id", userID).Msg("Quote liked")
	return MsgQuoteLiked
}
