package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"upi-pay-bot/internal/model"
)

var ErrQuoteNotFound = errors.New("quote not found")

// DefaultQuotes are inserted into an empty quotes table.
var DefaultQuotes = []model.Quote{
	{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs", Category: "motivation"},
	{Text: "Innovation distinguishes between a leader and a follower.", Author: "Steve Jobs", Category: "innovation"},
	{Text: "Your time is limited, don't waste it living someone else's life.", Author: "Steve Jobs", Category: "life"},
	{Text: "Stay hungry, stay foolish.", Author: "Steve Jobs", Category: "philosophy"},
	{Text: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt", Category: "dreams"},
}

// QuoteRepository handles stored quotes and read tracking.
type QuoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository creates a new QuoteRepository instance.
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// SeedDefaults inserts DefaultQuotes when the table is empty.
func (r *QuoteRepository) SeedDefaults(ctx context.Context) error {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count quotes: %w", err)
	}
	if n > 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, q := range DefaultQuotes {
		batch.Queue(`INSERT INTO quotes (quote, author, category) VALUES ($1, $2, $3)`, q.Text, q.Author, q.Category)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed quotes: %w", err)
	}
	return nil
}

// Add stores a new quote.
func (r *QuoteRepository) Add(ctx context.Context, text, author, category string) (*model.Quote, error) {
	const query = `
		INSERT INTO quotes (quote, author, category) VALUES ($1, $2, $3)
		RETURNING id, quote, author, category
	`

	var q model.Quote
	if err := r.pool.QueryRow(ctx, query, text, author, category).Scan(&q.ID, &q.Text, &q.Author, &q.Category); err != nil {
		return nil, fmt.Errorf("failed to add quote: %w", err)
	}
	return &q, nil
}

// Random returns a random quote whose id is not in exclude.
// Returns ErrQuoteNotFound when nothing is left.
func (r *QuoteRepository) Random(ctx context.Context, exclude []int64) (*model.Quote, error) {
	const query = `
		SELECT id, quote, author, category
		FROM quotes
		WHERE NOT (id = ANY($1))
		ORDER BY random()
		LIMIT 1
	`
	if exclude == nil {
		exclude = []int64{}
	}

	var q model.Quote
	err := r.pool.QueryRow(ctx, query, exclude).Scan(&q.ID, &q.Text, &q.Author, &q.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to pick quote: %w", err)
	}
	return &q, nil
}

// MarkRead records that the user has seen the quote. Repeats are ignored.
func (r *QuoteRepository) MarkRead(ctx context.Context, userID, quoteID int64) error {
	const query = `
		INSERT INTO user_quotes (user_id, quote_id) VALUES ($1, $2)
		ON CONFLICT (user_id, quote_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, quoteID); err != nil {
		return fmt.Errorf("failed to mark quote read: %w", err)
	}
	return nil
}

// ReadIDs returns the ids of quotes the user has seen.
func (r *QuoteRepository) ReadIDs(ctx context.Context, userID int64) ([]int64, error) {
	const query = `SELECT quote_id FROM user_quotes WHERE user_id = $1 ORDER BY quote_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list read quotes: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect read quotes: %w", err)
	}
	return ids, nil
}
