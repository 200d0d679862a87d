package handler

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/content"
	"upi-pay-bot/internal/router"
)

// QuotePicker chooses and acknowledges quotes.
type QuotePicker interface {
	Next(ctx context.Context, userID int64) content.Quote
	Like(ctx context.Context, userID int64) string
}

// Writer produces jokes, facts and AI replies.
type Writer interface {
	Joke(ctx context.Context) string
	Fact(ctx context.Context) string
	Answer(ctx context.Context, prompt string) string
	Search(ctx context.Context, query string) string
	Similar(ctx context.Context, topic string) string
}

const (
	searchUsage = "🔍 Simple Web Search\n\n" +
		"Usage: /search <your query>\n\n" +
		"Examples:\n" +
		"/search artificial intelligence\n" +
		"/search python programming\n" +
		"/search latest technology news"

	askUsage = "❓ Ask a Question\n\n" +
		"Usage: /ask <your question>\n\n" +
		"Examples:\n" +
		"/ask What is quantum computing?\n" +
		"/ask How does photosynthesis work?\n" +
		"/ask What are the latest AI developments?"

	similarUsage = "🔗 Similar Topics\n\n" +
		"Usage: /similar <topic>\n\n" +
		"Example:\n" +
		"/similar machine learning"

	msgSearching = "🔍 Searching for information..."
	msgThinking  = "🤔 Thinking..."
)

// ContentHandler serves quotes, jokes, facts, search and AI answers.
type ContentHandler struct {
	quotes QuotePicker
	writer Writer
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(quotes QuotePicker, writer Writer) *ContentHandler {
	return &ContentHandler{quotes: quotes, writer: writer}
}

// HandleQuote handles /quote.
func (h *ContentHandler) HandleQuote(c tele.Context) error {
	q := h.quotes.Next(context.Background(), c.Sender().ID)
	return c.Send(q.Format())
}

// HandleDailyQuote handles the daily_quote callback.
func (h *ContentHandler) HandleDailyQuote(c tele.Context, _ router.Route) error {
	q := h.quotes.Next(context.Background(), c.Sender().ID)
	return c.Edit(q.Format(), QuoteKeyboard())
}

// HandleLikeQuote handles the like_quote callback.
func (h *ContentHandler) HandleLikeQuote(c tele.Context, _ router.Route) error {
	text := h.quotes.Like(context.Background(), c.Sender().ID)
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

// HandleJoke handles /joke.
func (h *ContentHandler) HandleJoke(c tele.Context) error {
	return c.Send("😂 " + h.writer.Joke(context.Background()))
}

// HandleFact handles /fact.
func (h *ContentHandler) HandleFact(c tele.Context) error {
	return c.Send("🧠 " + h.writer.Fact(context.Background()))
}

// HandleSearch handles /search <query>.
func (h *ContentHandler) HandleSearch(c tele.Context) error {
	query := strings.TrimSpace(c.Message().Payload)
	if query == "" {
		return c.Send(searchUsage)
	}
	return h.search(c, query)
}

func (h *ContentHandler) search(c tele.Context, query string) error {
	if err := c.Send(msgSearching); err != nil {
		return err
	}
	return c.Send(h.writer.Search(context.Background(), query))
}

// HandleAsk handles /ask <question>.
func (h *ContentHandler) HandleAsk(c tele.Context) error {
	question := strings.TrimSpace(c.Message().Payload)
	if question == "" {
		return c.Send(askUsage)
	}
	if err := c.Send(msgThinking); err != nil {
		return err
	}
	return h.answer(c, question)
}

func (h *ContentHandler) answer(c tele.Context, text string) error {
	return c.Send("🤖 " + h.writer.Answer(context.Background(), text))
}

// HandleSimilar handles /similar <topic>.
func (h *ContentHandler) HandleSimilar(c tele.Context) error {
	topic := strings.TrimSpace(c.Message().Payload)
	if topic == "" {
		return c.Send(similarUsage)
	}
	return c.Send(h.writer.Similar(context.Background(), topic))
}
