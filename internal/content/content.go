// Package content serves quotes, jokes, facts and free-text answers.
// Remote sources are optional; every method has a static fallback so a
// failing collaborator never surfaces to the user.
package content

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrDisabled is returned by collaborators that are not configured.
var ErrDisabled = errors.New("content source disabled")

// Fetcher generates text for a prompt.
type Fetcher interface {
	Fetch(ctx context.Context, prompt string) (string, error)
}

// Source fetches ready-made quotes, jokes and facts.
type Source interface {
	Quote(ctx context.Context) (*Quote, error)
	Joke(ctx context.Context) (string, error)
	Fact(ctx context.Context) (string, error)
}

// Quote is a quotation with attribution.
type Quote struct {
	Text     string
	Author   string
	Category string
}

// Format renders the quote as shown in chat.
func (q Quote) Format() string {
	return fmt.Sprintf("💡 Daily Motivation\n\n\"%s\"\n- %s", q.Text, q.Author)
}

// Quotes is the static quote set.
var Quotes = []Quote{
	{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs", Category: "motivation"},
	{Text: "Innovation distinguishes between a leader and a follower.", Author: "Steve Jobs", Category: "innovation"},
	{Text: "Your time is limited, don't waste it living someone else's life.", Author: "Steve Jobs", Category: "life"},
	{Text: "Stay hungry, stay foolish.", Author: "Steve Jobs", Category: "philosophy"},
	{Text: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt", Category: "dreams"},
}

// Jokes is the static joke set.
var Jokes = []string{
	"Why don't scientists trust atoms?\n\nBecause they make up everything!",
	"What did one ocean say to the other ocean?\n\nNothing, they just waved!",
	"Why did the scarecrow win an award?\n\nBecause he was outstanding in his field!",
}

// Facts is the static fact set.
var Facts = []string{
	"Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old and still perfectly good to eat.",
	"A group of flamingos is called a 'flamboyance'.",
	"Octopuses have three hearts and blue blood.",
}

type keyword struct {
	key   string
	reply string
}

// answerReplies are tried in order against the lowercased prompt.
var answerReplies = []keyword{
	{"google", "Google is a multinational technology company that specializes in Internet-related services and products. It was founded in 1998 by Larry Page and Sergey Brin while they were Ph.D. students at Stanford University. Google's core product is its search engine, which helps people find information online. The company also offers a wide range of services including Gmail (email), Google Maps, YouTube (video sharing), Android (mobile operating system), and cloud computing services."},
	{"what is", "That's a great question! I'd be happy to help explain that to you."},
	{"how to", "I'd be glad to help you with that! Here's what I know:"},
	{"why", "That's an interesting question! Let me think about that for a moment."},
	{"when", "That's a good question about timing. Here's what I can tell you:"},
	{"where", "I can help you with that location question! Here's what I know:"},
	{"who", "That's a question about a person or entity. Here's what I can tell you:"},
}

var generalReplies = []string{
	"That's an interesting point! Tell me more. 🤔",
	"I'm not sure I understand completely. Could you explain further? 🙇‍♂️",
	"Thanks for sharing that with me! 🙏",
	"I appreciate your input on this topic! 💡",
	"That's a fascinating perspective! 👏",
	"I'd love to hear more about that! 🗣️",
	"Thanks for bringing that up! 🎯",
	"That's really thought-provoking! 🧠",
	"Wow, I hadn't thought of it that way! ✨",
	"That's a great question! Let me think... 🤔💭",
}

var searchReplies = []keyword{
	{"ai", "🤖 Artificial Intelligence (AI) refers to the simulation of human intelligence in machines. AI systems can learn, reason, and make decisions."},
	{"machine learning", "💻 Machine Learning is a subset of AI that enables computers to learn and improve from experience without being explicitly programmed."},
	{"python", "🐍 Python is a high-level programming language known for its simplicity and readability. It's widely used in web development, data science, and AI."},
	{"telegram", "📱 Telegram is a cloud-based instant messaging service that focuses on security and speed."},
	{"bot", "🤖 A bot is a software application that performs automated tasks. In Telegram, bots can provide various services and entertainment."},
	{"payment", "💳 Payments can be made through various methods including UPI, Paytm, GPay, and PhonePe."},
	{"game", "🎮 Games provide entertainment and fun. This bot offers several mini-games like Tic-Tac-Toe, Hangman, and Rock-Paper-Scissors."},
	{"quote", "💬 Quotes are inspiring or thought-provoking sayings that can motivate and uplift your mood."},
}

// MsgSimilarUnavailable is the /similar reply when no generator is configured.
const MsgSimilarUnavailable = "❌ The 'similar content' feature is not available with the simple search system.\nPlease use the /search command instead."

const (
	searchPrompt  = "Give a short, factual summary (at most 5 sentences) of current information about: %s"
	similarPrompt = "List five topics closely related to %q, one per line, each with a one-sentence description."
)

// Library combines the optional remote collaborators with static fallbacks.
type Library struct {
	source Source
	ai     Fetcher
	intn   func(n int) int
}

// NewLibrary creates a Library. source and ai may be nil.
func NewLibrary(source Source, ai Fetcher) *Library {
	return &Library{source: source, ai: ai, intn: rand.IntN}
}

func pick[T any](l *Library, items []T) T {
	return items[l.intn(len(items))]
}

// RemoteQuote asks the remote source only.
func (l *Library) RemoteQuote(ctx context.Context) (*Quote, error) {
	if l.source == nil {
		return nil, ErrDisabled
	}
	return l.source.Quote(ctx)
}

// FallbackQuote returns a random static quote.
func (l *Library) FallbackQuote() Quote {
	return pick(l, Quotes)
}

// Quote returns a remote quote, or a static one on failure.
func (l *Library) Quote(ctx context.Context) Quote {
	q, err := l.RemoteQuote(ctx)
	if err != nil || q == nil {
		logFailure(err, "quote")
		return l.FallbackQuote()
	}
	return *q
}

// Joke returns a remote joke, or a static one on failure.
func (l *Library) Joke(ctx context.Context) string {
	if l.source != nil {
		j, err := l.source.Joke(ctx)
		if err == nil && j != "" {
			return j
		}
		logFailure(err, "joke")
	}
	return pick(l, Jokes)
}

// Fact returns a remote fact, or a static one on failure.
func (l *Library) Fact(ctx context.Context) string {
	if l.source != nil {
		f, err := l.source.Fact(ctx)
		if err == nil && f != "" {
			return f
		}
		logFailure(err, "fact")
	}
	return pick(l, Facts)
}

func (l *Library) generate(ctx context.Context, prompt, kind string) (string, bool) {
	if l.ai == nil {
		return "", false
	}
	text, err := l.ai.Fetch(ctx, prompt)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		logFailure(err, kind)
		return "", false
	}
	return text, true
}

// Answer replies to a free-text prompt. The result carries no prefix.
func (l *Library) Answer(ctx context.Context, prompt string) string {
	if text, ok := l.generate(ctx, prompt, "answer"); ok {
		return text
	}
	lower := strings.ToLower(prompt)
	for _, k := range answerReplies {
		if strings.Contains(lower, k.key) {
			return k.reply
		}
	}
	return pick(l, generalReplies)
}

// Search summarizes information about query.
func (l *Library) Search(ctx context.Context, query string) string {
	header := "🔍 Search Results for: " + query + "\n\n"
	if text, ok := l.generate(ctx, fmt.Sprintf(searchPrompt, query), "search"); ok {
		return header + text
	}
	lower := strings.ToLower(query)
	for _, k := range searchReplies {
		if strings.Contains(lower, k.key) {
			return header + k.reply
		}
	}
	return header + fmt.Sprintf("I found some information about '%s'. This is a placeholder response since web search is not configured. Please try rephrasing your query or contact the bot administrator.", query)
}

// Similar lists topics related to topic.
func (l *Library) Similar(ctx context.Context, topic string) string {
	if text, ok := l.generate(ctx, fmt.Sprintf(similarPrompt, topic), "similar"); ok {
		return "🔗 Similar to: " + topic + "\n\n" + text
	}
	return MsgSimilarUnavailable
}

func logFailure(err error, kind string) {
	if err == nil || errors.Is(err, ErrDisabled) {
		return
	}
	log.Warn().Err(err).Str("kind", kind).Msg("Content collaborator failed, using fallback")
}
