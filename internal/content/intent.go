package content

import (
	"strings"

	"upi-pay-bot/internal/model"
)

// Intent is a coarse classification of a free-text message.
type Intent string

const (
	IntentPayment        Intent = "payment"
	IntentGame           Intent = "game"
	IntentQuote          Intent = "quote"
	IntentProof          Intent = "proof"
	IntentHelp           Intent = "help"
	IntentStats          Intent = "stats"
	IntentSearch         Intent = "search"
	IntentQuestion       Intent = "question"
	IntentSimilar        Intent = "similar"
	IntentAdvancedSearch Intent = "advanced_search"
	IntentUnknown        Intent = "unknown"
)

// intents are matched in order; the first intent with a keyword contained
// in the message wins.
var intents = []struct {
	intent   Intent
	keywords []string
}{
	{IntentPayment, []string{"pay", "payment", "upi", "qr", "paytm", "gpay", "phonepe", "transaction", "paisa", "bharna"}},
	{IntentGame, []string{"game", "play", "challenge", "compete", "fun", "khel", "maze", "enjoy"}},
	{IntentQuote, []string{"quote", "motivat", "inspir", "wisdom", "saying", "soch", "vichar"}},
	{IntentProof, []string{"proof", "verify", "verification", "screenshot", "evidence", "praman"}},
	{IntentHelp, []string{"help", "support", "assist", "guide", "how to", "madad", "sahayata"}},
	{IntentStats, []string{"stat", "score", "leaderboard", "rank", "performance", "ank", "stithi"}},
	{IntentSearch, []string{"search", "find", "look", "research", "information", "latest", "news", "article", "khoj", "dhoondh"}},
	{IntentQuestion, []string{"what", "how", "why", "when", "where", "who", "?", "explain", "tell me about", "batao", "kya", "kaise"}},
	{IntentSimilar, []string{"similar", "related to", "like this", "comparable", "same", "milti", "jaisa"}},
	{IntentAdvancedSearch, []string{"advanced", "detailed", "comprehensive", "thorough", "gahra", "vistarit"}},
}

// DetectIntent classifies text by substring keywords.
func DetectIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, in := range intents {
		for _, k := range in.keywords {
			if strings.Contains(lower, k) {
				return in.intent
			}
		}
	}
	return IntentUnknown
}

// SearchQuery strips the trigger words from a search-intent message.
func SearchQuery(text string) string {
	q := strings.ReplaceAll(text, "search", "")
	q = strings.ReplaceAll(q, "find", "")
	q = strings.ReplaceAll(q, "look for", "")
	return strings.TrimSpace(q)
}

// Recommend suggests a next step from the user's counters.
func Recommend(s model.UserStats) string {
	switch {
	case s.GamesPlayed == 0:
		return "🎮 Why not try playing a game? Type /games to see options! 🎲"
	case s.QuotesRead == 0:
		return "💡 Want some motivation? Type /quote to get a daily inspirational quote! ✨"
	case s.PaymentsRequested == 0:
		return "💳 Need to make a payment? Type /payments to generate a QR code! 📱"
	}

	// Most used counter; ties go to the earlier one.
	best, reply := s.GamesPlayed, "🎮 You seem to enjoy games! Try a new challenge with /games 🎯"
	if s.QuotesRead > best {
		best, reply = s.QuotesRead, "💡 You like inspirational content! Get your daily dose with /quote 🌟"
	}
	if s.PaymentsRequested > best {
		best, reply = s.PaymentsRequested, "💳 Frequent payer? Generate quick payments with /payments ⚡"
	}
	if s.SuccessfulPayments > best {
		reply = "✅ You're a premium user! Check out exclusive content in our channel 🎉"
	}
	return reply
}
