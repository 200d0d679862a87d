package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/content"
)

// TextHandler routes free text: open admin prompts first, then the
// keyword intent of the message.
type TextHandler struct {
	cfg     *config.Config
	admin   *AdminHandler
	menu    *MenuHandler
	games   *GameHandler
	content *ContentHandler
}

// NewTextHandler creates a new TextHandler.
func NewTextHandler(cfg *config.Config, admin *AdminHandler, menu *MenuHandler, games *GameHandler, content *ContentHandler) *TextHandler {
	return &TextHandler{
		cfg:     cfg,
		admin:   admin,
		menu:    menu,
		games:   games,
		content: content,
	}
}

// HandleText handles any non-command text message.
func (h *TextHandler) HandleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if h.cfg.IsAdmin(sender.ID) {
		consumed, err := h.admin.HandlePrompt(c)
		if consumed {
			return err
		}
	}

	text := c.Text()
	intent := content.DetectIntent(text)
	log.Debug().Int64("user_id", sender.ID).Str("intent", string(intent)).Msg("Text intent")

	switch intent {
	case content.IntentPayment:
		return c.Send(fmt.Sprintf(
			"💳 Payment Information\n\n"+
				"📱 UPI ID: %s\n"+
				"✅ Works for all payments: Paytm / GPay / PhonePe\n\n"+
				"Use /payments to generate a QR code or upload a payment screenshot!",
			h.cfg.Payment.UPIID,
		))
	case content.IntentGame:
		return h.games.HandleGames(c)
	case content.IntentQuote:
		return h.content.HandleQuote(c)
	case content.IntentProof:
		return h.menu.HandleProofs(c)
	case content.IntentHelp:
		return h.menu.HandleHelp(c)
	case content.IntentStats:
		return h.menu.HandleStats(c)
	case content.IntentSearch, content.IntentAdvancedSearch:
		query := content.SearchQuery(text)
		if query == "" {
			return c.Send("❓ What would you like me to search for? Try: 'search quantum computing'")
		}
		return h.content.search(c, query)
	case content.IntentSimilar:
		return c.Send(h.content.writer.Similar(context.Background(), text))
	case content.IntentQuestion:
		if err := c.Send(msgThinking); err != nil {
			return err
		}
		return h.content.answer(c, text)
	default:
		return h.content.answer(c, text)
	}
}
