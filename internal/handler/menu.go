// Package handler provides Telegram bot command and callback handlers.
package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/content"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/router"
)

// StatsReader reads a user's counters.
type StatsReader interface {
	Stats(ctx context.Context, userID int64) (*model.UserStats, error)
}

const helpText = "🆘 Complete Command List\n\n" +
	"Core Commands:\n" +
	"⭐ /start - Main menu with all features\n" +
	"💳 /payments - Generate payment QR codes\n" +
	"📱 /qr - Generate UPI QR code\n" +
	"📸 /proofs - View latest payment proofs\n" +
	"📺 /channel - Join our main channel\n\n" +
	"Fun & Interactive:\n" +
	"🎮 /games - Play mini games\n" +
	"💡 /quote - Get motivational quote\n" +
	"📊 /stats - View your statistics\n" +
	"🔍 /search <query> - Search web content\n" +
	"❓ /ask <question> - Ask questions with AI\n" +
	"📖 /ocr - Extract text from images\n" +
	"🎛️ /admin - Admin dashboard (admin only)\n" +
	"🆘 /help - Show this help message\n\n" +
	"All features are accessible through the interactive menu too!"

// MenuHandler serves the welcome menu and the informational commands.
type MenuHandler struct {
	cfg   *config.Config
	stats StatsReader
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(cfg *config.Config, stats StatsReader) *MenuHandler {
	return &MenuHandler{cfg: cfg, stats: stats}
}

// Welcome is the main menu text for the given first name.
func (h *MenuHandler) Welcome(firstName string) string {
	return fmt.Sprintf(
		"✨ Welcome, %s!\n\n"+
			"🔐 Your gateway to premium features\n\n"+
			"👤 OWNER: %s\n"+
			"📱 UPI: %s\n"+
			"📂 PROOFS: %s\n\n"+
			"Available Commands:\n"+
			"💳 /payments - Generate Payment QR\n"+
			"📸 /proofs - View Latest Proofs\n"+
			"📺 /channel - Join Main Channel\n"+
			"🎮 /games - Play Mini Games\n"+
			"💡 /quote - Get Motivational Quote\n"+
			"🔍 /search - Search Content\n"+
			"📊 /stats - View Statistics\n"+
			"🆘 /help - List All Commands",
		firstName, h.cfg.Links.SupportHandle, h.cfg.Payment.UPIID, h.cfg.Links.Proofs,
	)
}

// HandleStart handles /start.
func (h *MenuHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	log.Info().Int64("user_id", sender.ID).Str("first_name", sender.FirstName).Msg("User started the bot")
	return c.Send(h.Welcome(sender.FirstName), MainMenuKeyboard(h.cfg.Links))
}

// HandleMainMenu handles the main_menu callback.
func (h *MenuHandler) HandleMainMenu(c tele.Context, _ router.Route) error {
	return c.Edit(h.Welcome(c.Sender().FirstName), MainMenuKeyboard(h.cfg.Links))
}

// HandleHelp handles /help.
func (h *MenuHandler) HandleHelp(c tele.Context) error {
	return c.Send(helpText)
}

// HandleProofs handles /proofs.
func (h *MenuHandler) HandleProofs(c tele.Context) error {
	return c.Send("📸 Latest Verified Proofs\n\n📂 See all proofs here: " + h.cfg.Links.Proofs)
}

// HandleChannel handles /channel.
func (h *MenuHandler) HandleChannel(c tele.Context) error {
	return c.Send("📺 Join Our Premium Channel: " + h.cfg.Links.Channel)
}

// HandleStats handles /stats.
func (h *MenuHandler) HandleStats(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	s, err := h.stats.Stats(context.Background(), sender.ID)
	if err != nil || s == nil {
		if err != nil {
			log.Debug().Err(err).Int64("user_id", sender.ID).Msg("No stats for user")
		}
		return c.Send("📊 No statistics available yet!")
	}
	return c.Send(StatsText(sender.FirstName, *s) + "\n\n" + content.Recommend(*s))
}

// StatsText formats a user's counters.
func StatsText(firstName string, s model.UserStats) string {
	return fmt.Sprintf(
		"📊 %s's Stats\n\n"+
			"🎮 Games Played: %d\n"+
			"💡 Quotes Read: %d\n"+
			"💳 Payments Requested: %d\n"+
			"✅ Successful Payments: %d",
		firstName, s.GamesPlayed, s.QuotesRead, s.PaymentsRequested, s.SuccessfulPayments,
	)
}
