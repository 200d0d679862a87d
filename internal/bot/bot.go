// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/handler"
	"upi-pay-bot/internal/router"
)

// ErrIncompleteRoutes is returned by Register when a callback action has no
// handler.
var ErrIncompleteRoutes = errors.New("callback actions without handler")

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot       *tele.Bot
	cfg       *config.Config
	transport *Transport
	router    *router.Router
}

// Dependencies holds what the middleware chain needs.
type Dependencies struct {
	Config *config.Config
	Users  UserTracker
	Bans   router.BanChecker
	// Offline skips the getMe call; used by tests.
	Offline bool
}

// Handlers are the update handlers wired by Register.
type Handlers struct {
	Menu    *handler.MenuHandler
	Payment *handler.PaymentHandler
	Game    *handler.GameHandler
	Content *handler.ContentHandler
	Admin   *handler.AdminHandler
	Text    *handler.TextHandler
}

// New creates a new Bot instance and installs the middleware chain.
// Handlers are registered separately because some of them need the
// transport.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	timeout := deps.Config.Bot.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	pref := tele.Settings{
		Token:   deps.Config.Bot.Token,
		Poller:  &tele.LongPoller{Timeout: timeout},
		OnError: onError,
		Offline: deps.Offline,
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:       teleBot,
		cfg:       deps.Config,
		transport: NewTransport(teleBot),
		router:    router.New(deps.Bans, deps.Config.IsAdmin),
	}

	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(LoggingMiddleware())
	if deps.Users != nil {
		b.bot.Use(TrackMiddleware(deps.Users))
	}
	if deps.Bans != nil {
		b.bot.Use(BanMiddleware(deps.Bans))
	}

	return b, nil
}

// Transport returns the message and file transport bound to this bot.
func (b *Bot) Transport() *Transport {
	return b.transport
}

// Register wires every command, update and callback handler. It fails if a
// callback action is left without a handler.
func (b *Bot) Register(h *Handlers) error {
	b.registerCommands(h)
	b.registerCallbacks(h)

	if missing := b.router.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, a := range missing {
			names[i] = a.String()
		}
		return fmt.Errorf("%w: %s", ErrIncompleteRoutes, strings.Join(names, ", "))
	}

	b.bot.Handle(tele.OnCallback, b.router.Dispatch)
	return nil
}

func (b *Bot) registerCommands(h *Handlers) {
	b.bot.Handle("/start", h.Menu.HandleStart)
	b.bot.Handle("/help", h.Menu.HandleHelp)
	b.bot.Handle("/proofs", h.Menu.HandleProofs)
	b.bot.Handle("/channel", h.Menu.HandleChannel)
	b.bot.Handle("/stats", h.Menu.HandleStats)

	b.bot.Handle("/payments", h.Payment.HandlePayments)
	b.bot.Handle("/qr", h.Payment.HandleQR)
	b.bot.Handle("/ocr", h.Payment.HandleOCR)
	b.bot.Handle(tele.OnPhoto, h.Payment.HandlePhoto)
	b.bot.Handle(tele.OnDocument, h.Payment.HandleDocument)

	b.bot.Handle("/games", h.Game.HandleGames)

	b.bot.Handle("/quote", h.Content.HandleQuote)
	b.bot.Handle("/joke", h.Content.HandleJoke)
	b.bot.Handle("/fact", h.Content.HandleFact)
	b.bot.Handle("/search", h.Content.HandleSearch)
	b.bot.Handle("/ask", h.Content.HandleAsk)
	b.bot.Handle("/similar", h.Content.HandleSimilar)

	b.bot.Handle(tele.OnText, h.Text.HandleText)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg.IsAdmin))
	adminGroup.Handle("/admin", h.Admin.HandleAdmin)
}

func (b *Bot) registerCallbacks(h *Handlers) {
	r := b.router

	r.Handle(router.ActionMainMenu, h.Menu.HandleMainMenu)

	r.Handle(router.ActionPaymentsMenu, h.Payment.HandlePaymentsMenu)
	r.Handle(router.ActionGenerateQR, h.Payment.HandleGenerateQR)
	r.Handle(router.ActionCopyUPIID, h.Payment.HandleCopyUPIID)
	r.Handle(router.ActionUploadPayment, h.Payment.HandleUploadPayment)

	r.Handle(router.ActionGamesMenu, h.Game.HandleGamesMenu)
	r.Handle(router.ActionGameCoin, h.Game.HandleCoinStart)
	r.Handle(router.ActionGameRPS, h.Game.HandleRPSStart)
	r.Handle(router.ActionGameTTT, h.Game.HandleTicTacToeStart)
	r.Handle(router.ActionGameHangman, h.Game.HandleHangmanStart)
	r.Handle(router.ActionGameDice, h.Game.HandleDice)
	r.Handle(router.ActionLeaderboard, h.Game.HandleLeaderboard)
	r.Handle(router.ActionCoinHeads, h.Game.HandleCoinChoice)
	r.Handle(router.ActionCoinTails, h.Game.HandleCoinChoice)
	r.Handle(router.ActionRPSRock, h.Game.HandleRPSChoice)
	r.Handle(router.ActionRPSPaper, h.Game.HandleRPSChoice)
	r.Handle(router.ActionRPSScissors, h.Game.HandleRPSChoice)
	r.Handle(router.ActionTTTMove, h.Game.HandleTicTacToeMove)
	r.Handle(router.ActionHangmanGuess, h.Game.HandleHangmanGuess)

	r.Handle(router.ActionDailyQuote, h.Content.HandleDailyQuote)
	r.Handle(router.ActionLikeQuote, h.Content.HandleLikeQuote)

	r.HandleAdmin(router.ActionReviewApprove, h.Payment.HandleReview)
	r.HandleAdmin(router.ActionReviewReject, h.Payment.HandleReview)

	r.HandleAdmin(router.ActionAdminDashboard, h.Admin.HandleDashboard)
	r.HandleAdmin(router.ActionAdminUsers, h.Admin.HandleUsers)
	r.HandleAdmin(router.ActionAdminPayments, h.Admin.HandlePayments)
	r.HandleAdmin(router.ActionAdminBroadcast, h.Admin.HandleBroadcastMenu)
	r.HandleAdmin(router.ActionAdminAnalytics, h.Admin.HandleAnalytics)
	r.HandleAdmin(router.ActionAdminLeaderboard, h.Admin.HandleLeaderboard)
	r.HandleAdmin(router.ActionAdminListUsers, h.Admin.HandleListUsers)
	r.HandleAdmin(router.ActionAdminPendingPayments, h.Admin.HandlePaymentList)
	r.HandleAdmin(router.ActionAdminVerifiedPayments, h.Admin.HandlePaymentList)
	r.HandleAdmin(router.ActionAdminRejectedPayments, h.Admin.HandlePaymentList)
	r.HandleAdmin(router.ActionAdminCreateBroadcast, h.Admin.HandleCreateBroadcast)
	r.HandleAdmin(router.ActionAdminDMUser, h.Admin.HandleDMUser)
	r.HandleAdmin(router.ActionAdminBanUnban, h.Admin.HandleBanUnban)
	r.HandleAdmin(router.ActionAdminLBGames, h.Admin.HandleRanking)
	r.HandleAdmin(router.ActionAdminLBPayments, h.Admin.HandleRanking)
	r.HandleAdmin(router.ActionAdminLBQuotes, h.Admin.HandleRanking)
	r.HandleAdmin(router.ActionAdminLBActive, h.Admin.HandleRanking)
	r.HandleAdmin(router.ActionAdminTopUsers, h.Admin.HandleRanking)
	r.HandleAdmin(router.ActionAdminEngagement, h.Admin.HandleEngagement)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
