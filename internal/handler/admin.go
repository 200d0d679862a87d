package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/router"
	"upi-pay-bot/internal/store"
)

// AdminQueries reads the dashboard figures.
type AdminQueries interface {
	PaymentStats(ctx context.Context) (*model.PaymentStats, error)
	Engagement(ctx context.Context) (*model.Engagement, error)
	TopUsers(ctx context.Context, field model.StatField, n int) ([]model.RankEntry, error)
	RecentUsers(ctx context.Context, n int) ([]*model.User, error)
	PaymentsByStatus(ctx context.Context, status model.PaymentStatus, n int) ([]*model.PaymentView, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

// Moderator bans users and lists broadcast recipients.
type Moderator interface {
	Ban(ctx context.Context, userID int64) error
	Unban(ctx context.Context, userID int64) error
	BroadcastTargets(ctx context.Context) ([]int64, error)
}

// Notifier delivers a message to any chat.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error
}

// AwaitKind is the admin text input the bot is waiting for.
type AwaitKind string

const (
	AwaitBroadcast AwaitKind = "broadcast"
	AwaitDM        AwaitKind = "dm"
	AwaitBan       AwaitKind = "ban"
)

// Awaiting is the stored input state of an admin.
type Awaiting struct {
	Kind  AwaitKind `json:"kind"`
	Since time.Time `json:"since"`
}

const (
	// AwaitNamespace is the key namespace of admin input states.
	AwaitNamespace = "admin_await"
	// AwaitTTL bounds how long a prompt stays open.
	AwaitTTL = 15 * time.Minute

	listLimit = 10
)

const (
	MsgAdminOnly = "❌ Access denied. Admin only."

	msgBroadcastPrompt = "📢 Create Broadcast\n\nPlease send the message you want to broadcast to all users."
	msgDMPrompt        = "📤 Direct Message\n\nPlease enter the user ID and message in this format:\n\nUSER_ID:MESSAGE"
	msgBanPrompt       = "🚫 Ban/Unban User\n\nPlease enter the user ID and action in this format:\n\nUSER_ID:BAN or USER_ID:UNBAN"

	msgDMFormat       = "❌ Invalid format. Please use: USER_ID:MESSAGE"
	msgBanFormat      = "❌ Invalid format. Please use: USER_ID:BAN or USER_ID:UNBAN"
	msgBadUserID      = "❌ Invalid user ID. Please enter a valid number."
	msgBadBanAction   = "❌ Invalid action. Please use BAN or UNBAN."
	msgDMSent         = "✅ Message sent successfully!"
	msgDMFailed       = "❌ Failed to send message. User may have blocked the bot."
	msgBannedNotice   = "🚫 You have been banned from using this bot."
	msgUnbannedNotice = "✅ You have been unbanned and can use the bot again."
)

// AdminHandler serves the admin dashboard and the admin text prompts.
type AdminHandler struct {
	queries  AdminQueries
	users    Moderator
	notifier Notifier
	awaiting *store.Typed[Awaiting]
	now      func() time.Time
}

// NewAdminHandler creates a new AdminHandler. Prompt states live in kv.
func NewAdminHandler(queries AdminQueries, users Moderator, notifier Notifier, kv store.KV) *AdminHandler {
	return &AdminHandler{
		queries:  queries,
		users:    users,
		notifier: notifier,
		awaiting: store.NewTyped[Awaiting](kv, AwaitNamespace, AwaitTTL),
		now:      time.Now,
	}
}

func (h *AdminHandler) dashboardText(ctx context.Context) (string, error) {
	ps, err := h.queries.PaymentStats(ctx)
	if err != nil {
		return "", err
	}
	eng, err := h.queries.Engagement(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"🎛️ Admin Dashboard\n\n"+
			"📊 Quick Stats:\n"+
			"👥 Total Users: %d\n"+
			"💳 Total Payments: %d\n"+
			"✅ Verified: %d\n"+
			"❌ Rejected: %d\n"+
			"⏳ Pending: %d\n"+
			"⚡ Active (24h): %d\n\n"+
			"Select an option:",
		eng.TotalUsers, ps.Total, ps.Verified, ps.Rejected, ps.Pending, eng.Active24h,
	), nil
}

// HandleAdmin handles /admin. The admin check is done by middleware.
func (h *AdminHandler) HandleAdmin(c tele.Context) error {
	text, err := h.dashboardText(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load admin dashboard")
		return c.Send("❌ Failed to load dashboard. Please try again.")
	}
	return c.Send(text, AdminDashboardKeyboard())
}

// HandleDashboard handles the admin_dashboard callback.
func (h *AdminHandler) HandleDashboard(c tele.Context, _ router.Route) error {
	text, err := h.dashboardText(context.Background())
	if err != nil {
		return err
	}
	return c.Edit(text, AdminDashboardKeyboard())
}

// HandleUsers handles the admin_users callback.
func (h *AdminHandler) HandleUsers(c tele.Context, _ router.Route) error {
	return c.Edit("👥 User Management\n\nSelect an option:", AdminUsersKeyboard())
}

// HandlePayments handles the admin_payments callback.
func (h *AdminHandler) HandlePayments(c tele.Context, _ router.Route) error {
	ctx := context.Background()
	ps, err := h.queries.PaymentStats(ctx)
	if err != nil {
		return err
	}
	revenue, err := h.queries.Revenue(ctx)
	if err != nil {
		return err
	}
	return c.Edit(fmt.Sprintf(
		"💳 Payment Management\n\n"+
			"📊 Statistics:\n"+
			"Total: %d\n"+
			"Verified: %d\n"+
			"Rejected: %d\n"+
			"Pending: %d\n"+
			"💰 Verified Amount: ₹%s\n\n"+
			"Select an option:",
		ps.Total, ps.Verified, ps.Rejected, ps.Pending, revenue.StringFixed(2),
	), AdminPaymentsKeyboard())
}

// HandleBroadcastMenu handles the admin_broadcast callback.
func (h *AdminHandler) HandleBroadcastMenu(c tele.Context, _ router.Route) error {
	return c.Edit("📢 Broadcast Message\n\nSelect an option:", AdminBroadcastKeyboard())
}

// HandleAnalytics handles the admin_analytics callback.
func (h *AdminHandler) HandleAnalytics(c tele.Context, _ router.Route) error {
	ctx := context.Background()
	eng, err := h.queries.Engagement(ctx)
	if err != nil {
		return err
	}
	ps, err := h.queries.PaymentStats(ctx)
	if err != nil {
		return err
	}
	return c.Edit(fmt.Sprintf(
		"📊 Bot Analytics\n\n"+
			"👥 User Engagement:\n"+
			"Active (24h): %d\n"+
			"Active (7d): %d\n"+
			"Active (30d): %d\n\n"+
			"💳 Payment Statistics:\n"+
			"Total: %d\n"+
			"Verified: %d\n"+
			"Rejected: %d\n"+
			"Pending: %d\n\n"+
			"Select an option:",
		eng.Active24h, eng.Active7d, eng.Active30d,
		ps.Total, ps.Verified, ps.Rejected, ps.Pending,
	), AdminAnalyticsKeyboard())
}

// HandleEngagement handles the admin_engagement callback.
func (h *AdminHandler) HandleEngagement(c tele.Context, _ router.Route) error {
	eng, err := h.queries.Engagement(context.Background())
	if err != nil {
		return err
	}
	return c.Edit(EngagementText(eng), refreshKeyboard(router.ActionAdminEngagement, router.ActionAdminAnalytics))
}

// EngagementText formats the rolling activity windows.
func EngagementText(e *model.Engagement) string {
	pct := func(n int64) string {
		if e.TotalUsers == 0 {
			return "0%"
		}
		return fmt.Sprintf("%.1f%%", float64(n)*100/float64(e.TotalUsers))
	}
	return fmt.Sprintf(
		"🕒 Engagement Metrics\n\n"+
			"👥 Total Users: %d\n"+
			"⚡ Active (24h): %d (%s)\n"+
			"📅 Active (7d): %d (%s)\n"+
			"🗓️ Active (30d): %d (%s)",
		e.TotalUsers,
		e.Active24h, pct(e.Active24h),
		e.Active7d, pct(e.Active7d),
		e.Active30d, pct(e.Active30d),
	)
}

// HandleLeaderboard handles the admin_leaderboard callback.
func (h *AdminHandler) HandleLeaderboard(c tele.Context, _ router.Route) error {
	return c.Edit("🏆 Leaderboard\n\nSelect category:", AdminLeaderboardKeyboard())
}

// rankings maps each ranking action to its counter and title.
var rankings = map[router.Action]struct {
	field model.StatField
	title string
}{
	router.ActionAdminLBGames:    {model.StatGamesPlayed, "Games Played"},
	router.ActionAdminLBPayments: {model.StatSuccessfulPayments, "Payments Made"},
	router.ActionAdminLBQuotes:   {model.StatQuotesRead, "Quotes Read"},
	router.ActionAdminLBActive:   {model.StatGamesPlayed, "Most Active"},
	router.ActionAdminTopUsers:   {model.StatGamesPlayed, "Games Played"},
}

// HandleRanking handles the per-category leaderboards and top users.
func (h *AdminHandler) HandleRanking(c tele.Context, r router.Route) error {
	rk, ok := rankings[r.Action]
	if !ok {
		return fmt.Errorf("no ranking for %s", r.Action)
	}
	entries, err := h.queries.TopUsers(context.Background(), rk.field, listLimit)
	if err != nil {
		return err
	}

	back := router.ActionAdminLeaderboard
	if r.Action == router.ActionAdminTopUsers {
		back = router.ActionAdminAnalytics
	}
	return c.Edit(RankingText(rk.title, entries), refreshKeyboard(r.Action, back))
}

// RankingText formats a top-N list.
func RankingText(title string, entries []model.RankEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Top Users by %s\n\n", title)
	if len(entries) == 0 {
		b.WriteString("No users found.")
		return b.String()
	}
	for i, e := range entries {
		name := e.FirstName
		if name == "" {
			name = strconv.FormatInt(e.UserID, 10)
		}
		fmt.Fprintf(&b, "%s %s - %d\n", medal(i), name, e.Value)
	}
	return b.String()
}

// HandleListUsers handles the admin_list_users callback.
func (h *AdminHandler) HandleListUsers(c tele.Context, _ router.Route) error {
	users, err := h.queries.RecentUsers(context.Background(), listLimit)
	if err != nil {
		return err
	}
	return c.Edit(UserListText(users), refreshKeyboard(router.ActionAdminListUsers, router.ActionAdminUsers))
}

// UserListText formats the recent users listing.
func UserListText(users []*model.User) string {
	if len(users) == 0 {
		return "👥 No users found."
	}
	var b strings.Builder
	b.WriteString("👥 All Users (Last 10):\n\n")
	for _, u := range users {
		username := "No username"
		if u.Username != "" {
			username = "@" + u.Username
		}
		status := "✅ Active"
		if u.IsBanned {
			status = "🚫 Banned"
		}
		fmt.Fprintf(&b,
			"👤 %s (%s)\n🆔 ID: %d\n📊 Status: %s\n🎮 Games: %d | 💳 Payments: %d\n💡 Quotes: %d | ✅ Successful Payments: %d\n\n",
			u.DisplayName(), username, u.UserID, status,
			u.GamesPlayed, u.PaymentsRequested, u.QuotesRead, u.SuccessfulPayments,
		)
	}
	return b.String()
}

// HandlePaymentList handles the pending, verified and rejected listings.
func (h *AdminHandler) HandlePaymentList(c tele.Context, r router.Route) error {
	status := model.PaymentPending
	switch r.Action {
	case router.ActionAdminVerifiedPayments:
		status = model.PaymentVerified
	case router.ActionAdminRejectedPayments:
		status = model.PaymentRejected
	}
	payments, err := h.queries.PaymentsByStatus(context.Background(), status, listLimit)
	if err != nil {
		return err
	}
	return c.Edit(PaymentListText(status, payments), refreshKeyboard(r.Action, router.ActionAdminPayments))
}

// PaymentListText formats a payment listing.
func PaymentListText(status model.PaymentStatus, payments []*model.PaymentView) string {
	title := strings.ToUpper(string(status[:1])) + string(status[1:])
	if len(payments) == 0 {
		return fmt.Sprintf("💳 No %s payments.", status)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "💳 %s Payments (Last 10):\n\n", title)
	for _, p := range payments {
		name := p.FirstName
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b,
			"🔢 ID: %d\n👤 User: %s (ID: %d)\n💰 Amount: %s\n📱 UPI: %s\n🧾 Txn: %s\n🕒 Time: %s\n\n",
			p.ID, name, p.UserID,
			orUnknown(p.Amount), orUnknown(p.UPIID), orUnknown(p.TransactionID),
			p.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return b.String()
}

func orUnknown(v *string) string {
	if v == nil || *v == "" {
		return "Unknown"
	}
	return *v
}

func (h *AdminHandler) prompt(c tele.Context, kind AwaitKind, text string, back router.Action) error {
	err := h.awaiting.Put(context.Background(), c.Sender().ID, Awaiting{Kind: kind, Since: h.now()})
	if err != nil {
		return err
	}
	return c.Edit(text, inline(backTo(back)))
}

// HandleCreateBroadcast handles the admin_create_broadcast callback.
func (h *AdminHandler) HandleCreateBroadcast(c tele.Context, _ router.Route) error {
	return h.prompt(c, AwaitBroadcast, msgBroadcastPrompt, router.ActionAdminBroadcast)
}

// HandleDMUser handles the admin_dm_user callback.
func (h *AdminHandler) HandleDMUser(c tele.Context, _ router.Route) error {
	return h.prompt(c, AwaitDM, msgDMPrompt, router.ActionAdminUsers)
}

// HandleBanUnban handles the admin_ban_unban callback.
func (h *AdminHandler) HandleBanUnban(c tele.Context, _ router.Route) error {
	return h.prompt(c, AwaitBan, msgBanPrompt, router.ActionAdminUsers)
}

// HandlePrompt consumes a text message if its sender has an open prompt.
// It reports whether the message was consumed.
func (h *AdminHandler) HandlePrompt(c tele.Context) (bool, error) {
	sender := c.Sender()
	if sender == nil {
		return false, nil
	}
	ctx := context.Background()

	state, ok, err := h.awaiting.Get(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("admin_id", sender.ID).Msg("Failed to read admin prompt state")
		return false, nil
	}
	if !ok {
		return false, nil
	}

	var done bool
	switch state.Kind {
	case AwaitBroadcast:
		done, err = h.broadcast(ctx, c, c.Text())
	case AwaitDM:
		done, err = h.directMessage(ctx, c, c.Text())
	case AwaitBan:
		done, err = h.moderate(ctx, c, c.Text())
	default:
		done = true
	}

	if done {
		if derr := h.awaiting.Delete(ctx, sender.ID); derr != nil {
			log.Error().Err(derr).Int64("admin_id", sender.ID).Msg("Failed to clear admin prompt state")
		}
	}
	return true, err
}

func (h *AdminHandler) broadcast(ctx context.Context, c tele.Context, text string) (bool, error) {
	targets, err := h.users.BroadcastTargets(ctx)
	if err != nil {
		return false, err
	}

	var delivered, failed int
	for _, id := range targets {
		if err := h.notifier.SendText(ctx, id, "📢 Broadcast:\n\n"+text, nil); err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("Failed to deliver broadcast")
			failed++
			continue
		}
		delivered++
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int("delivered", delivered).
		Int("failed", failed).
		Str("operation", "broadcast").
		Msg("Admin operation executed")

	return true, c.Send(fmt.Sprintf(
		"📢 Broadcast sent successfully!\n✅ Delivered to %d users\n❌ Failed to deliver to %d users",
		delivered, failed,
	))
}

// splitTarget parses "USER_ID:REST".
func splitTarget(text string) (int64, string, bool, error) {
	idPart, rest, found := strings.Cut(text, ":")
	if !found {
		return 0, "", false, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil {
		return 0, "", true, err
	}
	return id, strings.TrimSpace(rest), true, nil
}

func (h *AdminHandler) directMessage(ctx context.Context, c tele.Context, text string) (bool, error) {
	target, msg, found, err := splitTarget(text)
	switch {
	case !found:
		return false, c.Send(msgDMFormat)
	case err != nil:
		return false, c.Send(msgBadUserID)
	}

	if err := h.notifier.SendText(ctx, target, "📩 Message from Admin:\n\n"+msg, nil); err != nil {
		log.Warn().Err(err).Int64("user_id", target).Msg("Failed to deliver direct message")
		return true, c.Send(msgDMFailed)
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int64("target_id", target).
		Str("operation", "dm").
		Msg("Admin operation executed")
	return true, c.Send(msgDMSent)
}

func (h *AdminHandler) moderate(ctx context.Context, c tele.Context, text string) (bool, error) {
	target, action, found, err := splitTarget(text)
	switch {
	case !found:
		return false, c.Send(msgBanFormat)
	case err != nil:
		return false, c.Send(msgBadUserID)
	}

	var reply, notice string
	action = strings.ToUpper(action)
	switch action {
	case "BAN":
		err = h.users.Ban(ctx, target)
		reply, notice = fmt.Sprintf("✅ User %d has been banned!", target), msgBannedNotice
	case "UNBAN":
		err = h.users.Unban(ctx, target)
		reply, notice = fmt.Sprintf("✅ User %d has been unbanned!", target), msgUnbannedNotice
	default:
		return false, c.Send(msgBadBanAction)
	}
	if err != nil {
		log.Error().Err(err).Int64("target_id", target).Str("action", action).Msg("Failed to change ban state")
		return true, c.Send(fmt.Sprintf("❌ Failed to %s user. Please try again.", strings.ToLower(action)))
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int64("target_id", target).
		Str("operation", strings.ToLower(action)).
		Msg("Admin operation executed")

	if err := c.Send(reply); err != nil {
		return true, err
	}
	if err := h.notifier.SendText(ctx, target, notice, nil); err != nil {
		log.Warn().Err(err).Int64("user_id", target).Msg("Failed to notify user of ban change")
	}
	return true, nil
}
