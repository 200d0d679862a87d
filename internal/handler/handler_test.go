package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/content"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/router"
	"upi-pay-bot/internal/store"
)

// fakeContext records what a handler sends, edits and answers.
type fakeContext struct {
	tele.Context
	sender    *tele.User
	text      string
	payload   string
	sent      []string
	edited    []string
	responses []*tele.CallbackResponse
	editErr   error
}

func (f *fakeContext) Sender() *tele.User { return f.sender }
func (f *fakeContext) Text() string       { return f.text }
func (f *fakeContext) Message() *tele.Message {
	return &tele.Message{Text: f.text, Payload: f.payload}
}
func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}
func (f *fakeContext) Edit(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.edited = append(f.edited, s)
	}
	return f.editErr
}
func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func str(s string) *string { return &s }

func TestLeaderboardText(t *testing.T) {
	assert.Equal(t, "🏆 Games Leaderboard\n\nNo games played yet!", LeaderboardText(nil))

	text := LeaderboardText([]model.RankEntry{
		{UserID: 1, FirstName: "Asha", Value: 12},
		{UserID: 2, FirstName: "", Value: 9},
		{UserID: 3, FirstName: "Ravi", Value: 4},
		{UserID: 4, FirstName: "Meera", Value: 1},
	})
	assert.Contains(t, text, "🥇 Asha - 12 games\n")
	assert.Contains(t, text, "🥈 Unknown - 9 games\n")
	assert.Contains(t, text, "🥉 Ravi - 4 games\n")
	assert.Contains(t, text, "4. Meera - 1 games\n")
}

func TestRankingText(t *testing.T) {
	assert.Equal(t, "🏆 Top Users by Quotes Read\n\nNo users found.", RankingText("Quotes Read", nil))

	text := RankingText("Payments Made", []model.RankEntry{{UserID: 77, Value: 3}})
	assert.Equal(t, "🏆 Top Users by Payments Made\n\n🥇 77 - 3\n", text)
}

func TestUserListText(t *testing.T) {
	assert.Equal(t, "👥 No users found.", UserListText(nil))

	text := UserListText([]*model.User{
		{UserID: 5, FirstName: "Asha", Username: "asha", GamesPlayed: 2},
		{UserID: 6, IsBanned: true},
	})
	assert.Contains(t, text, "👤 Asha (@asha)\n🆔 ID: 5\n📊 Status: ✅ Active\n🎮 Games: 2")
	assert.Contains(t, text, "(No username)\n🆔 ID: 6\n📊 Status: 🚫 Banned")
}

func TestPaymentListText(t *testing.T) {
	assert.Equal(t, "💳 No verified payments.", PaymentListText(model.PaymentVerified, nil))

	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	text := PaymentListText(model.PaymentPending, []*model.PaymentView{{
		Payment: model.Payment{
			ID:        9,
			UserID:    5,
			Amount:    str("500.00"),
			UPIID:     str("shop@okaxis"),
			Timestamp: ts,
		},
		FirstName: "Asha",
	}})
	assert.Contains(t, text, "💳 Pending Payments (Last 10):")
	assert.Contains(t, text, "👤 User: Asha (ID: 5)")
	assert.Contains(t, text, "💰 Amount: 500.00")
	assert.Contains(t, text, "🧾 Txn: Unknown")
	assert.Contains(t, text, "🕒 Time: 2024-03-01 10:30:00")
}

func TestEngagementText(t *testing.T) {
	text := EngagementText(&model.Engagement{TotalUsers: 200, Active24h: 50, Active7d: 100, Active30d: 200})
	assert.Contains(t, text, "⚡ Active (24h): 50 (25.0%)")
	assert.Contains(t, text, "📅 Active (7d): 100 (50.0%)")
	assert.Contains(t, text, "🗓️ Active (30d): 200 (100.0%)")

	assert.Contains(t, EngagementText(&model.Engagement{}), "(0%)")
}

func TestMainMenuKeyboard_SkipsUnsetLinks(t *testing.T) {
	kb := MainMenuKeyboard(config.LinksConfig{Channel: "https://t.me/chan"})

	require.Len(t, kb.InlineKeyboard, 4)
	assert.Equal(t, "https://t.me/chan", kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, router.ActionPaymentsMenu.Data(), kb.InlineKeyboard[1][0].Data)
	assert.Equal(t, router.ActionDailyQuote.Data(), kb.InlineKeyboard[3][0].Data)
}

func TestGameKeyboards(t *testing.T) {
	ttt := TicTacToeKeyboard(false)
	require.Len(t, ttt.InlineKeyboard, 5)
	assert.Equal(t, router.TTTData(5), ttt.InlineKeyboard[1][1].Data)
	assert.Len(t, TicTacToeKeyboard(true).InlineKeyboard, 2)

	hm := HangmanKeyboard(false)
	require.Len(t, hm.InlineKeyboard, 9)
	assert.Len(t, hm.InlineKeyboard[6], 2)
	assert.Equal(t, router.HangmanData('Z'), hm.InlineKeyboard[6][1].Data)
	assert.Len(t, HangmanKeyboard(true).InlineKeyboard, 2)
}

type fakeQueries struct {
	entries []model.RankEntry
	field   model.StatField
}

func (f *fakeQueries) PaymentStats(context.Context) (*model.PaymentStats, error) {
	return &model.PaymentStats{Total: 3, Verified: 1, Rejected: 1, Pending: 1}, nil
}
func (f *fakeQueries) Engagement(context.Context) (*model.Engagement, error) {
	return &model.Engagement{TotalUsers: 10}, nil
}
func (f *fakeQueries) TopUsers(_ context.Context, field model.StatField, _ int) ([]model.RankEntry, error) {
	f.field = field
	return f.entries, nil
}
func (f *fakeQueries) RecentUsers(context.Context, int) ([]*model.User, error) { return nil, nil }
func (f *fakeQueries) PaymentsByStatus(context.Context, model.PaymentStatus, int) ([]*model.PaymentView, error) {
	return nil, nil
}
func (f *fakeQueries) Revenue(context.Context) (decimal.Decimal, error) {
	return decimal.RequireFromString("1250.5"), nil
}

type fakeModerator struct {
	targets  []int64
	banned   []int64
	unbanned []int64
}

func (f *fakeModerator) Ban(_ context.Context, id int64) error {
	f.banned = append(f.banned, id)
	return nil
}
func (f *fakeModerator) Unban(_ context.Context, id int64) error {
	f.unbanned = append(f.unbanned, id)
	return nil
}
func (f *fakeModerator) BroadcastTargets(context.Context) ([]int64, error) { return f.targets, nil }

type sentText struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	sent   []sentText
	failTo map[int64]bool
}

func (f *fakeNotifier) SendText(_ context.Context, chatID int64, text string, _ *tele.ReplyMarkup) error {
	if f.failTo[chatID] {
		return errors.New("bot was blocked by the user")
	}
	f.sent = append(f.sent, sentText{chatID, text})
	return nil
}

const adminID = 1

func newAdmin(t *testing.T) (*AdminHandler, *fakeModerator, *fakeNotifier) {
	t.Helper()
	mod := &fakeModerator{}
	notifier := &fakeNotifier{}
	return NewAdminHandler(&fakeQueries{}, mod, notifier, store.NewMemory()), mod, notifier
}

func adminCtx(text string) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: adminID}, text: text}
}

func TestHandlePrompt_NoStateIsNotConsumed(t *testing.T) {
	h, _, _ := newAdmin(t)

	consumed, err := h.HandlePrompt(adminCtx("hello"))
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestHandlePrompt_DirectMessage(t *testing.T) {
	h, _, notifier := newAdmin(t)
	require.NoError(t, h.HandleDMUser(adminCtx(""), router.Route{Action: router.ActionAdminDMUser}))

	c := adminCtx("no separator here")
	consumed, err := h.HandlePrompt(c)
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, []string{msgDMFormat}, c.sent)

	c = adminCtx("abc:hi")
	_, err = h.HandlePrompt(c)
	require.NoError(t, err)
	assert.Equal(t, []string{msgBadUserID}, c.sent)

	c = adminCtx("42: see you at 5")
	consumed, err = h.HandlePrompt(c)
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, []string{msgDMSent}, c.sent)
	assert.Equal(t, []sentText{{42, "📩 Message from Admin:\n\nsee you at 5"}}, notifier.sent)

	consumed, err = h.HandlePrompt(adminCtx("42:again"))
	require.NoError(t, err)
	assert.False(t, consumed, "prompt is closed after a delivered message")
}

func TestHandlePrompt_BanAndUnban(t *testing.T) {
	h, mod, notifier := newAdmin(t)

	require.NoError(t, h.HandleBanUnban(adminCtx(""), router.Route{Action: router.ActionAdminBanUnban}))
	c := adminCtx("42:kick")
	_, err := h.HandlePrompt(c)
	require.NoError(t, err)
	assert.Equal(t, []string{msgBadBanAction}, c.sent)

	c = adminCtx("42:ban")
	_, err = h.HandlePrompt(c)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, mod.banned)
	assert.Equal(t, []string{"✅ User 42 has been banned!"}, c.sent)
	assert.Equal(t, []sentText{{42, msgBannedNotice}}, notifier.sent)

	require.NoError(t, h.HandleBanUnban(adminCtx(""), router.Route{Action: router.ActionAdminBanUnban}))
	_, err = h.HandlePrompt(adminCtx("42:UNBAN"))
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, mod.unbanned)
}

func TestHandlePrompt_Broadcast(t *testing.T) {
	h, mod, notifier := newAdmin(t)
	mod.targets = []int64{10, 11, 12}
	notifier.failTo = map[int64]bool{11: true}

	require.NoError(t, h.HandleCreateBroadcast(adminCtx(""), router.Route{Action: router.ActionAdminCreateBroadcast}))
	c := adminCtx("Maintenance tonight")
	consumed, err := h.HandlePrompt(c)
	require.NoError(t, err)
	assert.True(t, consumed)

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Delivered to 2 users")
	assert.Contains(t, c.sent[0], "Failed to deliver to 1 users")
	assert.Len(t, notifier.sent, 2)
	assert.Equal(t, "📢 Broadcast:\n\nMaintenance tonight", notifier.sent[0].text)
}

func TestHandleRanking_UsesCategoryCounter(t *testing.T) {
	q := &fakeQueries{entries: []model.RankEntry{{UserID: 3, FirstName: "Ravi", Value: 7}}}
	h := NewAdminHandler(q, &fakeModerator{}, &fakeNotifier{}, store.NewMemory())

	c := adminCtx("")
	require.NoError(t, h.HandleRanking(c, router.Route{Action: router.ActionAdminLBQuotes}))
	assert.Equal(t, model.StatQuotesRead, q.field)
	assert.Equal(t, []string{"🏆 Top Users by Quotes Read\n\n🥇 Ravi - 7\n"}, c.edited)

	assert.Error(t, h.HandleRanking(c, router.Route{Action: router.ActionMainMenu}))
}

func TestHandlePayments_ShowsRevenue(t *testing.T) {
	h, _, _ := newAdmin(t)
	c := adminCtx("")

	require.NoError(t, h.HandlePayments(c, router.Route{Action: router.ActionAdminPayments}))
	require.Len(t, c.edited, 1)
	assert.Contains(t, c.edited[0], "💰 Verified Amount: ₹1250.50")
}

type fakeWriter struct {
	searched, asked, similar string
}

func (f *fakeWriter) Joke(context.Context) string { return "joke" }
func (f *fakeWriter) Fact(context.Context) string { return "fact" }
func (f *fakeWriter) Answer(_ context.Context, p string) string {
	f.asked = p
	return "answer"
}
func (f *fakeWriter) Search(_ context.Context, q string) string {
	f.searched = q
	return "results"
}
func (f *fakeWriter) Similar(_ context.Context, topic string) string {
	f.similar = topic
	return "topics"
}

type fakeQuotes struct{}

func (fakeQuotes) Next(context.Context, int64) content.Quote {
	return content.Quote{Text: "Keep going.", Author: "Anon"}
}
func (fakeQuotes) Like(context.Context, int64) string { return "liked" }

type fakeStats struct{}

func (fakeStats) Stats(context.Context, int64) (*model.UserStats, error) { return nil, nil }

func newTextHandler(t *testing.T) (*TextHandler, *AdminHandler, *fakeWriter) {
	t.Helper()
	cfg := &config.Config{
		Admin:   config.AdminConfig{IDs: []int64{adminID}},
		Payment: config.PaymentConfig{UPIID: "shop@okaxis"},
	}
	writer := &fakeWriter{}
	admin, _, _ := newAdmin(t)
	return NewTextHandler(
		cfg,
		admin,
		NewMenuHandler(cfg, fakeStats{}),
		NewGameHandler(nil, nil, nil),
		NewContentHandler(fakeQuotes{}, writer),
	), admin, writer
}

func TestHandleText_Intents(t *testing.T) {
	h, _, writer := newTextHandler(t)
	user := &tele.User{ID: 99, FirstName: "Asha"}

	c := &fakeContext{sender: user, text: "what is your upi?"}
	require.NoError(t, h.HandleText(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "📱 UPI ID: shop@okaxis")

	c = &fakeContext{sender: user, text: "search golang generics"}
	require.NoError(t, h.HandleText(c))
	assert.Equal(t, "golang generics", writer.searched)
	assert.Equal(t, []string{msgSearching, "results"}, c.sent)

	c = &fakeContext{sender: user, text: "search"}
	require.NoError(t, h.HandleText(c))
	assert.Contains(t, c.sent[0], "What would you like me to search for?")

	c = &fakeContext{sender: user, text: "why is the sky blue"}
	require.NoError(t, h.HandleText(c))
	assert.Equal(t, []string{msgThinking, "🤖 answer"}, c.sent)

	c = &fakeContext{sender: user, text: "good morning"}
	require.NoError(t, h.HandleText(c))
	assert.Equal(t, []string{"🤖 answer"}, c.sent)
	assert.Equal(t, "good morning", writer.asked)
}

func TestHandleText_AdminPromptTakesPrecedence(t *testing.T) {
	h, admin, writer := newTextHandler(t)
	require.NoError(t, admin.HandleDMUser(adminCtx(""), router.Route{Action: router.ActionAdminDMUser}))

	c := adminCtx("search for this")
	require.NoError(t, h.HandleText(c))
	assert.Equal(t, []string{msgDMFormat}, c.sent)
	assert.Empty(t, writer.searched)
}

func TestContentCommands_Usage(t *testing.T) {
	_, _, writer := newTextHandler(t)
	h := NewContentHandler(fakeQuotes{}, writer)
	user := &tele.User{ID: 5}

	c := &fakeContext{sender: user}
	require.NoError(t, h.HandleSimilar(c))
	assert.Equal(t, []string{similarUsage}, c.sent)

	c = &fakeContext{sender: user, payload: "machine learning"}
	require.NoError(t, h.HandleSimilar(c))
	assert.Equal(t, "machine learning", writer.similar)

	c = &fakeContext{sender: user}
	require.NoError(t, h.HandleLikeQuote(c, router.Route{Action: router.ActionLikeQuote}))
	require.Len(t, c.responses, 1)
	assert.True(t, c.responses[0].ShowAlert)
}
