package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/handler"
	"upi-pay-bot/internal/model"
)

func drawAdmins(t *rapid.T) []int64 {
	n := rapid.IntRange(1, 10).Draw(t, "numAdmins")
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = rapid.Int64Range(1, 1000000000).Draw(t, "adminID")
	}
	return ids
}

// For any id, IsAdmin holds exactly when the id is configured.
func TestAdminPermissionCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := drawAdmins(t)
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")

		expected := false
		for _, id := range adminIDs {
			if id == userID {
				expected = true
				break
			}
		}
		if cfg.IsAdmin(userID) != expected {
			t.Fatalf("admin check mismatch: userID=%d adminIDs=%v expected=%v", userID, adminIDs, expected)
		}
	})
}

// The admin middleware lets configured admins through and stops everyone
// else with the access denied reply.
func TestAdminMiddlewareProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := drawAdmins(t)
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		var userID int64
		if rapid.Bool().Draw(t, "pickAdmin") {
			userID = adminIDs[rapid.IntRange(0, len(adminIDs)-1).Draw(t, "adminIndex")]
		} else {
			userID = rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		}

		c := &fakeContext{sender: &tele.User{ID: userID}, text: "/admin"}
		called := false
		h := AdminMiddleware(cfg.IsAdmin)(func(tele.Context) error {
			called = true
			return nil
		})
		if err := h(c); err != nil {
			t.Fatal(err)
		}

		if called != cfg.IsAdmin(userID) {
			t.Fatalf("handler called=%v for userID=%d adminIDs=%v", called, userID, adminIDs)
		}
		if !called && (len(c.sent) != 1 || c.sent[0] != handler.MsgAdminOnly) {
			t.Fatalf("expected access denied reply, got %v", c.sent)
		}
	})
}

// fakeContext implements the parts of tele.Context the middleware uses.
type fakeContext struct {
	tele.Context
	sender   *tele.User
	text     string
	callback *tele.Callback
	message  *tele.Message
	sent     []string
}

func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Chat() *tele.Chat         { return nil }
func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.callback }
func (f *fakeContext) Message() *tele.Message {
	if f.message != nil {
		return f.message
	}
	return &tele.Message{Text: f.text}
}
func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

type fakeBans struct {
	banned map[int64]bool
	err    error
}

func (f fakeBans) IsBanned(_ context.Context, id int64) (bool, error) {
	return f.banned[id], f.err
}

func passThrough(called *bool) tele.HandlerFunc {
	return func(tele.Context) error {
		*called = true
		return nil
	}
}

func TestBanMiddleware(t *testing.T) {
	bans := fakeBans{banned: map[int64]bool{7: true}}

	t.Run("banned message is stopped", func(t *testing.T) {
		var called bool
		c := &fakeContext{sender: &tele.User{ID: 7}, text: "hi"}
		require.NoError(t, BanMiddleware(bans)(passThrough(&called))(c))
		assert.False(t, called)
		assert.Equal(t, []string{MsgBanned}, c.sent)
	})

	t.Run("other users pass", func(t *testing.T) {
		var called bool
		c := &fakeContext{sender: &tele.User{ID: 8}, text: "hi"}
		require.NoError(t, BanMiddleware(bans)(passThrough(&called))(c))
		assert.True(t, called)
		assert.Empty(t, c.sent)
	})

	t.Run("callbacks are left to the router", func(t *testing.T) {
		var called bool
		c := &fakeContext{sender: &tele.User{ID: 7}, callback: &tele.Callback{Data: "games_menu"}}
		require.NoError(t, BanMiddleware(bans)(passThrough(&called))(c))
		assert.True(t, called)
	})

	t.Run("lookup failure lets the update through", func(t *testing.T) {
		var called bool
		failing := fakeBans{banned: map[int64]bool{7: true}, err: errors.New("db down")}
		c := &fakeContext{sender: &tele.User{ID: 9}, text: "hi"}
		require.NoError(t, BanMiddleware(failing)(passThrough(&called))(c))
		assert.True(t, called)
	})
}

type fakeTracker struct {
	seen []int64
	err  error
}

func (f *fakeTracker) EnsureUser(_ context.Context, userID int64, _, _, _ string) (*model.User, error) {
	f.seen = append(f.seen, userID)
	return &model.User{UserID: userID}, f.err
}

func TestTrackMiddleware(t *testing.T) {
	tr := &fakeTracker{err: errors.New("db down")}
	var called bool
	c := &fakeContext{sender: &tele.User{ID: 3, FirstName: "Asha"}, text: "/start"}

	require.NoError(t, TrackMiddleware(tr)(passThrough(&called))(c))
	assert.True(t, called)
	assert.Equal(t, []int64{3}, tr.seen)
}

func TestRecoveryMiddleware(t *testing.T) {
	c := &fakeContext{sender: &tele.User{ID: 3}, text: "boom"}
	h := RecoveryMiddleware()(func(tele.Context) error { panic("boom") })

	require.NotPanics(t, func() { _ = h(c) })
	assert.Equal(t, []string{msgInternalError}, c.sent)
}

func TestUpdateKind(t *testing.T) {
	tests := []struct {
		name string
		c    *fakeContext
		want string
	}{
		{"callback", &fakeContext{callback: &tele.Callback{}}, "callback"},
		{"photo", &fakeContext{message: &tele.Message{Photo: &tele.Photo{}}}, "photo"},
		{"document", &fakeContext{message: &tele.Message{Document: &tele.Document{}}}, "document"},
		{"command", &fakeContext{text: "/start"}, "command"},
		{"text", &fakeContext{text: "hello"}, "text"},
		{"empty", &fakeContext{}, "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, updateKind(tt.c))
		})
	}
}
