package router

import (
	"context"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

// User-facing alerts sent by the router itself.
const (
	MsgBanned       = "🚫 You have been banned from using this bot."
	MsgAccessDenied = "❌ Access denied. Admin only."
	MsgComingSoon   = "Feature coming soon!"
	MsgFailed       = "❌ An error occurred. Please try again."
)

// HandlerFunc handles one decoded callback.
type HandlerFunc func(c tele.Context, r Route) error

// BanChecker reports whether a user is banned.
type BanChecker interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}

// Router dispatches callback queries to handlers registered per Action.
type Router struct {
	handlers map[Action]HandlerFunc
	bans     BanChecker
	isAdmin  func(int64) bool
}

// New creates a Router. bans may be nil to skip the ban check.
func New(bans BanChecker, isAdmin func(int64) bool) *Router {
	return &Router{
		handlers: make(map[Action]HandlerFunc),
		bans:     bans,
		isAdmin:  isAdmin,
	}
}

// Handle registers fn for a. Admin actions are always access-checked
// regardless of how they are registered.
func (r *Router) Handle(a Action, fn HandlerFunc) {
	r.handlers[a] = fn
}

// HandleAdmin registers fn for an admin action. It panics if a is not an
// admin action so a user-facing action is never hidden behind the check by
// mistake.
func (r *Router) HandleAdmin(a Action, fn HandlerFunc) {
	if !a.Admin() {
		panic("router: " + a.String() + " is not an admin action")
	}
	r.handlers[a] = fn
}

// Missing lists actions without a handler, in declaration order.
func (r *Router) Missing() []Action {
	var out []Action
	for _, a := range Actions() {
		if _, ok := r.handlers[a]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// Dispatch handles a callback query: decode, ban check, admin check, then
// the handler. The callback is always answered exactly once.
func (r *Router) Dispatch(c tele.Context) error {
	cb := c.Callback()
	sender := c.Sender()
	if cb == nil || sender == nil {
		return nil
	}
	tc := &answerOnce{Context: c}
	defer tc.ensureAnswered()

	route, err := Decode(cb.Data)
	if err != nil {
		log.Debug().Str("data", cb.Data).Int64("user_id", sender.ID).Msg("Unknown callback")
		return tc.Respond(&tele.CallbackResponse{Text: MsgComingSoon})
	}

	if r.bans != nil {
		banned, err := r.bans.IsBanned(context.Background(), sender.ID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", sender.ID).Msg("Ban check failed")
		}
		if banned {
			return tc.Respond(&tele.CallbackResponse{Text: MsgBanned, ShowAlert: true})
		}
	}

	if route.Action.Admin() && (r.isAdmin == nil || !r.isAdmin(sender.ID)) {
		log.Warn().
			Int64("user_id", sender.ID).
			Str("action", route.Action.String()).
			Msg("Non-admin attempted admin callback")
		return tc.Respond(&tele.CallbackResponse{Text: MsgAccessDenied, ShowAlert: true})
	}

	fn, ok := r.handlers[route.Action]
	if !ok {
		return tc.Respond(&tele.CallbackResponse{Text: MsgComingSoon})
	}

	if err := fn(tc, route); err != nil {
		log.Error().
			Err(err).
			Int64("user_id", sender.ID).
			Str("action", route.Action.String()).
			Msg("Callback handler failed")
		_ = tc.Respond(&tele.CallbackResponse{Text: MsgFailed})
	}
	return nil
}

// answerOnce remembers whether the callback was answered so Dispatch can
// acknowledge it if the handler did not.
type answerOnce struct {
	tele.Context
	answered bool
}

func (a *answerOnce) Respond(resp ...*tele.CallbackResponse) error {
	if a.answered {
		return nil
	}
	a.answered = true
	return a.Context.Respond(resp...)
}

func (a *answerOnce) ensureAnswered() {
	if !a.answered {
		_ = a.Respond()
	}
}
