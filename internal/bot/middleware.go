package bot

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/handler"
	"upi-pay-bot/internal/metrics"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/router"
)

// MsgBanned is sent to banned users instead of handling their message.
const MsgBanned = "🚫 You have been banned from using this bot."

// UserTracker records that a user was seen.
type UserTracker interface {
	EnsureUser(ctx context.Context, userID int64, username, firstName, lastName string) (*model.User, error)
}

// updateKind labels an update for logs and metrics.
func updateKind(c tele.Context) string {
	if c.Callback() != nil {
		return "callback"
	}
	msg := c.Message()
	switch {
	case msg == nil:
		return "other"
	case msg.Photo != nil:
		return "photo"
	case msg.Document != nil:
		return "document"
	case strings.HasPrefix(msg.Text, "/"):
		return "command"
	case msg.Text != "":
		return "text"
	}
	return "other"
}

// TrackMiddleware upserts the sender on every update. Failures are logged
// and never block the update.
func TrackMiddleware(users UserTracker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if sender := c.Sender(); sender != nil {
				_, err := users.EnsureUser(context.Background(), sender.ID, sender.Username, sender.FirstName, sender.LastName)
				if err != nil {
					log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to record user")
				}
			}
			return next(c)
		}
	}
}

// BanMiddleware stops messages from banned users. Callbacks are checked by
// the router so they can be answered with an alert. A failed lookup lets the
// update through.
func BanMiddleware(bans router.BanChecker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || c.Callback() != nil {
				return next(c)
			}

			banned, err := bans.IsBanned(context.Background(), sender.ID)
			if err != nil {
				log.Error().Err(err).Int64("user_id", sender.ID).Msg("Ban check failed")
				return next(c)
			}
			if banned {
				log.Debug().Int64("user_id", sender.ID).Msg("Ignoring banned user")
				return c.Send(MsgBanned)
			}
			return next(c)
		}
	}
}

// AdminMiddleware creates a middleware that checks if the user is an admin.
func AdminMiddleware(isAdmin func(int64) bool) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !isAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Send(handler.MsgAdminOnly)
			}

			return next(c)
		}
	}
}

// LoggingMiddleware logs and counts every incoming update.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			kind := updateKind(c)
			metrics.ObserveUpdate(kind)

			sender := c.Sender()
			chat := c.Chat()

			logEvent := log.Debug().Str("kind", kind)
			if sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			if cb := c.Callback(); cb != nil {
				logEvent = logEvent.Str("data", cb.Data)
			} else {
				logEvent = logEvent.Str("text", c.Text())
			}
			logEvent.Msg("Received update")

			return next(c)
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					metrics.ObserveError("panic")
					log.Error().
						Interface("panic", r).
						Str("kind", updateKind(c)).
						Msg("Recovered from panic in handler")
					err = c.Send(msgInternalError)
				}
			}()
			return next(c)
		}
	}
}

const msgInternalError = "❌ Something went wrong. Please try again later."

// onError is the bot-wide handler for errors returned by handlers.
func onError(err error, c tele.Context) {
	kind := "unknown"
	ev := log.Error().Err(err)
	if c != nil {
		kind = updateKind(c)
		if sender := c.Sender(); sender != nil {
			ev = ev.Int64("user_id", sender.ID)
		}
	}
	metrics.ObserveError(kind)
	ev.Str("kind", kind).Msg("Handler failed")
}
