// Package router decodes callback data into typed routes and dispatches them.
package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCallback is returned by Decode for data it does not recognize.
var ErrUnknownCallback = errors.New("unknown callback")

// Action identifies what a callback button does.
type Action int

const (
	ActionUnknown Action = iota

	// Navigation and payments.
	ActionMainMenu
	ActionPaymentsMenu
	ActionGenerateQR
	ActionCopyUPIID
	ActionUploadPayment

	// Games.
	ActionGamesMenu
	ActionGameCoin
	ActionGameRPS
	ActionGameTTT
	ActionGameHangman
	ActionGameDice
	ActionLeaderboard
	ActionCoinHeads
	ActionCoinTails
	ActionRPSRock
	ActionRPSPaper
	ActionRPSScissors
	ActionTTTMove
	ActionHangmanGuess

	// Content.
	ActionDailyQuote
	ActionLikeQuote

	// Payment review.
	ActionReviewApprove
	ActionReviewReject

	// Admin dashboard.
	ActionAdminDashboard
	ActionAdminUsers
	ActionAdminPayments
	ActionAdminBroadcast
	ActionAdminAnalytics
	ActionAdminLeaderboard
	ActionAdminListUsers
	ActionAdminPendingPayments
	ActionAdminCreateBroadcast
	ActionAdminDMUser
	ActionAdminLBGames
	ActionAdminLBPayments
	ActionAdminLBQuotes
	ActionAdminLBActive
	ActionAdminVerifiedPayments
	ActionAdminRejectedPayments
	ActionAdminEngagement
	ActionAdminTopUsers
	ActionAdminBanUnban

	actionCount
)

// static maps actions without arguments to their callback data.
var static = map[Action]string{
	ActionMainMenu:      "main_menu",
	ActionPaymentsMenu:  "payments_menu",
	ActionGenerateQR:    "generate_qr",
	ActionCopyUPIID:     "copy_upi_id",
	ActionUploadPayment: "upload_payment",

	ActionGamesMenu:   "games_menu",
	ActionGameCoin:    "game_coin",
	ActionGameRPS:     "game_rps",
	ActionGameTTT:     "game_ttt",
	ActionGameHangman: "game_hangman",
	ActionGameDice:    "game_dice",
	ActionLeaderboard: "leaderboard",
	ActionCoinHeads:   "coin_heads",
	ActionCoinTails:   "coin_tails",
	ActionRPSRock:     "rps_rock",
	ActionRPSPaper:    "rps_paper",
	ActionRPSScissors: "rps_scissors",

	ActionDailyQuote: "daily_quote",
	ActionLikeQuote:  "like_quote",

	ActionAdminDashboard:        "admin_dashboard",
	ActionAdminUsers:            "admin_users",
	ActionAdminPayments:         "admin_payments",
	ActionAdminBroadcast:        "admin_broadcast",
	ActionAdminAnalytics:        "admin_analytics",
	ActionAdminLeaderboard:      "admin_leaderboard",
	ActionAdminListUsers:        "admin_list_users",
	ActionAdminPendingPayments:  "admin_pending_payments",
	ActionAdminCreateBroadcast:  "admin_create_broadcast",
	ActionAdminDMUser:           "admin_dm_user",
	ActionAdminLBGames:          "admin_lb_games",
	ActionAdminLBPayments:       "admin_lb_payments",
	ActionAdminLBQuotes:         "admin_lb_quotes",
	ActionAdminLBActive:         "admin_lb_active",
	ActionAdminVerifiedPayments: "admin_verified_payments",
	ActionAdminRejectedPayments: "admin_rejected_payments",
	ActionAdminEngagement:       "admin_engagement",
	ActionAdminTopUsers:         "admin_top_users",
	ActionAdminBanUnban:         "admin_ban_unban",
}

var byData = func() map[string]Action {
	m := make(map[string]Action, len(static))
	for a, d := range static {
		m[d] = a
	}
	return m
}()

// String returns the callback data for static actions and a symbolic name
// for the parameterized ones.
func (a Action) String() string {
	if d, ok := static[a]; ok {
		return d
	}
	switch a {
	case ActionTTTMove:
		return "ttt_<n>"
	case ActionHangmanGuess:
		return "hangman_<letter>"
	case ActionReviewApprove:
		return "review_approve"
	case ActionReviewReject:
		return "review_reject"
	}
	return "unknown"
}

// Data returns the callback data of a static action. It panics for
// parameterized actions, which have their own encoders.
func (a Action) Data() string {
	d, ok := static[a]
	if !ok {
		panic(fmt.Sprintf("router: action %s has no static data", a))
	}
	return d
}

// Admin reports whether the action is restricted to administrators.
func (a Action) Admin() bool {
	return a == ActionReviewApprove || a == ActionReviewReject ||
		(a >= ActionAdminDashboard && a <= ActionAdminBanUnban)
}

// Actions lists every known action.
func Actions() []Action {
	out := make([]Action, 0, actionCount-1)
	for a := ActionUnknown + 1; a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// Review is the payload of an approve/reject button.
// PaymentID 0 means whichever payment is pending for the sender.
type Review struct {
	Approve   bool
	SenderID  int64
	PaymentID int64
}

// Route is decoded callback data.
type Route struct {
	Action Action
	// Position is the Tic-Tac-Toe cell, 1..9.
	Position int
	// Letter is the Hangman guess, A..Z.
	Letter byte
	Review Review
}

const reviewPrefix = "rv1:"

// TTTData encodes a Tic-Tac-Toe move button.
func TTTData(pos int) string {
	return "ttt_" + strconv.Itoa(pos)
}

// HangmanData encodes a Hangman letter button.
func HangmanData(letter byte) string {
	return "hangman_" + string(letter)
}

// ReviewData encodes a review button as rv1:<a|r>:<sender>:<payment>.
func ReviewData(approve bool, senderID, paymentID int64) string {
	verdict := "r"
	if approve {
		verdict = "a"
	}
	return fmt.Sprintf("%s%s:%d:%d", reviewPrefix, verdict, senderID, paymentID)
}

// Decode parses raw callback data. Unrecognized or malformed data returns
// ErrUnknownCallback.
func Decode(data string) (Route, error) {
	data = strings.TrimPrefix(data, "\f")

	if a, ok := byData[data]; ok {
		return Route{Action: a}, nil
	}

	switch {
	case strings.HasPrefix(data, "ttt_"):
		pos, err := strconv.Atoi(strings.TrimPrefix(data, "ttt_"))
		if err != nil || pos < 1 || pos > 9 {
			return Route{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
		}
		return Route{Action: ActionTTTMove, Position: pos}, nil

	case strings.HasPrefix(data, "hangman_"):
		l := strings.ToUpper(strings.TrimPrefix(data, "hangman_"))
		if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
			return Route{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
		}
		return Route{Action: ActionHangmanGuess, Letter: l[0]}, nil

	case strings.HasPrefix(data, reviewPrefix):
		return decodeReview(data)

	case strings.HasPrefix(data, "approve_payment_"):
		return decodeLegacyReview(data, true)

	case strings.HasPrefix(data, "reject_payment_"):
		return decodeLegacyReview(data, false)
	}

	return Route{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}

func decodeReview(data string) (Route, error) {
	parts := strings.Split(strings.TrimPrefix(data, reviewPrefix), ":")
	if len(parts) != 3 {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}

	var approve bool
	switch parts[0] {
	case "a":
		approve = true
	case "r":
	default:
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}

	sender, err1 := strconv.ParseInt(parts[1], 10, 64)
	payment, err2 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil || sender <= 0 || payment < 0 {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
	return reviewRoute(approve, sender, payment), nil
}

// decodeLegacyReview handles approve_payment_<uid>_<pid> and the older
// approve_payment_<uid>.
func decodeLegacyReview(data string, approve bool) (Route, error) {
	prefix := "reject_payment_"
	if approve {
		prefix = "approve_payment_"
	}
	parts := strings.Split(strings.TrimPrefix(data, prefix), "_")

	var sender, payment int64
	var err error
	switch len(parts) {
	case 1:
		sender, err = strconv.ParseInt(parts[0], 10, 64)
	case 2:
		sender, err = strconv.ParseInt(parts[0], 10, 64)
		if err == nil {
			payment, err = strconv.ParseInt(parts[1], 10, 64)
		}
	default:
		err = errors.New("too many parts")
	}
	if err != nil || sender <= 0 || payment < 0 {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
	return reviewRoute(approve, sender, payment), nil
}

func reviewRoute(approve bool, sender, payment int64) Route {
	a := ActionReviewReject
	if approve {
		a = ActionReviewApprove
	}
	return Route{Action: a, Review: Review{Approve: approve, SenderID: sender, PaymentID: payment}}
}
