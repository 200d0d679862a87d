package handler

import (
	"strconv"

	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/router"
)

func btn(text string, a router.Action) tele.InlineButton {
	return tele.InlineButton{Text: text, Data: a.Data()}
}

func inline(rows ...[]tele.InlineButton) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func backTo(a router.Action) []tele.InlineButton {
	return []tele.InlineButton{btn("⬅️ Back", a)}
}

// MainMenuKeyboard is shown by /start and the main_menu callback. Link rows
// are omitted when the link is not configured.
func MainMenuKeyboard(links config.LinksConfig) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	for _, l := range []struct{ text, url string }{
		{"👤 Owner", links.Owner},
		{"📺 Main Channel", links.Channel},
		{"👥 Community Group", links.Group},
		{"📂 Proofs Channel", links.Proofs},
	} {
		if l.url != "" {
			rows = append(rows, []tele.InlineButton{{Text: l.text, URL: l.url}})
		}
	}
	rows = append(rows,
		[]tele.InlineButton{btn("💳 Payments", router.ActionPaymentsMenu)},
		[]tele.InlineButton{btn("🎮 Games", router.ActionGamesMenu)},
		[]tele.InlineButton{btn("💡 Daily Quote", router.ActionDailyQuote)},
	)
	return inline(rows...)
}

// PaymentsKeyboard is the payment options menu. The command variant has a
// longer back label.
func PaymentsKeyboard(fromCommand bool) *tele.ReplyMarkup {
	upload, back := "📸 I Paid (Upload Screenshot)", "⬅️ Back"
	if fromCommand {
		upload, back = "📸 Upload Payment Screenshot", "⬅️ Back to Main Menu"
	}
	return inline(
		[]tele.InlineButton{btn("📱 Generate QR", router.ActionGenerateQR)},
		[]tele.InlineButton{btn("📋 Copy UPI ID", router.ActionCopyUPIID)},
		[]tele.InlineButton{btn(upload, router.ActionUploadPayment)},
		[]tele.InlineButton{btn(back, router.ActionMainMenu)},
	)
}

// GamesKeyboard lists the games.
func GamesKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("🪙 Head or Tails", router.ActionGameCoin)},
		[]tele.InlineButton{btn("✊ Rock Paper Scissors", router.ActionGameRPS)},
		[]tele.InlineButton{btn("⭕ Tic Tac Toe", router.ActionGameTTT)},
		[]tele.InlineButton{btn("🔤 Hangman", router.ActionGameHangman)},
		[]tele.InlineButton{btn("🎲 Dice Roll", router.ActionGameDice)},
		[]tele.InlineButton{btn("🏆 Leaderboard", router.ActionLeaderboard)},
		backTo(router.ActionMainMenu),
	)
}

// CoinKeyboard offers both sides and a restart.
func CoinKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("👑 Heads", router.ActionCoinHeads)},
		[]tele.InlineButton{btn("🔄 Tails", router.ActionCoinTails)},
		[]tele.InlineButton{btn("🔄 New Game", router.ActionGameCoin)},
		backTo(router.ActionGamesMenu),
	)
}

// RPSKeyboard offers the three weapons and a restart.
func RPSKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("✊ Rock", router.ActionRPSRock)},
		[]tele.InlineButton{btn("✋ Paper", router.ActionRPSPaper)},
		[]tele.InlineButton{btn("✌️ Scissors", router.ActionRPSScissors)},
		[]tele.InlineButton{btn("🔄 New Game", router.ActionGameRPS)},
		backTo(router.ActionGamesMenu),
	)
}

// DiceKeyboard rolls again.
func DiceKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("🔄 Roll Again", router.ActionGameDice)},
		backTo(router.ActionGamesMenu),
	)
}

// TicTacToeKeyboard has a 3x3 position pad unless the game is over.
func TicTacToeKeyboard(over bool) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	if !over {
		for i := 1; i <= 9; i += 3 {
			rows = append(rows, []tele.InlineButton{
				{Text: strconv.Itoa(i), Data: router.TTTData(i)},
				{Text: strconv.Itoa(i + 1), Data: router.TTTData(i + 1)},
				{Text: strconv.Itoa(i + 2), Data: router.TTTData(i + 2)},
			})
		}
	}
	rows = append(rows,
		[]tele.InlineButton{btn("🔄 New Game", router.ActionGameTTT)},
		backTo(router.ActionGamesMenu),
	)
	return inline(rows...)
}

// HangmanKeyboard has the alphabet in rows of four unless the game is over.
func HangmanKeyboard(over bool) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	if !over {
		var row []tele.InlineButton
		for l := byte('A'); l <= 'Z'; l++ {
			row = append(row, tele.InlineButton{Text: string(l), Data: router.HangmanData(l)})
			if len(row) == 4 || l == 'Z' {
				rows = append(rows, row)
				row = nil
			}
		}
	}
	rows = append(rows,
		[]tele.InlineButton{btn("🔄 New Game", router.ActionGameHangman)},
		backTo(router.ActionGamesMenu),
	)
	return inline(rows...)
}

// LeaderboardKeyboard refreshes the games leaderboard.
func LeaderboardKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("🔄 Refresh", router.ActionLeaderboard)},
		[]tele.InlineButton{btn("🎮 Play Games", router.ActionGamesMenu)},
		backTo(router.ActionGamesMenu),
	)
}

// QuoteKeyboard follows a daily quote.
func QuoteKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("⏭ Next Quote", router.ActionDailyQuote)},
		[]tele.InlineButton{btn("❤️ Like", router.ActionLikeQuote)},
		backTo(router.ActionMainMenu),
	)
}

// AdminDashboardKeyboard is the admin home.
func AdminDashboardKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("👥 User Management", router.ActionAdminUsers)},
		[]tele.InlineButton{btn("💳 Payment Management", router.ActionAdminPayments)},
		[]tele.InlineButton{btn("📢 Broadcast Message", router.ActionAdminBroadcast)},
		[]tele.InlineButton{btn("📊 Analytics", router.ActionAdminAnalytics)},
		[]tele.InlineButton{btn("🏆 Leaderboard", router.ActionAdminLeaderboard)},
	)
}

// AdminUsersKeyboard is the user management menu.
func AdminUsersKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("📋 List All Users", router.ActionAdminListUsers)},
		[]tele.InlineButton{btn("📤 DM User", router.ActionAdminDMUser)},
		[]tele.InlineButton{btn("🚫 Ban/Unban User", router.ActionAdminBanUnban)},
		backTo(router.ActionAdminDashboard),
	)
}

// AdminPaymentsKeyboard is the payment management menu.
func AdminPaymentsKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("⏳ View Pending", router.ActionAdminPendingPayments)},
		[]tele.InlineButton{btn("✅ View Verified", router.ActionAdminVerifiedPayments)},
		[]tele.InlineButton{btn("❌ View Rejected", router.ActionAdminRejectedPayments)},
		backTo(router.ActionAdminDashboard),
	)
}

// AdminBroadcastKeyboard is the broadcast menu.
func AdminBroadcastKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("📝 Create Broadcast", router.ActionAdminCreateBroadcast)},
		backTo(router.ActionAdminDashboard),
	)
}

// AdminAnalyticsKeyboard is the analytics menu.
func AdminAnalyticsKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("🕒 Engagement Metrics", router.ActionAdminEngagement)},
		[]tele.InlineButton{btn("🏆 Top Users", router.ActionAdminTopUsers)},
		backTo(router.ActionAdminDashboard),
	)
}

// AdminLeaderboardKeyboard picks a ranking category.
func AdminLeaderboardKeyboard() *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("🎮 Games Played", router.ActionAdminLBGames)},
		[]tele.InlineButton{btn("💰 Payments Made", router.ActionAdminLBPayments)},
		[]tele.InlineButton{btn("💡 Quotes Read", router.ActionAdminLBQuotes)},
		[]tele.InlineButton{btn("⭐ Most Active", router.ActionAdminLBActive)},
		backTo(router.ActionAdminDashboard),
	)
}

// refreshKeyboard re-runs a listing and returns to a parent menu.
func refreshKeyboard(refresh, back router.Action) *tele.ReplyMarkup {
	return inline(
		[]tele.InlineButton{btn("🔄 Refresh", refresh)},
		backTo(back),
	)
}
