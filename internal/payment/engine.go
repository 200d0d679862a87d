package payment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/pkg/apperr"
	"upi-pay-bot/internal/pkg/lock"
	"upi-pay-bot/internal/router"
	"upi-pay-bot/internal/store"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paybot",
		Subsystem: "payment",
		Name:      "submissions_total",
		Help:      "Screenshot submissions by outcome.",
	}, []string{"outcome"})

	confidenceScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "paybot",
		Subsystem: "payment",
		Name:      "confidence_score",
		Help:      "Confidence of extracted payment fields.",
		Buckets:   []float64{0, 0.3, 0.4, 0.6, 0.7, 0.8, 1},
	})

	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paybot",
		Subsystem: "payment",
		Name:      "decisions_total",
		Help:      "Reviewer decisions by result.",
	}, []string{"result"})
)

// ErrFinalized is returned by Store.SetPaymentStatus when the payment has
// already reached a terminal status.
var ErrFinalized = errors.New("payment already finalized")

// Store persists payment records and user counters.
type Store interface {
	CreatePayment(ctx context.Context, userID int64, f Fields, status model.PaymentStatus) (int64, error)
	SetPaymentStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error
	IncrementStat(ctx context.Context, userID int64, field model.StatField) error
}

// Messenger delivers messages to chats.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error
	SendPhoto(ctx context.Context, chatID int64, path, caption string, markup *tele.ReplyMarkup) error
}

// Downloader saves an inbound file to dst and returns the file's path on
// Telegram's side, whose extension names the file type.
type Downloader interface {
	Download(ctx context.Context, fileID, dst string) (string, error)
}

// TextExtractor recognizes the text in an image file. An error means the
// recognition could not complete; empty text is not an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Pending is a submission waiting for a reviewer.
type Pending struct {
	PaymentID int64     `json:"payment_id"`
	FilePath  string    `json:"file_path"`
	Fields    Fields    `json:"fields"`
	Score     float64   `json:"score"`
	Text      string    `json:"extracted_text"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingNamespace is the key namespace of pending reviews.
const PendingNamespace = "pending"

// Submission is an uploaded screenshot. FileID is empty when the message
// carried no photo.
type Submission struct {
	SenderID  int64
	FirstName string
	Username  string
	FileID    string
}

// Outcome is how a submission ended.
type Outcome int

const (
	OutcomeNoPhoto Outcome = iota
	OutcomeDownloadFailed
	OutcomeInvalidFile
	OutcomeExtractionFailed
	OutcomeStoreFailed
	OutcomeVerified
	OutcomeEscalated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoPhoto:
		return "no_photo"
	case OutcomeDownloadFailed:
		return "download_failed"
	case OutcomeInvalidFile:
		return "invalid_file"
	case OutcomeExtractionFailed:
		return "extraction_failed"
	case OutcomeStoreFailed:
		return "store_failed"
	case OutcomeVerified:
		return "verified"
	case OutcomeEscalated:
		return "escalated"
	}
	return "unknown"
}

// Result describes a finished submission.
type Result struct {
	Outcome   Outcome
	PaymentID int64
	Fields    Fields
	Score     float64
}

// DecisionOutcome is how a review decision ended.
type DecisionOutcome int

const (
	DecisionApplied DecisionOutcome = iota
	DecisionNotFound
	DecisionFailed
)

// Decision describes a review decision. AdminText replaces the reviewer's
// notification message.
type Decision struct {
	Outcome   DecisionOutcome
	PaymentID int64
	Approved  bool
	AdminText string
}

// Options configures an Engine.
type Options struct {
	Scorer        Scorer
	TempDir       string
	MaxFileSize   int64
	AdminIDs      []int64
	ChannelURL    string
	SupportHandle string
	// PendingTTL bounds how long an undecided review is kept. Zero keeps it
	// until decided.
	PendingTTL time.Duration
	// LockTimeout bounds how long a decision waits for the sender's lock.
	LockTimeout time.Duration
}

// DefaultLockTimeout is used when Options.LockTimeout is unset.
const DefaultLockTimeout = 10 * time.Second

// Engine runs the screenshot verification pipeline.
type Engine struct {
	store   Store
	msg     Messenger
	files   Downloader
	ocr     TextExtractor
	pending *store.Typed[Pending]
	locks   *lock.UserLock
	opts    Options

	now   func() time.Time
	newID func() string
}

// NewEngine creates an Engine. Pending reviews are kept in kv.
func NewEngine(st Store, msg Messenger, files Downloader, ocr TextExtractor, kv store.KV, locks *lock.UserLock, opts Options) *Engine {
	if opts.Scorer == (Scorer{}) {
		opts.Scorer = NewScorer()
	}
	if opts.TempDir == "" {
		opts.TempDir = "temp"
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = MaxFileSize
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if locks == nil {
		locks = lock.NewUserLock()
	}
	return &Engine{
		store:   st,
		msg:     msg,
		files:   files,
		ocr:     ocr,
		pending: store.NewTyped[Pending](kv, PendingNamespace, opts.PendingTTL),
		locks:   locks,
		opts:    opts,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Submit processes an uploaded screenshot end to end. The returned error is
// for logging only; the sender has already been told what happened.
func (e *Engine) Submit(ctx context.Context, s Submission) (Result, error) {
	res, err := e.submit(ctx, s)
	submissionsTotal.WithLabelValues(res.Outcome.String()).Inc()
	return res, err
}

func (e *Engine) submit(ctx context.Context, s Submission) (Result, error) {
	e.send(ctx, s.SenderID, MsgReceived, nil)

	if s.FileID == "" {
		e.send(ctx, s.SenderID, MsgNoPhoto, nil)
		return Result{Outcome: OutcomeNoPhoto}, nil
	}

	path, err := e.download(ctx, s)
	if err != nil {
		e.send(ctx, s.SenderID, MsgDownloadFailed, nil)
		return Result{Outcome: OutcomeDownloadFailed}, apperr.New(apperr.Collaborator, "payment.download", err)
	}

	if err := ValidateFile(path, e.opts.MaxFileSize); err != nil {
		switch {
		case errors.Is(err, ErrInvalidFileType):
			e.send(ctx, s.SenderID, MsgInvalidFileType, nil)
		case errors.Is(err, ErrFileTooLarge):
			e.send(ctx, s.SenderID, MsgFileTooLarge, nil)
		default:
			e.send(ctx, s.SenderID, MsgProcessingError, nil)
		}
		removeFile(path)
		return Result{Outcome: OutcomeInvalidFile}, apperr.New(apperr.UserInput, "payment.validate", err)
	}

	text, err := e.ocr.ExtractText(ctx, path)
	if err != nil {
		e.send(ctx, s.SenderID, MsgProcessingError, nil)
		removeFile(path)
		return Result{Outcome: OutcomeExtractionFailed}, apperr.New(apperr.Collaborator, "payment.extract", err)
	}
	fields := ExtractFields(text)

	paymentID, err := e.store.CreatePayment(ctx, s.SenderID, fields, model.PaymentProcessing)
	if err != nil {
		e.send(ctx, s.SenderID, MsgStoreFailed, nil)
		removeFile(path)
		return Result{Outcome: OutcomeStoreFailed, Fields: fields}, apperr.New(apperr.Collaborator, "payment.create", err)
	}

	score := e.opts.Scorer.Score(fields)
	confidenceScore.Observe(score)
	res := Result{PaymentID: paymentID, Fields: fields, Score: score}

	log.Info().
		Int64("user_id", s.SenderID).
		Int64("payment_id", paymentID).
		Float64("score", score).
		Int("fields", fields.Present()).
		Msg("Payment screenshot scored")

	if e.opts.Scorer.AutoApprove(score) {
		err := e.store.SetPaymentStatus(ctx, paymentID, model.PaymentVerified)
		if err == nil {
			e.send(ctx, s.SenderID, MsgAutoVerified, nil)
			e.send(ctx, s.SenderID, MsgAutoUnlocked, e.unlockMarkup())
			e.incrementSuccessful(ctx, s.SenderID)
			removeFile(path)
			res.Outcome = OutcomeVerified
			return res, nil
		}
		// The record is still processing, so a reviewer can settle it.
		log.Error().Err(err).Int64("payment_id", paymentID).Msg("Auto-verification failed, escalating")
	}

	entry := Pending{
		PaymentID: paymentID,
		FilePath:  path,
		Fields:    fields,
		Score:     score,
		Text:      text,
		CreatedAt: e.now(),
	}
	if err := e.register(ctx, s.SenderID, entry); err != nil {
		e.send(ctx, s.SenderID, MsgStoreFailed, nil)
		removeFile(path)
		res.Outcome = OutcomeStoreFailed
		return res, apperr.New(apperr.Collaborator, "payment.pending", err)
	}

	e.notifyReviewers(ctx, s, entry)
	e.send(ctx, s.SenderID, MsgUnderReview, nil)

	res.Outcome = OutcomeEscalated
	return res, nil
}

// download saves the screenshot under the temp dir. The local name takes
// the extension of the remote file so ValidateFile sees the real type.
func (e *Engine) download(ctx context.Context, s Submission) (string, error) {
	if err := os.MkdirAll(e.opts.TempDir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Join(e.opts.TempDir, fmt.Sprintf("payment_%d_%s", s.SenderID, e.newID()))
	remote, err := e.files.Download(ctx, s.FileID, base)
	if err != nil {
		removeFile(base)
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(remote))
	if ext == "" {
		return base, nil
	}
	path := base + ext
	if err := os.Rename(base, path); err != nil {
		removeFile(base)
		return "", fmt.Errorf("failed to rename download: %w", err)
	}
	return path, nil
}

// register stores entry as the sender's pending review. A superseded
// entry's file is removed right away.
func (e *Engine) register(ctx context.Context, senderID int64, entry Pending) error {
	return e.locks.WithLock(senderID, func() error {
		prev, had, err := e.pending.Swap(ctx, senderID, entry)
		if err != nil {
			return err
		}
		if had && prev.FilePath != "" && prev.FilePath != entry.FilePath {
			log.Info().
				Int64("user_id", senderID).
				Int64("superseded_payment_id", prev.PaymentID).
				Msg("Pending review replaced by a newer submission")
			removeFile(prev.FilePath)
		}
		return nil
	})
}

func (e *Engine) notifyReviewers(ctx context.Context, s Submission, entry Pending) {
	caption := ReviewerMessage(s, entry)
	markup := reviewMarkup(s.SenderID, entry.PaymentID)

	for _, adminID := range e.opts.AdminIDs {
		err := e.msg.SendPhoto(ctx, adminID, entry.FilePath, caption, markup)
		if err == nil {
			continue
		}
		log.Warn().Err(err).Int64("admin_id", adminID).Msg("Failed to send screenshot to reviewer, retrying as text")
		if err := e.msg.SendText(ctx, adminID, caption, markup); err != nil {
			log.Error().Err(err).Int64("admin_id", adminID).Msg("Failed to notify reviewer")
		}
	}
}

// Decide applies a reviewer's verdict on the sender's pending payment.
// paymentID 0 accepts whatever is pending; any other id must match the
// pending entry or the call is a no-op. A decision that cannot take the
// sender's lock within Options.LockTimeout fails and leaves the entry
// pending.
func (e *Engine) Decide(ctx context.Context, reviewerID, senderID, paymentID int64, approve bool) (Decision, error) {
	var d Decision
	err := e.locks.WithLockContext(ctx, senderID, e.opts.LockTimeout, func() error {
		var err error
		d, err = e.decide(ctx, senderID, paymentID, approve)
		return err
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		d = Decision{Outcome: DecisionFailed, PaymentID: paymentID, AdminText: MsgReviewBusy}
		err = apperr.New(apperr.StateConflict, "payment.decide", err)
	}
	decisionsTotal.WithLabelValues(decisionLabel(d)).Inc()

	log.Info().
		Int64("reviewer_id", reviewerID).
		Int64("user_id", senderID).
		Int64("payment_id", d.PaymentID).
		Bool("approve", approve).
		Str("result", decisionLabel(d)).
		Msg("Payment review decided")
	return d, err
}

func (e *Engine) decide(ctx context.Context, senderID, paymentID int64, approve bool) (Decision, error) {
	notFound := Decision{Outcome: DecisionNotFound, PaymentID: paymentID, AdminText: MsgReviewNotFound}

	current, ok, err := e.pending.Get(ctx, senderID)
	if err != nil {
		return Decision{Outcome: DecisionFailed, AdminText: MsgStatusUpdateFailed}, apperr.New(apperr.Collaborator, "payment.decide", err)
	}
	if !ok || (paymentID != 0 && current.PaymentID != paymentID) {
		return notFound, nil
	}

	entry, ok, err := e.pending.Take(ctx, senderID)
	if err != nil {
		return Decision{Outcome: DecisionFailed, AdminText: MsgStatusUpdateFailed}, apperr.New(apperr.Collaborator, "payment.decide", err)
	}
	if !ok {
		// Another process took it between Get and Take.
		return notFound, nil
	}

	status := model.PaymentRejected
	if approve {
		status = model.PaymentVerified
	}

	if err := e.store.SetPaymentStatus(ctx, entry.PaymentID, status); err != nil {
		if errors.Is(err, ErrFinalized) {
			removeFile(entry.FilePath)
			return Decision{Outcome: DecisionNotFound, PaymentID: entry.PaymentID, AdminText: MsgReviewNotFound}, nil
		}
		if perr := e.pending.Put(ctx, senderID, entry); perr != nil {
			log.Error().Err(perr).Int64("user_id", senderID).Msg("Failed to restore pending review")
		}
		return Decision{Outcome: DecisionFailed, PaymentID: entry.PaymentID, AdminText: MsgStatusUpdateFailed},
			apperr.New(apperr.Collaborator, "payment.set_status", err)
	}

	d := Decision{Outcome: DecisionApplied, PaymentID: entry.PaymentID, Approved: approve}
	stamp := e.now().Format("2006-01-02 15:04:05")
	if approve {
		e.send(ctx, senderID, MsgApproved, e.unlockMarkup())
		e.incrementSuccessful(ctx, senderID)
		d.AdminText = fmt.Sprintf("✅ Payment APPROVED for user %d\n\n🆔 Payment ID: %d\n⏰ %s", senderID, entry.PaymentID, stamp)
	} else {
		e.send(ctx, senderID, RejectedMessage(e.opts.SupportHandle), nil)
		d.AdminText = fmt.Sprintf("❌ Payment REJECTED for user %d\n\n🆔 Payment ID: %d\n⏰ %s", senderID, entry.PaymentID, stamp)
	}

	removeFile(entry.FilePath)
	return d, nil
}

// PendingReviews returns every undecided review keyed by sender.
func (e *Engine) PendingReviews(ctx context.Context) (map[int64]Pending, error) {
	return e.pending.All(ctx)
}

func (e *Engine) incrementSuccessful(ctx context.Context, userID int64) {
	if err := e.store.IncrementStat(ctx, userID, model.StatSuccessfulPayments); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to count successful payment")
	}
}

func (e *Engine) send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) {
	if err := e.msg.SendText(ctx, chatID, text, markup); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (e *Engine) unlockMarkup() *tele.ReplyMarkup {
	rows := [][]tele.InlineButton{
		{{Text: "🎮 Play Games", Data: router.ActionGamesMenu.Data()}},
		{{Text: "💡 Get Quote", Data: router.ActionDailyQuote.Data()}},
	}
	if e.opts.ChannelURL != "" {
		rows = append(rows, []tele.InlineButton{{Text: "📺 Join Channel", URL: e.opts.ChannelURL}})
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func reviewMarkup(senderID, paymentID int64) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{
		{{Text: "✅ Approve", Data: router.ReviewData(true, senderID, paymentID)}},
		{{Text: "❌ Reject", Data: router.ReviewData(false, senderID, paymentID)}},
	}}
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("Failed to remove payment file")
	}
}

func decisionLabel(d Decision) string {
	switch d.Outcome {
	case DecisionApplied:
		if d.Approved {
			return "approved"
		}
		return "rejected"
	case DecisionNotFound:
		return "not_found"
	}
	return "failed"
}
