package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/model"
	"upi-pay-bot/internal/payment"
	"upi-pay-bot/internal/qr"
	"upi-pay-bot/internal/router"
)

// Verifier runs screenshot submissions and review decisions.
type Verifier interface {
	Submit(ctx context.Context, s payment.Submission) (payment.Result, error)
	Decide(ctx context.Context, reviewerID, senderID, paymentID int64, approve bool) (payment.Decision, error)
}

// Counter increments user counters.
type Counter interface {
	IncrementStat(ctx context.Context, userID int64, field model.StatField) error
}

const (
	msgQRFailed = "❌ Sorry, unable to generate QR code at the moment!"

	msgUploadPrompt = "📸 Please upload a screenshot of your payment.\n\n" +
		"I'll automatically verify the details using OCR technology!"

	msgOCRPrompt = "📸 OCR Text Extraction\n\n" +
		"Please upload an image containing text, and I'll extract the text for you!\n\n" +
		"Supported formats: JPG, PNG, GIF, BMP, TIFF, WEBP\n" +
		"Maximum file size: 10MB"

	msgOCRProcessing = "🔍 Processing image for text extraction..."
	msgOCRNotImage   = "❌ Please upload an image file (JPG, PNG, etc.) for text extraction."
	msgOCRFailed     = "❌ Error processing image. Please try again."
)

// PaymentHandler serves the payment menu, screenshot uploads, reviews and
// standalone text extraction.
type PaymentHandler struct {
	cfg      *config.Config
	verifier Verifier
	counter  Counter
	files    payment.Downloader
	ocr      payment.TextExtractor
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(cfg *config.Config, verifier Verifier, counter Counter, files payment.Downloader, ocr payment.TextExtractor) *PaymentHandler {
	return &PaymentHandler{
		cfg:      cfg,
		verifier: verifier,
		counter:  counter,
		files:    files,
		ocr:      ocr,
	}
}

func (h *PaymentHandler) menuText() string {
	return fmt.Sprintf("💳 Payment Options\n\nWorks for all payments: Paytm / GPay / PhonePe\nUPI ID: %s", h.cfg.Payment.UPIID)
}

func (h *PaymentHandler) countRequest(userID int64) {
	if err := h.counter.IncrementStat(context.Background(), userID, model.StatPaymentsRequested); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to count payment request")
	}
}

// HandlePayments handles /payments.
func (h *PaymentHandler) HandlePayments(c tele.Context) error {
	return c.Send(h.menuText()+"\n\nSelect an option below:", PaymentsKeyboard(true))
}

// HandlePaymentsMenu handles the payments_menu callback.
func (h *PaymentHandler) HandlePaymentsMenu(c tele.Context, _ router.Route) error {
	return c.Edit(h.menuText(), PaymentsKeyboard(false))
}

func (h *PaymentHandler) qrPhoto() (*tele.Photo, error) {
	png, err := qr.PNG(qr.Payload(h.cfg.Payment.UPIID, h.cfg.Payment.PayeeName), qr.DefaultSize)
	if err != nil {
		return nil, err
	}
	return &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(png)),
		Caption: fmt.Sprintf("📱 Scan & Pay: %s\n\n✅ Works for all payments: Paytm / GPay / PhonePe", h.cfg.Payment.UPIID),
	}, nil
}

// HandleQR handles /qr.
func (h *PaymentHandler) HandleQR(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	h.countRequest(sender.ID)
	log.Info().Int64("user_id", sender.ID).Msg("QR code requested")

	photo, err := h.qrPhoto()
	if err != nil {
		log.Error().Err(err).Msg("Failed to render QR code")
		return c.Send(msgQRFailed)
	}
	return c.Send(photo)
}

// HandleGenerateQR handles the generate_qr callback: send the code, then
// return to the payments menu.
func (h *PaymentHandler) HandleGenerateQR(c tele.Context, r router.Route) error {
	h.countRequest(c.Sender().ID)

	photo, err := h.qrPhoto()
	if err != nil {
		log.Error().Err(err).Msg("Failed to render QR code")
		return c.Send(msgQRFailed)
	}
	if err := c.Send(photo); err != nil {
		log.Error().Err(err).Int64("user_id", c.Sender().ID).Msg("Failed to send QR code")
		return c.Send(msgQRFailed)
	}
	return h.HandlePaymentsMenu(c, r)
}

// HandleCopyUPIID handles the copy_upi_id callback.
func (h *PaymentHandler) HandleCopyUPIID(c tele.Context, r router.Route) error {
	h.countRequest(c.Sender().ID)
	if err := c.Respond(&tele.CallbackResponse{
		Text:      fmt.Sprintf("UPI ID: %s (Copied to clipboard)", h.cfg.Payment.UPIID),
		ShowAlert: true,
	}); err != nil {
		return err
	}
	return h.HandlePaymentsMenu(c, r)
}

// HandleUploadPayment handles the upload_payment callback.
func (h *PaymentHandler) HandleUploadPayment(c tele.Context, _ router.Route) error {
	return c.Edit(msgUploadPrompt, inline(backTo(router.ActionPaymentsMenu)))
}

// HandlePhoto treats any photo as a payment screenshot.
func (h *PaymentHandler) HandlePhoto(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	sub := payment.Submission{
		SenderID:  sender.ID,
		FirstName: sender.FirstName,
		Username:  sender.Username,
	}
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		sub.FileID = msg.Photo.FileID
	}

	res, err := h.verifier.Submit(context.Background(), sub)
	if err != nil {
		log.Error().
			Err(err).
			Int64("user_id", sender.ID).
			Str("outcome", res.Outcome.String()).
			Msg("Payment submission failed")
	}
	return nil
}

// HandleReview handles approve and reject buttons on reviewer messages.
func (h *PaymentHandler) HandleReview(c tele.Context, r router.Route) error {
	reviewer := c.Sender()
	d, err := h.verifier.Decide(context.Background(), reviewer.ID, r.Review.SenderID, r.Review.PaymentID, r.Review.Approve)
	if err != nil {
		log.Error().
			Err(err).
			Int64("reviewer_id", reviewer.ID).
			Int64("user_id", r.Review.SenderID).
			Msg("Payment review failed")
	}
	return editReview(c, d.AdminText)
}

// editReview replaces the reviewer message, which is a photo caption when
// the screenshot was delivered and plain text otherwise.
func editReview(c tele.Context, text string) error {
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		return c.EditCaption(text)
	}
	return c.Edit(text)
}

// HandleOCR handles /ocr.
func (h *PaymentHandler) HandleOCR(c tele.Context) error {
	return c.Send(msgOCRPrompt)
}

// HandleDocument extracts text from an image sent as a file.
func (h *PaymentHandler) HandleDocument(c tele.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil || msg.Document == nil {
		return nil
	}

	doc := msg.Document
	if !strings.HasPrefix(doc.MIME, "image/") {
		return c.Send(msgOCRNotImage)
	}
	if h.cfg.Payment.MaxFileSize > 0 && doc.FileSize > h.cfg.Payment.MaxFileSize {
		return c.Send(payment.MsgFileTooLarge)
	}

	if err := c.Send(msgOCRProcessing); err != nil {
		return err
	}

	text, err := h.extract(sender.ID, doc.FileID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Text extraction failed")
		return c.Send(msgOCRFailed)
	}
	return c.Send(payment.Describe(text))
}

func (h *PaymentHandler) extract(userID int64, fileID string) (string, error) {
	ctx := context.Background()
	dir := h.cfg.Payment.TempDir
	if dir == "" {
		dir = "temp"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("ocr_%d_%s.jpg", userID, uuid.NewString()))
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove OCR file")
		}
	}()

	if _, err := h.files.Download(ctx, fileID, path); err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	return h.ocr.ExtractText(ctx, path)
}
