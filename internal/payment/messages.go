package payment

import "fmt"

const (
	MsgReceived = "📸 Payment screenshot received! ⚡\n\n" +
		"🤖 AI is now analyzing your payment...\n" +
		"🔎 Extracting UPI ID, amount, and transaction details...\n\n" +
		"🕒 Please wait just 30-60 seconds!\n" +
		"You'll get a confirmation message shortly! 🚀"

	MsgNoPhoto         = "❌ No photo found in your message. Please upload a payment screenshot."
	MsgDownloadFailed  = "❌ Error downloading your payment screenshot. Please try again."
	MsgInvalidFileType = "❌ Invalid file type. Please upload an image (JPG, PNG, etc.)"
	MsgFileTooLarge    = "❌ File too large. Please upload an image smaller than 10MB"
	MsgProcessingError = "❌ Error processing your payment screenshot. Please try again or contact support."
	MsgStoreFailed     = "❌ Error logging your payment. Please try again."

	MsgAutoVerified = "✅ Payment verified successfully! 🎉"
	MsgAutoUnlocked = "🎉 Your payment has been verified! Enjoy premium features!\n\n" +
		"🚀 You now have access to:\n" +
		"• All mini-games unlocked\n" +
		"• Premium quotes & content\n" +
		"• Exclusive channel access\n" +
		"• Priority support\n\n" +
		"🎮 Start playing games or get inspired with a quote!"

	MsgUnderReview = "⏳ Your payment is being reviewed by our team.\n\n" +
		"🤖 Our AI has analyzed your payment, and a human expert will now verify it.\n" +
		"🔔 You'll receive a confirmation within 1-2 minutes!\n\n" +
		"Thank you for your patience! 🙏"

	MsgApproved = "🎉 Your payment has been VERIFIED by our team! 🚀\n\n" +
		"🔓 You now have FULL ACCESS to premium features:\n" +
		"• ✅ All games unlocked\n" +
		"• ✅ Premium quotes & content\n" +
		"• ✅ Exclusive channel access\n" +
		"• ✅ Priority support\n\n" +
		"🎮 Start playing games or get inspired with a quote!\n" +
		"Thank you for your support! 💎"

	MsgReviewNotFound     = "❌ Payment request not found or already processed."
	MsgStatusUpdateFailed = "❌ Error updating payment status."
	MsgReviewBusy         = "⏳ This payment is being reviewed by another admin. Please try again."
)

// RejectedMessage lists the usual causes and points at support.
func RejectedMessage(supportHandle string) string {
	if supportHandle == "" {
		supportHandle = "support"
	}
	return "❌ Your payment could not be verified.\n\n" +
		"Possible reasons:\n" +
		"• Image unclear or cropped\n" +
		"• Incorrect UPI ID or amount\n" +
		"• Transaction not completed\n\n" +
		"Please try again with a clear screenshot, or contact " + supportHandle + " for assistance."
}

// ReviewerMessage is the caption sent to reviewers with the screenshot.
func ReviewerMessage(s Submission, p Pending) string {
	return fmt.Sprintf(
		"🔍 Payment verification needed\n\n"+
			"👤 User: %s (@%s)\n"+
			"🆔 User ID: %d\n\n"+
			"📄 Extracted Details:\n"+
			"📱 UPI ID: %s\n"+
			"💰 Amount: %s\n"+
			"🔢 Transaction ID: %s\n\n"+
			"📊 Confidence Score: %.2f/1.00",
		s.FirstName, s.Username, s.SenderID,
		Display(p.Fields.UPIID), Display(p.Fields.Amount), Display(p.Fields.TransactionID),
		p.Score,
	)
}
