// Package qr renders UPI payment QR codes.
package qr

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the image edge in pixels.
const DefaultSize = 256

// Payload builds a upi://pay deep link. An empty payee name is omitted.
// The caller passes the bare UPI id when no deep link is wanted.
func Payload(upiID, payeeName string) string {
	v := url.Values{}
	v.Set("pa", upiID)
	if payeeName != "" {
		v.Set("pn", payeeName)
	}
	v.Set("cu", "INR")
	return "upi://pay?" + v.Encode()
}

// PNG encodes payload as a PNG image.
func PNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty qr payload")
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
