package qr

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload(t *testing.T) {
	assert.Equal(t, "upi://pay?cu=INR&pa=shop%40okaxis&pn=My+Shop", Payload("shop@okaxis", "My Shop"))
	assert.Equal(t, "upi://pay?cu=INR&pa=shop%40okaxis", Payload("shop@okaxis", ""))
}

func TestPNG(t *testing.T) {
	data, err := PNG(Payload("shop@okaxis", ""), 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())

	_, err = PNG("", 128)
	assert.Error(t, err)
}
