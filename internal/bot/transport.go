package bot

import (
	"context"

	tele "gopkg.in/telebot.v3"
)

// API is the part of *tele.Bot the transport uses.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	FileByID(fileID string) (tele.File, error)
	Download(file *tele.File, localFilename string) error
}

// Transport delivers messages and fetches files outside a handler context.
type Transport struct {
	api API
}

// NewTransport creates a Transport over api.
func NewTransport(api API) *Transport {
	return &Transport{api: api}
}

func sendOptions(markup *tele.ReplyMarkup) []interface{} {
	if markup == nil {
		return nil
	}
	return []interface{}{markup}
}

// SendText sends a text message to chatID.
func (t *Transport) SendText(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	_, err := t.api.Send(tele.ChatID(chatID), text, sendOptions(markup)...)
	return err
}

// SendPhoto sends the image at path with a caption to chatID.
func (t *Transport) SendPhoto(_ context.Context, chatID int64, path, caption string, markup *tele.ReplyMarkup) error {
	photo := &tele.Photo{File: tele.FromDisk(path), Caption: caption}
	_, err := t.api.Send(tele.ChatID(chatID), photo, sendOptions(markup)...)
	return err
}

// Download saves the file with fileID to dst and returns its path on
// Telegram's side.
func (t *Transport) Download(_ context.Context, fileID, dst string) (string, error) {
	file, err := t.api.FileByID(fileID)
	if err != nil {
		return "", err
	}
	if err := t.api.Download(&file, dst); err != nil {
		return "", err
	}
	return file.FilePath, nil
}
