package ingest

import "github.com/go-telegram/bot/models"

// FromMessage extracts indexable media from a message. Documents, videos,
// and audio count; photos and plain text do not. Returns nil when the
// message carries no indexable media. ChatID and MessageID are taken from
// the message itself; callers inspecting a forwarded copy must overwrite
// them with the original location.
func FromMessage(msg *models.Message) *Media {
	if msg == nil {
		return nil
	}

	var fileID string
	var fileSize int64

	switch {
	case msg.Document != nil:
		fileID = msg.Document.FileID
		fileSize = msg.Document.FileSize
	case msg.Video != nil:
		fileID = msg.Video.FileID
		fileSize = msg.Video.FileSize
	case msg.Audio != nil:
		fileID = msg.Audio.FileID
		fileSize = msg.Audio.FileSize
	default:
		return nil
	}

	return &Media{
		FileID:    fileID,
		Caption:   msg.Caption,
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		FileSize:  fileSize,
	}
}
