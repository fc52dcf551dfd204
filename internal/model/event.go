package model

import (
	"time"

	"github.com/google/uuid"
)

type FileEventType string

const (
	FileUploaded FileEventType = "file_uploaded"
	FileDeleted  FileEventType = "file_deleted"
)

// FileEvent is published after an upload or delete has completed on both stores.
type FileEvent struct {
	Type      FileEventType `json:"type"`
	ID        uuid.UUID     `json:"id"`
	FileName  string        `json:"file_name"`
	URL       string        `json:"url,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewFileEvent(eventType FileEventType, file *FileMetadata) FileEvent {
	return FileEvent{
		Type:      eventType,
		ID:        file.ID,
		FileName:  file.OriginalName,
		URL:       file.Locator,
		Timestamp: time.Now().UTC(),
	}
}
