package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/neu-csye6225/webapp/internal/model"
)

// FileService keeps the object store and the metadata store in step.
type FileService interface {
	// Upload validates payload, writes it to the object store and then records
	// its metadata. The object is not removed if the metadata write fails.
	Upload(ctx context.Context, payload []byte, originalName, contentType string) (*model.FileMetadata, error)
	// Get returns (nil, nil) when no record has the id.
	Get(ctx context.Context, id uuid.UUID) (*model.FileMetadata, error)
	List(ctx context.Context) ([]model.FileMetadata, error)
	// Delete removes the object first and the metadata record second.
	Delete(ctx context.Context, id uuid.UUID) error
	DownloadURL(ctx context.Context, id uuid.UUID, ttl time.Duration) (string, error)
}

type HealthService interface {
	// Check proves the metadata database accepts writes.
	Check(ctx context.Context) error
}

// EventPublisher is told about every upload and delete that completed on both stores.
type EventPublisher interface {
	Publish(event model.FileEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.FileEvent) {}
