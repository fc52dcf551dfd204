package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neu-csye6225/webapp/internal/model"
)

// ErrNotFound is returned by deletes that matched no row.
var ErrNotFound = errors.New("file metadata not found")

type MetadataStore interface {
	// Save inserts a record with a zero ID and replaces the record otherwise.
	Save(ctx context.Context, file *model.FileMetadata) error
	// FindByID returns (nil, nil) when no record has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*model.FileMetadata, error)
	FindByLocator(ctx context.Context, locator string) (*model.FileMetadata, error)
	// FindAll returns records oldest first. A non-positive limit means no limit.
	FindAll(ctx context.Context, limit, offset int) ([]model.FileMetadata, error)
	Delete(ctx context.Context, file *model.FileMetadata) error
	DeleteByLocator(ctx context.Context, locator string) error
}

type fileMetadataRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewFileMetadataRepository(db *gorm.DB, timeout time.Duration) MetadataStore {
	return &fileMetadataRepository{db: db, timeout: timeout}
}

func (r *fileMetadataRepository) Save(ctx context.Context, file *model.FileMetadata) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	db := r.db.WithContext(ctx)
	if file.ID == uuid.Nil {
		if err := db.Create(file).Error; err != nil {
			return fmt.Errorf("failed to insert file metadata: %w", err)
		}
		return nil
	}

	if err := db.Save(file).Error; err != nil {
		return fmt.Errorf("failed to save file metadata %s: %w", file.ID, err)
	}
	return nil
}

func (r *fileMetadataRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FileMetadata, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *fileMetadataRepository) FindByLocator(ctx context.Context, locator string) (*model.FileMetadata, error) {
	return r.findOne(ctx, "s3_bucket_path = ?", locator)
}

func (r *fileMetadataRepository) findOne(ctx context.Context, query string, arg any) (*model.FileMetadata, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var file model.FileMetadata
	err := r.db.WithContext(ctx).Where(query, arg).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file metadata: %w", err)
	}
	return &file, nil
}

func (r *fileMetadataRepository) FindAll(ctx context.Context, limit, offset int) ([]model.FileMetadata, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).Order("upload_date ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	files := []model.FileMetadata{}
	if err := query.Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list file metadata: %w", err)
	}
	return files, nil
}

func (r *fileMetadataRepository) Delete(ctx context.Context, file *model.FileMetadata) error {
	return r.deleteOne(ctx, "id = ?", file.ID)
}

func (r *fileMetadataRepository) DeleteByLocator(ctx context.Context, locator string) error {
	return r.deleteOne(ctx, "s3_bucket_path = ?", locator)
}

func (r *fileMetadataRepository) deleteOne(ctx context.Context, query string, arg any) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result := r.db.WithContext(ctx).Where(query, arg).Delete(&model.FileMetadata{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete file metadata: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
