package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileMetadata is the metadata row kept for every object in the bucket.
type FileMetadata struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// StoredName is the object key; it is always derived, never client supplied.
	StoredName   string `gorm:"column:file_name;type:varchar(255);not null;uniqueIndex" json:"stored_name"`
	OriginalName string `gorm:"column:original_file_name;type:varchar(1024);not null" json:"file_name"`
	Locator      string `gorm:"column:s3_bucket_path;type:varchar(2048);not null;uniqueIndex" json:"url"`
	ContentType  string `gorm:"column:content_type;type:varchar(255);not null" json:"content_type"`
	SizeBytes    int64  `gorm:"column:size_bytes;not null" json:"size_bytes"`

	CreatedAt time.Time `gorm:"column:upload_date;not null" json:"upload_date"`
	UpdatedAt time.Time `gorm:"column:last_modified;not null" json:"last_modified"`
}

func (FileMetadata) TableName() string {
	return "file_metadata"
}

func (f *FileMetadata) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
