package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/metrics"
	"github.com/neu-csye6225/webapp/internal/model"
	"github.com/neu-csye6225/webapp/internal/pkg/keycodec"
	"github.com/neu-csye6225/webapp/internal/repository"
	"github.com/neu-csye6225/webapp/internal/storage"
)

type FileServiceDeps struct {
	Objects  storage.ObjectStore
	Metadata repository.MetadataStore
	Codec    *keycodec.Codec
	Metrics  metrics.Instrumentation
	Events   EventPublisher
	Logger   zerolog.Logger
	// MaxFileSize is inclusive.
	MaxFileSize int64
}

type fileService struct {
	objects  storage.ObjectStore
	metadata repository.MetadataStore
	codec    *keycodec.Codec
	metrics  metrics.Instrumentation
	events   EventPublisher
	log      zerolog.Logger
	maxSize  int64
}

func NewFileService(deps FileServiceDeps) FileService {
	inst := deps.Metrics
	if inst == nil {
		inst = metrics.Nop{}
	}
	events := deps.Events
	if events == nil {
		events = nopPublisher{}
	}

	return &fileService{
		objects:  deps.Objects,
		metadata: deps.Metadata,
		codec:    deps.Codec,
		metrics:  inst,
		events:   events,
		log:      deps.Logger.With().Str("component", "file_service").Logger(),
		maxSize:  deps.MaxFileSize,
	}
}

func (s *fileService) validate(payload []byte, contentType string) (string, error) {
	if len(payload) == 0 {
		return "", validationError("upload", ErrEmptyPayload)
	}

	if int64(len(payload)) > s.maxSize {
		return "", validationError("upload", fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), s.maxSize))
	}

	normalized := model.NormalizeContentType(contentType)
	if normalized == "" {
		return "", validationError("upload", fmt.Errorf("%w: content type is missing", ErrUnsupportedContentType))
	}
	if !model.IsAllowedContentType(normalized) {
		return "", validationError("upload", fmt.Errorf("%w: %s", ErrUnsupportedContentType, normalized))
	}

	return normalized, nil
}

func (s *fileService) Upload(ctx context.Context, payload []byte, originalName, contentType string) (*model.FileMetadata, error) {
	contentType, err := s.validate(payload, contentType)
	if err != nil {
		s.log.Warn().Err(err).Str("file_name", originalName).Msg("upload rejected")
		return nil, err
	}

	key := s.codec.DeriveKey(originalName)

	locator, err := metrics.TimeValue(s.metrics, metrics.S3("uploadFile"), func() (string, error) {
		return s.objects.Put(ctx, key, payload, contentType)
	})
	if err != nil {
		s.metrics.Count(metrics.S3("uploadFile.error"))
		s.log.Error().Err(err).Str("key", key).Msg("failed to upload object")
		return nil, &Error{Kind: KindObjectStore, Op: "upload", Key: key, Err: err}
	}

	// always strict: the raw fallback is only for locators already on record
	storedName, err := s.codec.ExtractKey(locator)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Str("locator", locator).Msg("object store returned an unrecognised locator, object is orphaned")
		return nil, &Error{Kind: KindObjectStore, Op: "upload", Key: key, Err: err}
	}

	file := &model.FileMetadata{
		StoredName:   storedName,
		OriginalName: originalName,
		Locator:      locator,
		ContentType:  contentType,
		SizeBytes:    int64(len(payload)),
	}

	err = metrics.Time(s.metrics, metrics.Database("saveFileMetadata"), func() error {
		return s.metadata.Save(ctx, file)
	})
	if err != nil {
		s.metrics.Count(metrics.Database("saveFileMetadata.error"))
		// the object stays in the bucket without a record
		s.log.Error().Err(err).Str("key", storedName).Str("locator", locator).Msg("failed to save file metadata, object is orphaned")
		return nil, &Error{Kind: KindMetadataStore, Op: "upload", Key: storedName, Err: err}
	}

	s.log.Info().
		Str("id", file.ID.String()).
		Str("key", storedName).
		Int64("size", file.SizeBytes).
		Str("content_type", contentType).
		Msg("file uploaded")

	s.events.Publish(model.NewFileEvent(model.FileUploaded, file))
	return file, nil
}

func (s *fileService) Get(ctx context.Context, id uuid.UUID) (*model.FileMetadata, error) {
	file, err := metrics.TimeValue(s.metrics, metrics.Database("getFileById"), func() (*model.FileMetadata, error) {
		return s.metadata.FindByID(ctx, id)
	})
	if err != nil {
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to get file metadata")
		return nil, &Error{Kind: KindMetadataStore, Op: "get", ID: id.String(), Err: err}
	}
	return file, nil
}

func (s *fileService) List(ctx context.Context) ([]model.FileMetadata, error) {
	files, err := metrics.TimeValue(s.metrics, metrics.Database("getAllFiles"), func() ([]model.FileMetadata, error) {
		return s.metadata.FindAll(ctx, 0, 0)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list file metadata")
		return nil, &Error{Kind: KindMetadataStore, Op: "list", Err: err}
	}
	return files, nil
}

func (s *fileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := metrics.TimeValue(s.metrics, metrics.Database("findFileForDeletion"), func() (*model.FileMetadata, error) {
		return s.metadata.FindByID(ctx, id)
	})
	if err != nil {
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to look up file for deletion")
		return &Error{Kind: KindMetadataStore, Op: "delete", ID: id.String(), Err: err}
	}
	if file == nil {
		return &Error{Kind: KindNotFound, Op: "delete", ID: id.String(), Err: ErrNotFound}
	}

	err = metrics.Time(s.metrics, metrics.S3("deleteFile"), func() error {
		return s.objects.Delete(ctx, file.Locator)
	})
	if err != nil {
		s.metrics.Count(metrics.S3("deleteFile.error"))
		s.log.Error().Err(err).Str("id", id.String()).Str("key", file.StoredName).Msg("failed to delete object")
		return &Error{Kind: KindObjectStore, Op: "delete", ID: id.String(), Key: file.StoredName, Err: err}
	}

	err = metrics.Time(s.metrics, metrics.Database("deleteFileMetadata"), func() error {
		return s.metadata.Delete(ctx, file)
	})
	if errors.Is(err, repository.ErrNotFound) {
		// removed concurrently between lookup and delete
		return &Error{Kind: KindNotFound, Op: "delete", ID: id.String(), Err: ErrNotFound}
	}
	if err != nil {
		s.metrics.Count(metrics.Database("deleteFileMetadata.error"))
		s.log.Error().Err(err).Str("id", id.String()).Str("key", file.StoredName).Msg("object deleted but metadata delete failed, record is dangling")
		return &Error{Kind: KindMetadataStore, Op: "delete", ID: id.String(), Key: file.StoredName, Err: err}
	}

	s.log.Info().Str("id", id.String()).Str("key", file.StoredName).Msg("file deleted")
	s.events.Publish(model.NewFileEvent(model.FileDeleted, file))
	return nil
}

func (s *fileService) DownloadURL(ctx context.Context, id uuid.UUID, ttl time.Duration) (string, error) {
	presigner, ok := s.objects.(storage.Presigner)
	if !ok {
		return "", &Error{Kind: KindObjectStore, Op: "download", ID: id.String(), Err: errors.New("object store cannot presign urls")}
	}

	file, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", &Error{Kind: KindNotFound, Op: "download", ID: id.String(), Err: ErrNotFound}
	}

	url, err := metrics.TimeValue(s.metrics, metrics.S3("presignUrl"), func() (string, error) {
		return presigner.PresignGet(ctx, file.Locator, ttl)
	})
	if err != nil {
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to presign download url")
		return "", &Error{Kind: KindObjectStore, Op: "download", ID: id.String(), Key: file.StoredName, Err: err}
	}
	return url, nil
}
