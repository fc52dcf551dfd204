package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/neu-csye6225/webapp/internal/model"
	"github.com/neu-csye6225/webapp/internal/pkg/keycodec"
	"github.com/neu-csye6225/webapp/internal/repository"
)

var errInjected = errors.New("injected failure")

type spyObjects struct {
	codec   *keycodec.Codec
	objects map[string][]byte

	puts    int
	deletes int

	putErr    error
	deleteErr error
}

func newSpyObjects(codec *keycodec.Codec) *spyObjects {
	return &spyObjects{codec: codec, objects: map[string][]byte{}}
}

func (s *spyObjects) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	s.puts++
	if s.putErr != nil {
		return "", s.putErr
	}
	s.objects[key] = append([]byte(nil), body...)
	return s.codec.Locator(key), nil
}

func (s *spyObjects) Delete(_ context.Context, locator string) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	key, err := s.codec.ExtractKey(locator)
	if err != nil {
		return err
	}
	delete(s.objects, key)
	return nil
}

func (s *spyObjects) calls() int { return s.puts + s.deletes }

type presigningObjects struct {
	*spyObjects
}

func (p presigningObjects) PresignGet(_ context.Context, locator string, ttl time.Duration) (string, error) {
	return locator + "?expires=" + ttl.String(), nil
}

type spyMetadata struct {
	records map[uuid.UUID]model.FileMetadata

	calls int

	saveErr   error
	findErr   error
	deleteErr error
}

func newSpyMetadata() *spyMetadata {
	return &spyMetadata{records: map[uuid.UUID]model.FileMetadata{}}
}

func (s *spyMetadata) Save(_ context.Context, file *model.FileMetadata) error {
	s.calls++
	if s.saveErr != nil {
		return s.saveErr
	}
	now := time.Now().UTC()
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
		file.CreatedAt = now
	}
	file.UpdatedAt = now
	s.records[file.ID] = *file
	return nil
}

func (s *spyMetadata) FindByID(_ context.Context, id uuid.UUID) (*model.FileMetadata, error) {
	s.calls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	file, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &file, nil
}

func (s *spyMetadata) FindByLocator(_ context.Context, locator string) (*model.FileMetadata, error) {
	s.calls++
	for _, file := range s.records {
		if file.Locator == locator {
			return &file, nil
		}
	}
	return nil, nil
}

func (s *spyMetadata) FindAll(_ context.Context, _, _ int) ([]model.FileMetadata, error) {
	s.calls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	files := make([]model.FileMetadata, 0, len(s.records))
	for _, file := range s.records {
		files = append(files, file)
	}
	return files, nil
}

func (s *spyMetadata) Delete(_ context.Context, file *model.FileMetadata) error {
	s.calls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.records[file.ID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.records, file.ID)
	return nil
}

func (s *spyMetadata) DeleteByLocator(ctx context.Context, locator string) error {
	file, _ := s.FindByLocator(ctx, locator)
	if file == nil {
		return repository.ErrNotFound
	}
	return s.Delete(ctx, file)
}

type recorder struct {
	observed map[string]int
	counted  map[string]int
}

func newRecorder() *recorder {
	return &recorder{observed: map[string]int{}, counted: map[string]int{}}
}

func (r *recorder) Observe(name string, _ time.Duration) { r.observed[name]++ }
func (r *recorder) Count(name string)                    { r.counted[name]++ }

type spyHealthRepo struct {
	err   error
	calls int
}

func (s *spyHealthRepo) Record(context.Context) (*model.HealthCheck, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &model.HealthCheck{CheckID: uint(s.calls), Datetime: time.Now()}, nil
}

type spyEvents struct {
	events []model.FileEvent
}

func (s *spyEvents) Publish(event model.FileEvent) { s.events = append(s.events, event) }
