package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/pkg/keycodec"
)

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	// Timeout bounds every individual call; zero means no bound.
	Timeout time.Duration
}

// S3Store is an ObjectStore backed by S3 or an S3-compatible service.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient

	bucket  string
	codec   *keycodec.Codec
	timeout time.Duration
	log     zerolog.Logger
}

// NewS3Client builds a client from static credentials when they are
// configured and from the default AWS credential chain otherwise.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // required by MinIO
		})
	}

	if cfg.AccessKeyID != "" {
		awsCfg := aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
		return s3.NewFromConfig(awsCfg, s3Opts...), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

func NewS3Store(client *s3.Client, bucket string, codec *keycodec.Codec, timeout time.Duration, log zerolog.Logger) *S3Store {
	store := &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		bucket:   bucket,
		codec:    codec,
		timeout:  timeout,
		log:      log.With().Str("component", "s3").Str("bucket", bucket).Logger(),
	}

	store.log.Info().Msg("S3 object store initialized")
	return store
}

func (s *S3Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.log.Debug().Str("key", key).Int("size", len(body)).Msg("uploading object")

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", &Error{Op: "put", Bucket: s.bucket, Key: key, Err: err}
	}

	locator := s.codec.Locator(key)
	s.log.Info().Str("key", key).Str("locator", locator).Msg("object uploaded")
	return locator, nil
}

func (s *S3Store) Delete(ctx context.Context, locator string) error {
	key, err := s.codec.ExtractKeyOrRaw(locator)
	if err != nil {
		return &Error{Op: "delete", Bucket: s.bucket, Err: err}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return &Error{Op: "delete", Bucket: s.bucket, Key: key, Err: err}
	}

	s.log.Info().Str("key", key).Msg("object deleted")
	return nil
}

func (s *S3Store) PresignGet(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	key, err := s.codec.ExtractKeyOrRaw(locator)
	if err != nil {
		return "", &Error{Op: "presign", Bucket: s.bucket, Err: err}
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", &Error{Op: "presign", Bucket: s.bucket, Key: key, Err: err}
	}

	return req.URL, nil
}

// Ping checks that the bucket exists and is reachable with our credentials.
func (s *S3Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return &Error{Op: "ping", Bucket: s.bucket, Err: err}
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
