package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type S3Options struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	Timeout         time.Duration
}

// S3Host keeps media in one bucket. Every call goes through a circuit
// breaker so a dead backend fails fast instead of holding request slots.
type S3Host struct {
	client   *s3.Client
	uploader *manager.Uploader
	breaker  *gobreaker.CircuitBreaker
	opts     S3Options
	log      *zap.Logger
}

func NewS3Host(ctx context.Context, opts S3Options, log *zap.Logger) (*S3Host, error) {
	loaders := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// MinIO and other S3-compatible hosts
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	return &S3Host{
		client:   client,
		uploader: manager.NewUploader(client),
		breaker:  newBreaker("media-host", log),
		opts:     opts,
		log:      log,
	}, nil
}

func newBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Upload sends the file at localPath under folder/ and returns its public
// URL with the object key as the media id.
func (s *S3Host) Upload(ctx context.Context, localPath, folder, contentType string) (models.Asset, error) {
	key := path.Join(folder, uuid.NewString()+strings.ToLower(filepath.Ext(localPath)))

	_, err := s.breaker.Execute(func() (interface{}, error) {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
		return s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.opts.Bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String(contentType),
		})
	})
	if err != nil {
		return models.Asset{}, s.wrap(ErrUploadFailed, err)
	}
	return models.Asset{URL: s.publicURL(key), MediaID: key}, nil
}

func (s *S3Host) Delete(ctx context.Context, mediaID string) error {
	if mediaID == "" {
		return nil
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.opts.Bucket),
			Key:    aws.String(mediaID),
		})
	})
	if err != nil {
		return s.wrap(ErrStorageFailure, err)
	}
	return nil
}

func (s *S3Host) wrap(kind, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: media host unavailable: %v", kind, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}

func (s *S3Host) publicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case s.opts.PublicBaseURL != "":
		return strings.TrimRight(s.opts.PublicBaseURL, "/") + "/" + escaped
	case s.opts.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), s.opts.Bucket, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, escaped)
	}
}
