// Package media binds local upload files to durable objects on an
// S3-compatible host and purges superseded objects when assets are replaced
// or deleted.
package media

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/config"
	"github.com/clipstream/backend/internal/logging"
)

// Store is the media-binding contract handlers depend on.
type Store interface {
	// Upload moves the local file to the object store and returns its public
	// URL. The local file is removed on every exit path.
	Upload(ctx context.Context, localPath, keyPrefix string) (string, error)
	// Delete removes the object a previous Upload returned. Failure is
	// logged by callers, never fatal: a stale object is acceptable, a failed
	// user mutation is not.
	Delete(ctx context.Context, objectURL string) error
}

// S3Store implements Store against an S3-compatible service.
type S3Store struct {
	uploader *manager.Uploader
	client   *s3.Client
	bucket   string
	baseURL  string
}

// NewS3Store configures an uploader and deleter targeting the provided
// object store.
func NewS3Store(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("media: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if strings.TrimSpace(cfg.Endpoint) != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Store{
		uploader: uploader,
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload streams the staged file to the bucket under a fresh key and removes
// the staged file whether or not the transfer succeeded.
func (s *S3Store) Upload(ctx context.Context, localPath, keyPrefix string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			logging.FromContext(ctx).Warn("remove staged upload", "path", localPath, "error", err)
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged upload: %w", err)
	}
	defer file.Close()

	key := path.Join(strings.Trim(keyPrefix, "/"), uuid.NewString()+path.Ext(localPath))

	ctx, span := logging.StartSpan(ctx, "media.upload")
	defer span.End()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	if s.baseURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Delete derives the object key from the URL and removes the object.
func (s *S3Store) Delete(ctx context.Context, objectURL string) error {
	key, err := ObjectKey(objectURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ObjectKey recovers the bucket key from a public object URL: the URL path
// with any leading slash trimmed. A bare key (no scheme) passes through.
func ObjectKey(objectURL string) (string, error) {
	if objectURL == "" {
		return "", fmt.Errorf("media: empty object url")
	}

	parsed, err := url.Parse(objectURL)
	if err != nil {
		return "", fmt.Errorf("media: parse object url: %w", err)
	}

	key := strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return "", fmt.Errorf("media: object url %q has no key", objectURL)
	}
	return key, nil
}

var _ Store = (*S3Store)(nil)
