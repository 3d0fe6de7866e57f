package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const objectPrefix = "properties/"

// S3Storage implements domain.MediaStore on a MinIO/S3 bucket. Objects are
// stored under properties/<uuid><ext>; the uuid is the media id.
type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logger.Logger
}

func NewS3Storage(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) (*S3Storage, error) {
	log = log.Named("S3Storage")
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("Bucket created", zap.String("bucket", cfg.Bucket))
	}

	base := cfg.PublicURL
	if base == "" {
		base = client.EndpointURL().String()
	}
	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
		logger:  log,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, file domain.MediaFile, opts domain.UploadOptions) (domain.StoredMedia, error) {
	id := uuid.NewString()
	key := objectKey(id, file.Filename)

	put := minio.PutObjectOptions{
		ContentType:  file.ContentType,
		UserMetadata: uploadMetadata(file, opts),
	}
	if opts.Tag != "" {
		put.UserTags = map[string]string{"listing": opts.Tag}
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(file.Data), int64(len(file.Data)), put)
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", key), zap.Error(err))
		return domain.StoredMedia{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))

	return domain.StoredMedia{URL: objectURL(s.baseURL, s.bucket, key), ID: id}, nil
}

// Delete removes every object stored under the media id, whatever its
// extension. Deleting an absent id succeeds.
func (s *S3Storage) Delete(ctx context.Context, id string) error {
	if id == "" || strings.ContainsAny(id, "/.") {
		return fmt.Errorf("%w: invalid media id %q", domain.ErrValidation, id)
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	removed := 0
	for obj := range s.client.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{Prefix: objectPrefix + id}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list objects for media %s: %w", id, obj.Err)
		}
		if mediaIDFromKey(obj.Key) != id {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove object %s: %w", obj.Key, err)
		}
		removed++
	}
	if removed == 0 {
		s.logger.Debug("Media already absent", zap.String("media_id", id))
		return nil
	}
	s.logger.Debug("Media deleted", zap.String("media_id", id), zap.Int("objects", removed))
	return nil
}

func objectKey(id, filename string) string {
	return objectPrefix + id + strings.ToLower(filepath.Ext(filename))
}

func objectURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key)
}

func mediaIDFromKey(key string) string {
	id, _ := domain.ExtractMediaID(key)
	return id
}

func uploadMetadata(file domain.MediaFile, opts domain.UploadOptions) map[string]string {
	meta := map[string]string{"original-filename": url.QueryEscape(filepath.Base(file.Filename))}
	if opts.MaxWidth > 0 {
		meta["max-width"] = strconv.Itoa(opts.MaxWidth)
	}
	return meta
}
