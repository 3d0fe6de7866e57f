package usecase

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const mediaDeleteConcurrency = 4

// PropertyUsecase owns every mutation of a listing and its gallery.
type PropertyUsecase struct {
	repo     domain.PropertyRepository
	media    domain.MediaStore
	cache    domain.PropertyCache
	events   domain.EventPublisher
	notifier domain.Notifier
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
	tracer   trace.Tracer
}

// NewPropertyUsecase wires the write side. cache, events and notifier may be nil.
func NewPropertyUsecase(
	repo domain.PropertyRepository,
	media domain.MediaStore,
	cache domain.PropertyCache,
	events domain.EventPublisher,
	notifier domain.Notifier,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *PropertyUsecase {
	return &PropertyUsecase{
		repo:     repo,
		media:    media,
		cache:    cache,
		events:   events,
		notifier: notifier,
		metrics:  m,
		logger:   log.Named("PropertyUsecase"),
		tracer:   otel.Tracer(tracerName),
	}
}

// Create persists a listing under the next code and attaches the uploaded
// files. An upload failure leaves the listing persisted without the batch.
func (uc *PropertyUsecase) Create(ctx context.Context, in domain.CreatePropertyInput, files []domain.MediaFile) (*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.Create", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateImages(files); err != nil {
		return nil, err
	}

	code, err := uc.repo.NextCode(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reserve listing code: %w", err)
	}

	p := in.ToProperty()
	p.Code = code
	if err := uc.repo.Create(ctx, p); err != nil {
		uc.logger.Error("Failed to save listing", zap.Int64("code", code), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}
	uc.metrics.PropertiesCreated.Inc()
	uc.logger.Info("Listing created", zap.String("property_id", p.ID), zap.Int64("code", p.Code))

	uc.invalidateFeatured(ctx)
	uc.publish(ctx, domain.SubjectPropertyCreated, domain.PropertyEvent{ID: p.ID, Code: p.Code})
	if uc.notifier != nil {
		if err := uc.notifier.SendPropertyCreated(p); err != nil {
			uc.logger.Warn("Failed to send listing notification", zap.String("property_id", p.ID), zap.Error(err))
		}
	}

	if len(files) == 0 {
		return p, nil
	}

	urls, err := uc.uploadAll(ctx, files, domain.UploadOptions{
		MaxWidth: domain.DefaultMaxImageWidth,
		Tag:      strconv.FormatInt(code, 10),
	})
	if err != nil {
		uc.logger.Error("Listing saved without images", zap.String("property_id", p.ID), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	updated, err := uc.repo.AppendImages(ctx, p.ID, urls)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("attach images to %s: %w", p.ID, err)
	}
	uc.invalidate(ctx, p.ID)
	return updated, nil
}

// Update applies a partial patch. Uploaded files and patch.Images are appended
// to the gallery unless patch.ClearImages is set.
func (uc *PropertyUsecase) Update(ctx context.Context, id string, patch domain.PropertyPatch, files []domain.MediaFile) (*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.Update", trace.WithAttributes(attribute.String("property_id", id)))
	defer span.End()

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateImages(files); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(files) > 0 {
		urls, err := uc.uploadAll(ctx, files, domain.UploadOptions{
			MaxWidth: domain.DefaultMaxImageWidth,
			Tag:      strconv.FormatInt(existing.Code, 10),
		})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		patch.Images = append(patch.Images, urls...)
	}
	patch.Normalize()

	updated, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.metrics.PropertiesUpdated.Inc()
	uc.invalidate(ctx, id)
	uc.publish(ctx, domain.SubjectPropertyUpdated, domain.PropertyEvent{ID: updated.ID, Code: updated.Code})
	return updated, nil
}

// Delete removes the listing after attempting to delete every image from the
// media store. Media failures never abort the delete; they are reported and
// published for a later retry.
func (uc *PropertyUsecase) Delete(ctx context.Context, id string) (*domain.CleanupReport, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.Delete", trace.WithAttributes(attribute.String("property_id", id)))
	defer span.End()

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &domain.CleanupReport{PropertyID: p.ID, Items: uc.deleteMedia(ctx, p.Images)}

	if err := uc.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.metrics.PropertiesDeleted.Inc()
	uc.invalidate(ctx, id)
	uc.publish(ctx, domain.SubjectPropertyDeleted, domain.PropertyEvent{ID: p.ID, Code: p.Code})

	if pending := report.Pending(); len(pending) > 0 {
		uc.logger.Warn("Listing deleted with pending media cleanup",
			zap.String("property_id", p.ID), zap.Int("pending", len(pending)))
		uc.publish(ctx, domain.SubjectMediaCleanupPending, domain.MediaCleanupEvent{PropertyID: p.ID, Items: pending})
	}
	uc.logger.Info("Listing deleted", zap.String("property_id", p.ID), zap.Int64("code", p.Code))
	return report, nil
}

// RetryMediaCleanup deletes media ids left behind by earlier deletes.
func (uc *PropertyUsecase) RetryMediaCleanup(ctx context.Context, mediaIDs []string) ([]domain.MediaCleanup, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.RetryMediaCleanup", trace.WithAttributes(attribute.Int("ids", len(mediaIDs))))
	defer span.End()

	if len(mediaIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one media id is required", domain.ErrValidation)
	}

	items := make([]domain.MediaCleanup, len(mediaIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mediaDeleteConcurrency)
	for i, mediaID := range mediaIDs {
		items[i] = domain.MediaCleanup{MediaID: mediaID, Status: domain.CleanupSkipped}
		if mediaID == "" {
			continue
		}
		g.Go(func() error {
			items[i] = uc.deleteOne(gctx, "", mediaID)
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

// RemoveImage detaches one image. The media delete is best effort. A URL that
// is not attached leaves the listing unchanged, so repeated calls agree.
func (uc *PropertyUsecase) RemoveImage(ctx context.Context, id, imageURL string) (*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.RemoveImage", trace.WithAttributes(attribute.String("property_id", id)))
	defer span.End()

	if imageURL == "" {
		return nil, fmt.Errorf("%w: imageUrl is required", domain.ErrValidation)
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(p.Images, imageURL) {
		uc.logger.Debug("Image not attached, nothing to remove", zap.String("property_id", id), zap.String("url", imageURL))
		return p, nil
	}

	if mediaID, ok := domain.ExtractMediaID(imageURL); ok {
		if res := uc.deleteOne(ctx, imageURL, mediaID); res.Status == domain.CleanupFailed {
			uc.logger.Warn("Image detached but media delete failed",
				zap.String("property_id", id), zap.String("media_id", mediaID), zap.String("error", res.Error))
		}
	}

	updated, err := uc.repo.RemoveImage(ctx, id, imageURL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.metrics.PropertiesUpdated.Inc()
	uc.invalidate(ctx, id)
	uc.publish(ctx, domain.SubjectPropertyUpdated, domain.PropertyEvent{ID: updated.ID, Code: updated.Code})
	return updated, nil
}

// AddImages uploads files untagged and appends their URLs. Nothing is attached
// when any upload fails.
func (uc *PropertyUsecase) AddImages(ctx context.Context, id string, files []domain.MediaFile) (*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.AddImages", trace.WithAttributes(
		attribute.String("property_id", id),
		attribute.Int("files", len(files)),
	))
	defer span.End()

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrValidation)
	}
	if err := domain.ValidateImages(files); err != nil {
		return nil, err
	}
	if _, err := uc.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	urls, err := uc.uploadAll(ctx, files, domain.UploadOptions{MaxWidth: domain.DefaultMaxImageWidth})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	updated, err := uc.repo.AppendImages(ctx, id, urls)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.metrics.PropertiesUpdated.Inc()
	uc.invalidate(ctx, id)
	uc.publish(ctx, domain.SubjectPropertyUpdated, domain.PropertyEvent{ID: updated.ID, Code: updated.Code})
	return updated, nil
}

// uploadAll uploads files concurrently and returns their URLs in input order.
// Objects stored before a failure are left in the media store.
func (uc *PropertyUsecase) uploadAll(ctx context.Context, files []domain.MediaFile, opts domain.UploadOptions) ([]string, error) {
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			stored, err := uc.media.Upload(gctx, f, opts)
			uc.metrics.ObserveUpload(err)
			if err != nil {
				return fmt.Errorf("%w: failed to upload %s: %v", domain.ErrUpstreamMedia, f.Filename, err)
			}
			urls[i] = stored.URL
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (uc *PropertyUsecase) deleteMedia(ctx context.Context, urls []string) []domain.MediaCleanup {
	items := make([]domain.MediaCleanup, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mediaDeleteConcurrency)
	for i, u := range urls {
		mediaID, ok := domain.ExtractMediaID(u)
		if !ok {
			items[i] = domain.MediaCleanup{URL: u, Status: domain.CleanupSkipped}
			continue
		}
		g.Go(func() error {
			items[i] = uc.deleteOne(gctx, u, mediaID)
			return nil
		})
	}
	_ = g.Wait()
	return items
}

func (uc *PropertyUsecase) deleteOne(ctx context.Context, url, mediaID string) domain.MediaCleanup {
	item := domain.MediaCleanup{URL: url, MediaID: mediaID, Status: domain.CleanupDeleted}
	err := uc.media.Delete(ctx, mediaID)
	uc.metrics.ObserveMediaDelete(err)
	if err != nil {
		item.Status = domain.CleanupFailed
		item.Error = err.Error()
		uc.logger.Warn("Media delete failed", zap.String("media_id", mediaID), zap.Error(err))
	}
	return item
}

func (uc *PropertyUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteProperty(ctx, id); err != nil {
		uc.logger.Warn("Failed to evict cached listing", zap.String("property_id", id), zap.Error(err))
	}
	uc.invalidateFeatured(ctx)
}

func (uc *PropertyUsecase) invalidateFeatured(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteFeatured(ctx); err != nil {
		uc.logger.Warn("Failed to evict featured listings", zap.Error(err))
	}
}

func (uc *PropertyUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
