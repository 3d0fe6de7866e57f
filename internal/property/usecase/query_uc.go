package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	tracerName  = "property-service/usecase"
	featuredTTL = 5 * time.Minute
)

// QueryUsecase serves the read side of the catalogue.
type QueryUsecase struct {
	repo   domain.PropertyRepository
	cache  domain.PropertyCache
	logger *logger.Logger
	tracer trace.Tracer
}

// NewQueryUsecase wires the read side. cache may be nil.
func NewQueryUsecase(repo domain.PropertyRepository, cache domain.PropertyCache, log *logger.Logger) *QueryUsecase {
	return &QueryUsecase{
		repo:   repo,
		cache:  cache,
		logger: log.Named("QueryUsecase"),
		tracer: otel.Tracer(tracerName),
	}
}

// Search returns one page of active listings. The page fetch and the total
// count share the filter and run concurrently.
func (uc *QueryUsecase) Search(ctx context.Context, q domain.PropertyQuery) (*domain.PropertyPage, error) {
	ctx, span := uc.tracer.Start(ctx, "QueryUsecase.Search", trace.WithAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("limit", q.Limit),
		attribute.String("sort", string(q.Sort)),
	))
	defer span.End()

	if q.Page < 1 || q.Page > domain.MaxPage || q.Limit < 0 || q.Limit > domain.MaxLimit {
		return nil, fmt.Errorf("%w: page must be between 1 and %d and limit between 0 and %d", domain.ErrValidation, domain.MaxPage, domain.MaxLimit)
	}
	q.Filter.ActiveOnly = true

	var (
		total int64
		items []*domain.Property
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.repo.Count(gctx, q.Filter)
		if err != nil {
			return fmt.Errorf("count listings: %w", err)
		}
		total = n
		return nil
	})
	if q.Limit > 0 {
		g.Go(func() error {
			found, err := uc.repo.Find(gctx, q.Filter, q.Sort, q.Skip(), int64(q.Limit))
			if err != nil {
				return fmt.Errorf("find listings: %w", err)
			}
			items = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("Search failed", zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	if items == nil {
		items = []*domain.Property{}
	}
	return &domain.PropertyPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: domain.TotalPages(total, q.Limit),
	}, nil
}

// FindAll is the unparameterised listing, equivalent to the first default page.
func (uc *QueryUsecase) FindAll(ctx context.Context) (*domain.PropertyPage, error) {
	return uc.Search(ctx, domain.DefaultPropertyQuery())
}

// Featured returns the newest active listings, read through the cache.
func (uc *QueryUsecase) Featured(ctx context.Context) ([]*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "QueryUsecase.Featured")
	defer span.End()

	if uc.cache != nil {
		cached, err := uc.cache.GetFeatured(ctx)
		if err != nil {
			uc.logger.Warn("Featured cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	items, err := uc.repo.Find(ctx, domain.PropertyFilter{ActiveOnly: true}, domain.SortNewest, 0, domain.FeaturedLimit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find featured listings: %w", err)
	}
	if items == nil {
		items = []*domain.Property{}
	}

	if uc.cache != nil {
		if err := uc.cache.SetFeatured(ctx, items, featuredTTL); err != nil {
			uc.logger.Warn("Featured cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// Locations lists the distinct locations of active listings in ascending order.
func (uc *QueryUsecase) Locations(ctx context.Context) ([]string, error) {
	ctx, span := uc.tracer.Start(ctx, "QueryUsecase.Locations")
	defer span.End()

	locations, err := uc.repo.DistinctLocations(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if locations == nil {
		locations = []string{}
	}
	return locations, nil
}

func (uc *QueryUsecase) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "QueryUsecase.GetByID", trace.WithAttributes(attribute.String("property_id", id)))
	defer span.End()

	if uc.cache != nil {
		cached, err := uc.cache.GetProperty(ctx, id)
		if err != nil {
			uc.logger.Warn("Property cache read failed", zap.String("property_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetProperty(ctx, p); err != nil {
			uc.logger.Warn("Property cache write failed", zap.String("property_id", id), zap.Error(err))
		}
	}
	return p, nil
}
