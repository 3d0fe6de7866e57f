package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserUsecase struct {
	repo    domain.UserRepository
	metrics *metrics.MetricsManager
	logger  *logger.Logger
	tracer  trace.Tracer
}

func NewUserUsecase(repo domain.UserRepository, m *metrics.MetricsManager, log *logger.Logger) *UserUsecase {
	return &UserUsecase{
		repo:    repo,
		metrics: m,
		logger:  log.Named("UserUsecase"),
		tracer:  otel.Tracer(tracerName),
	}
}

func (uc *UserUsecase) Create(ctx context.Context, identity domain.UserIdentity) (*domain.User, error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.Create")
	defer span.End()

	if err := identity.Validate(); err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:              identity.Email,
		Name:               identity.Name,
		Picture:            identity.Picture,
		ExternalAuthID:     identity.ExternalAuthID,
		FavoriteProperties: []string{},
		IsActive:           true,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		uc.logger.Warn("Failed to create user", zap.String("external_auth_id", identity.ExternalAuthID), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("User created", zap.String("user_id", user.ID))
	return user, nil
}

func (uc *UserUsecase) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.GetByID")
	defer span.End()
	return uc.repo.FindByID(ctx, id)
}

// FindOrCreate resolves the active user for a federated identity, refreshing
// name, email and picture when the user already exists.
func (uc *UserUsecase) FindOrCreate(ctx context.Context, identity domain.UserIdentity) (*domain.User, error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.FindOrCreate")
	defer span.End()

	if err := identity.Validate(); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByExternalAuthID(ctx, identity.ExternalAuthID)
	switch {
	case err == nil:
		if profileUnchanged(existing, identity) {
			return existing, nil
		}
		return uc.repo.UpdateProfile(ctx, existing.ID, identity)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup user by external auth id: %w", err)
	}

	user, err := uc.Create(ctx, identity)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent sign-in for the same identity.
		return uc.repo.FindByExternalAuthID(ctx, identity.ExternalAuthID)
	}
	return user, err
}

// AddFavorite bookmarks a listing. Adding an existing favorite is a no-op.
func (uc *UserUsecase) AddFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.AddFavorite")
	defer span.End()

	user, err := uc.repo.AddFavorite(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	uc.metrics.FavoriteChangesTotal.WithLabelValues("add").Inc()
	return user, nil
}

// RemoveFavorite drops a bookmark. Removing an absent favorite is a no-op.
func (uc *UserUsecase) RemoveFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error) {
	ctx, span := uc.tracer.Start(ctx, "UserUsecase.RemoveFavorite")
	defer span.End()

	user, err := uc.repo.RemoveFavorite(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	uc.metrics.FavoriteChangesTotal.WithLabelValues("remove").Inc()
	return user, nil
}

func (uc *UserUsecase) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	user, err := uc.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.FavoriteProperties == nil {
		return []string{}, nil
	}
	return user.FavoriteProperties, nil
}

func profileUnchanged(u *domain.User, identity domain.UserIdentity) bool {
	return u.Name == identity.Name &&
		u.Email == identity.Email &&
		(identity.Picture == "" || u.Picture == identity.Picture)
}
