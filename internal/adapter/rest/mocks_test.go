package rest

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/stretchr/testify/mock"
)

type MockPropertyCommands struct{ mock.Mock }

func (m *MockPropertyCommands) Create(ctx context.Context, in domain.CreatePropertyInput, files []domain.MediaFile) (*domain.Property, error) {
	args := m.Called(ctx, in, files)
	if p := args.Get(0); p != nil {
		return p.(*domain.Property), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPropertyCommands) Update(ctx context.Context, id string, patch domain.PropertyPatch, files []domain.MediaFile) (*domain.Property, error) {
	args := m.Called(ctx, id, patch, files)
	if p := args.Get(0); p != nil {
		return p.(*domain.Property), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPropertyCommands) Delete(ctx context.Context, id string) (*domain.CleanupReport, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.CleanupReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPropertyCommands) RetryMediaCleanup(ctx context.Context, mediaIDs []string) ([]domain.MediaCleanup, error) {
	args := m.Called(ctx, mediaIDs)
	items, _ := args.Get(0).([]domain.MediaCleanup)
	return items, args.Error(1)
}

func (m *MockPropertyCommands) RemoveImage(ctx context.Context, id, imageURL string) (*domain.Property, error) {
	args := m.Called(ctx, id, imageURL)
	if p := args.Get(0); p != nil {
		return p.(*domain.Property), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPropertyCommands) AddImages(ctx context.Context, id string, files []domain.MediaFile) (*domain.Property, error) {
	args := m.Called(ctx, id, files)
	if p := args.Get(0); p != nil {
		return p.(*domain.Property), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPropertyQueries struct{ mock.Mock }

func (m *MockPropertyQueries) Search(ctx context.Context, q domain.PropertyQuery) (*domain.PropertyPage, error) {
	args := m.Called(ctx, q)
	if p := args.Get(0); p != nil {
		return p.(*domain.PropertyPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPropertyQueries) FindAll(ctx context.Context) (*domain.PropertyPage, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.(*domain.PropertyPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPropertyQueries) Featured(ctx context.Context) ([]*domain.Property, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*domain.Property)
	return items, args.Error(1)
}

func (m *MockPropertyQueries) Locations(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]string)
	return items, args.Error(1)
}

func (m *MockPropertyQueries) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Property), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) user(args mock.Arguments) (*domain.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, identity domain.UserIdentity) (*domain.User, error) {
	return m.user(m.Called(ctx, identity))
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserService) FindOrCreate(ctx context.Context, identity domain.UserIdentity) (*domain.User, error) {
	return m.user(m.Called(ctx, identity))
}

func (m *MockUserService) AddFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error) {
	return m.user(m.Called(ctx, userID, propertyID))
}

func (m *MockUserService) RemoveFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error) {
	return m.user(m.Called(ctx, userID, propertyID))
}

func (m *MockUserService) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}
