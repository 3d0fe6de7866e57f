package rest

import (
	"context"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/go-chi/chi/v5"
)

type UserService interface {
	Create(ctx context.Context, identity domain.UserIdentity) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindOrCreate(ctx context.Context, identity domain.UserIdentity) (*domain.User, error)
	AddFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error)
	RemoveFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error)
	GetFavorites(ctx context.Context, userID string) ([]string, error)
}

type UserHandler struct {
	users  UserService
	logger *logger.Logger
}

func NewUserHandler(users UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, logger: log.Named("UserHandler")}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var identity domain.UserIdentity
	if err := decodeJSON(r.Body, &identity); err != nil {
		writeError(w, h.logger, err)
		return
	}
	u, err := h.users.Create(r.Context(), identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) FindOrCreate(w http.ResponseWriter, r *http.Request) {
	var identity domain.UserIdentity
	if err := decodeJSON(r.Body, &identity); err != nil {
		writeError(w, h.logger, err)
		return
	}
	u, err := h.users.FindOrCreate(r.Context(), identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *UserHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.users.GetFavorites(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ids)
}

func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.AddFavorite(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "propertyId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.RemoveFavorite(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "propertyId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
