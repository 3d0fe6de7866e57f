package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PropertyCommands interface {
	Create(ctx context.Context, in domain.CreatePropertyInput, files []domain.MediaFile) (*domain.Property, error)
	Update(ctx context.Context, id string, patch domain.PropertyPatch, files []domain.MediaFile) (*domain.Property, error)
	Delete(ctx context.Context, id string) (*domain.CleanupReport, error)
	RetryMediaCleanup(ctx context.Context, mediaIDs []string) ([]domain.MediaCleanup, error)
	RemoveImage(ctx context.Context, id, imageURL string) (*domain.Property, error)
	AddImages(ctx context.Context, id string, files []domain.MediaFile) (*domain.Property, error)
}

type PropertyQueries interface {
	Search(ctx context.Context, q domain.PropertyQuery) (*domain.PropertyPage, error)
	FindAll(ctx context.Context) (*domain.PropertyPage, error)
	Featured(ctx context.Context) ([]*domain.Property, error)
	Locations(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
}

type PropertyHandler struct {
	commands PropertyCommands
	queries  PropertyQueries
	logger   *logger.Logger
}

func NewPropertyHandler(commands PropertyCommands, queries PropertyQueries, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{commands: commands, queries: queries, logger: log.Named("PropertyHandler")}
}

type mediaCleanupRequest struct {
	MediaIDs []string `json:"mediaIds"`
}

type mediaCleanupResponse struct {
	Items []domain.MediaCleanup `json:"items"`
}

// Search handles GET /properties. Without query parameters it returns the
// first page of active listings.
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if len(values) == 0 {
		page, err := h.queries.FindAll(r.Context())
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, page)
		return
	}

	q, err := domain.ParsePropertyQuery(values)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	page, err := h.queries.Search(r.Context(), q)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *PropertyHandler) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.Featured(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *PropertyHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.queries.Locations(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, locations)
}

func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.queries.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Create accepts multipart with either a JSON "data" field or plain form
// fields, plus "images" files. A JSON body without files is also accepted.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		in    domain.CreatePropertyInput
		files []domain.MediaFile
	)
	if isMultipart(r) {
		form, err := parseMultipart(r)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if data := form.Value[dataField]; len(data) > 0 {
			err = decodeJSON(strings.NewReader(data[0]), &in)
		} else {
			in, err = createInputFromForm(form.Value)
		}
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if files, err = mediaFiles(form); err != nil {
			writeError(w, h.logger, err)
			return
		}
	} else if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.commands.Create(r.Context(), in, files)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("Listing created", zap.String("id", p.ID), zap.Int64("code", p.Code))
	respondJSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var (
		patch domain.PropertyPatch
		files []domain.MediaFile
	)
	if isMultipart(r) {
		form, err := parseMultipart(r)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if data := form.Value[dataField]; len(data) > 0 {
			err = decodeJSON(strings.NewReader(data[0]), &patch)
		} else {
			patch, err = patchFromForm(form.Value)
		}
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if files, err = mediaFiles(form); err != nil {
			writeError(w, h.logger, err)
			return
		}
	} else if err := decodeJSON(r.Body, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.commands.Update(r.Context(), chi.URLParam(r, "id"), patch, files)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Delete responds with the media cleanup report; the listing is gone even
// when some media deletes failed.
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	report, err := h.commands.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *PropertyHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		writeError(w, h.logger, fmt.Errorf("%w: multipart/form-data with %q files expected", domain.ErrValidation, imagesField))
		return
	}
	form, err := parseMultipart(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	files, err := mediaFiles(form)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	p, err := h.commands.AddImages(r.Context(), chi.URLParam(r, "id"), files)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	imageURL := strings.TrimSpace(r.URL.Query().Get("imageUrl"))
	if imageURL == "" {
		writeError(w, h.logger, fmt.Errorf("%w: imageUrl query parameter is required", domain.ErrValidation))
		return
	}
	p, err := h.commands.RemoveImage(r.Context(), chi.URLParam(r, "id"), imageURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) RetryMediaCleanup(w http.ResponseWriter, r *http.Request) {
	var req mediaCleanupRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := h.commands.RetryMediaCleanup(r.Context(), req.MediaIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, mediaCleanupResponse{Items: items})
}
