package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/rest/middleware"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	propertyID = "665f1c2b9d3e4a0012345678"
	userID     = "665f1c2b9d3e4a0087654321"
	jwtSecret  = "test-secret"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type testAPI struct {
	handler  http.Handler
	commands *MockPropertyCommands
	queries  *MockPropertyQueries
	users    *MockUserService
}

func newTestAPI(t *testing.T, secret string) *testAPI {
	t.Helper()
	log := logger.NewNop()
	api := &testAPI{
		commands: new(MockPropertyCommands),
		queries:  new(MockPropertyQueries),
		users:    new(MockUserService),
	}
	api.handler = NewRouter(RouterDeps{
		HTTP:       config.HTTPConfig{MaxUploadMB: 1, CORSAllowedOrigins: "http://localhost:3000"},
		JWTSecret:  secret,
		Properties: NewPropertyHandler(api.commands, api.queries, log),
		Users:      NewUserHandler(api.users, log),
		Metrics:    metrics.NewMetricsManager("test"),
		Logger:     log,
	})
	t.Cleanup(func() {
		api.commands.AssertExpectations(t)
		api.queries.AssertExpectations(t)
		api.users.AssertExpectations(t)
	})
	return api
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, method, target string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, string(p.data)))
			continue
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestSearch_ParsesQuery(t *testing.T) {
	api := newTestAPI(t, "")
	page := &domain.PropertyPage{Items: []*domain.Property{{ID: propertyID}}, Total: 11, Page: 2, Limit: 10, TotalPages: 2}
	api.queries.On("Search", mock.Anything, mock.MatchedBy(func(q domain.PropertyQuery) bool {
		return q.Page == 2 && q.Filter.Rooms != nil && *q.Filter.Rooms == 2 &&
			q.Filter.Location == "PALERMO" && q.Sort == domain.SortPriceLocalAsc
	})).Return(page, nil)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties?rooms=2&page=2&location=palermo&sortBy=priceLocal_asc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.PropertyPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(11), got.Total)
	assert.Equal(t, 2, got.TotalPages)
}

func TestSearch_NoParamsUsesFindAll(t *testing.T) {
	api := newTestAPI(t, "")
	api.queries.On("FindAll", mock.Anything).Return(&domain.PropertyPage{Items: []*domain.Property{}, Page: 1, Limit: 10}, nil)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearch_RejectsMalformedQueryBeforeReading(t *testing.T) {
	api := newTestAPI(t, "")
	for _, q := range []string{"bogus=1", "rooms=-1", "acceptsPets=yes", "operationType=lease", "minPriceLocal=abc"} {
		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	api.queries.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGetByID_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("%w: property %s", domain.ErrNotFound, propertyID), http.StatusNotFound, "not found"},
		{fmt.Errorf("%w: invalid id", domain.ErrValidation), http.StatusBadRequest, "invalid id"},
		{errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		api := newTestAPI(t, "")
		api.queries.On("GetByID", mock.Anything, propertyID).Return(nil, tc.err).Once()

		rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID, nil))
		assert.Equal(t, tc.status, rec.Code)
		assert.Contains(t, errorBody(t, rec), tc.msg)
		assert.NotContains(t, rec.Body.String(), "mongo")
	}
}

func TestFeaturedAndLocations(t *testing.T) {
	api := newTestAPI(t, "")
	api.queries.On("Featured", mock.Anything).Return([]*domain.Property{{ID: "a"}}, nil)
	api.queries.On("Locations", mock.Anything).Return([]string{"BELGRANO", "PALERMO"}, nil)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties/featured", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties/locations", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["BELGRANO","PALERMO"]`, rec.Body.String())
}

func TestCreate_MultipartWithJSONData(t *testing.T) {
	api := newTestAPI(t, "")
	api.commands.On("Create", mock.Anything,
		mock.MatchedBy(func(in domain.CreatePropertyInput) bool {
			return in.Title == "Loft" && in.PriceLocal != nil && *in.PriceLocal == 100
		}),
		mock.MatchedBy(func(files []domain.MediaFile) bool {
			return len(files) == 2 && files[0].Filename == "a.jpg" && files[1].ContentType == "image/png"
		}),
	).Return(&domain.Property{ID: propertyID, Code: 1}, nil)

	req := multipartRequest(t, http.MethodPost, "/api/v1/properties",
		part{field: "data", data: []byte(`{"title":"Loft","priceLocal":100}`)},
		part{field: "images", filename: "a.jpg", contentType: "image/jpeg", data: []byte{0xff, 0xd8, 0xff}},
		part{field: "images", filename: "b.png", contentType: "image/png", data: pngHeader},
	)
	rec := api.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":1`)
}

func TestCreate_MultipartFormFields(t *testing.T) {
	api := newTestAPI(t, "")
	api.commands.On("Create", mock.Anything,
		mock.MatchedBy(func(in domain.CreatePropertyInput) bool {
			return in.Location == "palermo" && in.Rooms != nil && *in.Rooms == 3 &&
				in.AcceptsPets != nil && *in.AcceptsPets && in.OperationType == domain.OperationSale
		}),
		mock.MatchedBy(func(files []domain.MediaFile) bool {
			return len(files) == 1 && files[0].ContentType == "image/png"
		}),
	).Return(&domain.Property{ID: propertyID, Code: 2}, nil)

	req := multipartRequest(t, http.MethodPost, "/api/v1/properties",
		part{field: "location", data: []byte("palermo")},
		part{field: "rooms", data: []byte("3")},
		part{field: "acceptsPets", data: []byte("true")},
		part{field: "operationType", data: []byte("sale")},
		part{field: "images", filename: "x", contentType: "application/octet-stream", data: pngHeader},
	)
	assert.Equal(t, http.StatusCreated, api.do(req).Code)
}

func TestCreate_BadFormValue(t *testing.T) {
	api := newTestAPI(t, "")
	req := multipartRequest(t, http.MethodPost, "/api/v1/properties", part{field: "rooms", data: []byte("three")})
	rec := api.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "rooms")
}

func TestCreate_UploadFailureIsBadRequest(t *testing.T) {
	api := newTestAPI(t, "")
	api.commands.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: failed to upload a.jpg: timeout", domain.ErrUpstreamMedia))

	rec := api.do(httptest.NewRequest(http.MethodPost, "/api/v1/properties", strings.NewReader(`{"title":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "a.jpg")
}

func TestCreate_BodyTooLarge(t *testing.T) {
	api := newTestAPI(t, "")
	req := multipartRequest(t, http.MethodPost, "/api/v1/properties",
		part{field: "images", filename: "big.jpg", contentType: "image/jpeg", data: bytes.Repeat([]byte{1}, 2<<20)},
	)
	assert.Equal(t, http.StatusRequestEntityTooLarge, api.do(req).Code)
}

func TestUpdate_JSONPatch(t *testing.T) {
	api := newTestAPI(t, "")
	api.commands.On("Update", mock.Anything, propertyID,
		mock.MatchedBy(func(p domain.PropertyPatch) bool {
			return p.Title != nil && *p.Title == "New" && len(p.Images) == 1 && p.PriceLocal == nil
		}),
		[]domain.MediaFile(nil),
	).Return(&domain.Property{ID: propertyID}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/properties/"+propertyID, strings.NewReader(`{"title":"New","images":["u/1.jpg"]}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusOK, api.do(req).Code)
}

func TestUpdate_MultipartClearImages(t *testing.T) {
	api := newTestAPI(t, "")
	api.commands.On("Update", mock.Anything, propertyID,
		mock.MatchedBy(func(p domain.PropertyPatch) bool { return p.ClearImages && p.Title == nil }),
		mock.MatchedBy(func(files []domain.MediaFile) bool { return len(files) == 1 }),
	).Return(&domain.Property{ID: propertyID}, nil)

	req := multipartRequest(t, http.MethodPatch, "/api/v1/properties/"+propertyID,
		part{field: "clearImages", data: []byte("true")},
		part{field: "images", filename: "a.png", contentType: "image/png", data: pngHeader},
	)
	assert.Equal(t, http.StatusOK, api.do(req).Code)
}

func TestDelete_ReturnsCleanupReport(t *testing.T) {
	api := newTestAPI(t, "")
	report := &domain.CleanupReport{PropertyID: propertyID, Items: []domain.MediaCleanup{
		{URL: "u/a.jpg", MediaID: "a", Status: domain.CleanupDeleted},
		{URL: "u/b.jpg", MediaID: "b", Status: domain.CleanupFailed, Error: "timeout"},
	}}
	api.commands.On("Delete", mock.Anything, propertyID).Return(report, nil)

	rec := api.do(httptest.NewRequest(http.MethodDelete, "/api/v1/properties/"+propertyID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.CleanupReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Pending(), 1)
}

func TestImages(t *testing.T) {
	api := newTestAPI(t, "")
	api.commands.On("RemoveImage", mock.Anything, propertyID, "https://cdn/x/a.jpg").Return(&domain.Property{ID: propertyID}, nil)
	api.commands.On("AddImages", mock.Anything, propertyID, mock.MatchedBy(func(f []domain.MediaFile) bool { return len(f) == 1 })).
		Return(&domain.Property{ID: propertyID}, nil)

	rec := api.do(httptest.NewRequest(http.MethodDelete, "/api/v1/properties/"+propertyID+"/images?imageUrl=https%3A%2F%2Fcdn%2Fx%2Fa.jpg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodDelete, "/api/v1/properties/"+propertyID+"/images", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := multipartRequest(t, http.MethodPost, "/api/v1/properties/"+propertyID+"/images",
		part{field: "images", filename: "a.png", contentType: "image/png", data: pngHeader})
	assert.Equal(t, http.StatusOK, api.do(req).Code)

	rec = api.do(httptest.NewRequest(http.MethodPost, "/api/v1/properties/"+propertyID+"/images", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetryMediaCleanup(t *testing.T) {
	api := newTestAPI(t, "")
	api.commands.On("RetryMediaCleanup", mock.Anything, []string{"a", "b"}).
		Return([]domain.MediaCleanup{{MediaID: "a", Status: domain.CleanupDeleted}, {MediaID: "b", Status: domain.CleanupDeleted}}, nil)

	rec := api.do(httptest.NewRequest(http.MethodPost, "/api/v1/properties/media-cleanup", strings.NewReader(`{"mediaIds":["a","b"]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items"`)
}

func TestUsers(t *testing.T) {
	api := newTestAPI(t, "")
	identity := domain.UserIdentity{Email: "a@b.c", Name: "Ana", ExternalAuthID: "google|1"}
	api.users.On("FindOrCreate", mock.Anything, identity).Return(&domain.User{ID: userID}, nil)
	api.users.On("Create", mock.Anything, identity).Return(nil, fmt.Errorf("%w: email", domain.ErrConflict))
	api.users.On("GetFavorites", mock.Anything, userID).Return([]string{propertyID}, nil)
	api.users.On("AddFavorite", mock.Anything, userID, propertyID).Return(&domain.User{ID: userID, FavoriteProperties: []string{propertyID}}, nil)
	api.users.On("RemoveFavorite", mock.Anything, userID, propertyID).Return(&domain.User{ID: userID, FavoriteProperties: []string{}}, nil)

	body := `{"email":"a@b.c","name":"Ana","externalAuthId":"google|1"}`
	assert.Equal(t, http.StatusOK, api.do(httptest.NewRequest(http.MethodPost, "/api/v1/users/find-or-create", strings.NewReader(body))).Code)
	assert.Equal(t, http.StatusConflict, api.do(httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))).Code)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID+"/favorites", nil))
	assert.JSONEq(t, `["`+propertyID+`"]`, rec.Body.String())

	favURL := "/api/v1/users/" + userID + "/favorites/" + propertyID
	assert.Equal(t, http.StatusOK, api.do(httptest.NewRequest(http.MethodPost, favURL, nil)).Code)
	assert.Equal(t, http.StatusOK, api.do(httptest.NewRequest(http.MethodDelete, favURL, nil)).Code)
}

func TestAuth_WriteRoutesNeedAdmin(t *testing.T) {
	api := newTestAPI(t, jwtSecret)
	api.queries.On("GetByID", mock.Anything, propertyID).Return(&domain.Property{ID: propertyID}, nil)
	api.commands.On("Delete", mock.Anything, propertyID).Return(&domain.CleanupReport{PropertyID: propertyID}, nil)

	assert.Equal(t, http.StatusOK, api.do(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID, nil)).Code)

	target := "/api/v1/properties/" + propertyID
	assert.Equal(t, http.StatusUnauthorized, api.do(httptest.NewRequest(http.MethodDelete, target, nil)).Code)

	req := httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", bearer(t, userID, "user"))
	assert.Equal(t, http.StatusForbidden, api.do(req).Code)

	req = httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", bearer(t, userID, middleware.RoleAdmin))
	assert.Equal(t, http.StatusOK, api.do(req).Code)
}

func TestAuth_FavoritesNeedOwner(t *testing.T) {
	api := newTestAPI(t, jwtSecret)
	api.users.On("AddFavorite", mock.Anything, userID, propertyID).Return(&domain.User{ID: userID}, nil).Once()

	favURL := "/api/v1/users/" + userID + "/favorites/" + propertyID
	req := httptest.NewRequest(http.MethodPost, favURL, nil)
	req.Header.Set("Authorization", bearer(t, "someone-else", "user"))
	assert.Equal(t, http.StatusForbidden, api.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, favURL, nil)
	req.Header.Set("Authorization", bearer(t, userID, "user"))
	assert.Equal(t, http.StatusOK, api.do(req).Code)
}

func TestOpsEndpoints(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/properties", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := api.do(req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
