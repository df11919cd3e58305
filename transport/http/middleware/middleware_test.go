package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lodge/config"
	"lodge/infras/jwt"
	jwtMocks "lodge/infras/jwt/mocks"
	"lodge/infras/otel/mocks"
	"lodge/permissions"
	"lodge/shared/cache"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	"lodge/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, mockJWT *jwtMocks.MockJWT) (*chi.Mux, *string) {
	t.Helper()

	perms := &permissions.PermissionData{
		Endpoints: []permissions.Permission{
			{Path: "/v1/rooms", Method: http.MethodGet, Skip: true},
			{Path: "/v1/bookings", Method: http.MethodGet, Permissions: []string{constant.RoleAdmin, constant.RoleStaff}},
			{Path: "/v1/rooms", Method: http.MethodPost, Permissions: []string{constant.RoleAdmin}},
		},
	}

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"

	auth := middleware.NewAuthRoleMiddleware(mockJWT, mocks.NewOtel(), perms, cfg)

	var seenUser string

	ok := func(writer http.ResponseWriter, request *http.Request) {
		seenUser, _ = request.Context().Value(constant.ContextKeyUserID).(string)
		writer.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Use(auth.APIKey, auth.Auth, auth.RBAC)
	router.Get("/v1/rooms", ok)
	router.Post("/v1/rooms", ok)
	router.Get("/v1/bookings", ok)

	return router, &seenUser
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		header       map[string]string
		setupMock    func(mockJWT *jwtMocks.MockJWT)
		expectedCode int
		expectedUser string
	}{
		{
			name:         "public route needs no token",
			method:       http.MethodGet,
			path:         "/v1/rooms",
			setupMock:    func(*jwtMocks.MockJWT) {},
			expectedCode: http.StatusOK,
		},
		{
			name:         "missing header",
			method:       http.MethodGet,
			path:         "/v1/bookings",
			setupMock:    func(*jwtMocks.MockJWT) {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "malformed header",
			method:       http.MethodGet,
			path:         "/v1/bookings",
			header:       map[string]string{"Authorization": "Token abc"},
			setupMock:    func(*jwtMocks.MockJWT) {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			method: http.MethodGet,
			path:   "/v1/bookings",
			header: map[string]string{"Authorization": "Bearer expired"},
			setupMock: func(mockJWT *jwtMocks.MockJWT) {
				mockJWT.EXPECT().ValidateToken(gomock.Any(), "expired", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:   "claims without user are rejected",
			method: http.MethodGet,
			path:   "/v1/bookings",
			header: map[string]string{"Authorization": "Bearer hollow"},
			setupMock: func(mockJWT *jwtMocks.MockJWT) {
				mockJWT.EXPECT().ValidateToken(gomock.Any(), "hollow", jwt.AccessToken).Return(&jwt.Claims{Role: constant.RoleAdmin}, nil)
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:   "staff may list bookings",
			method: http.MethodGet,
			path:   "/v1/bookings",
			header: map[string]string{"Authorization": "Bearer staff"},
			setupMock: func(mockJWT *jwtMocks.MockJWT) {
				mockJWT.EXPECT().ValidateToken(gomock.Any(), "staff", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "u-1", Email: "desk@lodge.test", Role: constant.RoleStaff}, nil)
			},
			expectedCode: http.StatusOK,
			expectedUser: "u-1",
		},
		{
			name:   "staff may not create rooms",
			method: http.MethodPost,
			path:   "/v1/rooms",
			header: map[string]string{"Authorization": "Bearer staff"},
			setupMock: func(mockJWT *jwtMocks.MockJWT) {
				mockJWT.EXPECT().ValidateToken(gomock.Any(), "staff", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "u-1", Email: "desk@lodge.test", Role: constant.RoleStaff}, nil)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "internal api key bypasses auth",
			method:       http.MethodPost,
			path:         "/v1/rooms",
			header:       map[string]string{"X-API-Key": "internal-key"},
			setupMock:    func(*jwtMocks.MockJWT) {},
			expectedCode: http.StatusOK,
		},
		{
			name:         "wrong api key",
			method:       http.MethodPost,
			path:         "/v1/rooms",
			header:       map[string]string{"X-API-Key": "guess"},
			setupMock:    func(*jwtMocks.MockJWT) {},
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockJWT := jwtMocks.NewMockJWT(ctrl)
			tt.setupMock(mockJWT)

			router, seenUser := newRouter(t, mockJWT)

			request := httptest.NewRequest(tt.method, tt.path, nil)
			for key, value := range tt.header {
				request.Header.Set(key, value)
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.expectedCode, recorder.Code)
			assert.Equal(t, tt.expectedUser, *seenUser)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, mockCache)

	handler := app.RateLimit()(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	const key = "limiter:203.0.113.7:probe"

	gomock.InOrder(
		mockCache.EXPECT().Get(gomock.Any(), key, gomock.Any()).Return(cache.Nil),
		mockCache.EXPECT().Save(gomock.Any(), key, 1, 60).Return(nil),
		mockCache.EXPECT().Get(gomock.Any(), key, gomock.Any()).SetArg(2, 2).Return(nil),
		mockCache.EXPECT().Save(gomock.Any(), key, 3, 60).Return(nil),
	)

	codes := make([]int, 0, 2)

	for range 2 {
		request := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
		request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		request.Header.Set("User-Agent", "probe")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
