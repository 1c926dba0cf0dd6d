package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"lodge/config"
	"lodge/infras/otel/mocks"
	"lodge/permissions"
	"lodge/shared/constant"
	"lodge/transport/http/middleware"
)

func TestRBAC(t *testing.T) {
	perms := &permissions.PermissionData{
		Endpoints: []permissions.Permission{
			{Path: "/v1/reservations", Method: http.MethodPost, Permissions: []string{constant.RoleGuest}},
			{Path: "/v1/auth/register", Method: http.MethodPost, Skip: true},
		},
	}

	m := middleware.NewAuthRoleMiddleware(nil, mocks.NewOtel(), perms, &config.Config{})

	mux := chi.NewRouter()
	mux.Use(m.RBAC)

	handler := func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}
	mux.Post("/v1/reservations", handler)
	mux.Post("/v1/auth/register", handler)
	mux.Get("/v1/unlisted", handler)

	tests := []struct {
		name     string
		method   string
		path     string
		role     string
		wantCode int
	}{
		{
			name:     "listed route with allowed role",
			method:   http.MethodPost,
			path:     "/v1/reservations",
			role:     constant.RoleGuest,
			wantCode: http.StatusOK,
		},
		{
			name:     "listed route with disallowed role",
			method:   http.MethodPost,
			path:     "/v1/reservations",
			role:     constant.RoleStaff,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "skip entry bypasses the role check",
			method:   http.MethodPost,
			path:     "/v1/auth/register",
			role:     constant.Empty,
			wantCode: http.StatusOK,
		},
		{
			name:     "unlisted route is denied for any role",
			method:   http.MethodGet,
			path:     "/v1/unlisted",
			role:     constant.RoleStaff,
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, nil)

			ctx := context.WithValue(request.Context(), constant.ContextKeyUserRole, tt.role)
			request = request.WithContext(ctx)

			recorder := httptest.NewRecorder()
			mux.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}
