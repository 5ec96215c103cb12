package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name       string
		storage    HealthChecker
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no storage check",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"healthy","storage":"in-memory"}`,
		},
		{
			name:       "storage reachable",
			storage:    pingFunc(func(context.Context) error { return nil }),
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"healthy","storage":"connected"}`,
		},
		{
			name:       "storage unreachable",
			storage:    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unhealthy","error":"storage unreachable"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := New("127.0.0.1:0", tc.storage, "release")

			resp := httptest.NewRecorder()
			srv.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tc.wantStatus, resp.Code)
			require.JSONEq(t, tc.wantBody, resp.Body.String())
		})
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := New("127.0.0.1:0", nil, "release")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
