package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedirectServer(t *testing.T) {
	srv := createRedirectServer([]string{"app.example.com"})

	tests := []struct {
		name     string
		host     string
		forward  string
		uri      string
		wantCode int
		wantLoc  string
	}{
		{
			name:     "redirects to https without port",
			host:     "app.example.com:80",
			uri:      "/api/meals/u1?startDate=2026-10-17",
			wantCode: http.StatusMovedPermanently,
			wantLoc:  "https://app.example.com/api/meals/u1?startDate=2026-10-17",
		},
		{
			name:     "forwarded host wins",
			host:     "10.0.0.5",
			forward:  "app.example.com",
			uri:      "/health",
			wantCode: http.StatusMovedPermanently,
			wantLoc:  "https://app.example.com/health",
		},
		{
			name:     "unknown host rejected",
			host:     "evil.com",
			uri:      "/",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.uri, nil)
			req.Host = tt.host
			if tt.forward != "" {
				req.Header.Set("X-Forwarded-Host", tt.forward)
			}
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got, tt.wantLoc)
			}
		})
	}
}
