package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func protectedEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuth_Disabled(t *testing.T) {
	auth := NewAdminAuth("", false)

	req := httptest.NewRequest("GET", "/requests", nil)
	w := httptest.NewRecorder()

	auth.Protect(protectedEndpoint()).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status OK with auth disabled, got %v", w.Code)
	}
}

func TestAdminAuth_NoKeyConfigured(t *testing.T) {
	auth := NewAdminAuth("", true)

	req := httptest.NewRequest("GET", "/requests", nil)
	req.Header.Set("X-Admin-Key", "anything")
	w := httptest.NewRecorder()

	auth.Protect(protectedEndpoint()).ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status ServiceUnavailable, got %v", w.Code)
	}
}

func TestAdminAuth_KeyChecks(t *testing.T) {
	auth := NewAdminAuth("secret-key", true)

	tests := []struct {
		name       string
		setHeader  func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "Missing key",
			setHeader:  func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong key",
			setHeader: func(r *http.Request) {
				r.Header.Set("X-Admin-Key", "wrong")
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "Valid X-Admin-Key header",
			setHeader: func(r *http.Request) {
				r.Header.Set("X-Admin-Key", "secret-key")
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Valid Bearer token",
			setHeader: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer secret-key")
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Wrong Bearer token",
			setHeader: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer wrong")
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/requests", nil)
			tt.setHeader(req)
			w := httptest.NewRecorder()

			auth.Protect(protectedEndpoint()).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %v, got %v", tt.wantStatus, w.Code)
			}
		})
	}
}
