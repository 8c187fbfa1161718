package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/linktree/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestEnforceHost(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{"empty list passes", nil, "anything.test", http.StatusNoContent},
		{"exact", []string{"links.example.com"}, "links.example.com", http.StatusNoContent},
		{"port ignored", []string{"localhost"}, "localhost:8080", http.StatusNoContent},
		{"case insensitive", []string{"Links.Example.com"}, "links.EXAMPLE.com", http.StatusNoContent},
		{"wildcard subdomain", []string{"*.example.com"}, "a.example.com", http.StatusNoContent},
		{"wildcard not apex", []string{"*.example.com"}, "example.com", http.StatusForbidden},
		{"wildcard not lookalike", []string{"*.example.com"}, "badexample.com", http.StatusForbidden},
		{"other host", []string{"links.example.com"}, "evil.test", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := EnforceHost(tt.allowed, logger.Nop())(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/api/tree", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		trustProxy bool
		remote     string
		xff        string
		want       int
	}{
		{"empty list passes", nil, false, "203.0.113.9:1234", "", http.StatusNoContent},
		{"cidr match", []string{"10.0.0.0/8"}, false, "10.1.2.3:1234", "", http.StatusNoContent},
		{"single ip", []string{"192.168.1.10"}, false, "192.168.1.10:5555", "", http.StatusNoContent},
		{"outside", []string{"10.0.0.0/8"}, false, "203.0.113.9:1234", "", http.StatusForbidden},
		{"xff ignored without trust", []string{"10.0.0.0/8"}, false, "203.0.113.9:1234", "10.0.0.1", http.StatusForbidden},
		{"xff honoured with trust", []string{"10.0.0.0/8"}, true, "127.0.0.1:1234", "10.0.0.1, 127.0.0.1", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, tt.trustProxy, logger.Nop())(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
