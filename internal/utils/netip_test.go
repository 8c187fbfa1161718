package utils

import (
	"net/http/httptest"
	"testing"
)

func TestHostOnly(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"10.0.0.1":        "10.0.0.1",
		"10.0.0.1:8080":   "10.0.0.1",
		"[::1]:8080":      "::1",
		"localhost:5173":  "localhost",
		" links.example ": "links.example",
		"*.example.com":   "*.example.com",
	}
	for in, want := range tests {
		if got := HostOnly(in); got != want {
			t.Errorf("HostOnly(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	if got := ClientIP(req, false); got != "127.0.0.1" {
		t.Errorf("untrusted = %q, want 127.0.0.1", got)
	}
	if got := ClientIP(req, true); got != "198.51.100.7" {
		t.Errorf("trusted = %q, want 198.51.100.7", got)
	}

	req.Header.Set("CF-Connecting-IP", "203.0.113.5")
	if got := ClientIP(req, true); got != "203.0.113.5" {
		t.Errorf("cloudflare header = %q, want 203.0.113.5", got)
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.10 ", "not-an-ip", "", "fd00::/8"})
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}

	tests := map[string]bool{
		"10.20.30.40":     true,
		"192.168.1.10":    true,
		"192.168.1.11":    false,
		"::ffff:10.0.0.1": true,
		"fd12::1":         true,
		"2001:db8::1":     false,
		"garbage":         false,
	}
	for ip, want := range tests {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("nil rules should give an empty matcher")
	}
}
