package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"direct peer", "203.0.113.9:4000", nil, "203.0.113.9"},
		{"untrusted peer cannot forward", "203.0.113.9:4000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.9"},
		{"trusted proxy forwards first hop", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.3"}, "198.51.100.7"},
		{"garbage forward falls back to real ip", "127.0.0.1:80", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"garbage everywhere keeps peer", "192.168.1.1:80", map[string]string{"X-Real-IP": "nope"}, "192.168.1.1"},
		{"ipv6 loopback proxy", "[::1]:80", map[string]string{"X-Forwarded-For": "2001:db8::1"}, "2001:db8::1"},
		{"no port", "198.51.100.1", nil, "198.51.100.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Errorf("extractClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuspicionReason(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   string
	}{
		{"clean api call", http.MethodGet, "/api/transactions?category=Groceries", "curl/8.0", ""},
		{"trace method", "TRACE", "/", "", "method"},
		{"dotenv lookup", http.MethodGet, "/.env", "", "path_pattern"},
		{"query injection", http.MethodGet, "/api/transactions?q=1%20UNION%20SELECT", "", "path_pattern"},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", "user_agent"},
		{"oversized url", http.MethodGet, "/api/transactions?q=" + strings.Repeat("a", 2100), "", "url_length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.agent != "" {
				r.Header.Set("User-Agent", tt.agent)
			}
			if got := suspicionReason(r); got != tt.want {
				t.Errorf("suspicionReason = %q, want %q", got, tt.want)
			}
		})
	}
}
