package http

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
)

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

// Scanners only. Plain API clients such as curl are expected here.
var suspiciousAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab",
}

// Peers in these ranges may set X-Forwarded-For and X-Real-IP.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the forwarded client when
// the peer is a trusted proxy. Forwarded values that do not parse as an IP
// are ignored.
func extractClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !isTrustedProxy(addr) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if client, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return client.String()
		}
	}
	if client, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return client.String()
	}
	return peer
}

// suspicionReason names the first rule a request trips, or "" for a clean
// request. Flagged requests are logged and counted, not blocked.
func suspicionReason(r *http.Request) string {
	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", http.MethodConnect:
		return "method"
	}
	if len(r.URL.String()) > 2048 {
		return "url_length"
	}
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	if containsAny(strings.ToLower(r.URL.Path), suspiciousPatterns) ||
		containsAny(strings.ToLower(query), suspiciousPatterns) {
		return "path_pattern"
	}
	if containsAny(strings.ToLower(r.Header.Get("User-Agent")), suspiciousAgents) {
		return "user_agent"
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return "forwarding_chain"
	}
	return ""
}

func detectSuspiciousRequest(r *http.Request) (string, bool) {
	reason := suspicionReason(r)
	if reason == "" {
		return "", false
	}
	securityEvents.WithLabelValues("suspicious").Inc()
	return reason, true
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
