package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// securityMetrics tracks security-related events.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// SecuritySnapshot is a point-in-time copy of securityMetrics.
type SecuritySnapshot struct {
	RateLimitHits      int64
	SuspiciousRequests int64
}

func (m *securityMetrics) snapshot() SecuritySnapshot {
	return SecuritySnapshot{
		RateLimitHits:      atomic.LoadInt64(&m.rateLimitHits),
		SuspiciousRequests: atomic.LoadInt64(&m.suspiciousRequests),
	}
}

// trustedProxies defines networks that are trusted to set forwarding headers.
var trustedProxies = []*net.IPNet{
	parsecidr("127.0.0.0/8"),
	parsecidr("10.0.0.0/8"),
	parsecidr("172.16.0.0/12"),
	parsecidr("192.168.0.0/16"),
	parsecidr("::1/128"),
}

func parsecidr(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil || !isTrustedProxy(parsedDirectIP) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if clientIP := strings.TrimSpace(first); net.ParseIP(clientIP) != nil {
			return clientIP
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	suspiciousAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
	}
)

// detectSuspiciousRequest flags probing requests. Flagged requests are only
// counted and logged, never rejected.
func detectSuspiciousRequest(r *http.Request, metrics *securityMetrics) bool {
	suspicious := false

	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			suspicious = true
			break
		}
	}

	userAgent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, agent := range suspiciousAgents {
		if strings.Contains(userAgent, agent) {
			suspicious = true
			break
		}
	}

	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", "CONNECT":
		suspicious = true
	}

	if len(r.URL.String()) > 2048 {
		suspicious = true
	}

	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		suspicious = true
	}

	if suspicious && metrics != nil {
		atomic.AddInt64(&metrics.suspiciousRequests, 1)
	}

	return suspicious
}
