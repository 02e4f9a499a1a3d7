package utils

import (
	"net/http"
	"strings"
)

// proxy headers carrying the address of the original client, by order of preference
var clientIPHeaders = []string{"X-Real-Ip", "Real-Ip", "X-Forwarded-For", "X-Forwarded", "Forwarded-For", "Forwarded"}

// RequestIsTLS returns whether a request was made over a HTTPS channel
// Looks at the appropriate headers if the server is behind a proxy
func RequestIsTLS(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return r.TLS != nil
}

// RequestBaseURL returns the scheme and host the request was made to, as seen by the client
func RequestBaseURL(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if RequestIsTLS(r) {
		return "https://" + host
	}
	return "http://" + host
}

// GetClientIP retrieves the client IP address from the request information.
// It detects common proxy headers to return the actual client's IP and not the proxy's.
func GetClientIP(r *http.Request) string {
	ip := r.RemoteAddr
	for _, header := range clientIPHeaders {
		if ips := r.Header.Get(header); ips != "" {
			ip = strings.TrimSpace(strings.Split(ips, ",")[0])
			break
		}
	}
	return strings.Split(ip, ":")[0]
}
