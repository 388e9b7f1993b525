// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport and HTTP status failures from the model APIs into
// one-line messages a user can act on.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// StatusError is returned by the HTTP providers when an API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	// Body is the response body, truncated by the caller.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Describe explains err in terms of the named service, such as "Anthropic API".
func Describe(err error, service string) string {
	if err == nil {
		return ""
	}

	var se *StatusError
	if errors.As(err, &se) {
		return describeStatus(se, service)
	}

	switch {
	case isTimeoutError(err):
		return fmt.Sprintf("%s timed out; the request took too long to complete", service)
	case isDNSError(err):
		return fmt.Sprintf("cannot resolve the %s address; check your network and DNS settings", service)
	case isConnectionRefusedError(err):
		return fmt.Sprintf("%s refused the connection; check the base URL and that the service is running", service)
	case isSSLError(err):
		return fmt.Sprintf("secure connection to %s failed; check proxy settings and the system clock", service)
	}
	return fmt.Sprintf("cannot reach %s: %s", service, truncate(err.Error(), 160))
}

func describeStatus(se *StatusError, service string) string {
	switch {
	case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("%s rejected the credentials (status %d); run 'specforge keys set' or export the API key", service, se.StatusCode)
	case se.StatusCode == http.StatusTooManyRequests:
		return fmt.Sprintf("%s rate limit reached; try again in a few moments", service)
	case se.StatusCode == http.StatusBadRequest:
		return fmt.Sprintf("%s rejected the request: %s", service, truncate(se.Body, 160))
	case se.StatusCode >= 500:
		return fmt.Sprintf("%s is having problems (status %d); try again later", service, se.StatusCode)
	}
	return fmt.Sprintf("%s answered with status %d", service, se.StatusCode)
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "x509") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
