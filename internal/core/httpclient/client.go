// Package httpclient configures the HTTP client used to call the dogs API.
package httpclient

import (
	"net"
	"net/http"
	"time"

	mylog "github.com/rescuedogs/rescue-edge/internal/logger"
)

// UserAgent identifies the service to the upstream API.
const UserAgent = "rescue-edge/1 (+https://www.rescuedogs.me)"

// NewOutbound creates the client for upstream calls. Requests carry the
// caller's X-Request-ID so upstream logs line up with ours.
func NewOutbound() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
	return &http.Client{
		Transport: Tagging(transport),
		Timeout:   15 * time.Second,
	}
}

// Tagging wraps next so every request gets the service User-Agent and the
// request id from its context. Headers already set by the caller win.
func Tagging(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		id := mylog.RequestID(req.Context())
		setUA := req.Header.Get("User-Agent") == ""
		setID := id != "" && req.Header.Get("X-Request-ID") == ""
		if setUA || setID {
			req = req.Clone(req.Context())
			if setUA {
				req.Header.Set("User-Agent", UserAgent)
			}
			if setID {
				req.Header.Set("X-Request-ID", id)
			}
		}
		return next.RoundTrip(req)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
