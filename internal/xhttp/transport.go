package xhttp

import (
	"fmt"
	"net/http"

	"github.com/yousefm/sallasync/internal/version"
)

type sallasyncTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*sallasyncTransport)(nil)

func (t *sallasyncTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "sallasync/"+version.Get())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with standard sallasync headers.
func NewTransport() http.RoundTripper {
	return &sallasyncTransport{base: http.DefaultTransport}
}
