package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

var probeClient = resty.New().SetTimeout(5 * time.Second)

// ProbeURL issues a HEAD request against an externally hosted content URL
// and reports what the host says about it. Best-effort: callers treat a
// false return as "nothing learned", never as a validation failure.
func ProbeURL(url string) (contentType string, contentLength int64, ok bool) {
	resp, err := probeClient.R().Head(url)
	if err != nil || resp.StatusCode() >= 400 {
		return "", 0, false
	}
	return resp.Header().Get("Content-Type"), resp.RawResponse.ContentLength, true
}
