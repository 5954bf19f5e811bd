package sniffer

import (
	"net/url"
	"strings"

	"github.com/nao1215/sdksniff/internal/decoder"
)

// Event is one intercepted HTTP request as captured at the proxy. The
// JSON form is the capture dump format consumed by the replayer; bodies
// are base64-encoded by the standard library's []byte handling.
type Event struct {
	// Method is the HTTP method.
	Method string `json:"method"`

	// URL is the full request URL.
	URL string `json:"url"`

	// ContentType is the Content-Type header value.
	ContentType string `json:"content_type"` //nolint:tagliatelle // capture dump schema is fixed

	// ContentEncoding is the Content-Encoding header value.
	ContentEncoding string `json:"content_encoding,omitempty"` //nolint:tagliatelle // capture dump schema is fixed

	// Body is the raw request body.
	Body []byte `json:"body,omitempty"`
}

// Domain returns the lowercased destination host without its port, or
// an empty string when the URL cannot be parsed.
func (e Event) Domain() string {
	u, err := url.Parse(e.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// request converts the event into a decoder request, parsing the query
// string from the URL. An unparseable URL yields an empty query; the
// body is still decoded.
func (e Event) request() decoder.Request {
	req := decoder.Request{
		Method:          e.Method,
		URL:             e.URL,
		ContentType:     e.ContentType,
		ContentEncoding: e.ContentEncoding,
		Body:            e.Body,
	}
	if u, err := url.Parse(e.URL); err == nil {
		req.Query = u.Query()
	}
	return req
}
