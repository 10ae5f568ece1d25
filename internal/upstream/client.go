package upstream

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxIdleConns = 100
)

// Options configures the outbound client.
type Options struct {
	// Timeout bounds a whole exchange: connect, headers and body.
	Timeout      time.Duration
	MaxIdleConns int
}

// Request is a fully buffered outbound request.
type Request struct {
	Method string
	URL    string
	// Host overrides the Host header sent to the backend when not empty.
	Host   string
	Header http.Header
	Body   []byte
}

// Response is a fully buffered backend response.
type Response struct {
	StatusCode  int
	ContentType string
	// ContentEncoding is set only when Body is still encoded. gzip bodies
	// are decoded by Do and leave it empty.
	ContentEncoding string
	Body            []byte
}

// Client sends requests to backends.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a Client with connection pooling and the configured timeout.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = DefaultMaxIdleConns
	}

	transport := &http.Transport{
		Proxy:               nil,
		MaxIdleConns:        opts.MaxIdleConns,
		MaxIdleConnsPerHost: opts.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// Responses are relayed verbatim, so never ask for or decode gzip.
		DisableCompression: true,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		timeout: opts.Timeout,
	}
}

// Timeout returns the deadline applied to each exchange.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do sends req and reads the whole response body before returning.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, errors.Wrap(err, "build upstream request")
	}

	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if req.Host != "" {
		httpReq.Host = req.Host
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "upstream request")
	}
	defer resp.Body.Close()

	body, encoding, err := readBody(resp)
	if err != nil {
		return nil, errors.Wrap(err, "read upstream response")
	}

	return &Response{
		StatusCode:      resp.StatusCode,
		ContentType:     resp.Header.Get("Content-Type"),
		ContentEncoding: encoding,
		Body:            body,
	}, nil
}

// readBody buffers the response body, decoding gzip. Other encodings are
// returned untouched together with their name.
func readBody(resp *http.Response) ([]byte, string, error) {
	encoding := strings.TrimSpace(resp.Header.Get("Content-Encoding"))

	switch strings.ToLower(encoding) {
	case "gzip", "x-gzip":
		// HEAD responses and 204/304 carry no body to decode.
		if resp.ContentLength == 0 || resp.Request.Method == http.MethodHead {
			_, err := io.Copy(io.Discard, resp.Body)
			return nil, "", err
		}

		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, "", err
		}
		defer zr.Close()

		body, err := io.ReadAll(zr)
		return body, "", err
	default:
		body, err := io.ReadAll(resp.Body)
		return body, encoding, err
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
