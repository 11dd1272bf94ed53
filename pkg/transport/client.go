// Package transport fetches raw page text over HTTP. It is the only part
// of the pipeline that touches the network.
package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"harvest-go/pkg/logger"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 30 * time.Second

// Config controls the HTTP client.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Client fetches pages with browser-like headers. It is safe for
// concurrent use by multiple fetch workers.
type Client struct {
	client     *fasthttp.Client
	timeout    time.Duration
	userAgent  string
	userAgents []string
	log        *logger.Logger
}

// NewClient creates a page-fetching client.
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		timeout:   timeout,
		userAgent: config.UserAgent,
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
		},
		log: logger.GetLogger().WithField("component", "transport"),
	}
}

// FetchText downloads the page at the given URL and returns its body as
// UTF-8 text. Network errors, non-2xx statuses and a cancelled context all
// fail the fetch.
func (c *Client) FetchText(ctx context.Context, targetURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(targetURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	c.setRequestHeaders(req, targetURL)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return "", fmt.Errorf("fetch %s: HTTP %d", targetURL, status)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", targetURL, err)
	}

	text := c.normalizeCharset(resp, body)
	c.log.WithFields(map[string]interface{}{
		"url":  targetURL,
		"size": len(text),
	}).Debug("Page fetched")
	return text, nil
}

// setRequestHeaders adds browser-like headers to avoid trivial bot blocks.
func (c *Client) setRequestHeaders(req *fasthttp.Request, targetURL string) {
	agent := c.userAgent
	if agent == "" {
		// Rotate by URL so retries of the same page present the same agent.
		agent = c.userAgents[urlHash(targetURL)%uint32(len(c.userAgents))]
	}
	req.Header.SetUserAgent(agent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")
}

// decodeBody undoes the response's content encoding.
func decodeBody(resp *fasthttp.Response) ([]byte, error) {
	encoding := strings.ToLower(string(resp.Header.Peek(fasthttp.HeaderContentEncoding)))
	switch encoding {
	case "gzip":
		return resp.BodyGunzip()
	case "deflate":
		return resp.BodyInflate()
	case "br":
		return resp.BodyUnbrotli()
	default:
		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return body, nil
	}
}

// normalizeCharset converts a body declared in a non-UTF-8 charset to
// UTF-8. Unknown or broken charsets fall back to the raw bytes.
func (c *Client) normalizeCharset(resp *fasthttp.Response, body []byte) string {
	charset := contentTypeCharset(string(resp.Header.ContentType()))
	switch charset {
	case "", "utf-8", "us-ascii":
		return string(body)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		c.log.WithField("charset", charset).Warn("Unknown charset, using raw body")
		return string(body)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		c.log.WithError(err).WithField("charset", charset).Warn("Charset conversion failed, using raw body")
		return string(body)
	}
	return string(decoded)
}

// contentTypeCharset extracts a lower-cased charset parameter from a
// Content-Type header value, or "" when absent.
func contentTypeCharset(contentType string) string {
	for _, part := range strings.Split(contentType, ";") {
		part = strings.TrimSpace(strings.ToLower(part))
		if value, ok := strings.CutPrefix(part, "charset="); ok {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}

func urlHash(s string) uint32 {
	h := uint32(0)
	for _, c := range s {
		h = h*31 + uint32(c)
	}
	return h
}
