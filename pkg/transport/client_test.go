package transport

import (
	"testing"

	"github.com/valyala/fasthttp"
)

func TestContentTypeCharset(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"text/html; charset=utf-8", "utf-8"},
		{"text/html; charset=UTF-8", "utf-8"},
		{`text/html; charset="iso-8859-1"`, "iso-8859-1"},
		{"text/html", ""},
		{"", ""},
		{"application/xhtml+xml; charset=gbk; boundary=x", "gbk"},
	}
	for _, tc := range cases {
		if got := contentTypeCharset(tc.contentType); got != tc.want {
			t.Errorf("contentTypeCharset(%q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}

func TestNormalizeCharset_Latin1(t *testing.T) {
	client := NewClient(Config{})
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	resp.Header.SetContentType("text/html; charset=iso-8859-1")

	// 0xE9 is "é" in latin-1 and invalid alone in UTF-8.
	got := client.normalizeCharset(resp, []byte{'c', 'a', 'f', 0xE9})
	if got != "café" {
		t.Errorf("expected café, got %q", got)
	}
}

func TestNormalizeCharset_UnknownCharsetFallsBack(t *testing.T) {
	client := NewClient(Config{})
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	resp.Header.SetContentType("text/html; charset=no-such-charset")

	raw := []byte("plain body")
	if got := client.normalizeCharset(resp, raw); got != string(raw) {
		t.Errorf("expected raw body fallback, got %q", got)
	}
}

func TestSetRequestHeaders_StableUserAgentPerURL(t *testing.T) {
	client := NewClient(Config{})
	req1 := fasthttp.AcquireRequest()
	req2 := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req1)
	defer fasthttp.ReleaseRequest(req2)

	client.setRequestHeaders(req1, "https://example.com/page/1")
	client.setRequestHeaders(req2, "https://example.com/page/1")
	if string(req1.Header.UserAgent()) != string(req2.Header.UserAgent()) {
		t.Error("the same URL must always present the same user agent")
	}
}

func TestSetRequestHeaders_ExplicitUserAgent(t *testing.T) {
	client := NewClient(Config{UserAgent: "harvest-go/1.0"})
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	client.setRequestHeaders(req, "https://example.com")
	if string(req.Header.UserAgent()) != "harvest-go/1.0" {
		t.Errorf("expected configured user agent, got %q", req.Header.UserAgent())
	}
}
