package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "TechTrendAgent/1.0")
	body, _, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Expected body 'ok', got: %s", body)
	}
	if gotUA != "TechTrendAgent/1.0" {
		t.Errorf("Expected custom user agent, got: %s", gotUA)
	}
}

func TestClientRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	c := testClient()
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	if err == nil {
		t.Error("Expected error for non-2xx status")
	}
}

func TestClientExtraHeaders(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := testClient()
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer token123")
	if _, _, err := c.Get(context.Background(), srv.URL, hdr); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if gotAuth != "Bearer token123" {
		t.Errorf("Expected Authorization header forwarded, got: %s", gotAuth)
	}
}

func TestClientDecodesCharset(t *testing.T) {
	// "café" in ISO-8859-1: the é is byte 0xE9
	latin1 := []byte{'c', 'a', 'f', 0xE9}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=iso-8859-1")
		w.Write(latin1)
	}))
	defer srv.Close()

	c := testClient()
	body, contentType, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(contentType, "iso-8859-1") {
		t.Errorf("Expected original content type reported, got: %s", contentType)
	}
	if string(body) != "café" {
		t.Errorf("Expected body transcoded to UTF-8 'café', got: %q", body)
	}
}

func TestDecodeCharsetPassthrough(t *testing.T) {
	body := []byte("already utf-8: café")

	if got := decodeCharset(body, ""); string(got) != string(body) {
		t.Error("Empty content type should pass body through")
	}
	if got := decodeCharset(body, "text/xml; charset=utf-8"); string(got) != string(body) {
		t.Error("UTF-8 charset should pass body through")
	}
	if got := decodeCharset(body, "text/xml; charset=bogus-charset"); string(got) != string(body) {
		t.Error("Unknown charset should pass body through")
	}
}

func TestClientInvalidURL(t *testing.T) {
	c := testClient()
	if _, _, err := c.Get(context.Background(), "://not-a-url", nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}
