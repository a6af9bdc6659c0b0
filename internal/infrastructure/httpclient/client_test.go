package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientReadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := New(Options{Timeouts: Timeouts{Read: 50 * time.Millisecond}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	started := time.Now()
	_, err = client.Get(server.URL)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("expected net timeout, got %v", err)
	}
	if time.Since(started) > 5*time.Second {
		t.Fatalf("read timeout was not applied")
	}
}

func TestClientSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestClientRejectsBadProxy(t *testing.T) {
	if _, err := New(Options{Proxy: "://bad"}); err == nil {
		t.Fatalf("expected proxy parse error")
	}
}
