package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Timeouts bounds each phase of an outbound call separately. Read and Write
// apply per socket operation, so a stalled peer fails even while the overall
// request deadline is still far away.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
	Write   time.Duration
	// Total caps the whole exchange including reading the body. Zero disables it.
	Total time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Connect: 5 * time.Second,
		Read:    60 * time.Second,
		Write:   10 * time.Second,
		Total:   120 * time.Second,
	}
}

type Options struct {
	Timeouts Timeouts
	// Proxy is an optional proxy URL applied to http and https requests.
	Proxy string
}

func New(opts Options) (*http.Client, error) {
	t := opts.Timeouts
	d := DefaultTimeouts()
	if t.Connect <= 0 {
		t.Connect = d.Connect
	}
	if t.Read <= 0 {
		t.Read = d.Read
	}
	if t.Write <= 0 {
		t.Write = d.Write
	}

	dialer := &net.Dialer{Timeout: t.Connect, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return &deadlineConn{Conn: conn, read: t.Read, write: t.Write}, nil
	}
	transport.TLSHandshakeTimeout = t.Connect
	transport.ResponseHeaderTimeout = t.Read

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{Transport: transport, Timeout: t.Total}, nil
}

type deadlineConn struct {
	net.Conn
	read  time.Duration
	write time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.write)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}
