package fetch

import (
	"context"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// ProxyClient provides SOCKS5 proxy connectivity, typically to a Tor
// daemon listening on 127.0.0.1:9050. It wraps a SOCKS5 dialer and
// builds HTTP clients that route all traffic through the proxy.
type ProxyClient struct {
	// proxyAddress is the SOCKS5 proxy address in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer. Cached to avoid recreating it for
	// each connection.
	dialer proxy.Dialer

	// timeout is the default timeout for HTTP clients created by this
	// client.
	timeout time.Duration
}

// NewProxyClient creates a ProxyClient for the given SOCKS5 address.
//
// The proxyAddress must be in "host:port" format (e.g. "127.0.0.1:9050").
// The address format is validated here, but no connection is made until
// the client is actually used.
func NewProxyClient(proxyAddress string, timeout time.Duration) (*ProxyClient, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// nil auth because Tor's SOCKS port does not require credentials.
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	return &ProxyClient{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// isValidProxyAddress checks that the address is in "host:port" format
// with a numeric port between 1 and 65535.
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host, port := parts[0], parts[1]
	if host == "" || port == "" {
		return false
	}

	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}

// ProxyAddress returns the configured proxy address.
func (c *ProxyClient) ProxyAddress() string {
	return c.proxyAddress
}

// DialContext establishes a TCP connection through the proxy with
// context support. The proxy.Dialer interface is not context-aware, so
// the dial runs in a goroutine; on cancellation the underlying attempt
// may continue briefly. If the dial succeeds after the caller has given
// up, the goroutine closes the connection instead of handing it over.
func (c *ProxyClient) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult)

	go func() {
		conn, err := c.dialer.Dial(network, address)
		select {
		case resultCh <- dialResult{conn, err}:
		case <-ctx.Done():
			if conn != nil {
				_ = conn.Close() //nolint:errcheck // Nobody is left to receive the error
			}
		}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HTTPClient returns an HTTP client that routes all requests through
// the SOCKS5 proxy. It keeps the connection pool small because each
// connection through a Tor circuit is a limited resource.
func (c *ProxyClient) HTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:         c.DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}
