package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ErrInvalidURL is returned for a client without a usable URL.
var ErrInvalidURL = errors.New("invalid socket.io URL")

// Client is a lazily connecting socket.io client.
type Client struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout bounds the initial connection. Defaults to 15s.
	ConnectTimeout string

	mu   sync.Mutex
	sock *socket.Socket
}

// Connect returns the connected socket, connecting on first use.
func (c *Client) Connect(ctx context.Context) (*socket.Socket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock != nil {
		return c.sock, nil
	}

	logger := ctxlog.FromContext(ctx).With("construct", "socketio_client", "url", c.URL)
	logger.Info("Creating new client instance...")

	parsedURL, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, c.URL)
	}

	timeout := 15 * time.Second
	if c.ConnectTimeout != "" {
		if timeout, err = time.ParseDuration(c.ConnectTimeout); err != nil {
			return nil, fmt.Errorf("socketio_client: invalid connect timeout %q: %w", c.ConnectTimeout, err)
		}
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if c.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(c.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		c.sock = io
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Emit connects if needed and emits an event.
func (c *Client) Emit(ctx context.Context, event string, data ...any) error {
	sock, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	sock.Emit(event, data...)
	return nil
}

// Connected reports whether the client holds a live socket.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock != nil
}

// Close disconnects the socket, if connected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == nil {
		return nil
	}
	c.sock.Disconnect()
	c.sock = nil
	return nil
}
