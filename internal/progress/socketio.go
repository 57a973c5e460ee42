package progress

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
)

// ErrNotConnected is returned when publishing on a socket that has dropped.
var ErrNotConnected = errors.New("progress: socket.io client is not connected")

// SocketIO publishes events to a socket.io server.
type SocketIO struct {
	io        *socket.Socket
	connected atomic.Bool
}

// DialSocketIO connects to rawURL and waits up to timeout for the handshake.
// The URL path selects the socket.io endpoint and the "namespace" query
// parameter the namespace ("/" when absent).
func DialSocketIO(ctx context.Context, rawURL string, timeout time.Duration) (*SocketIO, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse progress URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress URL %q must be absolute", rawURL)
	}
	namespace := parsedURL.Query().Get("namespace")
	if namespace == "" {
		namespace = "/"
	}
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", rawURL, "namespace", namespace)

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	s := &SocketIO{io: manager.Socket(namespace, opts)}

	done := make(chan error, 1)
	s.io.On(types.EventName("connect"), func(...any) {
		s.connected.Store(true)
		logger.Info("Progress publisher connected", "sid", s.io.Id())
		select {
		case done <- nil:
		default:
		}
	})
	s.io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case done <- err:
		default:
		}
	})
	s.io.On(types.EventName("disconnect"), func(...any) {
		s.connected.Store(false)
		logger.Debug("Progress publisher disconnected")
	})

	s.io.Connect()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case <-waitCtx.Done():
		s.io.Disconnect()
		return nil, fmt.Errorf("timed out while waiting for progress connection: %w", waitCtx.Err())
	case err := <-done:
		if err != nil {
			s.io.Disconnect()
			return nil, fmt.Errorf("failed to connect progress publisher: %w", err)
		}
	}
	return s, nil
}

// Publish emits event with payload.
func (s *SocketIO) Publish(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.connected.Load() {
		return ErrNotConnected
	}
	s.io.Emit(event, payload)
	return nil
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.io.Disconnect()
	return nil
}
