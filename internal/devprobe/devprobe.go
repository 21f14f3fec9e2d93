// Package devprobe checks that a live-reload dev server is answering before a
// development configuration pointing at it is handed out.
package devprobe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultTimeout bounds a probe when the caller gives none.
const DefaultTimeout = 5 * time.Second

// DefaultPath is the socket.io endpoint path dev servers listen on.
const DefaultPath = "/socket.io/"

// ErrTimeout is returned when the server did not answer in time.
var ErrTimeout = errors.New("timed out waiting for dev server")

// Probe opens a socket.io connection to address and closes it again. It
// returns nil once the server accepted the connection.
func Probe(ctx context.Context, address string, timeout time.Duration) error {
	logger := ctxlog.FromContext(ctx).With("address", address)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	parsed, err := url.Parse(address)
	if err != nil {
		return fmt.Errorf("failed to parse dev server address: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("dev server address %q must include scheme and host", address)
	}

	opts := socket.DefaultOptions()
	path := parsed.Path
	if path == "" || path == "/" {
		path = DefaultPath
	}
	opts.SetPath(path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	result := make(chan error, 1)
	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), opts)
	io := manager.Socket("/", opts)
	defer io.Disconnect()

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Dev server accepted connection.", "sid", io.Id())
		select {
		case result <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case result <- err:
		default:
		}
	})

	logger.Debug("Probing dev server.")
	io.Connect()

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("dev server at %s refused the connection: %w", address, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dev server probe cancelled: %w", ctx.Err())
	case <-time.After(timeout):
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
