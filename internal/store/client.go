package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"vinestore/internal/logging"
	"vinestore/internal/protocol"
	"vinestore/internal/retry"
)

const (
	defaultConnectTimeout = 2 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

// Options controls client construction. The zero value is usable.
type Options struct {
	Logger         *slog.Logger
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	Retry          retry.Policy
	SessionID      string
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.Retry == (retry.Policy{}) {
		o.Retry = retry.DefaultPolicy()
	}
	if o.SessionID == "" {
		o.SessionID = uuid.NewString()
	}
	return o
}

// Client owns one connection to the object-store daemon. Requests are
// serialized; create one client per caller context rather than sharing.
type Client struct {
	path   string
	opts   Options
	logger *slog.Logger

	// mu serializes requests and reconnects on the wire.
	mu sync.Mutex

	// stateMu guards closed and the conn pointer so Close can abort an
	// in-flight request without waiting for mu.
	stateMu    sync.Mutex
	conn       net.Conn
	closed     bool
	instanceID string
}

// Dial connects to the daemon at socketPath and performs the registration
// handshake. On any failure the socket is closed before returning.
func Dial(ctx context.Context, socketPath string, opts Options) (*Client, error) {
	opts = opts.withDefaults()
	logger := logging.NewComponentLogger(opts.Logger, "store-client")

	conn, instanceID, err := dialAndRegister(ctx, socketPath, opts)
	if err != nil {
		return nil, err
	}

	logger.Debug("connected to object store",
		logging.String("socket", socketPath),
		logging.String("instance_id", instanceID),
		logging.String("session_id", opts.SessionID))

	return &Client{
		path:       socketPath,
		opts:       opts,
		logger:     logger,
		conn:       conn,
		instanceID: instanceID,
	}, nil
}

func dialAndRegister(ctx context.Context, socketPath string, opts Options) (net.Conn, string, error) {
	dialer := net.Dialer{Timeout: opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: dial %s: %w", ErrConnection, socketPath, err)
	}

	_ = conn.SetDeadline(time.Now().Add(opts.ConnectTimeout))
	request := protocol.RegisterRequest{
		Type:      protocol.TypeRegister,
		Version:   protocol.Version,
		SessionID: opts.SessionID,
	}
	if err := protocol.WriteFrame(conn, request); err != nil {
		_ = conn.Close()
		return nil, "", fmt.Errorf("%w: handshake write: %w", ErrConnection, err)
	}
	body, err := protocol.ReadFrame(conn)
	if err != nil {
		_ = conn.Close()
		return nil, "", fmt.Errorf("%w: handshake read: %w", ErrConnection, err)
	}

	msgType, err := protocol.TypeOf(body)
	if err != nil {
		_ = conn.Close()
		return nil, "", fmt.Errorf("%w: %w", ErrConnection, err)
	}
	switch msgType {
	case protocol.TypeRegisterReply:
		var reply protocol.RegisterReply
		if err := json.Unmarshal(body, &reply); err != nil {
			_ = conn.Close()
			return nil, "", fmt.Errorf("%w: decode handshake reply: %w", ErrConnection, err)
		}
		if reply.Version != protocol.Version {
			_ = conn.Close()
			return nil, "", fmt.Errorf("%w: daemon speaks version %d, client speaks %d",
				ErrProtocolVersion, reply.Version, protocol.Version)
		}
		_ = conn.SetDeadline(time.Time{})
		return conn, reply.InstanceID, nil
	case protocol.TypeError:
		var reply protocol.ErrorReply
		_ = json.Unmarshal(body, &reply)
		_ = conn.Close()
		if reply.Code == protocol.StatusVersionMismatch {
			return nil, "", fmt.Errorf("%w: %s", ErrProtocolVersion, reply.Detail)
		}
		return nil, "", fmt.Errorf("%w: daemon refused registration (%s): %s", ErrConnection, reply.Code, reply.Detail)
	default:
		_ = conn.Close()
		return nil, "", fmt.Errorf("%w: unexpected handshake reply %q", ErrConnection, msgType)
	}
}

// Close releases the socket. It is idempotent and aborts any in-flight
// request, which then fails with ErrConnectionLost.
func (c *Client) Close() error {
	c.stateMu.Lock()
	if c.closed {
		c.stateMu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.stateMu.Unlock()

	if conn == nil {
		return nil
	}
	if c.mu.TryLock() {
		// Connection is idle: tell the daemon we are leaving.
		_ = conn.SetDeadline(time.Now().Add(200 * time.Millisecond))
		_ = protocol.WriteFrame(conn, protocol.ExitRequest{Type: protocol.TypeExit})
		c.mu.Unlock()
	}
	_ = conn.Close()
	c.logger.Debug("client closed", logging.String("socket", c.path))
	return nil
}

// Get resolves an object handle to a view over the stored bytes.
func (c *Client) Get(ctx context.Context, id ObjectID) (*ObjectView, error) {
	request := protocol.GetObjectRequest{Type: protocol.TypeGetObject, ID: id.String()}
	body, err := c.call(ctx, request, true)
	if err != nil {
		return nil, err
	}
	var reply protocol.GetObjectReply
	if err := decodeReply(body, protocol.TypeGetReply, &reply); err != nil {
		return nil, err
	}
	return viewFromWire(reply.Object)
}

// Put stores content under a fresh identifier. Put requests are never
// retried so a transient failure cannot store the object twice.
func (c *Client) Put(ctx context.Context, typename string, content []byte) (ObjectID, error) {
	request := protocol.PutObjectRequest{Type: protocol.TypePutObject, Typename: typename, Content: content}
	body, err := c.call(ctx, request, false)
	if err != nil {
		return 0, err
	}
	var reply protocol.PutObjectReply
	if err := decodeReply(body, protocol.TypePutReply, &reply); err != nil {
		return 0, err
	}
	return ParseObjectID(reply.ID)
}

// Delete drops the object behind the handle. Returns false when the daemon
// did not know the identifier.
func (c *Client) Delete(ctx context.Context, id ObjectID) (bool, error) {
	request := protocol.DelObjectRequest{Type: protocol.TypeDelObject, ID: id.String()}
	body, err := c.call(ctx, request, true)
	if err != nil {
		return false, err
	}
	var reply protocol.DelObjectReply
	if err := decodeReply(body, protocol.TypeDelReply, &reply); err != nil {
		return false, err
	}
	return reply.Removed, nil
}

// List returns metadata views for stored objects whose typename matches
// pattern. Content is not transferred.
func (c *Client) List(ctx context.Context, pattern string, limit int) ([]ObjectView, error) {
	request := protocol.ListObjectsRequest{Type: protocol.TypeListObjects, Pattern: pattern, Limit: limit}
	body, err := c.call(ctx, request, true)
	if err != nil {
		return nil, err
	}
	var reply protocol.ListObjectsReply
	if err := decodeReply(body, protocol.TypeListReply, &reply); err != nil {
		return nil, err
	}
	views := make([]ObjectView, 0, len(reply.Objects))
	for _, wire := range reply.Objects {
		view, err := viewFromWire(wire)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Ping reports daemon liveness. It returns false rather than an error on
// any failure so callers can use it to gate retry loops.
func (c *Client) Ping(ctx context.Context) bool {
	body, err := c.call(ctx, protocol.PingRequest{Type: protocol.TypePing}, true)
	if err != nil {
		return false
	}
	var reply protocol.PongReply
	return decodeReply(body, protocol.TypePong, &reply) == nil
}

// Shutdown asks the daemon to stop serving. The daemon acknowledges before
// it begins closing, so a nil error means shutdown is underway, not that it
// has finished. Never retried.
func (c *Client) Shutdown(ctx context.Context) error {
	body, err := c.call(ctx, protocol.ShutdownRequest{Type: protocol.TypeShutdown}, false)
	if err != nil {
		return err
	}
	var reply protocol.ShutdownReply
	return decodeReply(body, protocol.TypeShutdownReply, &reply)
}

// InstanceID returns the daemon instance identifier from the handshake.
func (c *Client) InstanceID() string {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.instanceID
}

// SocketPath returns the endpoint this client was dialed against.
func (c *Client) SocketPath() string { return c.path }

// SessionID returns the session identifier sent during registration.
func (c *Client) SessionID() string { return c.opts.SessionID }

func (c *Client) isClosed() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.closed
}

func (c *Client) setConn(conn net.Conn, instanceID string) {
	c.stateMu.Lock()
	c.conn = conn
	if instanceID != "" {
		c.instanceID = instanceID
	}
	c.stateMu.Unlock()
}

// call sends one request and reads one reply, holding the request lock for
// the whole exchange. Idempotent requests that fail with timeout-equivalent
// errors are retried by reconnecting, up to the retry policy budget.
func (c *Client) call(ctx context.Context, request any, idempotent bool) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 0; ; attempt++ {
		if c.isClosed() {
			return nil, ErrConnectionLost
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.conn == nil {
			conn, instanceID, err := dialAndRegister(ctx, c.path, c.opts)
			if err != nil {
				if errors.Is(err, ErrProtocolVersion) || !idempotent || attempt >= c.opts.Retry.MaxRetries {
					return nil, err
				}
				if waitErr := c.backoff(ctx, attempt+1, err); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			c.setConn(conn, instanceID)
			if c.isClosed() {
				// Close raced the reconnect and never saw this conn.
				c.setConn(nil, "")
				_ = conn.Close()
				return nil, ErrConnectionLost
			}
		}

		body, err := c.exchange(ctx, request)
		if err == nil {
			return body, nil
		}

		conn := c.conn
		c.setConn(nil, "")
		if conn != nil {
			_ = conn.Close()
		}

		if c.isClosed() {
			return nil, fmt.Errorf("%w: closed during request", ErrConnectionLost)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !idempotent || !isTransient(err) || attempt >= c.opts.Retry.MaxRetries {
			return nil, fmt.Errorf("%w: %w", ErrConnectionLost, err)
		}
		if waitErr := c.backoff(ctx, attempt+1, err); waitErr != nil {
			return nil, waitErr
		}
	}
}

func (c *Client) backoff(ctx context.Context, attempt int, cause error) error {
	delay := c.opts.Retry.Delay(attempt)
	c.logger.Debug("transient failure, retrying",
		logging.Int("attempt", attempt),
		logging.Duration("delay", delay),
		logging.Error(cause))
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) exchange(ctx context.Context, request any) ([]byte, error) {
	conn := c.conn
	deadline := time.Now().Add(c.opts.RequestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := protocol.WriteFrame(conn, request); err != nil {
		return nil, err
	}
	body, err := protocol.ReadFrame(conn)
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return body, nil
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.EAGAIN)
}

func decodeReply(body []byte, want string, out any) error {
	msgType, err := protocol.TypeOf(body)
	if err != nil {
		return err
	}
	if msgType == protocol.TypeError {
		var reply protocol.ErrorReply
		if err := json.Unmarshal(body, &reply); err != nil {
			return fmt.Errorf("decode error reply: %w", err)
		}
		return replyError(reply)
	}
	if msgType != want {
		return fmt.Errorf("unexpected %s reply, wanted %s", msgType, want)
	}
	return json.Unmarshal(body, out)
}

func replyError(reply protocol.ErrorReply) error {
	switch reply.Code {
	case protocol.StatusNotFound:
		if reply.Detail != "" {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, reply.Detail)
		}
		return ErrObjectNotFound
	case protocol.StatusVersionMismatch:
		return fmt.Errorf("%w: %s", ErrProtocolVersion, reply.Detail)
	default:
		return fmt.Errorf("daemon rejected request (%s): %s", reply.Code, reply.Detail)
	}
}

func viewFromWire(wire protocol.WireObject) (*ObjectView, error) {
	id, err := ParseObjectID(wire.ID)
	if err != nil {
		return nil, err
	}
	size := wire.Size
	if size == 0 {
		size = uint64(len(wire.Content))
	}
	return &ObjectView{ID: id, Typename: wire.Typename, Size: size, Content: wire.Content}, nil
}
