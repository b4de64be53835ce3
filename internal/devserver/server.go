package devserver

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vinestore/internal/logging"
	"vinestore/internal/protocol"
	"vinestore/internal/store"
)

// Options controls dev daemon behavior.
type Options struct {
	// PersistDB is an optional SQLite file for the object table. Empty
	// keeps objects in memory only.
	PersistDB string
	// AdvertiseVersion overrides the protocol version sent in register
	// replies. Zero means the compiled-in default. Tests use this to
	// exercise mismatch handling on the client.
	AdvertiseVersion int
}

type storedObject struct {
	typename string
	content  []byte
}

// Server accepts client connections on a Unix domain socket and serves the
// object-store protocol from a local table.
type Server struct {
	path       string
	opts       Options
	logger     *slog.Logger
	listener   net.Listener
	lock       *flock.Flock
	instanceID string
	persist    *persistStore

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	objects map[store.ObjectID]storedObject
	conns   map[net.Conn]struct{}
}

// NewServer configures the dev daemon at the given socket path. The socket
// directory must exist; a stale socket file is replaced, but a live one
// (held by another process via the lock file) is an error.
func NewServer(ctx context.Context, path string, opts Options, logger *slog.Logger) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("devserver requires a socket path")
	}
	logger = logging.NewComponentLogger(logger, "devserver")

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire socket lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("socket %s is held by another daemon", path)
	}

	if err := os.RemoveAll(path); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	var persist *persistStore
	objects := make(map[store.ObjectID]storedObject)
	if opts.PersistDB != "" {
		persist, err = openPersistStore(opts.PersistDB)
		if err != nil {
			_ = listener.Close()
			_ = lock.Unlock()
			return nil, err
		}
		objects, err = persist.loadAll()
		if err != nil {
			_ = persist.Close()
			_ = listener.Close()
			_ = lock.Unlock()
			return nil, err
		}
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:       path,
		opts:       opts,
		logger:     logger,
		listener:   listener,
		lock:       lock,
		instanceID: uuid.NewString(),
		persist:    persist,
		ctx:        serverCtx,
		cancel:     cancel,
		done:       make(chan struct{}),
		objects:    objects,
		conns:      make(map[net.Conn]struct{}),
	}, nil
}

// Path returns the socket path the server listens on.
func (s *Server) Path() string { return s.path }

// InstanceID returns the identifier sent in register replies.
func (s *Server) InstanceID() string { return s.instanceID }

// Serve starts accepting connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("dev daemon listening",
		logging.String(logging.FieldSocket, s.path),
		logging.String("instance_id", s.instanceID))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.trackConn(conn, true)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.trackConn(c, false)
				defer c.Close()
				s.handleConn(c)
			}(conn)
		}
	}()
}

// Done is closed once the server has fully shut down, whether through Close
// or a remote shutdown request.
func (s *Server) Done() <-chan struct{} { return s.done }

// Close stops the server, drops open connections, and removes the socket.
// It is idempotent; concurrent callers block until shutdown completes.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.shutdown()
		close(s.done)
	})
	<-s.done
}

func (s *Server) shutdown() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	if s.persist != nil {
		_ = s.persist.Close()
	}
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String(logging.FieldSocket, s.path),
			logging.Error(err))
	}
	_ = s.lock.Unlock()
}

// StoreObject seeds an object directly, bypassing the wire protocol.
// Tests use this to stage objects "externally" before resolving handles
// through a client.
func (s *Server) StoreObject(typename string, content []byte) (store.ObjectID, error) {
	return s.putObject(typename, content)
}

// ObjectCount reports how many objects the table currently holds.
func (s *Server) ObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *Server) trackConn(conn net.Conn, add bool) {
	s.mu.Lock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
	s.mu.Unlock()
}

func (s *Server) handleConn(conn net.Conn) {
	logger := s.logger
	if creds := peerCredentials(conn); creds != "" {
		logger = logger.With(logging.String("peer", creds))
	}

	sessionID, err := s.register(conn)
	if err != nil {
		logger.Debug("registration failed", logging.Error(err))
		return
	}
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))
	logger.Debug("session registered")

	for {
		body, err := protocol.ReadFrame(conn)
		if err != nil {
			return
		}
		msgType, err := protocol.TypeOf(body)
		if err != nil {
			s.replyError(conn, protocol.StatusBadRequest, err.Error())
			continue
		}
		if msgType == protocol.TypeExit {
			logger.Debug("session closed")
			return
		}
		if msgType == protocol.TypeShutdown {
			_ = protocol.WriteFrame(conn, protocol.ShutdownReply{Type: protocol.TypeShutdownReply})
			logger.Info("shutdown requested")
			// Close waits for this handler, so it must run elsewhere.
			go s.Close()
			return
		}
		if err := s.dispatch(conn, msgType, body); err != nil {
			logger.Debug("request failed",
				logging.String("request", msgType),
				logging.Error(err))
			return
		}
	}
}

func (s *Server) register(conn net.Conn) (string, error) {
	body, err := protocol.ReadFrame(conn)
	if err != nil {
		return "", fmt.Errorf("read register: %w", err)
	}
	var request protocol.RegisterRequest
	if err := json.Unmarshal(body, &request); err != nil || request.Type != protocol.TypeRegister {
		s.replyError(conn, protocol.StatusBadRequest, "expected register message")
		return "", errors.New("expected register message")
	}
	if request.Version != protocol.Version {
		detail := fmt.Sprintf("client version %d unsupported, daemon speaks %d", request.Version, protocol.Version)
		s.replyError(conn, protocol.StatusVersionMismatch, detail)
		return "", errors.New(detail)
	}

	version := protocol.Version
	if s.opts.AdvertiseVersion != 0 {
		version = s.opts.AdvertiseVersion
	}
	reply := protocol.RegisterReply{
		Type:       protocol.TypeRegisterReply,
		Version:    version,
		InstanceID: s.instanceID,
	}
	if err := protocol.WriteFrame(conn, reply); err != nil {
		return "", fmt.Errorf("write register reply: %w", err)
	}
	return request.SessionID, nil
}

func (s *Server) dispatch(conn net.Conn, msgType string, body []byte) error {
	switch msgType {
	case protocol.TypePing:
		return protocol.WriteFrame(conn, protocol.PongReply{Type: protocol.TypePong})
	case protocol.TypeGetObject:
		return s.handleGet(conn, body)
	case protocol.TypePutObject:
		return s.handlePut(conn, body)
	case protocol.TypeDelObject:
		return s.handleDelete(conn, body)
	case protocol.TypeListObjects:
		return s.handleList(conn, body)
	default:
		s.replyError(conn, protocol.StatusBadRequest, fmt.Sprintf("unknown request type %q", msgType))
		return nil
	}
}

func (s *Server) handleGet(conn net.Conn, body []byte) error {
	var request protocol.GetObjectRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.replyError(conn, protocol.StatusBadRequest, err.Error())
		return nil
	}
	id, err := store.ParseObjectID(request.ID)
	if err != nil {
		s.replyError(conn, protocol.StatusBadRequest, err.Error())
		return nil
	}

	s.mu.Lock()
	object, ok := s.objects[id]
	s.mu.Unlock()
	if !ok {
		s.replyError(conn, protocol.StatusNotFound, fmt.Sprintf("object %s", id))
		return nil
	}
	return protocol.WriteFrame(conn, protocol.GetObjectReply{
		Type: protocol.TypeGetReply,
		Object: protocol.WireObject{
			ID:       id.String(),
			Typename: object.typename,
			Size:     uint64(len(object.content)),
			Content:  object.content,
		},
	})
}

func (s *Server) handlePut(conn net.Conn, body []byte) error {
	var request protocol.PutObjectRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.replyError(conn, protocol.StatusBadRequest, err.Error())
		return nil
	}
	id, err := s.putObject(request.Typename, request.Content)
	if err != nil {
		s.replyError(conn, protocol.StatusInternal, err.Error())
		return nil
	}
	return protocol.WriteFrame(conn, protocol.PutObjectReply{Type: protocol.TypePutReply, ID: id.String()})
}

func (s *Server) handleDelete(conn net.Conn, body []byte) error {
	var request protocol.DelObjectRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.replyError(conn, protocol.StatusBadRequest, err.Error())
		return nil
	}
	id, err := store.ParseObjectID(request.ID)
	if err != nil {
		s.replyError(conn, protocol.StatusBadRequest, err.Error())
		return nil
	}

	s.mu.Lock()
	_, existed := s.objects[id]
	delete(s.objects, id)
	s.mu.Unlock()
	if existed && s.persist != nil {
		if err := s.persist.delete(id); err != nil {
			s.logger.Warn("persist delete failed", logging.String(logging.FieldObjectID, id.String()), logging.Error(err))
		}
	}
	return protocol.WriteFrame(conn, protocol.DelObjectReply{Type: protocol.TypeDelReply, Removed: existed})
}

func (s *Server) handleList(conn net.Conn, body []byte) error {
	var request protocol.ListObjectsRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.replyError(conn, protocol.StatusBadRequest, err.Error())
		return nil
	}

	s.mu.Lock()
	objects := make([]protocol.WireObject, 0, len(s.objects))
	for id, object := range s.objects {
		if request.Pattern != "" && !matchPattern(request.Pattern, object.typename) {
			continue
		}
		objects = append(objects, protocol.WireObject{
			ID:       id.String(),
			Typename: object.typename,
			Size:     uint64(len(object.content)),
		})
	}
	s.mu.Unlock()

	sort.Slice(objects, func(i, j int) bool { return objects[i].ID < objects[j].ID })
	if request.Limit > 0 && len(objects) > request.Limit {
		objects = objects[:request.Limit]
	}
	return protocol.WriteFrame(conn, protocol.ListObjectsReply{Type: protocol.TypeListReply, Objects: objects})
}

func (s *Server) putObject(typename string, content []byte) (store.ObjectID, error) {
	stored := storedObject{typename: typename, content: append([]byte(nil), content...)}

	s.mu.Lock()
	id := s.newObjectIDLocked()
	s.objects[id] = stored
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.put(id, stored); err != nil {
			s.mu.Lock()
			delete(s.objects, id)
			s.mu.Unlock()
			return 0, fmt.Errorf("persist object: %w", err)
		}
	}
	return id, nil
}

func (s *Server) newObjectIDLocked() store.ObjectID {
	for {
		raw := uuid.New()
		id := store.ObjectID(binary.BigEndian.Uint64(raw[:8]))
		if id == 0 {
			continue
		}
		if _, taken := s.objects[id]; !taken {
			return id
		}
	}
}

func (s *Server) replyError(conn net.Conn, code, detail string) {
	_ = protocol.WriteFrame(conn, protocol.ErrorReply{Type: protocol.TypeError, Code: code, Detail: detail})
}

// matchPattern supports the glob subset path.Match offers, matched against
// the full typename.
func matchPattern(pattern, typename string) bool {
	ok, err := filepath.Match(pattern, typename)
	return err == nil && ok
}
