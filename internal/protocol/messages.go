package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the protocol revision token exchanged during registration.
// Connections advertising a different version are refused.
const Version = 1

// Message type discriminators.
const (
	TypeRegister      = "register"
	TypeRegisterReply = "register_reply"
	TypePing          = "ping"
	TypePong          = "pong"
	TypeGetObject     = "get_object"
	TypeGetReply      = "get_object_reply"
	TypePutObject     = "put_object"
	TypePutReply      = "put_object_reply"
	TypeDelObject     = "del_object"
	TypeDelReply      = "del_object_reply"
	TypeListObjects   = "list_objects"
	TypeListReply     = "list_objects_reply"
	TypeExit          = "exit"
	TypeShutdown      = "shutdown"
	TypeShutdownReply = "shutdown_reply"
	TypeError         = "error"
)

// Error reply status codes.
const (
	StatusNotFound        = "not_found"
	StatusBadRequest      = "bad_request"
	StatusInternal        = "internal"
	StatusVersionMismatch = "version_mismatch"
)

// RegisterRequest opens a session and pins the protocol version.
type RegisterRequest struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
}

// RegisterReply acknowledges registration and identifies the daemon instance.
type RegisterReply struct {
	Type       string `json:"type"`
	Version    int    `json:"version"`
	InstanceID string `json:"instance_id"`
}

// PingRequest is a liveness probe.
type PingRequest struct {
	Type string `json:"type"`
}

// PongReply answers a ping.
type PongReply struct {
	Type string `json:"type"`
}

// WireObject carries object metadata and, for get replies, the stored bytes.
// Content is base64 on the wire via encoding/json.
type WireObject struct {
	ID       string `json:"id"`
	Typename string `json:"typename"`
	Size     uint64 `json:"size"`
	Content  []byte `json:"content,omitempty"`
}

// GetObjectRequest resolves an object identifier to its stored bytes.
type GetObjectRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// GetObjectReply returns the resolved object.
type GetObjectReply struct {
	Type   string     `json:"type"`
	Object WireObject `json:"object"`
}

// PutObjectRequest stores a new object in the daemon.
type PutObjectRequest struct {
	Type     string `json:"type"`
	Typename string `json:"typename"`
	Content  []byte `json:"content"`
}

// PutObjectReply returns the identifier assigned to a stored object.
type PutObjectReply struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// DelObjectRequest drops an object from the daemon.
type DelObjectRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// DelObjectReply reports whether anything was removed.
type DelObjectReply struct {
	Type    string `json:"type"`
	Removed bool   `json:"removed"`
}

// ListObjectsRequest lists stored objects filtered by typename pattern.
// An empty pattern matches everything; Limit <= 0 means no limit.
type ListObjectsRequest struct {
	Type    string `json:"type"`
	Pattern string `json:"pattern"`
	Limit   int    `json:"limit"`
}

// ListObjectsReply returns object metadata without content.
type ListObjectsReply struct {
	Type    string       `json:"type"`
	Objects []WireObject `json:"objects"`
}

// ExitRequest announces the client is disconnecting.
type ExitRequest struct {
	Type string `json:"type"`
}

// ShutdownRequest asks the daemon to stop serving and exit.
type ShutdownRequest struct {
	Type string `json:"type"`
}

// ShutdownReply acknowledges a shutdown request before the daemon begins
// closing.
type ShutdownReply struct {
	Type string `json:"type"`
}

// ErrorReply reports a request failure with a machine-readable status code.
type ErrorReply struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// TypeOf extracts the message discriminator from a raw frame body.
func TypeOf(body []byte) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode message envelope: %w", err)
	}
	if envelope.Type == "" {
		return "", fmt.Errorf("message missing type discriminator")
	}
	return envelope.Type, nil
}
