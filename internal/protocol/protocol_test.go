package protocol_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"vinestore/internal/protocol"
)

func TestFrameRoundTrip(t *testing.T) {
	request := protocol.GetObjectRequest{Type: protocol.TypeGetObject, ID: "o0000000000000001"}

	var buf bytes.Buffer
	if err := protocol.WriteFrame(&buf, request); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	body, err := protocol.ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}

	msgType, err := protocol.TypeOf(body)
	if err != nil {
		t.Fatalf("TypeOf: %v", err)
	}
	if msgType != protocol.TypeGetObject {
		t.Fatalf("expected type %q, got %q", protocol.TypeGetObject, msgType)
	}

	var decoded protocol.GetObjectRequest
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if decoded.ID != request.ID {
		t.Fatalf("expected id %q, got %q", request.ID, decoded.ID)
	}
}

func TestFrameContentSurvivesBinary(t *testing.T) {
	content := []byte{0x00, 0xff, 0x10, 0x7f, 0x80}
	request := protocol.PutObjectRequest{Type: protocol.TypePutObject, Typename: "vineyard::Blob", Content: content}

	var buf bytes.Buffer
	if err := protocol.WriteFrame(&buf, request); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	body, err := protocol.ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	var decoded protocol.PutObjectRequest
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if !bytes.Equal(decoded.Content, content) {
		t.Fatalf("content mismatch: %v != %v", decoded.Content, content)
	}
}

func TestReadFrameRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], protocol.MaxFrameSize+1)
	buf.Write(prefix[:])

	if _, err := protocol.ReadFrame(&buf); err == nil {
		t.Fatal("expected oversize frame to be rejected")
	} else if !strings.Contains(err.Error(), "exceeds limit") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], 100)
	buf.Write(prefix[:])
	buf.WriteString("short")

	if _, err := protocol.ReadFrame(&buf); err != io.ErrUnexpectedEOF {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestTypeOfMissingDiscriminator(t *testing.T) {
	if _, err := protocol.TypeOf([]byte(`{"id":"o01"}`)); err == nil {
		t.Fatal("expected error for missing type")
	}
	if _, err := protocol.TypeOf([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
