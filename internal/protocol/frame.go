package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frame layout, in bytes:
//
//	[0:4)    message type, little-endian uint32
//	[4:8)    status code, little-endian uint32
//	[8:1032) payload, NUL-padded ASCII
//
// There is no length prefix; one frame is exactly one protocol message.
// The layout is bit-exact with the struct the original clients exchange,
// so neither the field order nor the sizes can change.
const (
	PayloadSize = 1024
	FrameSize   = 8 + PayloadSize
)

// ErrPayloadTooLarge is returned when encoding a payload that exceeds the
// fixed payload buffer.
var ErrPayloadTooLarge = errors.New("payload exceeds frame capacity")

// EncodeFrame serializes a message into its fixed-size wire form.
func EncodeFrame(msg *Message) ([]byte, error) {
	if len(msg.Payload) > PayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(msg.Payload))
	}

	buf := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(msg.Type))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(msg.Status))
	copy(buf[8:], msg.Payload)
	return buf, nil
}

// DecodeFrame parses a fixed-size frame. The payload is cut at the first
// NUL byte.
func DecodeFrame(buf []byte) (*Message, error) {
	if len(buf) != FrameSize {
		return nil, fmt.Errorf("frame must be %d bytes, got %d", FrameSize, len(buf))
	}

	payload := buf[8:]
	for i, b := range payload {
		if b == 0 {
			payload = payload[:i]
			break
		}
	}

	return &Message{
		Type:    MessageType(binary.LittleEndian.Uint32(buf[0:4])),
		Status:  StatusCode(binary.LittleEndian.Uint32(buf[4:8])),
		Payload: string(payload),
	}, nil
}

// WriteFrame writes one encoded frame to w.
func WriteFrame(w io.Writer, msg *Message) error {
	buf, err := EncodeFrame(msg)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads exactly one frame from r. It returns io.EOF unwrapped
// when the stream closes cleanly at a frame boundary, so callers can treat
// that as a normal disconnect.
func ReadFrame(r io.Reader) (*Message, error) {
	buf := make([]byte, FrameSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return DecodeFrame(buf)
}
