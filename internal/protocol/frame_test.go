package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	msg := &Message{
		Type:    GameGuess,
		Status:  StatusSuccess,
		Payload: "GAME_GUESS|GAME-1700000000|alice|apple",
	}

	buf, err := EncodeFrame(msg)
	require.NoError(t, err)
	require.Len(t, buf, FrameSize)

	decoded, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, msg.Type, decoded.Type)
	assert.Equal(t, msg.Status, decoded.Status)
	assert.Equal(t, msg.Payload, decoded.Payload)
}

func TestEncodeFrameLayout(t *testing.T) {
	buf, err := EncodeFrame(&Message{Type: LoginRequest, Status: StatusSuccess, Payload: "a"})
	require.NoError(t, err)

	// Little-endian uint32 fields, then NUL-padded payload
	assert.Equal(t, []byte{1, 0, 0, 0}, buf[0:4])
	assert.Equal(t, []byte{200, 0, 0, 0}, buf[4:8])
	assert.Equal(t, byte('a'), buf[8])
	assert.Equal(t, byte(0), buf[9])
}

func TestEncodeFrameRejectsOversizedPayload(t *testing.T) {
	big := make([]byte, PayloadSize+1)
	for i := range big {
		big[i] = 'x'
	}

	_, err := EncodeFrame(&Message{Type: GameGuess, Payload: string(big)})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestEncodeFrameMaxPayload(t *testing.T) {
	max := bytes.Repeat([]byte{'y'}, PayloadSize)

	buf, err := EncodeFrame(&Message{Type: GameGuess, Payload: string(max)})
	require.NoError(t, err)

	decoded, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, string(max), decoded.Payload)
}

func TestDecodeFrameWrongSize(t *testing.T) {
	_, err := DecodeFrame(make([]byte, FrameSize-1))
	assert.Error(t, err)
}

func TestReadFrameFromStream(t *testing.T) {
	var stream bytes.Buffer
	first := &Message{Type: SignupRequest, Status: StatusCreated, Payload: "alice|secret"}
	second := &Message{Type: ListUser, Status: StatusSuccess}
	require.NoError(t, WriteFrame(&stream, first))
	require.NoError(t, WriteFrame(&stream, second))

	got, err := ReadFrame(&stream)
	require.NoError(t, err)
	assert.Equal(t, first.Payload, got.Payload)

	got, err = ReadFrame(&stream)
	require.NoError(t, err)
	assert.Equal(t, ListUser, got.Type)

	// Clean close at a frame boundary surfaces as plain EOF
	_, err = ReadFrame(&stream)
	assert.Equal(t, io.EOF, err)
}

func TestReadFrameTruncatedStream(t *testing.T) {
	buf, err := EncodeFrame(&Message{Type: GameEnd, Payload: "GAME-1"})
	require.NoError(t, err)

	_, err = ReadFrame(bytes.NewReader(buf[:FrameSize/2]))
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}
