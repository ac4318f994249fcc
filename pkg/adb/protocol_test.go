package adb

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeData(t *testing.T) {
	p := NewProtocol()

	encoded, err := p.EncodeData([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("0005hello"), encoded)
}

func TestEncodeDataEmpty(t *testing.T) {
	p := NewProtocol()

	encoded, err := p.EncodeData(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("0000"), encoded)
}

func TestEncodeDataMax(t *testing.T) {
	p := NewProtocol()

	payload := bytes.Repeat([]byte{'x'}, MaxPayload)
	encoded, err := p.EncodeData(payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("ffff"), encoded[:4])
	assert.Len(t, encoded, 4+MaxPayload)
}

func TestEncodeDataTooLong(t *testing.T) {
	p := NewProtocol()

	_, err := p.EncodeData(bytes.Repeat([]byte{'x'}, MaxPayload+1))
	assert.Error(t, err)
}

func TestDecodeDataRoundTrip(t *testing.T) {
	p := NewProtocol()

	for _, payload := range []string{"", "a", "host:version", strings.Repeat("z", MaxPayload)} {
		encoded, err := p.EncodeData([]byte(payload))
		require.NoError(t, err)

		decoded, err := p.DecodeData(encoded)
		require.NoError(t, err)
		assert.Equal(t, payload, string(decoded))
	}
}

func TestDecodeDataIncomplete(t *testing.T) {
	p := NewProtocol()

	_, err := p.DecodeData([]byte("000fshort"))
	assert.Error(t, err)
}

func TestDecodeLength(t *testing.T) {
	p := NewProtocol()

	length, err := p.DecodeLength("001f")
	require.NoError(t, err)
	assert.Equal(t, 31, length)

	_, err = p.DecodeLength("zzzz")
	assert.Error(t, err)

	var unexpected *UnexpectedDataError
	assert.ErrorAs(t, err, &unexpected)
}

func TestEncodeLengthLowercase(t *testing.T) {
	p := NewProtocol()

	assert.Equal(t, "000c", p.EncodeLength(12))
	assert.Equal(t, "ffff", p.EncodeLength(0xFFFF))
}

func TestEncodeMessage(t *testing.T) {
	p := NewProtocol()

	message, err := p.EncodeMessage("host", "transport", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "0015host:transport:abc123", string(message))
}

func TestFormatSync(t *testing.T) {
	p := NewProtocol()

	message := p.FormatSync("DATA", 3)
	assert.Equal(t, []byte("DATA\x03\x00\x00\x00"), message)
}

func TestFormatSyncRequest(t *testing.T) {
	p := NewProtocol()

	message := p.FormatSyncRequest("STAT", "/nope")
	assert.Equal(t, []byte("STAT\x05\x00\x00\x00/nope"), message)
}

func TestParseSyncHeader(t *testing.T) {
	p := NewProtocol()

	cmd, length, err := p.ParseSyncHeader([]byte("DONE\x00\x00\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, "DONE", cmd)
	assert.Equal(t, uint32(0), length)
}
