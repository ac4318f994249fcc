package adb

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32s(values ...uint32) []byte {
	data := make([]byte, 4*len(values))
	for i, value := range values {
		binary.LittleEndian.PutUint32(data[4*i:], value)
	}
	return data
}

func TestFrameBufferV1(t *testing.T) {
	pixels := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}

	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.readRequest(t)
		conn.okay()
		assert.Equal(t, "framebuffer:", conn.readRequest(t))
		conn.okay()

		// 版本1：版本字后是12个u32（48字节）
		conn.Write(u32s(1))
		conn.Write(u32s(
			32, uint32(len(pixels)), 1, 2,
			0, 8, // red
			16, 8, // blue
			8, 8, // green
			24, 8, // alpha
		))
		conn.Write(pixels)
	})

	stream, err := client.FrameBuffer("abc123")
	require.NoError(t, err)
	defer stream.Close()

	meta := stream.Meta
	assert.Equal(t, uint32(1), meta.Version)
	assert.Equal(t, uint32(32), meta.Bpp)
	assert.Equal(t, uint32(8), meta.Size)
	assert.Equal(t, uint32(1), meta.Width)
	assert.Equal(t, uint32(2), meta.Height)
	assert.Equal(t, "rgba", meta.Format)

	content, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, pixels, content)
}

func TestFrameBufferV2(t *testing.T) {
	pixels := []byte{0xAA, 0xBB, 0xCC}

	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.readRequest(t)
		conn.okay()
		conn.readRequest(t)
		conn.okay()

		// 版本2：多一个领先的format字（52字节）
		conn.Write(u32s(2))
		conn.Write(u32s(
			1, // RGBA_8888
			24, uint32(len(pixels)), 1, 1,
			0, 8,
			16, 8,
			8, 8,
			0, 0,
		))
		conn.Write(pixels)
	})

	stream, err := client.FrameBuffer("abc123")
	require.NoError(t, err)
	defer stream.Close()

	meta := stream.Meta
	assert.Equal(t, uint32(2), meta.Version)
	assert.Equal(t, uint32(1), meta.ColorFormat)
	assert.Equal(t, uint32(24), meta.Bpp)
	assert.Equal(t, "rgb", meta.Format)

	content, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, pixels, content)
}

func TestFrameBufferBgra(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.readRequest(t)
		conn.okay()
		conn.readRequest(t)
		conn.okay()

		conn.Write(u32s(1))
		conn.Write(u32s(
			32, 0, 1, 1,
			16, 8, // red
			0, 8, // blue
			8, 8, // green
			24, 8, // alpha
		))
	})

	stream, err := client.FrameBuffer("abc123")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "bgra", stream.Meta.Format)
}

func TestFrameBufferUnknownVersion(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.readRequest(t)
		conn.okay()
		conn.readRequest(t)
		conn.okay()
		conn.Write(u32s(16))
	})

	_, err := client.FrameBuffer("abc123")
	assert.Error(t, err)
}
