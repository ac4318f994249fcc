package adb

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readSyncRequest 读取一条SYNC子协议消息
func (c *fakeConn) readSyncRequest(t *testing.T) (string, []byte) {
	t.Helper()

	header := make([]byte, 8)
	_, err := io.ReadFull(c.reader, header)
	require.NoError(t, err)

	length := binary.LittleEndian.Uint32(header[4:8])
	payload := make([]byte, length)
	_, err = io.ReadFull(c.reader, payload)
	require.NoError(t, err)

	return string(header[:4]), payload
}

func (c *fakeConn) writeSync(cmd string, payload []byte) {
	header := make([]byte, 8)
	copy(header, cmd)
	binary.LittleEndian.PutUint32(header[4:], uint32(len(payload)))
	c.Write(append(header, payload...))
}

// enterSync 消费transport和sync:切换
func (c *fakeConn) enterSync(t *testing.T) {
	t.Helper()
	assert.Equal(t, "host:transport:abc123", c.readRequest(t))
	c.okay()
	assert.Equal(t, "sync:", c.readRequest(t))
	c.okay()
}

func statReply(mode, size, mtime uint32) []byte {
	payload := make([]byte, 16)
	copy(payload, STAT)
	binary.LittleEndian.PutUint32(payload[4:], mode)
	binary.LittleEndian.PutUint32(payload[8:], size)
	binary.LittleEndian.PutUint32(payload[12:], mtime)
	return payload
}

func TestSyncStatMissing(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		cmd, payload := conn.readSyncRequest(t)
		assert.Equal(t, STAT, cmd)
		assert.Equal(t, "/nope", string(payload))

		conn.Write(statReply(0, 0, 0))
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	stats, err := session.Stat("/nope")
	require.NoError(t, err)
	assert.False(t, stats.Exists())
	assert.False(t, stats.IsRegular())
	assert.False(t, stats.IsDir())
	assert.Equal(t, uint32(0), stats.Mode())
	assert.Equal(t, uint32(0), stats.Size())
	assert.Equal(t, time.Unix(0, 0), stats.ModTime())
}

func TestSyncStat(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		conn.readSyncRequest(t)
		conn.Write(statReply(0o100644, 128, 1700000000))
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	stats, err := session.Stat("/data/local/tmp/x")
	require.NoError(t, err)
	assert.True(t, stats.Exists())
	assert.True(t, stats.IsRegular())
	assert.False(t, stats.IsDir())
	assert.Equal(t, uint32(128), stats.Size())
	assert.Equal(t, uint32(0o644), stats.Permissions())
	assert.Equal(t, time.Unix(1700000000, 0), stats.ModTime())
}

func TestSyncReadDir(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		cmd, payload := conn.readSyncRequest(t)
		assert.Equal(t, LIST, cmd)
		assert.Equal(t, "/sdcard", string(payload))

		writeDent := func(name string, mode, size, mtime uint32) {
			record := make([]byte, 20+len(name))
			copy(record, DENT)
			binary.LittleEndian.PutUint32(record[4:], mode)
			binary.LittleEndian.PutUint32(record[8:], size)
			binary.LittleEndian.PutUint32(record[12:], mtime)
			binary.LittleEndian.PutUint32(record[16:], uint32(len(name)))
			copy(record[20:], name)
			conn.Write(record)
		}

		writeDent(".", 0o040755, 0, 0)
		writeDent("..", 0o040755, 0, 0)
		writeDent("DCIM", 0o040755, 4096, 1700000000)
		writeDent("notes.txt", 0o100644, 42, 1700000001)

		conn.Write(append([]byte(DONE), make([]byte, 16)...))
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	entries, err := session.ReadDir("/sdcard")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "DCIM", entries[0].Name())
	assert.True(t, entries[0].IsDir())
	assert.Equal(t, "notes.txt", entries[1].Name())
	assert.True(t, entries[1].IsRegular())
	assert.Equal(t, uint32(42), entries[1].Size())
}

func TestSyncPushWire(t *testing.T) {
	done := make(chan struct{})

	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		defer close(done)
		conn.enterSync(t)

		cmd, payload := conn.readSyncRequest(t)
		assert.Equal(t, SEND, cmd)
		assert.Equal(t, "/data/local/tmp/x,420", string(payload))

		cmd, payload = conn.readSyncRequest(t)
		assert.Equal(t, DATA, cmd)
		assert.Equal(t, "abc", string(payload))

		// DONE的长度字段携带mtime
		header := make([]byte, 8)
		_, err := io.ReadFull(conn.reader, header)
		require.NoError(t, err)
		assert.Equal(t, DONE, string(header[:4]))
		assert.NotZero(t, binary.LittleEndian.Uint32(header[4:]))

		conn.writeSync(OKAY, nil)
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	transfer, err := session.PushStream(bytes.NewReader([]byte("abc")), "/data/local/tmp/x", 0o644)
	require.NoError(t, err)

	require.NoError(t, transfer.Wait())
	<-done

	assert.Equal(t, int64(3), transfer.BytesTransferred())
}

func TestSyncPushSplitsLargeChunks(t *testing.T) {
	payload := bytes.Repeat([]byte{'x'}, DataMaxLength+100)

	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		conn.readSyncRequest(t)

		cmd, chunk := conn.readSyncRequest(t)
		assert.Equal(t, DATA, cmd)
		assert.Len(t, chunk, DataMaxLength)

		cmd, chunk = conn.readSyncRequest(t)
		assert.Equal(t, DATA, cmd)
		assert.Len(t, chunk, 100)

		header := make([]byte, 8)
		io.ReadFull(conn.reader, header)
		assert.Equal(t, DONE, string(header[:4]))

		conn.writeSync(OKAY, nil)
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	transfer, err := session.PushStream(bytes.NewReader(payload), "/data/local/tmp/big", 0o644)
	require.NoError(t, err)
	require.NoError(t, transfer.Wait())
	assert.Equal(t, int64(len(payload)), transfer.BytesTransferred())
}

func TestSyncPushRemoteFail(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		conn.readSyncRequest(t)
		conn.readSyncRequest(t)

		header := make([]byte, 8)
		io.ReadFull(conn.reader, header)

		conn.writeSync(FAIL, []byte("read-only file system"))
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	transfer, err := session.PushStream(bytes.NewReader([]byte("abc")), "/system/x", 0o644)
	require.NoError(t, err)

	err = transfer.Wait()
	var fail *FailError
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, "read-only file system", fail.Message)
}

func TestSyncPull(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		cmd, payload := conn.readSyncRequest(t)
		assert.Equal(t, RECV, cmd)
		assert.Equal(t, "/data/local/tmp/x", string(payload))

		conn.writeSync(DATA, []byte("hello "))
		conn.writeSync(DATA, []byte("world"))
		conn.writeSync(DONE, nil)
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	transfer, err := session.Pull("/data/local/tmp/x")
	require.NoError(t, err)

	content, err := io.ReadAll(transfer)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
	assert.Equal(t, int64(11), transfer.BytesTransferred())
}

func TestSyncPullRemoteFail(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		conn.readSyncRequest(t)
		conn.writeSync(FAIL, []byte("No such file or directory"))
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)
	defer session.End()

	transfer, err := session.Pull("/nope")
	require.NoError(t, err)

	_, err = io.ReadAll(transfer)
	var fail *FailError
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, "No such file or directory", fail.Message)
}

func TestSyncEndSendsQuit(t *testing.T) {
	quit := make(chan string, 1)

	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		conn.enterSync(t)

		cmd, _ := conn.readSyncRequest(t)
		quit <- cmd
	})

	session, err := client.Sync("abc123")
	require.NoError(t, err)

	require.NoError(t, session.End())
	assert.Equal(t, QUIT, <-quit)
}
