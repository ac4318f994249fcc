package adb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonvs2/adbkit/pkg/adb/command/host"
)

// trackerEvents 按发生顺序收集跟踪器事件
type trackerEvent struct {
	kind string
	data interface{}
}

func collectTracker(t *testing.T, snapshots []string) []trackerEvent {
	t.Helper()

	// 监听器注册完成后服务器才开始发送快照
	start := make(chan struct{})
	client := newFakeServer(t, func(conn *fakeConn) {
		defer conn.Close()
		assert.Equal(t, "host:track-devices", conn.readRequest(t))
		conn.okay()
		<-start
		for _, snapshot := range snapshots {
			conn.value(snapshot)
		}
	})

	tracker, err := client.TrackDevices()
	require.NoError(t, err)
	defer tracker.End()

	events := make(chan trackerEvent, 64)
	record := func(kind string) func(interface{}) {
		return func(data interface{}) {
			events <- trackerEvent{kind: kind, data: data}
		}
	}
	for _, kind := range []string{"add", "remove", "change", "changeSet", "end", "error"} {
		tracker.On(kind, record(kind))
	}
	close(start)

	var collected []trackerEvent
	for {
		select {
		case event := <-events:
			collected = append(collected, event)
			if event.kind == "end" || event.kind == "error" {
				return collected
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for tracker events")
		}
	}
}

func TestTrackerInitialSnapshotIsAdds(t *testing.T) {
	events := collectTracker(t, []string{"serial1\tdevice\nserial2\toffline\n"})

	require.GreaterOrEqual(t, len(events), 4)
	assert.Equal(t, "add", events[0].kind)
	assert.Equal(t, "serial1", events[0].data.(host.Device).ID)
	assert.Equal(t, "add", events[1].kind)
	assert.Equal(t, "serial2", events[1].data.(host.Device).ID)

	// 同一快照的changeSet在per-entity事件之后
	assert.Equal(t, "changeSet", events[2].kind)
	changes := events[2].data.(ChangeSet)
	assert.Len(t, changes.Added, 2)
	assert.Empty(t, changes.Changed)
	assert.Empty(t, changes.Removed)

	assert.Equal(t, "end", events[3].kind)
}

func TestTrackerDiff(t *testing.T) {
	events := collectTracker(t, []string{
		"serial1\tdevice\nserial2\toffline\n",
		"serial1\tdevice\nserial2\tdevice\nserial3\tdevice\n",
		"serial1\tdevice\nserial3\tdevice\n",
	})

	var kinds []string
	for _, event := range events {
		kinds = append(kinds, event.kind)
	}

	assert.Equal(t, []string{
		"add", "add", "changeSet",
		"change", "add", "changeSet",
		"remove", "changeSet",
		"end",
	}, kinds)

	// 第二个快照：serial2状态变化
	assert.Equal(t, "serial2", events[3].data.(host.Device).ID)
	assert.Equal(t, host.TypeDevice, events[3].data.(host.Device).Type)

	// 第三个快照：serial2消失
	assert.Equal(t, "serial2", events[6].data.(host.Device).ID)
}

func TestTrackerNoEventsWhenUnchanged(t *testing.T) {
	events := collectTracker(t, []string{
		"serial1\tdevice\n",
		"serial1\tdevice\n",
	})

	var kinds []string
	for _, event := range events {
		kinds = append(kinds, event.kind)
	}
	assert.Equal(t, []string{"add", "changeSet", "end"}, kinds)
}

func TestTrackerDevices(t *testing.T) {
	client := newFakeServer(t, func(conn *fakeConn) {
		conn.readRequest(t)
		conn.okay()
		conn.value("serial1\tdevice\n")
		// 保持连接直到跟踪器结束
		buffer := make([]byte, 1)
		conn.Read(buffer)
		conn.Close()
	})

	tracker, err := client.TrackDevices()
	require.NoError(t, err)
	defer tracker.End()

	// Devices反映最近一次快照，轮询等它追上
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(tracker.Devices()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	devices := tracker.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "serial1", devices[0].ID)
}
