package adb

import (
	"errors"
	"io"
	"sync"

	"github.com/antonvs2/adbkit/pkg/adb/command/host"
)

// Tracker 设备跟踪器
// 消费host:track-devices切换后的无限快照流，对相邻快照做差分
type Tracker struct {
	conn       *Connection
	deviceList []host.Device
	deviceMap  map[string]host.Device
	listeners  map[string][]func(interface{})
	mu         sync.RWMutex
	ended      bool
}

// ChangeSet 一个快照相对上一个快照的全部变化
type ChangeSet struct {
	Added   []host.Device
	Changed []host.Device
	Removed []host.Device
}

// NewTracker 在已切换到track-devices的连接上创建跟踪器
// 第一个快照与空集合比较，启动时在线的设备都会产生add事件
func NewTracker(conn *Connection) *Tracker {
	t := &Tracker{
		conn:      conn,
		deviceMap: make(map[string]host.Device),
		listeners: make(map[string][]func(interface{})),
	}

	go t.read()

	return t
}

// On 注册事件监听器（add、remove、change、changeSet、end、error）
func (t *Tracker) On(event string, handler func(interface{})) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners[event] = append(t.listeners[event], handler)
}

// Devices 获取最近一次快照中的设备列表
func (t *Tracker) Devices() []host.Device {
	t.mu.RLock()
	defer t.mu.RUnlock()

	devices := make([]host.Device, len(t.deviceList))
	copy(devices, t.deviceList)
	return devices
}

// End 结束跟踪并关闭连接，之后不再产生任何事件
func (t *Tracker) End() error {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return nil
	}
	t.ended = true
	t.mu.Unlock()

	err := t.conn.Close()
	t.emit("end", nil)
	return err
}

// read 持续读取快照
func (t *Tracker) read() {
	for {
		// 每个快照是一段16进制长度前缀的设备列表文本
		value, err := t.conn.ReadValue()
		if err != nil {
			t.mu.Lock()
			ended := t.ended
			t.ended = true
			t.mu.Unlock()

			if ended {
				return
			}
			t.conn.Close()

			// 快照之间的正常断开算end，半截快照算错误
			var eof *PrematureEOFError
			if err == io.EOF || (errors.As(err, &eof) && eof.MissingBytes == 4) {
				t.emit("end", nil)
			} else {
				t.emit("error", err)
			}
			return
		}

		devices, err := host.ParseDevices(string(value))
		if err != nil {
			t.mu.Lock()
			ended := t.ended
			t.ended = true
			t.mu.Unlock()

			if !ended {
				t.conn.Close()
				t.emit("error", err)
			}
			return
		}

		t.update(devices)
	}
}

// update 差分更新设备集合并发出事件
// 同一快照内先发per-entity事件，最后发changeSet汇总
func (t *Tracker) update(newList []host.Device) {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return
	}

	changes := ChangeSet{}
	newMap := make(map[string]host.Device, len(newList))
	kinds := make(map[string]string)

	for _, device := range newList {
		newMap[device.ID] = device

		if oldDevice, exists := t.deviceMap[device.ID]; exists {
			if oldDevice.Type != device.Type {
				changes.Changed = append(changes.Changed, device)
				kinds[device.ID] = "change"
			}
		} else {
			changes.Added = append(changes.Added, device)
			kinds[device.ID] = "add"
		}
	}

	for _, device := range t.deviceList {
		if _, exists := newMap[device.ID]; !exists {
			changes.Removed = append(changes.Removed, device)
		}
	}

	t.deviceList = newList
	t.deviceMap = newMap
	t.mu.Unlock()

	// add和change按设备在新快照中的顺序交错发出，remove排在其后
	for _, device := range newList {
		if kind, ok := kinds[device.ID]; ok {
			t.emit(kind, device)
		}
	}
	for _, device := range changes.Removed {
		t.emit("remove", device)
	}

	if len(changes.Added) > 0 || len(changes.Changed) > 0 || len(changes.Removed) > 0 {
		t.emit("changeSet", changes)
	}
}

func (t *Tracker) emit(event string, data interface{}) {
	t.mu.RLock()
	handlers := make([]func(interface{}), len(t.listeners[event]))
	copy(handlers, t.listeners[event])
	t.mu.RUnlock()

	for _, handler := range handlers {
		handler(data)
	}
}
