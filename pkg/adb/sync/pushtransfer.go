package sync

import (
	"errors"
	"sync"
)

// Progress 传输进度事件载荷
type Progress struct {
	BytesTransferred int64
}

// ErrTransferCancelled 传输被调用方取消
var ErrTransferCancelled = errors.New("transfer cancelled")

// PushTransfer 一次进行中的SEND传输的进度句柄
type PushTransfer struct {
	mu        sync.Mutex
	stats     Progress
	cancelled bool
	cancel    func()
	handlers  map[string][]func(interface{})
	done      chan struct{}
	err       error
}

// NewPushTransfer 创建新的推送传输句柄
// cancel在调用方取消时关闭底层连接
func NewPushTransfer(cancel func()) *PushTransfer {
	return &PushTransfer{
		cancel:   cancel,
		handlers: make(map[string][]func(interface{})),
		done:     make(chan struct{}),
	}
}

// Push 记录已写入的字节数并发出进度事件
func (t *PushTransfer) Push(n int) {
	t.mu.Lock()
	t.stats.BytesTransferred += int64(n)
	stats := t.stats
	t.mu.Unlock()

	t.emit("progress", stats)
}

// End 标记传输正常结束
func (t *PushTransfer) End() {
	t.mu.Lock()
	if t.err == nil && !t.isDone() {
		close(t.done)
	}
	t.mu.Unlock()

	t.emit("end", nil)
}

// EmitError 标记传输失败
func (t *PushTransfer) EmitError(err error) {
	t.mu.Lock()
	if !t.isDone() {
		t.err = err
		close(t.done)
	}
	t.mu.Unlock()

	t.emit("error", err)
}

// Cancel 取消传输并关闭底层连接（幂等）
// 远端文件可能处于写了一半的状态
func (t *PushTransfer) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.emit("cancel", nil)
}

// Cancelled 是否已被取消
func (t *PushTransfer) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Wait 阻塞直到传输结束，返回最终错误
func (t *PushTransfer) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled && t.err != nil {
		return ErrTransferCancelled
	}
	return t.err
}

// BytesTransferred 获取已传输字节数
func (t *PushTransfer) BytesTransferred() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.BytesTransferred
}

// On 注册事件处理器（progress、end、error、cancel）
func (t *PushTransfer) On(event string, handler func(interface{})) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = append(t.handlers[event], handler)
}

func (t *PushTransfer) emit(event string, data interface{}) {
	t.mu.Lock()
	handlers := make([]func(interface{}), len(t.handlers[event]))
	copy(handlers, t.handlers[event])
	t.mu.Unlock()

	for _, handler := range handlers {
		handler(data)
	}
}

func (t *PushTransfer) isDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
