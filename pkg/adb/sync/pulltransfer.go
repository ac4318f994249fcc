package sync

import (
	"io"
	"sync"
)

// PullTransfer 一次进行中的RECV传输
// 同时是进度句柄和数据的读取端；管道提供天然的背压，
// 消费方读不动时会话暂停从连接读取
type PullTransfer struct {
	mu        sync.Mutex
	stats     Progress
	cancelled bool
	cancel    func()
	handlers  map[string][]func(interface{})
	pr        *io.PipeReader
	pw        *io.PipeWriter
}

// NewPullTransfer 创建新的拉取传输
func NewPullTransfer(cancel func()) *PullTransfer {
	pr, pw := io.Pipe()
	return &PullTransfer{
		cancel:   cancel,
		handlers: make(map[string][]func(interface{})),
		pr:       pr,
		pw:       pw,
	}
}

// Read 实现io.Reader接口，按线上顺序交付字节
func (t *PullTransfer) Read(p []byte) (int, error) {
	return t.pr.Read(p)
}

// Close 关闭读取端
func (t *PullTransfer) Close() error {
	return t.pr.Close()
}

// Write 由同步会话调用，交付一个DATA块
// 进度事件在字节交付前发出
func (t *PullTransfer) Write(p []byte) (int, error) {
	t.mu.Lock()
	t.stats.BytesTransferred += int64(len(p))
	stats := t.stats
	t.mu.Unlock()

	t.emit("progress", stats)
	return t.pw.Write(p)
}

// End 标记传输正常结束
func (t *PullTransfer) End() {
	t.pw.Close()
	t.emit("end", nil)
}

// EmitError 标记传输失败
func (t *PullTransfer) EmitError(err error) {
	t.pw.CloseWithError(err)
	t.emit("error", err)
}

// Cancel 取消传输并关闭底层连接（幂等）
func (t *PullTransfer) Cancel() {
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
	t.pw.CloseWithError(ErrTransferCancelled)
	t.emit("cancel", nil)
}

// Cancelled 是否已被取消
func (t *PullTransfer) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// BytesTransferred 获取已传输字节数
func (t *PullTransfer) BytesTransferred() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.BytesTransferred
}

// On 注册事件处理器（progress、end、error、cancel）
func (t *PullTransfer) On(event string, handler func(interface{})) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = append(t.handlers[event], handler)
}

func (t *PullTransfer) emit(event string, data interface{}) {
	t.mu.Lock()
	handlers := make([]func(interface{}), len(t.handlers[event]))
	copy(handlers, t.handlers[event])
	t.mu.Unlock()

	for _, handler := range handlers {
		handler(data)
	}
}
