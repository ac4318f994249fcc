package adb

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Connection 一条到ADB服务器的TCP连接
// 每条连接只承载一个命令，命令结束后关闭或整体移交给调用方
type Connection struct {
	options       *Options
	socket        net.Conn
	parser        *Parser
	protocol      *Protocol
	mu            sync.Mutex
	closed        bool
	handedOff     bool
	triedStarting bool
}

// NewConnection 创建新的连接（尚未拨号）
func NewConnection(options *Options) *Connection {
	if options == nil {
		options = NewOptions()
	}

	return &Connection{
		options:  options,
		protocol: NewProtocol(),
	}
}

// Connect 建立连接
// 首次连接被拒绝时尝试一次`adb start-server`再重连
func (c *Connection) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.socket != nil {
		return fmt.Errorf("connection already established")
	}

	addr := net.JoinHostPort(c.options.Host, fmt.Sprintf("%d", c.options.Port))
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) && !c.triedStarting && c.options.isLocal() {
			c.triedStarting = true
			if serr := c.startServer(); serr != nil {
				return &ConnectionError{Cause: serr}
			}
			conn, err = net.DialTimeout("tcp", addr, 30*time.Second)
		}
		if err != nil {
			return &ConnectionError{Cause: err}
		}
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}

	c.socket = conn
	c.parser = NewParser(NewDumpReader(conn))

	return nil
}

// Send 发送一条带长度前缀的请求
func (c *Connection) Send(cmd string) error {
	encoded, err := c.protocol.EncodeString(cmd)
	if err != nil {
		return err
	}
	_, err = c.Write(encoded)
	return err
}

// Write 写入原始数据
func (c *Connection) Write(data []byte) (int, error) {
	c.mu.Lock()
	socket := c.socket
	c.mu.Unlock()

	if socket == nil {
		return 0, fmt.Errorf("connection not established")
	}

	n, err := socket.Write(data)
	if err != nil {
		return n, &ConnectionError{Cause: err}
	}
	return n, nil
}

// Parser 获取解析器
func (c *Connection) Parser() *Parser {
	return c.parser
}

// ReadStatus 读取并校验OKAY/FAIL状态字
func (c *Connection) ReadStatus() error {
	reply, err := c.parser.ReadAscii(4)
	if err != nil {
		return err
	}

	switch reply {
	case OKAY:
		return nil
	case FAIL:
		return c.parser.ReadError()
	default:
		return c.parser.Unexpected([]byte(reply), "OKAY or FAIL")
	}
}

// ReadValue 读取长度前缀值
func (c *Connection) ReadValue() ([]byte, error) {
	return c.parser.ReadValue()
}

// ReadAll 读取直到流结束
func (c *Connection) ReadAll() ([]byte, error) {
	return c.parser.ReadAll()
}

// ReadAscii 读取指定长度的ASCII字符串
func (c *Connection) ReadAscii(length int) (string, error) {
	return c.parser.ReadAscii(length)
}

// ReadBytes 读取指定长度的字节
func (c *Connection) ReadBytes(length int) ([]byte, error) {
	return c.parser.ReadBytes(length)
}

// ReadError 读取FAIL后的错误信息
func (c *Connection) ReadError() error {
	return c.parser.ReadError()
}

// Unexpected 生成意外数据错误
func (c *Connection) Unexpected(data []byte, expected string) error {
	return c.parser.Unexpected(data, expected)
}

// IntoRawStream 移交底层字节流的所有权
// 调用之后连接不再属于本对象，由调用方负责关闭
func (c *Connection) IntoRawStream() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()

	socket := c.socket
	c.handedOff = true
	c.socket = nil
	return socket
}

// Close 关闭连接（幂等）
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.socket == nil || c.closed || c.handedOff {
		return nil
	}

	c.closed = true
	err := c.socket.Close()
	c.socket = nil
	return err
}

// IsConnected 检查是否已连接
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socket != nil && !c.closed
}

// SetTimeout 设置读写截止时间
func (c *Connection) SetTimeout(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.socket == nil {
		return fmt.Errorf("connection not established")
	}
	return c.socket.SetDeadline(time.Now().Add(timeout))
}

// ClearTimeout 清除截止时间
func (c *Connection) ClearTimeout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.socket == nil {
		return fmt.Errorf("connection not established")
	}
	return c.socket.SetDeadline(time.Time{})
}

// startServer 执行`adb start-server`
func (c *Connection) startServer() error {
	cmd := exec.Command(c.options.Bin, "start-server")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb start-server failed: %v, output: %s", err, output)
	}
	return nil
}
