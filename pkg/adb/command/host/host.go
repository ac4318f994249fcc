package host

import (
	"net"
)

const (
	OKAY = "OKAY"
	FAIL = "FAIL"
)

// Conn 命令执行所需的连接能力
type Conn interface {
	Send(cmd string) error
	ReadAscii(length int) (string, error)
	ReadBytes(length int) ([]byte, error)
	ReadValue() ([]byte, error)
	ReadAll() ([]byte, error)
	ReadError() error
	Unexpected(data []byte, expected string) error
	IntoRawStream() net.Conn
	Close() error
}

// BaseCommand 提供基础功能
type BaseCommand struct {
	conn Conn
}

// readStatus 读取状态字，FAIL时返回对端错误
func (c *BaseCommand) readStatus() error {
	reply, err := c.conn.ReadAscii(4)
	if err != nil {
		return err
	}

	switch reply {
	case OKAY:
		return nil
	case FAIL:
		return c.conn.ReadError()
	default:
		return c.conn.Unexpected([]byte(reply), "OKAY or FAIL")
	}
}
