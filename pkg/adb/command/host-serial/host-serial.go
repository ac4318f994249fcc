package hostserial

import (
	"fmt"
	"net"
	"strings"
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

// Forward 表示一个端口转发配置
type Forward struct {
	Serial string
	Local  string
	Remote string
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

// ParseForwards 解析`list-forward`输出（serial local remote三元组）
func ParseForwards(value string) ([]Forward, error) {
	forwards := make([]Forward, 0)

	for _, line := range strings.Split(strings.TrimSpace(value), "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid forward line: %q", line)
		}

		forwards = append(forwards, Forward{
			Serial: parts[0],
			Local:  parts[1],
			Remote: parts[2],
		})
	}

	return forwards, nil
}
