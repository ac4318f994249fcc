package hosttransport

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

const (
	OKAY = "OKAY"
	FAIL = "FAIL"
)

// Conn 命令执行所需的连接能力
// 连接已经通过host:transport切换到目标设备
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

// DeviceError 命令已执行但设备输出报告了错误
type DeviceError struct {
	Message string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("Device error: %s", e.Message)
}

// ParseError 设备输出不符合预期格式
type ParseError struct {
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse failed: %s", e.Context)
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

// 不需要引用包裹的安全字符集
var reShellSafe = regexp.MustCompile(`^[A-Za-z0-9_.+,:@%/=-]+$`)

// Escape 转义单个shell参数
// 便利功能而非安全边界：包含安全集以外字节的参数用单引号
// 包裹，内嵌单引号替换为'"'"'，空参数变成''
func Escape(arg string) string {
	if arg == "" {
		return "''"
	}
	if reShellSafe.MatchString(arg) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}

// EscapeAll 转义参数向量并用单个空格连接
func EscapeAll(args []string) string {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = Escape(arg)
	}
	return strings.Join(escaped, " ")
}
