package adb

import (
	"errors"
	"fmt"
	"strings"

	hosttransport "github.com/antonvs2/adbkit/pkg/adb/command/host-transport"
)

// 设备输出相关的错误类型定义在命令层，这里提供别名
type (
	// DeviceError 命令已执行但设备报告错误
	DeviceError = hosttransport.DeviceError

	// ParseError 文本输出不符合预期格式
	ParseError = hosttransport.ParseError
)

// ErrCancelled 操作被调用方主动取消
var ErrCancelled = errors.New("operation cancelled")

// 错误类型定义
type (
	// FailError 对端返回FAIL
	FailError struct {
		Message string
	}

	// PrematureEOFError 流提前结束
	PrematureEOFError struct {
		MissingBytes int
	}

	// UnexpectedDataError 线上字节不符合协议语法
	UnexpectedDataError struct {
		Unexpected string
		Expected   string
	}

	// ConnectionError 无法连接服务器或命令中途I/O失败
	ConnectionError struct {
		Cause error
	}

	// UnauthorizedError 设备未授权当前主机
	UnauthorizedError struct {
		Serial string
	}
)

func (e *FailError) Error() string {
	return fmt.Sprintf("Failure: '%s'", e.Message)
}

func (e *PrematureEOFError) Error() string {
	return fmt.Sprintf("Premature end of stream, needed %d more bytes", e.MissingBytes)
}

func (e *UnexpectedDataError) Error() string {
	return fmt.Sprintf("Unexpected '%s', was expecting %s", e.Unexpected, e.Expected)
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("Connection failed: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("Device '%s' is unauthorized", e.Serial)
}

// classifyFail 将FAIL消息细化为更具体的错误类别
func classifyFail(serial string, err error) error {
	var fail *FailError
	if errors.As(err, &fail) && strings.Contains(fail.Message, "unauthorized") {
		return &UnauthorizedError{Serial: serial}
	}
	return err
}
