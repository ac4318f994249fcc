package hosttransport

import (
	"fmt"
	"io"
)

// LogcatCommand 实现二进制logcat流命令
// 本库只负责打开流，解析交给外部的logcat解析库
type LogcatCommand struct {
	BaseCommand
}

// NewLogcatCommand 创建新的logcat命令
func NewLogcatCommand(conn Conn) *LogcatCommand {
	return &LogcatCommand{BaseCommand{conn: conn}}
}

// Execute 打开二进制logcat流
// clear为true时先清空缓冲。echo前缀与screencap同理
func (c *LogcatCommand) Execute(clear bool) (io.ReadCloser, error) {
	cmd := "logcat -B *:I 2>/dev/null"
	if clear {
		cmd = fmt.Sprintf("logcat -c 2>/dev/null && %s", cmd)
	}

	if err := c.conn.Send(fmt.Sprintf("shell:echo && %s", cmd)); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return NewTransformReader(c.conn.IntoRawStream(), true), nil
}
