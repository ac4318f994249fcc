package hosttransport

import (
	"io"
)

// ScreencapCommand 实现屏幕截图命令
// 前置的echo让行尾探测有稳定的第一个字节
type ScreencapCommand struct {
	BaseCommand
}

// NewScreencapCommand 创建新的屏幕截图命令
func NewScreencapCommand(conn Conn) *ScreencapCommand {
	return &ScreencapCommand{BaseCommand{conn: conn}}
}

// Execute 执行屏幕截图命令，返回PNG数据流
func (c *ScreencapCommand) Execute() (io.ReadCloser, error) {
	if err := c.conn.Send("shell:echo && screencap -p 2>/dev/null"); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return NewTransformReader(c.conn.IntoRawStream(), true), nil
}
