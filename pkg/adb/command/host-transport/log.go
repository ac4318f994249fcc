package hosttransport

import (
	"fmt"
	"net"
)

// LogCommand 实现设备日志流命令
// 返回的流由外部的logcat解析库消费
type LogCommand struct {
	BaseCommand
}

// NewLogCommand 创建新的日志流命令
func NewLogCommand(conn Conn) *LogCommand {
	return &LogCommand{BaseCommand{conn: conn}}
}

// Execute 打开指定名称的日志流（main、system等）
func (c *LogCommand) Execute(name string) (net.Conn, error) {
	if err := c.conn.Send(fmt.Sprintf("log:%s", name)); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return c.conn.IntoRawStream(), nil
}
