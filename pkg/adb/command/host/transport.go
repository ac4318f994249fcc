package host

import (
	"fmt"
)

// TransportCommand 实现设备传输切换
// 成功后同一连接上的后续请求都发往该设备
type TransportCommand struct {
	BaseCommand
}

// NewTransportCommand 创建新的传输切换命令
func NewTransportCommand(conn Conn) *TransportCommand {
	return &TransportCommand{BaseCommand{conn: conn}}
}

// Execute 执行传输切换命令
func (c *TransportCommand) Execute(serial string) error {
	if err := c.conn.Send(fmt.Sprintf("host:transport:%s", serial)); err != nil {
		return err
	}
	return c.readStatus()
}
