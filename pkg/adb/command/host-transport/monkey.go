package hosttransport

import (
	"fmt"
	"net"
)

// MonkeyCommand 实现monkey启动命令
// monkey在设备上监听TCP端口，调用方再通过tcp服务连过去，
// 返回的shell流必须保持打开，否则monkey随之退出
type MonkeyCommand struct {
	BaseCommand
}

// NewMonkeyCommand 创建新的monkey启动命令
func NewMonkeyCommand(conn Conn) *MonkeyCommand {
	return &MonkeyCommand{BaseCommand{conn: conn}}
}

// Execute 在指定端口启动monkey，返回承载它的shell流
func (c *MonkeyCommand) Execute(port int) (net.Conn, error) {
	cmd := fmt.Sprintf("EXTERNAL_STORAGE=/data/local/tmp monkey --port %d -v", port)
	if err := c.conn.Send(fmt.Sprintf("shell:%s", cmd)); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return c.conn.IntoRawStream(), nil
}
