package hosttransport

import (
	"fmt"
	"net"
)

// TcpCommand 实现到设备端口的TCP隧道
type TcpCommand struct {
	BaseCommand
}

// NewTcpCommand 创建新的TCP隧道命令
func NewTcpCommand(conn Conn) *TcpCommand {
	return &TcpCommand{BaseCommand{conn: conn}}
}

// Execute 执行TCP隧道命令，返回双向字节流
func (c *TcpCommand) Execute(port int, host string) (net.Conn, error) {
	var cmd string
	if host != "" {
		cmd = fmt.Sprintf("tcp:%d:%s", port, host)
	} else {
		cmd = fmt.Sprintf("tcp:%d", port)
	}

	if err := c.conn.Send(cmd); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return c.conn.IntoRawStream(), nil
}
