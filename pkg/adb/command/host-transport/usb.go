package hosttransport

import (
	"fmt"
	"strings"
)

// RootCommand 实现重启adbd为root命令
type RootCommand struct {
	BaseCommand
}

// TcpIpCommand 实现切换adbd到TCP监听命令
type TcpIpCommand struct {
	BaseCommand
}

// UsbCommand 实现切换adbd回USB监听命令
type UsbCommand struct {
	BaseCommand
}

// NewRootCommand 创建新的root命令
func NewRootCommand(conn Conn) *RootCommand {
	return &RootCommand{BaseCommand{conn: conn}}
}

// NewTcpIpCommand 创建新的tcpip命令
func NewTcpIpCommand(conn Conn) *TcpIpCommand {
	return &TcpIpCommand{BaseCommand{conn: conn}}
}

// NewUsbCommand 创建新的usb命令
func NewUsbCommand(conn Conn) *UsbCommand {
	return &UsbCommand{BaseCommand{conn: conn}}
}

// Execute 重启adbd为root
// 结果通过文本行报告而不是FAIL
func (c *RootCommand) Execute() error {
	return c.restartReply("root:", "restarting adbd as root")
}

// Execute 让adbd监听TCP端口
func (c *TcpIpCommand) Execute(port int) error {
	return c.restartReply(fmt.Sprintf("tcpip:%d", port), fmt.Sprintf("restarting in TCP mode port: %d", port))
}

// Execute 让adbd回到USB监听
func (c *UsbCommand) Execute() error {
	return c.restartReply("usb:", "restarting in USB mode")
}

func (c *BaseCommand) restartReply(cmd, expected string) error {
	if err := c.conn.Send(cmd); err != nil {
		return err
	}

	if err := c.readStatus(); err != nil {
		return err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return err
	}

	reply := strings.TrimSpace(string(value))
	if reply == "" || strings.HasPrefix(reply, expected) || strings.Contains(reply, "already") {
		return nil
	}
	return &DeviceError{Message: reply}
}
