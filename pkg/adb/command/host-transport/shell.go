package hosttransport

import (
	"fmt"
	"net"
)

// ShellCommand 实现shell命令
// OKAY之后连接整体变成命令的输出流，stdout和stderr不区分
type ShellCommand struct {
	BaseCommand
}

// NewShellCommand 创建新的shell命令
func NewShellCommand(conn Conn) *ShellCommand {
	return &ShellCommand{BaseCommand{conn: conn}}
}

// Execute 执行shell命令字符串，返回原始输出流
func (c *ShellCommand) Execute(command string) (net.Conn, error) {
	if err := c.conn.Send(fmt.Sprintf("shell:%s", command)); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return c.conn.IntoRawStream(), nil
}

// ExecuteArgs 执行参数向量形式的shell命令，参数逐个转义
func (c *ShellCommand) ExecuteArgs(args []string) (net.Conn, error) {
	return c.Execute(EscapeAll(args))
}
