package hostserial

import (
	"fmt"
)

// ForwardCommand 实现端口转发命令
type ForwardCommand struct {
	BaseCommand
}

// ListForwardsCommand 实现列出转发配置命令
type ListForwardsCommand struct {
	BaseCommand
}

// NewForwardCommand 创建新的端口转发命令
func NewForwardCommand(conn Conn) *ForwardCommand {
	return &ForwardCommand{BaseCommand{conn: conn}}
}

// NewListForwardsCommand 创建新的列出转发配置命令
func NewListForwardsCommand(conn Conn) *ListForwardsCommand {
	return &ListForwardsCommand{BaseCommand{conn: conn}}
}

// Execute 执行端口转发命令
// 服务器通常连发两个OKAY，但部分版本只发一个，这里两种都接受
func (c *ForwardCommand) Execute(serial, local, remote string) error {
	cmd := fmt.Sprintf("host-serial:%s:forward:%s;%s", serial, local, remote)
	if err := c.conn.Send(cmd); err != nil {
		return err
	}

	if err := c.readStatus(); err != nil {
		return err
	}

	reply, err := c.conn.ReadAscii(4)
	if err != nil {
		// 只有一个OKAY的服务器在此处关闭连接
		return nil
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

// Execute 执行列出转发配置命令
func (c *ListForwardsCommand) Execute(serial string) ([]Forward, error) {
	cmd := fmt.Sprintf("host-serial:%s:list-forward", serial)
	if err := c.conn.Send(cmd); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	value, err := c.conn.ReadValue()
	if err != nil {
		return nil, err
	}
	return ParseForwards(string(value))
}
