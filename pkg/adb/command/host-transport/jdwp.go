package hosttransport

import (
	"fmt"
	"net"
)

// JdwpCommand 实现到调试进程的JDWP隧道
type JdwpCommand struct {
	BaseCommand
}

// TrackJdwpCommand 实现JDWP进程跟踪切换
// OKAY之后连接变成长度前缀的pid列表快照流
type TrackJdwpCommand struct {
	BaseCommand
}

// NewJdwpCommand 创建新的JDWP隧道命令
func NewJdwpCommand(conn Conn) *JdwpCommand {
	return &JdwpCommand{BaseCommand{conn: conn}}
}

// NewTrackJdwpCommand 创建新的JDWP跟踪命令
func NewTrackJdwpCommand(conn Conn) *TrackJdwpCommand {
	return &TrackJdwpCommand{BaseCommand{conn: conn}}
}

// Execute 打开到指定pid的JDWP隧道
func (c *JdwpCommand) Execute(pid int) (net.Conn, error) {
	if err := c.conn.Send(fmt.Sprintf("jdwp:%d", pid)); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return c.conn.IntoRawStream(), nil
}

// Execute 执行JDWP跟踪切换
func (c *TrackJdwpCommand) Execute() error {
	if err := c.conn.Send("track-jdwp"); err != nil {
		return err
	}
	return c.readStatus()
}
