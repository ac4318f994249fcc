package hosttransport

import (
	"fmt"
)

// RebootMode 重启模式
type RebootMode string

// 可用的重启模式
const (
	RebootNormal     RebootMode = ""
	RebootBootloader RebootMode = "bootloader"
	RebootRecovery   RebootMode = "recovery"
	RebootSideload   RebootMode = "sideload"
)

// RebootCommand 实现重启命令
type RebootCommand struct {
	BaseCommand
}

// NewRebootCommand 创建新的重启命令
func NewRebootCommand(conn Conn) *RebootCommand {
	return &RebootCommand{BaseCommand{conn: conn}}
}

// Execute 执行重启命令
// 服务器确认后设备才真正重启，剩余数据读完即可返回
func (c *RebootCommand) Execute(mode RebootMode) error {
	if err := c.conn.Send(fmt.Sprintf("reboot:%s", mode)); err != nil {
		return err
	}

	if err := c.readStatus(); err != nil {
		return err
	}

	_, err := c.conn.ReadAll()
	return err
}
