package hosttransport

import (
	"strings"
)

// WaitBootCompleteCommand 实现单次启动完成探测
// 每次探测用一条新连接，轮询循环由客户端控制
type WaitBootCompleteCommand struct {
	BaseCommand
}

// NewWaitBootCompleteCommand 创建新的启动完成探测命令
func NewWaitBootCompleteCommand(conn Conn) *WaitBootCompleteCommand {
	return &WaitBootCompleteCommand{BaseCommand{conn: conn}}
}

// Execute 探测一次sys.boot_completed属性
func (c *WaitBootCompleteCommand) Execute() (bool, error) {
	if err := c.conn.Send("shell:getprop sys.boot_completed"); err != nil {
		return false, err
	}

	if err := c.readStatus(); err != nil {
		return false, err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(string(value)) == "1", nil
}
