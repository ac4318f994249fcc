package hosttransport

import (
	"fmt"
	"strings"
)

// StartActivityCommand 实现启动activity命令
type StartActivityCommand struct {
	BaseCommand
}

// StartServiceCommand 实现启动service命令
type StartServiceCommand struct {
	BaseCommand
}

// BroadcastCommand 实现发送广播命令
type BroadcastCommand struct {
	BaseCommand
}

// NewStartActivityCommand 创建新的启动activity命令
func NewStartActivityCommand(conn Conn) *StartActivityCommand {
	return &StartActivityCommand{BaseCommand{conn: conn}}
}

// NewStartServiceCommand 创建新的启动service命令
func NewStartServiceCommand(conn Conn) *StartServiceCommand {
	return &StartServiceCommand{BaseCommand{conn: conn}}
}

// NewBroadcastCommand 创建新的广播命令
func NewBroadcastCommand(conn Conn) *BroadcastCommand {
	return &BroadcastCommand{BaseCommand{conn: conn}}
}

// Execute 执行启动activity命令
func (c *StartActivityCommand) Execute(intent *Intent) error {
	return c.runAm("start", intent)
}

// Execute 执行启动service命令
func (c *StartServiceCommand) Execute(intent *Intent) error {
	return c.runAm("startservice", intent)
}

// Execute 执行广播命令
func (c *BroadcastCommand) Execute(intent *Intent) error {
	return c.runAm("broadcast", intent)
}

// runAm 执行am子命令并检查输出
// 没有Error:或Exception:行即认为成功
func (c *BaseCommand) runAm(subcommand string, intent *Intent) error {
	intentArgs, err := intent.Args()
	if err != nil {
		return err
	}

	argv := append([]string{"am", subcommand}, intentArgs...)
	if err := c.conn.Send(fmt.Sprintf("shell:%s", EscapeAll(argv))); err != nil {
		return err
	}

	if err := c.readStatus(); err != nil {
		return err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(value), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Error:") || strings.HasPrefix(line, "Exception:") {
			return &DeviceError{Message: line}
		}
	}
	return nil
}
