package hosttransport

import (
	"fmt"
	"strings"
)

// IsInstalledCommand 实现检查包是否已安装的命令
type IsInstalledCommand struct {
	BaseCommand
}

// NewIsInstalledCommand 创建新的检查安装命令
func NewIsInstalledCommand(conn Conn) *IsInstalledCommand {
	return &IsInstalledCommand{BaseCommand{conn: conn}}
}

// Execute 执行检查安装命令
// 已安装时pm path输出以package:开头的行，空输出表示未安装
func (c *IsInstalledCommand) Execute(pkg string) (bool, error) {
	cmd := fmt.Sprintf("pm path %s 2>/dev/null", Escape(pkg))
	if err := c.conn.Send(fmt.Sprintf("shell:%s", cmd)); err != nil {
		return false, err
	}

	if err := c.readStatus(); err != nil {
		return false, err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return false, err
	}

	output := strings.TrimSpace(string(value))
	if output == "" {
		return false, nil
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "package:") {
			return true, nil
		}
		if strings.HasPrefix(line, "Error:") {
			return false, &DeviceError{Message: line}
		}
	}

	return false, nil
}
