package host

import (
	"strconv"
	"strings"
)

// VersionCommand 实现服务器版本查询
type VersionCommand struct {
	BaseCommand
}

// NewVersionCommand 创建新的版本查询命令
func NewVersionCommand(conn Conn) *VersionCommand {
	return &VersionCommand{BaseCommand{conn: conn}}
}

// Execute 执行版本查询命令
// 服务器以16进制字符串回显版本号
func (c *VersionCommand) Execute() (int, error) {
	if err := c.conn.Send("host:version"); err != nil {
		return 0, err
	}

	reply, err := c.conn.ReadAscii(4)
	if err != nil {
		return 0, err
	}

	switch reply {
	case OKAY:
		value, err := c.conn.ReadValue()
		if err != nil {
			return 0, err
		}
		return c.parseVersion(string(value))
	case FAIL:
		return 0, c.conn.ReadError()
	default:
		// 某些旧版服务器不带状态字，直接回显版本号
		return c.parseVersion(reply)
	}
}

func (c *VersionCommand) parseVersion(version string) (int, error) {
	val, err := strconv.ParseInt(strings.TrimSpace(version), 16, 32)
	if err != nil {
		return 0, err
	}
	return int(val), nil
}
