package hosttransport

import (
	"fmt"
	"net"
	"strings"
)

// LocalCommand 实现到设备本地socket的连接
type LocalCommand struct {
	BaseCommand
}

// NewLocalCommand 创建新的本地socket命令
func NewLocalCommand(conn Conn) *LocalCommand {
	return &LocalCommand{BaseCommand{conn: conn}}
}

// Execute 连接设备上的unix socket
// 带显式前缀（localabstract:等）的路径原样使用，否则按文件系统路径处理
func (c *LocalCommand) Execute(path string) (net.Conn, error) {
	cmd := path
	if !strings.Contains(path, ":") {
		cmd = fmt.Sprintf("localfilesystem:%s", path)
	}

	if err := c.conn.Send(cmd); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	return c.conn.IntoRawStream(), nil
}
