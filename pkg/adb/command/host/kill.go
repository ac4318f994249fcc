package host

// KillCommand 实现终止ADB服务器的命令
type KillCommand struct {
	BaseCommand
}

// NewKillCommand 创建新的终止服务器命令
func NewKillCommand(conn Conn) *KillCommand {
	return &KillCommand{BaseCommand{conn: conn}}
}

// Execute 执行终止ADB服务器命令
func (c *KillCommand) Execute() error {
	if err := c.conn.Send("host:kill"); err != nil {
		return err
	}
	return c.readStatus()
}
