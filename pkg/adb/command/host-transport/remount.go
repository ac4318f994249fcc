package hosttransport

// RemountCommand 实现重新挂载命令
type RemountCommand struct {
	BaseCommand
}

// NewRemountCommand 创建新的重新挂载命令
func NewRemountCommand(conn Conn) *RemountCommand {
	return &RemountCommand{BaseCommand{conn: conn}}
}

// Execute 以读写方式重新挂载系统分区
func (c *RemountCommand) Execute() error {
	if err := c.conn.Send("remount:"); err != nil {
		return err
	}
	return c.readStatus()
}
