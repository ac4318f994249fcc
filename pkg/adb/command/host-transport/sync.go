package hosttransport

// SyncCommand 实现sync服务切换
// OKAY之后连接改用SYNC子协议帧，由上层的同步会话接管
type SyncCommand struct {
	BaseCommand
}

// NewSyncCommand 创建新的同步切换命令
func NewSyncCommand(conn Conn) *SyncCommand {
	return &SyncCommand{BaseCommand{conn: conn}}
}

// Execute 执行同步切换命令
func (c *SyncCommand) Execute() error {
	if err := c.conn.Send("sync:"); err != nil {
		return err
	}
	return c.readStatus()
}
