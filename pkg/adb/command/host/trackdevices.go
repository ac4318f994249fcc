package host

// TrackDevicesCommand 实现设备跟踪切换
// OKAY之后同一连接变成无限的设备列表快照流，由调用方继续消费
type TrackDevicesCommand struct {
	BaseCommand
}

// NewTrackDevicesCommand 创建新的设备跟踪命令
func NewTrackDevicesCommand(conn Conn) *TrackDevicesCommand {
	return &TrackDevicesCommand{BaseCommand{conn: conn}}
}

// Execute 执行设备跟踪命令
func (c *TrackDevicesCommand) Execute() error {
	if err := c.conn.Send("host:track-devices"); err != nil {
		return err
	}
	return c.readStatus()
}
