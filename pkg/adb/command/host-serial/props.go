package hostserial

import (
	"fmt"
)

// GetDevicePathCommand 实现获取设备路径命令
type GetDevicePathCommand struct {
	BaseCommand
}

// GetSerialNoCommand 实现获取序列号命令
type GetSerialNoCommand struct {
	BaseCommand
}

// GetStateCommand 实现获取设备状态命令
type GetStateCommand struct {
	BaseCommand
}

// WaitForDeviceCommand 实现等待设备命令
type WaitForDeviceCommand struct {
	BaseCommand
}

// NewGetDevicePathCommand 创建新的获取设备路径命令
func NewGetDevicePathCommand(conn Conn) *GetDevicePathCommand {
	return &GetDevicePathCommand{BaseCommand{conn: conn}}
}

// NewGetSerialNoCommand 创建新的获取序列号命令
func NewGetSerialNoCommand(conn Conn) *GetSerialNoCommand {
	return &GetSerialNoCommand{BaseCommand{conn: conn}}
}

// NewGetStateCommand 创建新的获取状态命令
func NewGetStateCommand(conn Conn) *GetStateCommand {
	return &GetStateCommand{BaseCommand{conn: conn}}
}

// NewWaitForDeviceCommand 创建新的等待设备命令
func NewWaitForDeviceCommand(conn Conn) *WaitForDeviceCommand {
	return &WaitForDeviceCommand{BaseCommand{conn: conn}}
}

// Execute 执行获取设备路径命令
func (c *GetDevicePathCommand) Execute(serial string) (string, error) {
	return c.readStringReply(fmt.Sprintf("host-serial:%s:get-devpath", serial))
}

// Execute 执行获取序列号命令
func (c *GetSerialNoCommand) Execute(serial string) (string, error) {
	return c.readStringReply(fmt.Sprintf("host-serial:%s:get-serialno", serial))
}

// Execute 执行获取设备状态命令
func (c *GetStateCommand) Execute(serial string) (string, error) {
	return c.readStringReply(fmt.Sprintf("host-serial:%s:get-state", serial))
}

func (c *BaseCommand) readStringReply(cmd string) (string, error) {
	if err := c.conn.Send(cmd); err != nil {
		return "", err
	}

	if err := c.readStatus(); err != nil {
		return "", err
	}

	value, err := c.conn.ReadValue()
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// Execute 执行等待设备命令
// 服务器先确认请求，设备可用后再发第二个状态字
func (c *WaitForDeviceCommand) Execute(serial string) (string, error) {
	cmd := fmt.Sprintf("host-serial:%s:wait-for-any", serial)
	if err := c.conn.Send(cmd); err != nil {
		return "", err
	}

	if err := c.readStatus(); err != nil {
		return "", err
	}

	if err := c.readStatus(); err != nil {
		return "", err
	}

	return serial, nil
}
