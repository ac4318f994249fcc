package host

import (
	"fmt"
	"strings"
)

// DeviceType 设备在服务器眼中的状态
type DeviceType string

// 已知的设备状态
const (
	TypeDevice        DeviceType = "device"
	TypeEmulator      DeviceType = "emulator"
	TypeOffline       DeviceType = "offline"
	TypeUnauthorized  DeviceType = "unauthorized"
	TypeBootloader    DeviceType = "bootloader"
	TypeRecovery      DeviceType = "recovery"
	TypeNoPermissions DeviceType = "no permissions"
	TypeHost          DeviceType = "host"
)

// Device 表示一个ADB设备
type Device struct {
	ID   string
	Type DeviceType

	// 以下字段仅在devices-l输出中出现
	Path        string
	Product     string
	Model       string
	Device      string
	TransportID string
}

// DevicesCommand 实现基础的设备列表查询
type DevicesCommand struct {
	BaseCommand
}

// DevicesWithPathsCommand 实现带路径信息的设备列表查询
type DevicesWithPathsCommand struct {
	BaseCommand
}

// NewDevicesCommand 创建新的设备列表命令
func NewDevicesCommand(conn Conn) *DevicesCommand {
	return &DevicesCommand{BaseCommand{conn: conn}}
}

// NewDevicesWithPathsCommand 创建新的带路径设备列表命令
func NewDevicesWithPathsCommand(conn Conn) *DevicesWithPathsCommand {
	return &DevicesWithPathsCommand{BaseCommand{conn: conn}}
}

// Execute 执行设备列表查询命令
func (c *DevicesCommand) Execute() ([]Device, error) {
	if err := c.conn.Send("host:devices"); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	value, err := c.conn.ReadValue()
	if err != nil {
		return nil, err
	}
	return ParseDevices(string(value))
}

// Execute 执行带路径信息的设备列表查询命令
func (c *DevicesWithPathsCommand) Execute() ([]Device, error) {
	if err := c.conn.Send("host:devices-l"); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	value, err := c.conn.ReadValue()
	if err != nil {
		return nil, err
	}
	return ParseDevicesWithPaths(string(value))
}

// ParseDevices 解析`host:devices`输出
// 每行为 serial\ttype，空行跳过，未知状态原样保留
func ParseDevices(value string) ([]Device, error) {
	devices := make([]Device, 0)

	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid device line: %q", line)
		}

		devices = append(devices, Device{
			ID:   parts[0],
			Type: DeviceType(strings.TrimSpace(parts[1])),
		})
	}
	return devices, nil
}

// ParseDevicesWithPaths 解析`host:devices-l`输出
// 第三个字段是可选的路径加上product/model/device/transport_id键值对
func ParseDevicesWithPaths(value string) ([]Device, error) {
	devices := make([]Device, 0)

	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid device line: %q", line)
		}

		device := Device{
			ID:   parts[0],
			Type: DeviceType(strings.TrimSpace(strings.SplitN(parts[1], " ", 2)[0])),
		}

		rest := ""
		if len(parts) == 3 {
			rest = parts[2]
		} else if fields := strings.SplitN(parts[1], " ", 2); len(fields) == 2 {
			rest = fields[1]
		}

		var pathTokens []string
		for _, field := range strings.Fields(rest) {
			key, val, found := strings.Cut(field, ":")
			if !found {
				pathTokens = append(pathTokens, field)
				continue
			}
			switch key {
			case "product":
				device.Product = val
			case "model":
				device.Model = val
			case "device":
				device.Device = val
			case "transport_id":
				device.TransportID = val
			default:
				// 路径本身可能带冒号（usb:1-1等）
				pathTokens = append(pathTokens, field)
			}
		}
		device.Path = strings.Join(pathTokens, " ")

		devices = append(devices, device)
	}
	return devices, nil
}
