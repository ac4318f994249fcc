package host

import (
	"fmt"
	"regexp"
)

// ConnectCommand 实现连接网络设备命令
type ConnectCommand struct {
	BaseCommand
}

// DisconnectCommand 实现断开网络设备命令
type DisconnectCommand struct {
	BaseCommand
}

// NewConnectCommand 创建新的连接命令
func NewConnectCommand(conn Conn) *ConnectCommand {
	return &ConnectCommand{BaseCommand{conn: conn}}
}

// NewDisconnectCommand 创建新的断开命令
func NewDisconnectCommand(conn Conn) *DisconnectCommand {
	return &DisconnectCommand{BaseCommand{conn: conn}}
}

var reConnectOK = regexp.MustCompile(`connected to|already connected`)
var reDisconnectOK = regexp.MustCompile(`^$|^disconnected`)

// Execute 执行连接命令
// 可能的回复:
// - "unable to connect to 192.168.2.2:5555"
// - "connected to 192.168.2.2:5555"
// - "already connected to 192.168.2.2:5555"
func (c *ConnectCommand) Execute(host string, port int) (string, error) {
	if err := c.conn.Send(fmt.Sprintf("host:connect:%s:%d", host, port)); err != nil {
		return "", err
	}

	if err := c.readStatus(); err != nil {
		return "", err
	}

	value, err := c.conn.ReadValue()
	if err != nil {
		return "", err
	}

	if !reConnectOK.Match(value) {
		return "", fmt.Errorf("%s", value)
	}
	return fmt.Sprintf("%s:%d", host, port), nil
}

// Execute 执行断开命令
func (c *DisconnectCommand) Execute(host string, port int) (string, error) {
	if err := c.conn.Send(fmt.Sprintf("host:disconnect:%s:%d", host, port)); err != nil {
		return "", err
	}

	if err := c.readStatus(); err != nil {
		return "", err
	}

	value, err := c.conn.ReadValue()
	if err != nil {
		return "", err
	}

	if !reDisconnectOK.Match(value) {
		return "", fmt.Errorf("%s", value)
	}
	return fmt.Sprintf("%s:%d", host, port), nil
}
