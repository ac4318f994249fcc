package hosttransport

import (
	"fmt"
	"regexp"
	"strings"
)

// InstallCommand 实现安装已推送APK的命令
type InstallCommand struct {
	BaseCommand
}

// UninstallCommand 实现卸载命令
type UninstallCommand struct {
	BaseCommand
}

// ClearCommand 实现清除应用数据命令
type ClearCommand struct {
	BaseCommand
}

// NewInstallCommand 创建新的安装命令
func NewInstallCommand(conn Conn) *InstallCommand {
	return &InstallCommand{BaseCommand{conn: conn}}
}

// NewUninstallCommand 创建新的卸载命令
func NewUninstallCommand(conn Conn) *UninstallCommand {
	return &UninstallCommand{BaseCommand{conn: conn}}
}

// NewClearCommand 创建新的清除数据命令
func NewClearCommand(conn Conn) *ClearCommand {
	return &ClearCommand{BaseCommand{conn: conn}}
}

var reInstallResult = regexp.MustCompile(`(Success|Failure \[(.*?)\])`)

// Execute 安装设备上的APK文件
func (c *InstallCommand) Execute(remotePath string, args ...string) error {
	argv := append([]string{"pm", "install"}, args...)
	argv = append(argv, remotePath)

	if err := c.conn.Send(fmt.Sprintf("shell:%s", EscapeAll(argv))); err != nil {
		return err
	}

	if err := c.readStatus(); err != nil {
		return err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return err
	}

	matches := reInstallResult.FindStringSubmatch(string(value))
	if matches == nil {
		return &ParseError{Context: fmt.Sprintf("unexpected pm install output: %q", value)}
	}
	if matches[1] != "Success" {
		return &DeviceError{Message: matches[2]}
	}
	return nil
}

// Execute 卸载指定包
// 包不存在时pm报Unknown package，与成功同样处理
func (c *UninstallCommand) Execute(pkg string) error {
	cmd := fmt.Sprintf("pm uninstall %s", Escape(pkg))
	if err := c.conn.Send(fmt.Sprintf("shell:%s", cmd)); err != nil {
		return err
	}

	if err := c.readStatus(); err != nil {
		return err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return err
	}

	output := strings.TrimSpace(string(value))
	if strings.Contains(output, "Success") || strings.Contains(output, "Unknown package") || output == "" {
		return nil
	}
	return &DeviceError{Message: output}
}

// Execute 清除指定包的数据
func (c *ClearCommand) Execute(pkg string) error {
	cmd := fmt.Sprintf("pm clear %s", Escape(pkg))
	if err := c.conn.Send(fmt.Sprintf("shell:%s", cmd)); err != nil {
		return err
	}

	if err := c.readStatus(); err != nil {
		return err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return err
	}

	output := strings.TrimSpace(string(value))
	switch output {
	case "Success":
		return nil
	case "Failed":
		return &DeviceError{Message: fmt.Sprintf("failed to clear %s", pkg)}
	default:
		return &ParseError{Context: fmt.Sprintf("unexpected pm clear output: %q", output)}
	}
}
