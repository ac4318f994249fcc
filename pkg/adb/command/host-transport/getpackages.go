package hosttransport

import (
	"regexp"
	"strings"
)

// GetPackagesCommand 实现获取包列表命令
type GetPackagesCommand struct {
	BaseCommand
}

// NewGetPackagesCommand 创建新的获取包列表命令
func NewGetPackagesCommand(conn Conn) *GetPackagesCommand {
	return &GetPackagesCommand{BaseCommand{conn: conn}}
}

// Execute 执行获取包列表命令
func (c *GetPackagesCommand) Execute() ([]string, error) {
	if err := c.conn.Send("shell:pm list packages 2>/dev/null"); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return nil, err
	}
	return ParsePackages(string(value)), nil
}

var rePackage = regexp.MustCompile(`^package:(.+?)\r?$`)

// ParsePackages 解析pm list packages输出
func ParsePackages(value string) []string {
	packages := make([]string, 0)

	for _, line := range strings.Split(value, "\n") {
		matches := rePackage.FindStringSubmatch(line)
		if matches != nil {
			packages = append(packages, matches[1])
		}
	}

	return packages
}
