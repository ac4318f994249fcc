package hosttransport

import (
	"regexp"
	"strings"
)

// GetPropertiesCommand 实现获取系统属性命令
type GetPropertiesCommand struct {
	BaseCommand
}

// NewGetPropertiesCommand 创建新的获取系统属性命令
func NewGetPropertiesCommand(conn Conn) *GetPropertiesCommand {
	return &GetPropertiesCommand{BaseCommand{conn: conn}}
}

// Execute 执行获取系统属性命令
func (c *GetPropertiesCommand) Execute() (map[string]string, error) {
	if err := c.conn.Send("shell:getprop"); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return nil, err
	}
	return ParseProperties(string(value)), nil
}

// getprop每行形如 [key]: [value]
var reProperty = regexp.MustCompile(`^\[([^\]]+)\]: \[(.*)\]\r?$`)

// ParseProperties 解析getprop输出
func ParseProperties(value string) map[string]string {
	properties := make(map[string]string)

	for _, line := range strings.Split(value, "\n") {
		matches := reProperty.FindStringSubmatch(line)
		if matches != nil {
			properties[matches[1]] = matches[2]
		}
	}

	return properties
}
