package hosttransport

import (
	"regexp"
	"strings"
)

// GetFeaturesCommand 实现获取设备特性命令
type GetFeaturesCommand struct {
	BaseCommand
}

// NewGetFeaturesCommand 创建新的获取特性命令
func NewGetFeaturesCommand(conn Conn) *GetFeaturesCommand {
	return &GetFeaturesCommand{BaseCommand{conn: conn}}
}

// Execute 执行获取特性命令
func (c *GetFeaturesCommand) Execute() (map[string]interface{}, error) {
	if err := c.conn.Send("shell:pm list features 2>/dev/null"); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	value, err := c.conn.ReadAll()
	if err != nil {
		return nil, err
	}
	return ParseFeatures(string(value)), nil
}

var reFeature = regexp.MustCompile(`^feature:([^=]+?)(?:=(.*?))?\r?$`)

// ParseFeatures 解析pm list features输出
// 无值的特性记为true，有值的保留原始字符串
func ParseFeatures(value string) map[string]interface{} {
	features := make(map[string]interface{})

	for _, line := range strings.Split(value, "\n") {
		matches := reFeature.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		if matches[2] != "" {
			features[matches[1]] = matches[2]
		} else {
			features[matches[1]] = true
		}
	}

	return features
}
