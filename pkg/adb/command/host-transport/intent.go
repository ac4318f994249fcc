package hosttransport

import (
	"fmt"
	"sort"
	"strconv"
)

// ExtraType extra的类型标签
type ExtraType string

// 可用的extra类型
const (
	ExtraString    ExtraType = "string"
	ExtraNull      ExtraType = "null"
	ExtraBool      ExtraType = "bool"
	ExtraInt       ExtraType = "int"
	ExtraLong      ExtraType = "long"
	ExtraFloat     ExtraType = "float"
	ExtraURI       ExtraType = "uri"
	ExtraComponent ExtraType = "component"
)

// Extra 一个带类型的intent extra
// Values非空时生成数组形式（标志加a后缀，值用逗号连接）
type Extra struct {
	Key    string
	Type   ExtraType
	Value  interface{}
	Values []interface{}
}

// Intent 结构化的activity描述
type Intent struct {
	Action     string
	Data       string
	MimeType   string
	Categories []string
	Component  string
	Flags      uint32
	Extras     []Extra
}

// extra类型到am标志的映射
var extraFlags = map[ExtraType]string{
	ExtraString:    "--es",
	ExtraNull:      "--esn",
	ExtraBool:      "--ez",
	ExtraInt:       "--ei",
	ExtraLong:      "--el",
	ExtraFloat:     "--ef",
	ExtraURI:       "--eu",
	ExtraComponent: "--ecn",
}

// Args 编码为am命令的参数向量
func (i *Intent) Args() ([]string, error) {
	var args []string

	if i.Action != "" {
		args = append(args, "-a", i.Action)
	}
	if i.Data != "" {
		args = append(args, "-d", i.Data)
	}
	if i.MimeType != "" {
		args = append(args, "-t", i.MimeType)
	}
	for _, category := range i.Categories {
		args = append(args, "-c", category)
	}
	if i.Component != "" {
		args = append(args, "-n", i.Component)
	}
	if i.Flags != 0 {
		args = append(args, "-f", strconv.FormatUint(uint64(i.Flags), 10))
	}

	for _, extra := range i.Extras {
		extraArgs, err := extra.args()
		if err != nil {
			return nil, err
		}
		args = append(args, extraArgs...)
	}

	return args, nil
}

func (e *Extra) args() ([]string, error) {
	flag, ok := extraFlags[e.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported extra type %q", e.Type)
	}

	if e.Type == ExtraNull {
		return []string{flag, e.Key}, nil
	}

	if e.Values != nil {
		joined := ""
		for n, value := range e.Values {
			formatted, err := formatExtraValue(e.Type, value)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				joined += ","
			}
			joined += formatted
		}
		return []string{flag + "a", e.Key, joined}, nil
	}

	formatted, err := formatExtraValue(e.Type, e.Value)
	if err != nil {
		return nil, err
	}
	return []string{flag, e.Key, formatted}, nil
}

func formatExtraValue(kind ExtraType, value interface{}) (string, error) {
	switch kind {
	case ExtraString, ExtraURI, ExtraComponent:
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("extra of type %q requires a string value, got %T", kind, value)
		}
		return s, nil
	case ExtraBool:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("extra of type bool requires a bool value, got %T", value)
		}
		return strconv.FormatBool(b), nil
	case ExtraInt:
		switch v := value.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int32:
			return strconv.FormatInt(int64(v), 10), nil
		case float64:
			return strconv.FormatInt(int64(v), 10), nil
		}
		return "", fmt.Errorf("extra of type int requires an integer value, got %T", value)
	case ExtraLong:
		switch v := value.(type) {
		case int:
			return strconv.FormatInt(int64(v), 10), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		}
		return "", fmt.Errorf("extra of type long requires an integer value, got %T", value)
	case ExtraFloat:
		switch v := value.(type) {
		case float32:
			return fmt.Sprintf("%g", v), nil
		case float64:
			return fmt.Sprintf("%g", v), nil
		case int:
			return fmt.Sprintf("%g", float64(v)), nil
		}
		return "", fmt.Errorf("extra of type float requires a numeric value, got %T", value)
	}
	return "", fmt.Errorf("unsupported extra type %q", kind)
}

// ExtrasFromMap 便利形式：从无类型的map推导extra类型
// nil→null，bool→bool，整数值→int，其他数字→float，字符串→string
// 键按字典序排列，保证输出稳定
func ExtrasFromMap(extras map[string]interface{}) ([]Extra, error) {
	keys := make([]string, 0, len(extras))
	for key := range extras {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Extra, 0, len(extras))
	for _, key := range keys {
		extra, err := extraFromValue(key, extras[key])
		if err != nil {
			return nil, err
		}
		result = append(result, extra)
	}
	return result, nil
}

func extraFromValue(key string, value interface{}) (Extra, error) {
	switch v := value.(type) {
	case nil:
		return Extra{Key: key, Type: ExtraNull}, nil
	case bool:
		return Extra{Key: key, Type: ExtraBool, Value: v}, nil
	case int:
		return Extra{Key: key, Type: ExtraInt, Value: v}, nil
	case int64:
		return Extra{Key: key, Type: ExtraLong, Value: v}, nil
	case float64:
		if v == float64(int64(v)) {
			return Extra{Key: key, Type: ExtraInt, Value: int(v)}, nil
		}
		return Extra{Key: key, Type: ExtraFloat, Value: v}, nil
	case string:
		return Extra{Key: key, Type: ExtraString, Value: v}, nil
	case Extra:
		if v.Key == "" {
			v.Key = key
		}
		return v, nil
	case []interface{}:
		if len(v) == 0 {
			return Extra{}, fmt.Errorf("cannot infer extra type for empty array %q", key)
		}
		first, err := extraFromValue(key, v[0])
		if err != nil {
			return Extra{}, err
		}
		return Extra{Key: key, Type: first.Type, Values: v}, nil
	}
	return Extra{}, fmt.Errorf("cannot infer extra type for %q (%T)", key, value)
}
