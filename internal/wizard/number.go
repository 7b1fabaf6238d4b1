package wizard

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NumberInput 表单中的可选数值字段
// 接受 JSON 数字、字符串或 null；空串与 null 表示未填写，其余内容原样保留交给规则校验
type NumberInput string

// UnmarshalJSON 实现 json.Unmarshaler
func (n *NumberInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberInput(strings.TrimSpace(s))
		return nil
	}
	*n = NumberInput(data)
	return nil
}

// Empty 是否未填写
func (n NumberInput) Empty() bool {
	return n == ""
}

// Int64 解析为整数
func (n NumberInput) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}
