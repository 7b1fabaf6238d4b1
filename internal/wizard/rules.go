package wizard

// ValidationError 第一条未通过的校验规则
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Rule 单条校验规则：Check 返回空串表示通过
type Rule[T any] struct {
	Field string
	Check func(T) string
}

// Rules 一组有序规则
type Rules[T any] []Rule[T]

// Validate 按顺序执行规则，遇到第一条失败即停止
func (rs Rules[T]) Validate(v T) error {
	for _, r := range rs {
		if msg := r.Check(v); msg != "" {
			return &ValidationError{Field: r.Field, Message: msg}
		}
	}
	return nil
}
