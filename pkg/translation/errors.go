package translation

import (
	"errors"
	"fmt"
)

// 错误代码常量
const (
	// ErrCodeConfig 配置错误：在发起任何网络调用之前就应当失败
	ErrCodeConfig = "CONFIG_ERROR"
	// ErrCodeIO 文件读写错误：只影响当前文件
	ErrCodeIO = "IO_ERROR"
	// ErrCodeAPI 补全接口错误：只影响当前文件
	ErrCodeAPI = "API_ERROR"
)

// Error 翻译流程的类型化错误
type Error struct {
	Code    string // 错误代码
	Status  int    // HTTP 状态码，仅 API 错误使用；0 表示传输层失败
	Message string // 错误消息
	Cause   error  // 原因
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Code == ErrCodeAPI {
		return fmt.Sprintf("[%s] status=%d %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConfigError 创建配置错误
func NewConfigError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeConfig, Message: fmt.Sprintf(format, args...)}
}

// NewIOError 创建文件读写错误
func NewIOError(message string, cause error) *Error {
	return &Error{Code: ErrCodeIO, Message: message, Cause: cause}
}

// NewAPIError 创建补全接口错误；status 为 0 表示请求根本没有得到 HTTP 响应
func NewAPIError(status int, message string, cause error) *Error {
	return &Error{Code: ErrCodeAPI, Status: status, Message: message, Cause: cause}
}

// IsConfigError 判断是否为配置错误
func IsConfigError(err error) bool { return hasCode(err, ErrCodeConfig) }

// IsIOError 判断是否为文件读写错误
func IsIOError(err error) bool { return hasCode(err, ErrCodeIO) }

// IsAPIError 判断是否为补全接口错误
func IsAPIError(err error) bool { return hasCode(err, ErrCodeAPI) }

func hasCode(err error, code string) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == code
}
