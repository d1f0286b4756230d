package translation

import "context"

// CompletionRequest 单次补全请求
type CompletionRequest struct {
	// SystemPrompt 系统提示词，可为空
	SystemPrompt string
	// UserPrompt 用户提示词
	UserPrompt string
	// Model 模型名称
	Model string
	// Temperature 采样温度
	Temperature float32
}

// CompletionResponse 补全响应
type CompletionResponse struct {
	// Text 生成的文本
	Text string
	// Model 实际使用的模型
	Model string
	// TokensIn 输入 token 数
	TokensIn int
	// TokensOut 输出 token 数
	TokensOut int
}

// Completer 补全能力接口，翻译流程只依赖这一个窄接口，
// 测试时可以用假实现替换真实的网络客户端
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
