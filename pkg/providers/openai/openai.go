package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/BohuTANG/gpt-translate-refine/pkg/translation"
)

// Config 客户端配置
type Config struct {
	// APIKey 接口密钥
	APIKey string
	// BaseURL OpenAI 兼容接口地址，留空使用官方地址
	BaseURL string
	// Timeout 单次请求超时时间
	Timeout time.Duration
}

// Client 基于 OpenAI 兼容接口的补全客户端
type Client struct {
	api *goopenai.Client
}

// New 创建补全客户端
func New(cfg Config) *Client {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute // LLM 请求耗时长，默认给足 5 分钟
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{api: goopenai.NewClientWithConfig(clientCfg)}
}

// Complete 执行一次补全调用。失败直接返回类型化的 API 错误，
// 不做内部重试，瞬时故障交给 CI 宿主的重跑机制
func (c *Client) Complete(ctx context.Context, req *translation.CompletionRequest) (*translation.CompletionResponse, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, translation.NewAPIError(0, "completion response has no choices", nil)
	}

	return &translation.CompletionResponse{
		Text:      resp.Choices[0].Message.Content,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// classify 把底层客户端错误转换为类型化的 API 错误
func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return translation.NewAPIError(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return translation.NewAPIError(reqErr.HTTPStatusCode, reqErr.Error(), err)
	}
	// 传输层失败：没有拿到 HTTP 响应，状态码记为 0
	return translation.NewAPIError(0, err.Error(), err)
}
