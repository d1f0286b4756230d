package translator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/BohuTANG/gpt-translate-refine/internal/config"
	"github.com/BohuTANG/gpt-translate-refine/pkg/translation"
)

// Engine 两阶段翻译引擎：主翻译加可选的细化，
// 所有网络交互都经过注入的补全客户端
type Engine struct {
	client translation.Completer
	cfg    *config.Config
	log    *zap.Logger

	apiCalls  int
	tokensIn  int
	tokensOut int
}

// New 创建翻译引擎
func New(client translation.Completer, cfg *config.Config, log *zap.Logger) *Engine {
	return &Engine{client: client, cfg: cfg, log: log}
}

// Translate 用主模型翻译正文
func (e *Engine) Translate(ctx context.Context, body string) (string, error) {
	userPrompt := body
	if e.cfg.Prompt != "" {
		userPrompt = e.cfg.Prompt + "\n\n" + body
	}

	e.log.Info("调用主翻译模型", zap.String("模型", e.cfg.Model))
	return e.complete(ctx, e.cfg.SystemPrompt, userPrompt, e.cfg.Model, float32(e.cfg.Temperature))
}

// Refine 用细化模型改写主翻译结果；细化输出取代主翻译作为最终正文。
// 细化调用失败直接向上返回，不静默回退
func (e *Engine) Refine(ctx context.Context, translated, original string) (string, error) {
	userPrompt := buildRefinePrompt(e.cfg.RefinePrompt, translated, original)

	e.log.Info("调用细化模型", zap.String("模型", e.cfg.RefineModel))
	refined, err := e.complete(ctx, e.cfg.RefineSystemPrompt, userPrompt, e.cfg.RefineModel, float32(e.cfg.RefineTemperature))
	if err != nil {
		return "", err
	}

	e.logDiff(translated, refined)
	return refined, nil
}

// Stats 返回累计的调用次数与 token 用量
func (e *Engine) Stats() (apiCalls, tokensIn, tokensOut int) {
	return e.apiCalls, e.tokensIn, e.tokensOut
}

func (e *Engine) complete(ctx context.Context, system, user, model string, temperature float32) (string, error) {
	resp, err := e.client.Complete(ctx, &translation.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Model:        model,
		Temperature:  temperature,
	})
	if err != nil {
		return "", err
	}

	e.apiCalls++
	e.tokensIn += resp.TokensIn
	e.tokensOut += resp.TokensOut
	return resp.Text, nil
}

// buildRefinePrompt 组装细化阶段的用户提示词：
// 有原文时把原文与待细化译文一并给出，便于模型对照修正
func buildRefinePrompt(refinePrompt, translated, original string) string {
	switch {
	case refinePrompt != "" && original != "":
		return refinePrompt + "\n\nOriginal text:\n" + original + "\n\nTranslated text to refine:\n" + translated
	case refinePrompt != "":
		return refinePrompt + "\n\n" + translated
	case original != "":
		return "Original text:\n" + original + "\n\nTranslated text to refine:\n" + translated
	default:
		return translated
	}
}

// logDiff 输出主翻译与细化结果之间的彩色统一差异
func (e *Engine) logDiff(translated, refined string) {
	diffText, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(translated),
		B:        difflib.SplitLines(refined),
		FromFile: "primary translation",
		ToFile:   "refined translation",
		Context:  3,
	})
	if err != nil {
		e.log.Warn("生成差异失败", zap.Error(err))
		return
	}
	if diffText == "" {
		e.log.Info("细化结果与主翻译一致，无差异")
		return
	}

	e.log.Info("细化修改如下")
	for _, line := range strings.SplitAfter(diffText, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(os.Stderr, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(os.Stderr, color.RedString("%s", line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(os.Stderr, color.CyanString("%s", line))
		default:
			fmt.Fprint(os.Stderr, line)
		}
	}
}
