package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BohuTANG/gpt-translate-refine/internal/config"
	"github.com/BohuTANG/gpt-translate-refine/internal/gitops"
	"github.com/BohuTANG/gpt-translate-refine/internal/translator"
	"github.com/BohuTANG/gpt-translate-refine/internal/workflow"
	"github.com/BohuTANG/gpt-translate-refine/pkg/translation"
)

// mockCompleter 模拟补全客户端；正文里出现 FAIL 时返回传输层错误
type mockCompleter struct {
	calls []translation.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req *translation.CompletionRequest) (*translation.CompletionResponse, error) {
	m.calls = append(m.calls, *req)
	if strings.Contains(req.UserPrompt, "FAIL") {
		return nil, translation.NewAPIError(0, "connection reset by peer", nil)
	}
	return &translation.CompletionResponse{
		Text:      "TRANSLATED",
		Model:     req.Model,
		TokensIn:  10,
		TokensOut: 12,
	}, nil
}

func newWorkflow(t *testing.T, cfg *config.Config, mock *mockCompleter) *workflow.Workflow {
	t.Helper()
	t.Setenv("GITHUB_ACTIONS", "false")
	log := zap.NewNop()
	engine := translator.New(mock, cfg, log)
	git := gitops.New("", log)
	return workflow.New(cfg, engine, git, log)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRun(t *testing.T) {
	t.Run("Refine Disabled Issues Single Call", func(t *testing.T) {
		tmp := t.TempDir()
		input := filepath.Join(tmp, "docs", "en", "guide.md")
		writeFile(t, input, "# Guide\n\nHello\n")

		cfg := &config.Config{
			TargetLang:  "French",
			Model:       "gpt-4",
			RefineModel: "gpt-4",
			InputFiles:  input,
			OutputFiles: filepath.Join(tmp, "docs", "fr", "*.md"),
			DryRun:      true,
		}
		mock := &mockCompleter{}

		err := newWorkflow(t, cfg, mock).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, mock.calls, 1)

		out, err := os.ReadFile(filepath.Join(tmp, "docs", "fr", "guide.md"))
		require.NoError(t, err)
		// 最终正文就是主翻译结果，原样写出
		assert.Equal(t, "TRANSLATED", string(out))
	})

	t.Run("Refine Enabled Issues Second Call", func(t *testing.T) {
		tmp := t.TempDir()
		input := filepath.Join(tmp, "guide.md")
		writeFile(t, input, "Hello\n")

		cfg := &config.Config{
			TargetLang:    "French",
			Model:         "gpt-4",
			RefineModel:   "gpt-4",
			RefineEnabled: true,
			InputFiles:    input,
			OutputFiles:   filepath.Join(tmp, "out", "*.md"),
			DryRun:        true,
		}
		mock := &mockCompleter{}

		err := newWorkflow(t, cfg, mock).Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, mock.calls, 2)
	})

	t.Run("Transport Failure Leaves Target Untouched", func(t *testing.T) {
		tmp := t.TempDir()
		bad := filepath.Join(tmp, "bad.md")
		good := filepath.Join(tmp, "good.md")
		writeFile(t, bad, "FAIL please\n")
		writeFile(t, good, "Hello\n")

		cfg := &config.Config{
			TargetLang:  "French",
			Model:       "gpt-4",
			RefineModel: "gpt-4",
			InputFiles:  bad + " " + good,
			OutputFiles: filepath.Join(tmp, "out", "*.md"),
			DryRun:      true,
		}
		mock := &mockCompleter{}

		err := newWorkflow(t, cfg, mock).Run(context.Background())
		require.Error(t, err)
		assert.True(t, translation.IsAPIError(err))
		assert.Contains(t, err.Error(), "bad.md")

		// 失败文件的目标路径不存在任何残缺产物
		_, statErr := os.Stat(filepath.Join(tmp, "out", "bad.md"))
		assert.True(t, os.IsNotExist(statErr))

		// 同一批次的其他文件照常完成
		out, readErr := os.ReadFile(filepath.Join(tmp, "out", "good.md"))
		require.NoError(t, readErr)
		assert.Equal(t, "TRANSLATED", string(out))
	})

	t.Run("Ambiguous Pattern Caught Before Network", func(t *testing.T) {
		tmp := t.TempDir()
		a := filepath.Join(tmp, "a.md")
		b := filepath.Join(tmp, "b.md")
		writeFile(t, a, "one\n")
		writeFile(t, b, "two\n")

		cfg := &config.Config{
			TargetLang:  "French",
			Model:       "gpt-4",
			RefineModel: "gpt-4",
			InputFiles:  a + " " + b,
			OutputFiles: filepath.Join(tmp, "output.md"), // 无通配记号
			DryRun:      true,
		}
		mock := &mockCompleter{}

		err := newWorkflow(t, cfg, mock).Run(context.Background())
		require.Error(t, err)
		assert.True(t, translation.IsConfigError(err))
		// 一次补全调用都没有发生
		assert.Empty(t, mock.calls)
	})

	t.Run("Directory Input Expanded", func(t *testing.T) {
		tmp := t.TempDir()
		dir := filepath.Join(tmp, "docs")
		writeFile(t, filepath.Join(dir, "a.md"), "aaa\n")
		writeFile(t, filepath.Join(dir, "sub", "b.md"), "bbb\n")

		cfg := &config.Config{
			TargetLang:  "French",
			Model:       "gpt-4",
			RefineModel: "gpt-4",
			InputFiles:  dir,
			OutputFiles: filepath.Join(tmp, "out", "*.md"),
			DryRun:      true,
		}
		mock := &mockCompleter{}

		err := newWorkflow(t, cfg, mock).Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, mock.calls, 2)
	})

	t.Run("Missing Inputs Reported", func(t *testing.T) {
		cfg := &config.Config{
			TargetLang:  "French",
			Model:       "gpt-4",
			RefineModel: "gpt-4",
			InputFiles:  filepath.Join(t.TempDir(), "nope.md"),
			OutputFiles: "out/*.md",
			DryRun:      true,
		}
		mock := &mockCompleter{}

		err := newWorkflow(t, cfg, mock).Run(context.Background())
		require.Error(t, err)
		assert.True(t, translation.IsConfigError(err))
		assert.Empty(t, mock.calls)
	})
}
