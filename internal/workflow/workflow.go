package workflow

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/BohuTANG/gpt-translate-refine/internal/config"
	"github.com/BohuTANG/gpt-translate-refine/internal/gitops"
	"github.com/BohuTANG/gpt-translate-refine/internal/translator"
	"github.com/BohuTANG/gpt-translate-refine/pkg/translation"
)

// Workflow 变更编排器：解析输入集合、逐个执行流水线、
// 提交成功产物并汇总失败
type Workflow struct {
	cfg      *config.Config
	pipeline *Pipeline
	git      *gitops.Git
	log      *zap.Logger
}

// New 创建编排器
func New(cfg *config.Config, engine *translator.Engine, git *gitops.Git, log *zap.Logger) *Workflow {
	return &Workflow{
		cfg:      cfg,
		pipeline: NewPipeline(cfg, engine, log),
		git:      git,
		log:      log,
	}
}

// Run 执行一次完整的翻译流程。
// 返回 nil 表示全部输入文件写出成功；否则返回聚合后的失败清单。
// 部分成功也会被保留：已写出的文件先提交，然后才以非零状态收尾
func (w *Workflow) Run(ctx context.Context) error {
	inputs, err := w.resolveInputs(ctx)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return translation.NewConfigError("no input files specified or found")
	}

	// 输出冲突在任何网络调用之前拦下
	if err := w.cfg.ValidateInputs(len(inputs)); err != nil {
		return err
	}

	results := make([]FileResult, 0, len(inputs))
	for _, in := range inputs {
		w.log.Info("开始处理文件", zap.String("输入", in))
		res := w.pipeline.Run(ctx, in)
		if res.Err != nil {
			w.log.Error("文件处理失败",
				zap.String("输入", in),
				zap.String("状态", res.State.String()),
				zap.Error(res.Err))
		} else {
			w.log.Info("翻译写出完成",
				zap.String("输入", in),
				zap.String("输出", res.OutputPath))
		}
		results = append(results, res)
	}

	written := writtenResults(results)
	if len(written) > 0 && !w.cfg.DryRun {
		w.commit(ctx, written)
	}
	// 提交阶段之后，成功写出的文件进入终态
	for i := range results {
		if results[i].State == StateWritten {
			results[i].State = StateDone
		}
	}

	var errs error
	for _, res := range results {
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.InputPath, res.Err))
		}
	}
	return errs
}

// resolveInputs 解析本次运行的输入文件集合：
// 显式路径优先（目录递归展开），否则取相对基准分支的变更文件
func (w *Workflow) resolveInputs(ctx context.Context) ([]string, error) {
	explicit := w.cfg.InputList()
	if len(explicit) == 0 {
		w.log.Info("未指定输入文件，改用版本控制差异",
			zap.String("基准分支", w.cfg.BaseBranch))
		return w.git.ChangedFiles(ctx, w.cfg.BaseBranch, w.cfg.ExtList())
	}

	var inputs []string
	for _, p := range explicit {
		info, err := os.Stat(p)
		if err != nil {
			w.reportMissing(p)
			continue
		}
		if !info.IsDir() {
			inputs = append(inputs, p)
			continue
		}
		files, err := walkFiles(p)
		if err != nil {
			return nil, translation.NewIOError("walk directory "+p, err)
		}
		w.log.Info("展开目录", zap.String("目录", p), zap.Int("文件数", len(files)))
		inputs = append(inputs, files...)
	}
	return inputs, nil
}

// reportMissing 对找不到的路径输出父目录内容，便于在 CI 日志里排查挂载问题
func (w *Workflow) reportMissing(path string) {
	w.log.Warn("输入路径不存在", zap.String("路径", path))

	parent := filepath.Dir(path)
	entries, err := os.ReadDir(parent)
	if err != nil {
		w.log.Warn("父目录也不存在", zap.String("目录", parent))
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	w.log.Info("父目录内容", zap.String("目录", parent), zap.Strings("条目", names))
}

// commit 提交已写出的文件并尝试创建 PR；这里的失败只降级为警告，
// 不改变进程的退出状态（提交机制是外部协作方）
func (w *Workflow) commit(ctx context.Context, written []FileResult) {
	if err := w.git.Setup(ctx); err != nil {
		w.log.Warn("git 环境配置失败，继续保留本地产物", zap.Error(err))
	}

	message := buildCommitMessage(written, w.cfg.TargetLang)
	paths := make([]string, 0, len(written))
	for _, res := range written {
		paths = append(paths, res.OutputPath)
	}

	branch, err := w.git.CommitAndPush(ctx, paths, message)
	if err != nil {
		w.log.Warn("提交推送失败", zap.Error(err))
		return
	}
	if branch == "" {
		return
	}

	if err := w.git.CreatePullRequest(ctx, branch, strings.TrimSpace(w.cfg.PRTitle), message); err != nil {
		w.log.Warn("创建 PR 失败", zap.String("分支", branch), zap.Error(err))
	}
}

// buildCommitMessage 生成带 Markdown 表格的提交信息，同时用作 PR 正文
func buildCommitMessage(written []FileResult, lang string) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Source", "Output", "Language"})
	for _, res := range written {
		t.AppendRow(table.Row{
			"`" + res.InputPath + "`",
			"`" + res.OutputPath + "`",
			lang,
		})
	}

	summary := fmt.Sprintf("%d file", len(written))
	if len(written) > 1 {
		summary += "s"
	}
	return fmt.Sprintf("## Translated to %s - %s\n\n%s\n", lang, summary, t.RenderMarkdown())
}

func writtenResults(results []FileResult) []FileResult {
	var written []FileResult
	for _, res := range results {
		if res.State == StateWritten {
			written = append(written, res)
		}
	}
	return written
}

func walkFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
