package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/BohuTANG/gpt-translate-refine/internal/config"
	"github.com/BohuTANG/gpt-translate-refine/internal/document"
	"github.com/BohuTANG/gpt-translate-refine/internal/translator"
	"github.com/BohuTANG/gpt-translate-refine/pkg/translation"
)

// State 单文件流水线状态
type State int

const (
	StatePending State = iota
	StateSplit
	StateTranslated
	StateRefined
	StateWritten
	StateDone
	StateFailed
)

// String 实现 fmt.Stringer
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSplit:
		return "split"
	case StateTranslated:
		return "translated"
	case StateRefined:
		return "refined"
	case StateWritten:
		return "written"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult 单个输入文件的处理结果
type FileResult struct {
	InputPath  string
	OutputPath string
	State      State
	Err        error
}

// Pipeline 单文件翻译流水线：读取、拆分、翻译、细化、重组、写出。
// 每个文件独立推进，任一阶段失败进入 Failed，不影响其他文件
type Pipeline struct {
	cfg    *config.Config
	engine *translator.Engine
	log    *zap.Logger
}

// NewPipeline 创建流水线
func NewPipeline(cfg *config.Config, engine *translator.Engine, log *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, engine: engine, log: log}
}

// Run 对单个输入文件执行完整流水线
func (p *Pipeline) Run(ctx context.Context, inputPath string) FileResult {
	res := FileResult{InputPath: inputPath, State: StatePending}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fail(res, translation.NewIOError("read "+inputPath, err))
	}
	if len(raw) == 0 {
		return fail(res, translation.NewIOError("input file is empty: "+inputPath, nil))
	}

	// 映射失败要赶在任何网络调用之前暴露，免得付了翻译的钱却存不下来
	outputPath, err := document.Map(inputPath, p.cfg.OutputFiles, p.cfg.TargetLang)
	if err != nil {
		return fail(res, err)
	}
	res.OutputPath = outputPath

	// 只有 Markdown 才拆前置元数据块，其余格式整体送翻
	doc := document.Document{Body: string(raw)}
	if strings.EqualFold(filepath.Ext(inputPath), ".md") {
		doc = document.Split(string(raw))
		if doc.HasFrontMatter() {
			if meta, metaErr := doc.Meta(); metaErr != nil {
				p.log.Warn("前置元数据解析失败，按原样保留",
					zap.String("文件", inputPath), zap.Error(metaErr))
			} else {
				p.log.Debug("检测到前置元数据块",
					zap.String("文件", inputPath), zap.Int("字段数", len(meta)))
			}
		}
	}
	res.State = StateSplit

	translated, err := p.engine.Translate(ctx, doc.Body)
	if err != nil {
		return fail(res, err)
	}
	res.State = StateTranslated

	// 细化输出取代主翻译作为最终正文；前置块从不参与任何一次调用
	final := translated
	if p.cfg.RefineEnabled {
		refined, err := p.engine.Refine(ctx, translated, doc.Body)
		if err != nil {
			return fail(res, err)
		}
		final = refined
		res.State = StateRefined
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(res, translation.NewIOError("create output directory "+dir, err))
		}
	}
	if err := os.WriteFile(outputPath, []byte(doc.Join(final)), 0o644); err != nil {
		return fail(res, translation.NewIOError("write "+outputPath, err))
	}
	res.State = StateWritten
	return res
}

func fail(res FileResult, err error) FileResult {
	res.State = StateFailed
	res.Err = err
	return res
}
