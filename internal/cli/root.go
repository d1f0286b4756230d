package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BohuTANG/gpt-translate-refine/internal/config"
	"github.com/BohuTANG/gpt-translate-refine/internal/gitops"
	"github.com/BohuTANG/gpt-translate-refine/internal/logger"
	"github.com/BohuTANG/gpt-translate-refine/internal/translator"
	"github.com/BohuTANG/gpt-translate-refine/internal/workflow"
	"github.com/BohuTANG/gpt-translate-refine/pkg/providers/openai"
)

var (
	// 命令行标志变量
	cfgFile   string
	debugMode bool
	dryRun    bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "translate-refine",
		Short: "检测变更文件并用大模型完成翻译与细化的 CI 工具",
		Long: `translate-refine 在 CI 任务里单次运行：解析配置的输入文件
（或相对基准分支的变更文件），将正文送往 OpenAI 兼容的补全接口翻译，
可选地再经细化模型打磨一遍，然后写到映射出的目标路径并提交。

配置全部来自环境变量（API_KEY、OUTPUT_FILES、TARGET_LANG 等），
也可以用 --config 指定一个 YAML 配置文件补充。`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if debugMode {
				cfg.Debug = true
			}
			if dryRun {
				cfg.DryRun = true
			}

			log := logger.New(cfg.Debug)
			defer func() {
				_ = log.Sync()
			}()
			cfg.LogSummary(log)

			client := openai.New(openai.Config{
				APIKey:  cfg.APIKey,
				BaseURL: cfg.BaseURL,
			})
			engine := translator.New(client, cfg, log)
			git := gitops.New(cfg.GitHubToken, log)

			if err := workflow.New(cfg, engine, git, log).Run(cmd.Context()); err != nil {
				log.Error("翻译流程存在失败的文件", zap.Error(err))
				return err
			}

			calls, tokensIn, tokensOut := engine.Stats()
			log.Info("翻译流程完成",
				zap.Int("api_calls", calls),
				zap.Int("tokens_in", tokensIn),
				zap.Int("tokens_out", tokensOut))
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径（默认只读环境变量）")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "输出调试日志")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "只翻译写盘，不执行 git 提交")

	return rootCmd
}
