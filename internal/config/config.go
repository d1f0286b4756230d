package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/BohuTANG/gpt-translate-refine/internal/document"
	"github.com/BohuTANG/gpt-translate-refine/pkg/translation"
)

// Config 保存一次运行的全部配置，加载完成后不再修改
type Config struct {
	// 接口设置
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"ai_model"`
	TargetLang  string  `mapstructure:"target_lang"`
	Temperature float64 `mapstructure:"temperature"`

	// 文件集合
	InputFiles  string `mapstructure:"input_files"`  // 空格分隔的输入路径，空则走版本控制差异
	OutputFiles string `mapstructure:"output_files"` // 输出路径模式
	FileExts    string `mapstructure:"file_exts"`    // 差异过滤用的扩展名列表
	BaseBranch  string `mapstructure:"base_branch"`  // 差异比较的基准分支

	// 细化设置
	RefineEnabled     bool    `mapstructure:"refine_enabled"`
	RefineModel       string  `mapstructure:"refine_ai_model"`
	RefineTemperature float64 `mapstructure:"refine_temperature"`

	// 提示词（字面文本，或已被替换为文件内容）
	SystemPrompt       string `mapstructure:"system_prompt"`
	Prompt             string `mapstructure:"prompt"`
	RefineSystemPrompt string `mapstructure:"refine_system_prompt"`
	RefinePrompt       string `mapstructure:"refine_prompt"`

	// 提交与 PR
	PRTitle     string `mapstructure:"pr_title"`
	GitHubToken string `mapstructure:"github_token"`

	Debug  bool `mapstructure:"debug"`
	DryRun bool `mapstructure:"dry_run"` // 只翻译写盘，不做 git 操作
}

// refineTemperatureUnset 哨兵默认值，用于识别未显式配置的细化温度
const refineTemperatureUnset = -1.0

// Load 从环境变量（以及可选的配置文件）加载配置并立即校验。
// 校验失败返回配置错误，绝不留到网络调用之后才暴露
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, translation.NewConfigError("read config file %s: %v", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, translation.NewConfigError("unmarshal configuration: %v", err)
	}

	// 细化阶段缺省继承主翻译的模型与温度
	if cfg.RefineModel == "" {
		cfg.RefineModel = cfg.Model
	}
	if cfg.RefineTemperature == refineTemperatureUnset {
		cfg.RefineTemperature = cfg.Temperature
	}

	// 提示词允许写成文件路径，指向存在的文件时替换为文件内容
	for _, p := range []*string{&cfg.SystemPrompt, &cfg.Prompt, &cfg.RefineSystemPrompt, &cfg.RefinePrompt} {
		resolved, err := resolvePrompt(*p)
		if err != nil {
			return nil, err
		}
		*p = resolved
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai_model", "gpt-4")
	v.SetDefault("target_lang", "Simplified-Chinese")
	v.SetDefault("temperature", 0.3)
	v.SetDefault("input_files", "")
	v.SetDefault("output_files", "")
	v.SetDefault("file_exts", ".md")
	v.SetDefault("base_branch", "main")
	v.SetDefault("refine_enabled", true)
	v.SetDefault("refine_ai_model", "")
	v.SetDefault("refine_temperature", refineTemperatureUnset)
	v.SetDefault("system_prompt", "")
	v.SetDefault("prompt", "")
	v.SetDefault("refine_system_prompt", "")
	v.SetDefault("refine_prompt", "")
	v.SetDefault("pr_title", "Add LLM Translations")
	v.SetDefault("github_token", "")
	v.SetDefault("debug", false)
	v.SetDefault("dry_run", false)
}

func bindEnv(v *viper.Viper) {
	keys := []string{
		"api_key", "base_url", "ai_model", "target_lang", "temperature",
		"input_files", "output_files", "file_exts", "base_branch",
		"refine_enabled", "refine_ai_model", "refine_temperature",
		"system_prompt", "prompt", "refine_system_prompt", "refine_prompt",
		"pr_title", "debug", "dry_run",
	}
	for _, key := range keys {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	// 令牌有多个历史来源，按顺序取第一个非空值
	_ = v.BindEnv("github_token", "GITHUB_TOKEN", "INPUT_GITHUB_TOKEN", "INPUT_TOKEN")
}

// Validate 校验配置；违反约束立即返回配置错误
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return translation.NewConfigError("API_KEY is required")
	}
	if c.OutputFiles == "" {
		return translation.NewConfigError("OUTPUT_FILES is required")
	}
	if c.TargetLang == "" {
		return translation.NewConfigError("TARGET_LANG must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return translation.NewConfigError("TEMPERATURE %v out of range [0,1]", c.Temperature)
	}
	if c.RefineTemperature < 0 || c.RefineTemperature > 1 {
		return translation.NewConfigError("REFINE_TEMPERATURE %v out of range [0,1]", c.RefineTemperature)
	}
	return nil
}

// ValidateInputs 在任何网络调用之前检查解析后的输入集合与输出模式是否相容
func (c *Config) ValidateInputs(inputCount int) error {
	return document.ValidatePattern(c.OutputFiles, inputCount)
}

// InputList 返回按空白切分并去掉 "./" 前缀的输入路径
func (c *Config) InputList() []string {
	fields := strings.Fields(c.InputFiles)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimPrefix(f, "./"))
	}
	return out
}

// ExtList 返回差异过滤用的扩展名列表，统一带点、小写
func (c *Config) ExtList() []string {
	raw := strings.FieldsFunc(c.FileExts, func(r rune) bool {
		return r == ' ' || r == ','
	})
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// LogSummary 输出脱敏后的配置概览
func (c *Config) LogSummary(log *zap.Logger) {
	fields := []zap.Field{
		zap.String("api_key", maskKey(c.APIKey)),
		zap.String("base_url", c.BaseURL),
		zap.String("ai_model", c.Model),
		zap.String("target_lang", c.TargetLang),
		zap.Float64("temperature", c.Temperature),
		zap.String("input_files", c.InputFiles),
		zap.String("output_files", c.OutputFiles),
		zap.String("pr_title", c.PRTitle),
		zap.Bool("refine_enabled", c.RefineEnabled),
	}
	if c.RefineEnabled {
		fields = append(fields,
			zap.String("refine_ai_model", c.RefineModel),
			zap.Float64("refine_temperature", c.RefineTemperature),
		)
	}
	log.Info("当前配置", fields...)
}

// maskKey 只露出密钥末四位
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return "********" + key[len(key)-4:]
}

// resolvePrompt 把指向存在文件的提示词替换为文件内容，其余按字面文本处理
func resolvePrompt(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.ContainsAny(trimmed, "\n") {
		return value, nil
	}
	info, err := os.Stat(trimmed)
	if err != nil || info.IsDir() {
		return value, nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return "", translation.NewConfigError("read prompt file %s: %v", trimmed, err)
	}
	return string(data), nil
}
