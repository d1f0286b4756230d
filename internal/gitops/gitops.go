package gitops

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Git 封装对 git 命令与 GitHub 的全部交互。
// 只有在 GitHub Actions 环境里才会写远端；本地运行一律跳过，保持无副作用
type Git struct {
	token      string
	repository string
	serverURL  string
	apiURL     string
	ref        string
	inActions  bool

	httpClient *http.Client
	log        *zap.Logger
}

// New 创建 git 操作器；token 可为空（只读操作不需要）
func New(token string, log *zap.Logger) *Git {
	return &Git{
		token:      token,
		repository: os.Getenv("GITHUB_REPOSITORY"),
		serverURL:  envOr("GITHUB_SERVER_URL", "https://github.com"),
		apiURL:     envOr("GITHUB_API_URL", "https://api.github.com"),
		ref:        os.Getenv("GITHUB_REF"),
		inActions:  os.Getenv("GITHUB_ACTIONS") == "true",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// InActions 是否运行在 GitHub Actions 环境
func (g *Git) InActions() bool {
	return g.inActions
}

// Setup 配置 git 身份与带令牌的远端地址，只在 Actions 环境执行
func (g *Git) Setup(ctx context.Context) error {
	if !g.inActions {
		return nil
	}
	g.log.Info("配置 git 运行环境")

	steps := [][]string{
		{"config", "--global", "--add", "safe.directory", "/github/workspace"},
		{"config", "--global", "user.name", "github-actions[bot]"},
		{"config", "--global", "user.email", "github-actions[bot]@users.noreply.github.com"},
	}
	for _, args := range steps {
		if _, err := g.run(ctx, args...); err != nil {
			return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
	}

	if g.token != "" && g.repository != "" {
		remote := fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", g.token, g.repository)
		if _, err := g.run(ctx, "remote", "set-url", "origin", remote); err != nil {
			return fmt.Errorf("set git remote: %w", err)
		}
	}
	return nil
}

// ChangedFiles 返回相对基准分支发生变化、且扩展名匹配的文件列表
func (g *Git) ChangedFiles(ctx context.Context, baseBranch string, exts []string) ([]string, error) {
	out, err := g.run(ctx, "diff", "--name-only", baseBranch+"...HEAD")
	if err != nil {
		return nil, fmt.Errorf("diff against %s: %w", baseBranch, err)
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !matchesExt(line, exts) {
			continue
		}
		files = append(files, line)
	}
	return files, nil
}

// CommitAndPush 提交产出文件并推送到新建的翻译分支，返回分支名。
// 无变化或不在 Actions 环境时返回空分支名
func (g *Git) CommitAndPush(ctx context.Context, paths []string, message string) (string, error) {
	if !g.inActions {
		g.log.Info("不在 GitHub Actions 环境，跳过提交与推送")
		return "", nil
	}

	status, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("git status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		g.log.Info("没有检测到需要提交的变化")
		return "", nil
	}

	branch := newTranslationBranch()
	g.log.Info("提交翻译产物", zap.String("分支", branch), zap.Int("文件数", len(paths)))

	existing, _ := g.run(ctx, "branch", "--list", branch)
	if strings.TrimSpace(existing) != "" {
		if _, err := g.run(ctx, "checkout", branch); err != nil {
			return "", fmt.Errorf("checkout %s: %w", branch, err)
		}
	} else {
		if _, err := g.run(ctx, "checkout", "-b", branch); err != nil {
			return "", fmt.Errorf("create branch %s: %w", branch, err)
		}
	}

	for _, p := range paths {
		if _, err := g.run(ctx, "add", p); err != nil {
			g.log.Warn("添加文件失败", zap.String("文件", p), zap.Error(err))
		}
	}

	if out, err := g.run(ctx, "commit", "-m", message); err != nil {
		if strings.Contains(out, "nothing to commit") || strings.Contains(err.Error(), "nothing to commit") {
			g.log.Info("没有需要提交的内容")
			return "", nil
		}
		return "", fmt.Errorf("git commit: %w", err)
	}

	if _, err := g.run(ctx, "push", "-u", "origin", branch); err != nil {
		return "", fmt.Errorf("git push: %w", err)
	}
	return branch, nil
}

// BaseBranch 从 GITHUB_REF 推断 PR 的目标分支，取不到时退回 main
func (g *Git) BaseBranch() string {
	if strings.HasPrefix(g.ref, "refs/heads/") {
		return strings.TrimPrefix(g.ref, "refs/heads/")
	}
	return "main"
}

// run 执行一条 git 命令，返回标准输出
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// newTranslationBranch 生成形如 translation-1a2b3c4d 的分支名
func newTranslationBranch() string {
	return "translation-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// matchesExt 判断路径扩展名是否在列表中；空列表放行所有文件
func matchesExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
