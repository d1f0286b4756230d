package gitops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// prRequest GitHub 创建 PR 的请求体
type prRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"`
	Base  string `json:"base"`
}

// prResponse 创建 PR 的响应里关心的字段
type prResponse struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// CreatePullRequest 为翻译分支创建 PR：优先用 gh 命令行，失败回退 REST 接口
func (g *Git) CreatePullRequest(ctx context.Context, branch, title, body string) error {
	if !g.inActions || branch == "" || g.token == "" || g.repository == "" {
		g.log.Info("缺少创建 PR 的条件，跳过",
			zap.Bool("in_actions", g.inActions),
			zap.String("分支", branch))
		return nil
	}

	if err := g.createWithCLI(ctx, title, body); err == nil {
		return nil
	} else {
		g.log.Warn("gh 命令行创建 PR 失败，改用 REST 接口", zap.Error(err))
	}

	return g.createWithAPI(ctx, branch, title, body)
}

func (g *Git) createWithCLI(ctx context.Context, title, body string) error {
	cmd := exec.CommandContext(ctx, "gh", "pr", "create",
		"--title", title, "--body", body, "--base", g.BaseBranch())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String()))
	}

	g.log.Info("PR 创建完成", zap.String("url", strings.TrimSpace(stdout.String())))
	return nil
}

func (g *Git) createWithAPI(ctx context.Context, branch, title, body string) error {
	payload, err := json.Marshal(prRequest{
		Title: title,
		Body:  body,
		Head:  branch,
		Base:  g.BaseBranch(),
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/pulls", g.apiURL, g.repository)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("create pull request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var pr prResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return fmt.Errorf("decode pull request response: %w", err)
	}
	g.log.Info("PR 创建完成", zap.Int("pr", pr.Number), zap.String("url", pr.HTMLURL))
	return nil
}
