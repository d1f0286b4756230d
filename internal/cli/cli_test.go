package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc1234", "2026-08-30")

	assert.Equal(t, "translate-refine", cmd.Use)
	assert.Contains(t, cmd.Version, "1.2.3")
	assert.Contains(t, cmd.Version, "commit abc1234")

	for _, name := range []string{"config", "debug", "dry-run"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "flag %s should be registered", name)
	}
}

func TestRunFailsFastOnBadConfig(t *testing.T) {
	// 缺少 API_KEY：配置错误要在任何网络调用之前返回
	t.Setenv("API_KEY", "")
	t.Setenv("OUTPUT_FILES", "docs/cn/*.md")

	cmd := NewRootCommand("dev", "none", "unknown")
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}
