package main

import (
	"os"

	"github.com/BohuTANG/gpt-translate-refine/internal/cli"
)

// Version information
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)

	if err := rootCmd.Execute(); err != nil {
		// 失败细节已经由流程内的日志输出，这里只负责退出码
		os.Exit(1)
	}
}
