package main

// ============================================================================
// 職責說明：
// 1. CLI 應用程式入口點
// 2. 初始化並執行 CLI 命令
// 3. 錯誤時輸出到 stderr 並以非零狀態結束
// ============================================================================

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/newsboy-dp/internal/cli"
)

func main() {
	rootCmd := cli.BuildCLI()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
