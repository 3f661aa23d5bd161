package worker

import (
	"time"

	"github.com/ChuLiYu/newsboy-dp/pkg/types"
)

// Task 代表一個階段內某個庫存區間的計算任務
type Task struct {
	Stage int         // 決策階段 t
	Range types.Range // 本任務獨佔的庫存區間 [Lo, Hi)
}

// Result 代表任務執行結果
type Result struct {
	WorkerID int           // 執行此任務的 Worker
	Task     Task          // 原始任務
	Err      error         // 錯誤訊息（如果有）
	Duration time.Duration // 實際執行時間
}

// Executor 任務執行函式，由 Pool 內所有 Worker 共用
type Executor func(task Task) error
