// Package types 定義了 newsboy-dp 系統中共用的領域資料結構
package types

// Range 庫存區間 [Lo, Hi)，一個 worker 在單一階段內獨佔的庫存水位
type Range struct {
	Lo int `json:"lo"` // 起始庫存水位（含）
	Hi int `json:"hi"` // 結束庫存水位（不含）
}

// Len 區間內的庫存水位數量
func (r Range) Len() int {
	if r.Hi < r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

// Contains 判斷庫存水位是否落在區間內
func (r Range) Contains(inv int) bool {
	return inv >= r.Lo && inv < r.Hi
}

// Step 模擬軌跡中的單一階段紀錄，產生後不再修改
type Step struct {
	Stage           int     `json:"stage"`            // 階段索引（0 起算）
	InventoryBefore int     `json:"inventory_before"` // 訂貨前庫存（負值為缺貨積壓）
	Order           int     `json:"order"`            // 依策略下單數量
	Demand          int     `json:"demand"`           // 實際需求
	InventoryAfter  int     `json:"inventory_after"`  // 滿足需求後的庫存
	Cost            float64 `json:"cost"`             // 本階段實現成本
}

// Trajectory 一次模擬的完整結果
type Trajectory struct {
	Steps     []Step  `json:"steps"`      // 依階段排序的紀錄
	TotalCost float64 `json:"total_cost"` // 全部階段成本總和
}
