// ============================================================================
// Newsboy-DP Policy/Value Store
// ============================================================================
//
// Package: internal/policy
// File: table.go
// Purpose: Dense value-to-go and optimal-order tables indexed by
//          (stage, inventory)
//
// Layout:
//   values[t][inv+M]  t = 0..T     (row T is the terminal boundary, all zero)
//   orders[t][inv+M]  t = 0..T-1
//
// Ownership:
//   A Table is created per solve and filled one stage at a time. During a
//   stage each worker receives the row slices for its own inventory range
//   through Rows; ranges are disjoint, so no lock is needed.
//
// ============================================================================

package policy

import (
	"errors"
	"fmt"

	"github.com/ChuLiYu/newsboy-dp/pkg/types"
)

var (
	// ErrInventoryOutOfRange 庫存水位超出 [-M, M]，代表狀態空間大小設定錯誤
	ErrInventoryOutOfRange = errors.New("policy: inventory out of modeled range")
	// ErrStageOutOfRange 階段索引超出表格範圍
	ErrStageOutOfRange = errors.New("policy: stage out of range")
)

// Table holds the value function and policy of one solve.
type Table struct {
	horizon  int
	capacity int
	values   [][]float64
	orders   [][]int
}

// NewTable allocates zeroed tables for horizon T and capacity M. The
// terminal row values[T] is all zero and never written again.
func NewTable(horizon, capacity int) *Table {
	width := 2*capacity + 1

	t := &Table{
		horizon:  horizon,
		capacity: capacity,
		values:   make([][]float64, horizon+1),
		orders:   make([][]int, horizon),
	}
	for s := 0; s <= horizon; s++ {
		t.values[s] = make([]float64, width)
	}
	for s := 0; s < horizon; s++ {
		t.orders[s] = make([]int, width)
	}
	return t
}

// Horizon returns T.
func (t *Table) Horizon() int { return t.horizon }

// Capacity returns M.
func (t *Table) Capacity() int { return t.capacity }

// Levels returns the full inventory range [-M, M+1).
func (t *Table) Levels() types.Range {
	return types.Range{Lo: -t.capacity, Hi: t.capacity + 1}
}

func (t *Table) offset(inv int) (int, error) {
	if !t.Levels().Contains(inv) {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrInventoryOutOfRange, inv, -t.capacity, t.capacity)
	}
	return inv + t.capacity, nil
}

// Value returns ValueFunction[stage][inv] for stage 0..T.
func (t *Table) Value(stage, inv int) (float64, error) {
	if stage < 0 || stage > t.horizon {
		return 0, fmt.Errorf("%w: value stage %d", ErrStageOutOfRange, stage)
	}
	off, err := t.offset(inv)
	if err != nil {
		return 0, err
	}
	return t.values[stage][off], nil
}

// Order returns Policy[stage][inv] for stage 0..T-1.
func (t *Table) Order(stage, inv int) (int, error) {
	if stage < 0 || stage >= t.horizon {
		return 0, fmt.Errorf("%w: policy stage %d", ErrStageOutOfRange, stage)
	}
	off, err := t.offset(inv)
	if err != nil {
		return 0, err
	}
	return t.orders[stage][off], nil
}

// ValueRow returns the full value row of a stage indexed by inv+M. Callers
// must treat it as read-only.
func (t *Table) ValueRow(stage int) []float64 {
	return t.values[stage]
}

// Rows returns the value and order sub-slices of stage covering r. Index 0
// of each slice is inventory r.Lo. The caller owns the returned slices for
// the duration of the stage.
func (t *Table) Rows(stage int, r types.Range) ([]float64, []int, error) {
	if stage < 0 || stage >= t.horizon {
		return nil, nil, fmt.Errorf("%w: decision stage %d", ErrStageOutOfRange, stage)
	}
	if r.Len() == 0 {
		return nil, nil, nil
	}
	lo, err := t.offset(r.Lo)
	if err != nil {
		return nil, nil, err
	}
	if _, err := t.offset(r.Hi - 1); err != nil {
		return nil, nil, err
	}
	hi := lo + r.Len()
	return t.values[stage][lo:hi:hi], t.orders[stage][lo:hi:hi], nil
}
