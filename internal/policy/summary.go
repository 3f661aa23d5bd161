package policy

import "fmt"

// StageSummary condenses one policy row into base-stock terms.
type StageSummary struct {
	Stage int
	// OrderUpTo is the post-order level reached from an empty shelf.
	OrderUpTo int
	// NoOrderFrom is the smallest inventory at which nothing is ordered;
	// M+1 when the policy orders at every level.
	NoOrderFrom int
	// ExpectedCost is ValueFunction[stage][0].
	ExpectedCost float64
}

// Summarize builds the base-stock summary of every decision stage.
func (t *Table) Summarize() ([]StageSummary, error) {
	out := make([]StageSummary, 0, t.horizon)
	for stage := 0; stage < t.horizon; stage++ {
		order, err := t.Order(stage, 0)
		if err != nil {
			return nil, fmt.Errorf("summarize stage %d: %w", stage, err)
		}

		noOrder := t.capacity + 1
		row := t.orders[stage]
		for off, q := range row {
			if q == 0 {
				noOrder = off - t.capacity
				break
			}
		}

		out = append(out, StageSummary{
			Stage:        stage,
			OrderUpTo:    order,
			NoOrderFrom:  noOrder,
			ExpectedCost: t.values[stage][t.capacity],
		})
	}
	return out, nil
}
