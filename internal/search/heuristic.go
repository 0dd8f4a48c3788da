package search

import "golang.org/x/exp/constraints"

// manhattan is the search heuristic: admissible and consistent on a
// 4-connected unit-cost grid, which bidirectional A* requires for
// optimality.
func manhattan(x1, y1, x2, y2 int) int64 {
	return int64(abs(x1-x2) + abs(y1-y2))
}

// abs is written against constraints.Signed rather than a one-off
// int-only helper.
func abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
