package dataprocessing

import (
	"coastereda/internal/errors"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

// Keep selects which occurrence of a duplicated key survives
type Keep int

const (
	KeepFirstOccurrence Keep = iota
	KeepLastOccurrence
)

// DropDuplicates keeps one row per distinct combination of keys. Surviving
// rows stay in their original relative order. Null key cells equal each
// other. An empty keys slice compares whole rows.
func DropDuplicates(t *table.Table, keys []string, keep Keep) (*table.Table, error) {
	if len(keys) == 0 {
		keys = t.Names()
	}
	if missing := t.Missing(keys...); len(missing) > 0 {
		return nil, errors.NewSchemaError("missing deduplication key columns", missing)
	}

	n := t.Len()
	winner := make(map[string]int, n)
	for i := 0; i < n; i++ {
		k := t.RowKey(i, keys)
		if _, seen := winner[k]; seen && keep == KeepFirstOccurrence {
			continue
		}
		winner[k] = i
	}

	rows := make([]int, 0, len(winner))
	for i := 0; i < n; i++ {
		if winner[t.RowKey(i, keys)] == i {
			rows = append(rows, i)
		}
	}
	return t.Take(rows), nil
}

// DedupStats counts rows across the two deduplication stages
type DedupStats struct {
	Input       int
	AfterStageA int
	AfterStageB int
}

// Removed returns the number of rows dropped overall
func (s DedupStats) Removed() int {
	return s.Input - s.AfterStageB
}

// Deduplicate drops duplicate keys in the current order (stage A), then sorts
// ascending by sortColumn with nulls last and drops duplicates again keeping
// the first (stage B). The result has pairwise distinct keys and is ordered by
// sortColumn.
func Deduplicate(t *table.Table, keys []string, sortColumn string) (*table.Table, DedupStats, error) {
	counts := DedupStats{Input: t.Len()}

	stageA, err := DropDuplicates(t, keys, KeepFirstOccurrence)
	if err != nil {
		return nil, counts, err
	}
	counts.AfterStageA = stageA.Len()

	sorted, err := SortBy(stageA, sortColumn, false)
	if err != nil {
		return nil, counts, err
	}
	stageB, err := DropDuplicates(sorted, keys, KeepFirstOccurrence)
	if err != nil {
		return nil, counts, err
	}
	counts.AfterStageB = stageB.Len()

	return stageB, counts, nil
}

// KeepFirst keeps the first row of each composite key
func KeepFirst(t *table.Table) (*table.Table, error) {
	return DropDuplicates(t, domain.CompositeKey, KeepFirstOccurrence)
}

// KeepLast keeps the last row of each composite key
func KeepLast(t *table.Table) (*table.Table, error) {
	return DropDuplicates(t, domain.CompositeKey, KeepLastOccurrence)
}
