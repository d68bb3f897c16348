package classify

import (
	"recat/internal/exercise"
	"recat/internal/rules"
)

// Classify recategorizes records in order and returns the updated records
// together with one change entry per record whose category moved. The input
// slice and its records are left untouched.
//
// The result has the same length and order as the input. Running Classify
// again on its own output produces no further changes.
func Classify(rs *rules.RuleSet, records []exercise.Record) ([]exercise.Record, []exercise.Change, error) {
	engine := NewEngine(rs)

	results := make([]Result, len(records))
	for i, rec := range records {
		res, err := engine.ClassifyRecord(rec)
		if err != nil {
			return nil, nil, err
		}
		results[i] = res
	}

	updated, changes := Collect(results)
	return updated, changes, nil
}

// Collect assembles per-record results, indexed like the input, into the
// updated record list and the ordered change list.
func Collect(results []Result) ([]exercise.Record, []exercise.Change) {
	updated := make([]exercise.Record, 0, len(results))
	changes := []exercise.Change{}

	for _, res := range results {
		updated = append(updated, res.Record)
		if res.Changed {
			changes = append(changes, res.Change)
		}
	}
	return updated, changes
}

// Distribution counts records per category.
func Distribution(records []exercise.Record) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Category()]++
	}
	return counts
}
