package store

import (
	"fmt"

	"dario.cat/mergo"

	"ucas-grades/internal/domain"
)

// aggregateKey identifies one aggregate record. Uniqueness of
// (qualificationType, startYear, endYear) is inferred from observed
// payloads; duplicates inside one payload collapse last-wins.
type aggregateKey struct {
	qualificationType string
	startYear         int
	endYear           int
}

func keyOf(g domain.AggregateGrade) aggregateKey {
	return aggregateKey{g.QualificationType, g.StartYear, g.EndYear}
}

// mergeRecord overlays the new payloads onto an existing record:
//   - detail: field-by-field, new wins, fields absent from the new payload
//     are retained;
//   - aggregates: replace-by-key, records whose key is absent from the new
//     payload are retained in their original position;
//   - confirmation rates: overwritten per (qualificationType, profile) key.
func mergeRecord(old Record, detail domain.Detail, aggregates []domain.AggregateGrade, rates map[string]string) (Record, error) {
	out := old

	if detail != nil {
		if out.Detail == nil {
			out.Detail = domain.Detail{}
		}
		dst := map[string]any(out.Detail)
		if err := mergo.Merge(&dst, map[string]any(detail), mergo.WithOverride); err != nil {
			return Record{}, fmt.Errorf("store: merge detail: %w", err)
		}
		out.Detail = domain.Detail(dst)
	}

	out.Grades.Aggregates = mergeAggregates(old.Grades.Aggregates, aggregates)

	if len(rates) > 0 {
		if out.Grades.ConfirmationRates == nil {
			out.Grades.ConfirmationRates = make(map[string]string, len(rates))
		}
		for k, v := range rates {
			out.Grades.ConfirmationRates[k] = v
		}
	}

	return out, nil
}

func mergeAggregates(old, new []domain.AggregateGrade) []domain.AggregateGrade {
	if len(new) == 0 {
		return old
	}

	replacements := make(map[aggregateKey]domain.AggregateGrade, len(new))
	for _, g := range new {
		replacements[keyOf(g)] = g
	}

	out := make([]domain.AggregateGrade, 0, len(old)+len(new))
	seen := make(map[aggregateKey]bool, len(old))
	for _, g := range old {
		k := keyOf(g)
		if r, ok := replacements[k]; ok {
			g = r
		}
		out = append(out, g)
		seen[k] = true
	}
	for _, g := range new {
		k := keyOf(g)
		if !seen[k] {
			out = append(out, g)
			seen[k] = true
		}
	}
	return out
}
