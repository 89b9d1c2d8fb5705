package export

import (
	"fmt"

	"ucas-grades/internal/domain"
	"ucas-grades/internal/store"
)

// Builder flattens the persisted file cache into exportable rows.
type Builder struct {
	Store  *store.Store
	Filter *Filter // nil means no filtering
}

// Rows walks every persisted course record, flattens it and applies the
// filter criteria.
func (b *Builder) Rows() ([]domain.Row, error) {
	var rows []domain.Row

	err := b.Store.Walk(func(path string, rec store.Record) error {
		var row domain.Row
		row.FromDetail(rec.Detail)
		if len(rec.Grades.Aggregates) > 0 {
			// first record is the overall aggregate in observed payloads
			row.FromAggregate(rec.Grades.Aggregates[0])
		}
		row.ConfirmationRates = rec.Grades.ConfirmationRates

		if b.Filter.Exclude(row) {
			return nil
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export: walk cache: %w", err)
	}
	return rows, nil
}
