package pipeline

import (
	"context"
	"fmt"

	"ucas-grades/internal/domain"
	"ucas-grades/internal/store"
	"ucas-grades/internal/ucas"
)

// Search runs stage (a): paginated course search, then writes the id list
// to its well-known location for the acquire stage. All-or-nothing: nothing
// is written when any page fails.
func Search(ctx context.Context, client *ucas.Client, st *store.Store, crit domain.SearchCriteria, maxPages int) (string, int, error) {
	ids, err := client.SearchCourseIDs(ctx, crit, maxPages)
	if err != nil {
		return "", 0, err
	}

	path, err := st.WriteIDList(crit.Subject, ids)
	if err != nil {
		return "", 0, fmt.Errorf("pipeline: write id list: %w", err)
	}
	return path, len(ids), nil
}
