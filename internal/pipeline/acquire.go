package pipeline

import (
	"context"
	"fmt"

	"ucas-grades/internal/concurrency"
	"ucas-grades/internal/domain"
	"ucas-grades/internal/store"
	"ucas-grades/internal/ucas"
)

// Acquirer runs stage (b) of the pipeline: per-id detail + aggregate-grades
// fetches, batched confirmation-rate fetches, then merge/persist.
type Acquirer struct {
	Client   *ucas.Client
	Store    *store.Store
	Criteria domain.SearchCriteria

	// Workers bounds the per-id fetch pool. <=1 means sequential, which is
	// the default: the services API dislikes concurrent bursts. Merges are
	// serialized per record path regardless.
	Workers int
}

// courseState carries one id through the stages.
type courseState struct {
	id         string
	path       string
	detail     domain.Detail
	aggregates []domain.AggregateGrade
	pending    []string          // profiles with no cached confirmation rate
	rates      map[string]string // RateKey -> rate, filled by stage 2
	err        error
}

// Run processes ids end to end and reports per-id outcomes. A failed id
// never aborts its siblings; re-running against the same id list is
// idempotent (cached aggregates and profiles are not refetched).
func (a *Acquirer) Run(ctx context.Context, ids []string) (Report, error) {
	states := make([]*courseState, len(ids))
	for i, id := range ids {
		states[i] = &courseState{id: domain.ParseCourseID(id)}
	}

	a.fetchCourses(ctx, states)
	a.fetchConfirmationRates(ctx, states)
	a.persist(ctx, states)

	var rep Report
	for _, st := range states {
		if st.err != nil {
			rep.Failed++
			rep.Failures = append(rep.Failures, Failure{CourseID: st.id, Err: st.err})
			continue
		}
		rep.Succeeded++
	}
	return rep, nil
}

// fetchCourses fills detail, path and aggregates for every id.
func (a *Acquirer) fetchCourses(ctx context.Context, states []*courseState) {
	opts := concurrency.ParallelOptions{MaxWorkers: a.Workers}

	concurrency.ForEach(ctx, states, opts, func(ctx context.Context, _ int, st *courseState) error {
		fmt.Printf("fetching course %s\n", st.id)

		detail, err := a.Client.CourseDetail(ctx, st.id, a.Criteria)
		if err != nil {
			st.err = err
			return err
		}
		st.detail = detail

		path, err := a.Store.CoursePath(detail)
		if err != nil {
			st.err = err
			return err
		}
		st.path = path

		existing, ok, err := a.Store.Load(path)
		if err != nil {
			st.err = err
			return err
		}

		fmt.Printf("  🎓 %s, %s (%s)\n", detail.Provider(), detail.Title(), detail.Qualification())

		// Aggregates rarely change within a cycle; reuse the cached copy.
		if ok && len(existing.Grades.Aggregates) > 0 {
			st.aggregates = nil // keep what is on disk
		} else {
			grades, err := a.Client.HistoricGrades(ctx, st.id)
			if err != nil {
				st.err = err
				return err
			}
			st.aggregates = grades.Results
		}

		st.pending = store.MissingProfiles(existing, a.Criteria.QualificationType, a.Criteria.PredictedGrades)
		st.rates = make(map[string]string)
		return nil
	})
}

// fetchConfirmationRates issues one POST per (qualification type, profile)
// pair, each covering every id still missing that profile. Never one POST
// per id.
func (a *Acquirer) fetchConfirmationRates(ctx context.Context, states []*courseState) {
	qual := a.Criteria.QualificationType

	for _, profile := range a.Criteria.PredictedGrades {
		var batch []*courseState
		var batchIDs []string
		for _, st := range states {
			if st.err != nil {
				continue
			}
			if hasProfile(st.pending, profile) {
				batch = append(batch, st)
				batchIDs = append(batchIDs, st.id)
			}
		}
		if len(batch) == 0 {
			continue
		}

		fmt.Printf("fetching confirmation rates at %s for %d courses\n", profile, len(batchIDs))

		resp, err := a.Client.ConfirmationRates(ctx, batchIDs, qual, profile)
		if err != nil {
			for _, st := range batch {
				st.err = fmt.Errorf("confirmation rates %s: %w", profile, err)
			}
			continue
		}

		byID := make(map[string]domain.ConfirmationResult, len(resp.Results))
		for _, r := range resp.Results {
			byID[r.CourseID] = r
		}

		key := store.RateKey(qual, profile)
		for _, st := range batch {
			r, ok := byID[st.id]
			if !ok || r.NotApplicable || r.ConfirmationRate == "" {
				st.rates[key] = store.NotApplicable
				continue
			}
			st.rates[key] = r.ConfirmationRate
		}
	}
}

// persist merges and writes every course whose detail arrived, serialized
// per path. Courses with a failed confirmation batch still get their detail
// and aggregates cached, so the next run only fetches what is missing.
func (a *Acquirer) persist(ctx context.Context, states []*courseState) {
	locks := concurrency.NewKeyedMutex()
	opts := concurrency.ParallelOptions{MaxWorkers: a.Workers}

	concurrency.ForEach(ctx, states, opts, func(_ context.Context, _ int, st *courseState) error {
		if st.detail == nil || st.path == "" {
			return nil
		}
		unlock := locks.Lock(st.path)
		defer unlock()

		if err := a.Store.Save(st.path, st.detail, st.aggregates, st.rates); err != nil {
			if st.err == nil {
				st.err = err
			}
			return err
		}
		return nil
	})
}

func hasProfile(profiles []string, p string) bool {
	for _, v := range profiles {
		if v == p {
			return true
		}
	}
	return false
}
