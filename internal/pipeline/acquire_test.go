package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"ucas-grades/internal/domain"
	"ucas-grades/internal/httpx"
	"ucas-grades/internal/store"
	"ucas-grades/internal/ucas"
)

// fakeUCAS fakes the three remote endpoints behind one RoundTripper and
// counts calls per endpoint.
type fakeUCAS struct {
	mux sync.Mutex

	detailCalls  int
	gradesCalls  int
	ratePosts    []ratePost
	failDetailOf string // id whose detail answers 404
	omitRateFor  string // id left out of confirmation results
}

type ratePost struct {
	courseIDs []string
	grade     string
}

func (f *fakeUCAS) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mux.Lock()
	defer f.mux.Unlock()

	url := req.URL.String()
	switch {
	case strings.Contains(url, "/search/api/v3/courses"):
		f.detailCalls++
		id := req.URL.Query().Get("courseDetailsRequest.coursePrimaryId")
		if id == f.failDetailOf {
			return respond(404, `{"error":"not found"}`), nil
		}
		return respond(200, fmt.Sprintf(`{
			"course": {
				"id": %q,
				"courseTitle": "Course %s",
				"provider": {"name": "Testshire", "providerSort": "Testshire"}
			}
		}`, id, id)), nil

	case strings.Contains(url, "/historic-grades-api/loggedOut/"):
		f.gradesCalls++
		id := url[strings.LastIndex(url, "/")+1:]
		return respond(200, fmt.Sprintf(`{
			"courseId": %q,
			"results": [{"qualificationType": "A_level", "isAggregate": true,
				"mostCommonGrade": "BBB", "startYear": 2019, "endYear": 2023}]
		}`, id)), nil

	case strings.Contains(url, "/historic-grades-api/loggedIn"):
		body, _ := io.ReadAll(req.Body)
		req.Body.Close()
		var payload struct {
			CourseIDs []string `json:"courseIds"`
			Grade     string   `json:"grade"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return respond(400, "bad payload"), nil
		}
		f.ratePosts = append(f.ratePosts, ratePost{payload.CourseIDs, payload.Grade})

		results := make([]string, 0, len(payload.CourseIDs))
		for _, id := range payload.CourseIDs {
			if id == f.omitRateFor {
				continue
			}
			results = append(results, fmt.Sprintf(`{"courseId": %q, "isAggregate": true, "confirmationRate": "72%%"}`, id))
		}
		return respond(200, fmt.Sprintf(`{
			"qualificationType": "A_level", "gradeProfile": %q,
			"results": [%s]
		}`, payload.Grade, strings.Join(results, ","))), nil
	}

	return respond(404, "no route"), nil
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newAcquirer(t *testing.T, fake *fakeUCAS, profiles []string) *Acquirer {
	t.Helper()

	client := ucas.New("https://digital.test", "https://services.test")
	client.HTTP = &http.Client{Transport: fake}
	client.Retry = httpx.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Retry5xx: true}
	client.Limiter = nil

	return &Acquirer{
		Client: client,
		Store:  store.New(t.TempDir()),
		Criteria: domain.SearchCriteria{
			Subject:           "engineering",
			Destination:       domain.Undergraduate,
			StudyYear:         2026,
			PredictedGrades:   profiles,
			QualificationType: "A_level",
		},
	}
}

func TestAcquirerBatchesOnePostPerProfile(t *testing.T) {
	fake := &fakeUCAS{}
	acq := newAcquirer(t, fake, []string{"AAB", "ABB"})

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%02d", i)
	}

	rep, err := acq.Run(context.Background(), ids)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Succeeded != 10 || rep.Failed != 0 {
		t.Fatalf("report = %+v", rep)
	}

	// 10 ids x 2 profiles must be exactly 2 POSTs, each listing all 10 ids
	if len(fake.ratePosts) != 2 {
		t.Fatalf("Expected 2 confirmation POSTs, got %d", len(fake.ratePosts))
	}
	for _, post := range fake.ratePosts {
		if len(post.courseIDs) != 10 {
			t.Errorf("POST for %s listed %d ids, want 10", post.grade, len(post.courseIDs))
		}
	}
}

func TestAcquirerPersistsMergedRecord(t *testing.T) {
	fake := &fakeUCAS{}
	acq := newAcquirer(t, fake, []string{"ABB"})

	rep, err := acq.Run(context.Background(), []string{"id-a"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Succeeded != 1 {
		t.Fatalf("report = %+v", rep)
	}

	var recs []store.Record
	if err := acq.Store.Walk(func(_ string, rec store.Record) error {
		recs = append(recs, rec)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 persisted record, got %d", len(recs))
	}

	rec := recs[0]
	if rec.Detail.Title() != "Course id-a" {
		t.Errorf("Title = %q", rec.Detail.Title())
	}
	if len(rec.Grades.Aggregates) != 1 {
		t.Errorf("Aggregates = %+v", rec.Grades.Aggregates)
	}
	if rec.Grades.ConfirmationRates[store.RateKey("A_level", "ABB")] != "72%" {
		t.Errorf("rates = %v", rec.Grades.ConfirmationRates)
	}
}

func TestAcquirerIsolatesFailedIdentifier(t *testing.T) {
	fake := &fakeUCAS{failDetailOf: "id-bad"}
	acq := newAcquirer(t, fake, []string{"ABB"})

	rep, err := acq.Run(context.Background(), []string{"id-a", "id-bad", "id-b"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Succeeded != 2 || rep.Failed != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if len(rep.Failures) != 1 || rep.Failures[0].CourseID != "id-bad" {
		t.Errorf("Failures = %+v", rep.Failures)
	}

	// the failed id must not appear in the confirmation batch
	if len(fake.ratePosts) != 1 {
		t.Fatalf("Expected 1 POST, got %d", len(fake.ratePosts))
	}
	for _, id := range fake.ratePosts[0].courseIDs {
		if id == "id-bad" {
			t.Error("failed id leaked into confirmation batch")
		}
	}
}

func TestAcquirerMarksMissingResultNotApplicable(t *testing.T) {
	fake := &fakeUCAS{omitRateFor: "id-b"}
	acq := newAcquirer(t, fake, []string{"ABB"})

	if _, err := acq.Run(context.Background(), []string{"id-a", "id-b"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	err := acq.Store.Walk(func(_ string, rec store.Record) error {
		if rec.Detail.ID() == "id-b" {
			found = true
			if got := rec.Grades.ConfirmationRates[store.RateKey("A_level", "ABB")]; got != store.NotApplicable {
				t.Errorf("rate for id-b = %q, want %q", got, store.NotApplicable)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !found {
		t.Fatal("record for id-b not persisted")
	}
}

func TestAcquirerRerunUsesCache(t *testing.T) {
	fake := &fakeUCAS{}
	acq := newAcquirer(t, fake, []string{"ABB"})
	ids := []string{"id-a", "id-b"}

	if _, err := acq.Run(context.Background(), ids); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	gradesAfterFirst := fake.gradesCalls
	postsAfterFirst := len(fake.ratePosts)

	rep, err := acq.Run(context.Background(), ids)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if rep.Succeeded != 2 {
		t.Fatalf("report = %+v", rep)
	}

	if fake.gradesCalls != gradesAfterFirst {
		t.Errorf("Expected cached aggregates to skip grades fetches, got %d extra", fake.gradesCalls-gradesAfterFirst)
	}
	if len(fake.ratePosts) != postsAfterFirst {
		t.Errorf("Expected cached profiles to skip confirmation POSTs, got %d extra", len(fake.ratePosts)-postsAfterFirst)
	}
}

func TestAcquirerParallelWorkers(t *testing.T) {
	fake := &fakeUCAS{}
	acq := newAcquirer(t, fake, []string{"ABB"})
	acq.Workers = 4

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%02d", i)
	}

	rep, err := acq.Run(context.Background(), ids)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Succeeded != 12 || rep.Failed != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if len(fake.ratePosts) != 1 {
		t.Errorf("Expected 1 POST regardless of workers, got %d", len(fake.ratePosts))
	}
}

func TestReportString(t *testing.T) {
	rep := Report{Succeeded: 2, Failed: 1, Failures: []Failure{{CourseID: "id-x", Err: fmt.Errorf("boom")}}}
	s := rep.String()
	if !strings.Contains(s, "succeeded=2") || !strings.Contains(s, "id-x: boom") {
		t.Errorf("Report.String() = %q", s)
	}
}
