package ucas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ucas-grades/internal/domain"
	"ucas-grades/internal/httpx"
)

const detailPath = "/search/api/v3/courses"

// CourseDetail fetches the details payload for one course id. All fields
// pass through unmodified into an open domain.Detail document; only
// transport errors and a missing/mismatched id echo fail the call.
func (c *Client) CourseDetail(ctx context.Context, id string, crit domain.SearchCriteria) (domain.Detail, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("courseDetailsRequest.coursePrimaryId", id)
	q.Set("courseDetailsRequest.academicYearId", strconv.Itoa(crit.StudyYear))
	q.Set("courseDetailsRequest.courseType", string(crit.Destination))
	detailURL := c.ServicesBaseURL + detailPath + "?" + q.Encode()

	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
		if err != nil {
			return nil, fmt.Errorf("ucas: build detail request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	var detail domain.Detail
	if err := httpx.DoJSON(ctx, c.HTTP, buildReq, &detail, c.Retry); err != nil {
		c.noteFailure(detailURL)
		return nil, fmt.Errorf("ucas: course detail %s: %w", id, err)
	}

	if detail.Course() == nil {
		return nil, &SchemaError{URL: detailURL, Reason: "missing course object"}
	}
	if echo := detail.ID(); echo == "" || !strings.EqualFold(echo, id) {
		return nil, &SchemaError{URL: detailURL, Reason: fmt.Sprintf("course id echo %q does not match %q", echo, id)}
	}

	return detail, nil
}
