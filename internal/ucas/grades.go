package ucas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"ucas-grades/internal/domain"
	"ucas-grades/internal/httpx"
)

const (
	historicGradesPath   = "/historic-grades-api/loggedOut/"
	confirmationRatePath = "/historic-grades-api/loggedIn"
)

// HistoricGrades fetches the aggregate historical-grades records for one
// course. No authentication. A 404 means the course has no published
// history and comes back as an empty result, not an error.
func (c *Client) HistoricGrades(ctx context.Context, id string) (domain.GradesResponse, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return domain.GradesResponse{}, err
	}

	gradesURL := c.ServicesBaseURL + historicGradesPath + url.PathEscape(id)

	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, gradesURL, nil)
		if err != nil {
			return nil, fmt.Errorf("ucas: build grades request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	var out domain.GradesResponse
	if err := httpx.DoJSON(ctx, c.HTTP, buildReq, &out, c.Retry); err != nil {
		if httpx.IsNotFound(err) {
			return domain.GradesResponse{CourseID: id}, nil
		}
		c.noteFailure(gradesURL)
		return domain.GradesResponse{}, fmt.Errorf("ucas: historic grades %s: %w", id, err)
	}
	if out.CourseID == "" {
		out.CourseID = id
	}
	return out, nil
}

type confirmationRateRequest struct {
	CourseIDs         []string `json:"courseIds"`
	QualificationType string   `json:"qualificationType"`
	Grade             string   `json:"grade"`
}

// ConfirmationRates fetches the confirmation rate for one grade profile
// across many course ids in a single POST. Callers must batch: one call per
// (qualification type, profile) pair covering every pending id, never one
// call per id.
func (c *Client) ConfirmationRates(ctx context.Context, ids []string, qualificationType, grade string) (domain.ConfirmationResponse, error) {
	if len(ids) == 0 {
		return domain.ConfirmationResponse{QualificationType: qualificationType, GradeProfile: grade}, nil
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return domain.ConfirmationResponse{}, err
	}

	rateURL := c.ServicesBaseURL + confirmationRatePath

	payload, err := json.Marshal(confirmationRateRequest{
		CourseIDs:         ids,
		QualificationType: qualificationType,
		Grade:             grade,
	})
	if err != nil {
		return domain.ConfirmationResponse{}, fmt.Errorf("ucas: marshal confirmation request: %w", err)
	}

	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rateURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("ucas: build confirmation request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	var out domain.ConfirmationResponse
	if err := httpx.DoJSON(ctx, c.HTTP, buildReq, &out, c.Retry); err != nil {
		c.noteFailure(rateURL)
		return domain.ConfirmationResponse{}, fmt.Errorf("ucas: confirmation rates %s/%s: %w", qualificationType, grade, err)
	}
	if out.QualificationType == "" {
		out.QualificationType = qualificationType
	}
	if out.GradeProfile == "" {
		out.GradeProfile = grade
	}
	return out, nil
}
