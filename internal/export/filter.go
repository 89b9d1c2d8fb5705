package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"ucas-grades/internal/domain"
)

/*
Filter criteria file shape:

	{
	  "criteria": [
	    {"include": {"study_mode": ["Full-time"]}},
	    {"exclude": {"minimum_grade": ["A*A*A*", "A*A*A"]}}
	  ]
	}

Field names match the courses CSV header.
*/
type Filter struct {
	Criteria []Criterion `json:"criteria"`
}

type Criterion struct {
	Include map[string][]string `json:"include,omitempty"`
	Exclude map[string][]string `json:"exclude,omitempty"`
}

// LoadFilter reads a criteria file. A missing file yields a nil filter
// (nothing excluded).
func LoadFilter(path string) (*Filter, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("export: read filter criteria: %w", err)
	}

	var f Filter
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("export: decode filter criteria %s: %w", path, err)
	}
	return &f, nil
}

// Exclude reports whether a row fails any criterion: a value outside an
// include list, or inside an exclude list. A nil filter excludes nothing.
func (f *Filter) Exclude(row domain.Row) bool {
	if f == nil {
		return false
	}
	for _, c := range f.Criteria {
		for field, allowed := range c.Include {
			if !contains(allowed, fieldValue(row, field)) {
				return true
			}
		}
		for field, banned := range c.Exclude {
			if contains(banned, fieldValue(row, field)) {
				return true
			}
		}
	}
	return false
}

func contains(vals []string, v string) bool {
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}

func fieldValue(r domain.Row, field string) string {
	switch field {
	case "ucas_id":
		return r.CourseID
	case "provider":
		return r.Provider
	case "institution_code":
		return r.InstitutionCode
	case "course_code":
		return r.ApplicationCode
	case "title":
		return r.Title
	case "qualification":
		return r.Qualification
	case "study_mode":
		return r.StudyMode
	case "duration":
		return r.Duration
	case "location":
		return r.Location
	case "most_common_grade":
		return r.MostCommonGrade
	case "minimum_grade":
		return r.MinimumGrade
	case "maximum_grade":
		return r.MaximumGrade
	case "overall_offer_rate":
		return r.OverallOfferRate
	case "provider_url":
		return r.ProviderURL
	}
	return ""
}
