package export

import (
	"encoding/csv"
	"io"
	"sort"

	"ucas-grades/internal/domain"
)

// Courses CSV template. Keep header order EXACT.
var coursesHeader = []string{
	"ucas_id",
	"provider",
	"institution_code",
	"course_code",
	"title",
	"qualification",
	"study_mode",
	"duration",
	"location",
	"most_common_grade",
	"minimum_grade",
	"maximum_grade",
	"overall_offer_rate",
	"provider_url",
}

// WriteCoursesCSV writes the flattened course rows.
// Non-mapped columns are intentionally left empty.
func WriteCoursesCSV(w io.Writer, rows []domain.Row) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(coursesHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.CourseID,
			r.Provider,
			r.InstitutionCode,
			r.ApplicationCode,
			r.Title,
			r.Qualification,
			r.StudyMode,
			r.Duration,
			r.Location,
			r.MostCommonGrade,
			r.MinimumGrade,
			r.MaximumGrade,
			r.OverallOfferRate,
			r.ProviderURL,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConfirmationRatesCSV writes one row per course with a column per
// (qualificationType, profile) rate key present anywhere in the input.
func WriteConfirmationRatesCSV(w io.Writer, rows []domain.Row) error {
	keys := rateKeys(rows)

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	header := append([]string{"ucas_id"}, keys...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := make([]string, 0, len(header))
		record = append(record, r.CourseID)
		for _, k := range keys {
			record = append(record, r.ConfirmationRates[k])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rateKeys(rows []domain.Row) []string {
	seen := map[string]bool{}
	var keys []string
	for _, r := range rows {
		for k := range r.ConfirmationRates {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
