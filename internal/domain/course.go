package domain

import (
	"fmt"
	"strings"
)

// Destination is the UCAS scheme a course belongs to.
type Destination string

const (
	Undergraduate Destination = "Undergraduate"
	Postgraduate  Destination = "Postgraduate"
	Conservatoire Destination = "Conservatoire"
)

func (d Destination) Valid() bool {
	switch d {
	case Undergraduate, Postgraduate, Conservatoire:
		return true
	}
	return false
}

// SearchCriteria is built once per run (from env) and read-only afterwards.
// PredictedGrades does not filter the search itself; it only drives the
// confirmation-rate requests downstream.
type SearchCriteria struct {
	Subject           string
	Destination       Destination
	StudyYear         int
	PredictedGrades   []string
	QualificationType string
}

func (c SearchCriteria) Validate() error {
	if strings.TrimSpace(c.Subject) == "" {
		return fmt.Errorf("criteria: missing subject (COURSE)")
	}
	if !c.Destination.Valid() {
		return fmt.Errorf("criteria: unknown destination %q (want Undergraduate, Postgraduate or Conservatoire)", c.Destination)
	}
	if c.StudyYear < 1000 || c.StudyYear > 9999 {
		return fmt.Errorf("criteria: study year %d is not a 4-digit year", c.StudyYear)
	}
	if len(c.PredictedGrades) == 0 {
		return fmt.Errorf("criteria: empty predicted grades set (PREDICTED_GRADES)")
	}
	if strings.TrimSpace(c.QualificationType) == "" {
		return fmt.Errorf("criteria: missing qualification type")
	}
	return nil
}

// ParseCourseID accepts either a bare course id or a coursedisplay URL like
//
//	https://digital.ucas.com/coursedisplay/courses/b68ba80a-...-72b7d5ef519c?academicYearId=2025
//
// and returns the id.
func ParseCourseID(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		return raw
	}
	last := raw[strings.LastIndex(raw, "/")+1:]
	if i := strings.IndexByte(last, '?'); i >= 0 {
		last = last[:i]
	}
	return last
}
