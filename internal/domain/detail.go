package domain

import (
	"strconv"
	"strings"
)

// Detail is the course-details payload kept as an open document. The details
// API's shape is owned by UCAS and drifts over time, so fields pass through
// verbatim instead of being bound to a struct. Accessors below tolerate
// missing or oddly-typed values and return "" rather than panic.
type Detail map[string]any

// Str returns the string at a nested key path, or "".
func (d Detail) Str(path ...string) string {
	var cur any = map[string]any(d)
	for _, k := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[k]
	}
	switch v := cur.(type) {
	case string:
		return v
	default:
		return ""
	}
}

// Course returns the nested "course" object.
func (d Detail) Course() map[string]any {
	if m, ok := d["course"].(map[string]any); ok {
		return m
	}
	return nil
}

// ID is the course id echoed inside the payload.
func (d Detail) ID() string {
	return d.Str("course", "id")
}

// Title is the course title.
func (d Detail) Title() string {
	return d.Str("course", "courseTitle")
}

// ApplicationCode is the UCAS application code for the course.
func (d Detail) ApplicationCode() string {
	return d.Str("course", "applicationCode")
}

// Provider is the display name of the providing institution.
func (d Detail) Provider() string {
	return d.Str("course", "provider", "name")
}

// ProviderSort is the sortable provider name used for the on-disk layout
// ("University of Oxford" files under "oxford-university-of" style keys).
func (d Detail) ProviderSort() string {
	if s := d.Str("course", "provider", "providerSort"); s != "" {
		return s
	}
	return d.Provider()
}

// InstitutionCode is the provider's UCAS institution code.
func (d Detail) InstitutionCode() string {
	return d.Str("course", "provider", "institutionCode")
}

// Option returns the first entry of course.options, where location,
// qualification and study mode live. Courses always carry at least one
// option in practice; nil when absent.
func (d Detail) Option() map[string]any {
	course := d.Course()
	if course == nil {
		return nil
	}
	opts, ok := course["options"].([]any)
	if !ok || len(opts) == 0 {
		return nil
	}
	m, _ := opts[0].(map[string]any)
	return m
}

func (d Detail) optionStr(path ...string) string {
	var cur any = d.Option()
	for _, k := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[k]
	}
	s, _ := cur.(string)
	return s
}

// Qualification is the outcome qualification caption (e.g. "BSc (Hons)").
func (d Detail) Qualification() string {
	return d.optionStr("outcomeQualification", "caption")
}

// StudyMode is the study mode caption (e.g. "Full-time").
func (d Detail) StudyMode() string {
	return d.optionStr("studyMode", "caption")
}

// Location is the teaching location name.
func (d Detail) Location() string {
	return d.optionStr("location", "name")
}

// ProviderCourseURL is the provider's own page for the course.
func (d Detail) ProviderCourseURL() string {
	return d.optionStr("providerCourseUrl")
}

// Duration renders options[0].duration as "3 Years"-style text.
func (d Detail) Duration() string {
	opt := d.Option()
	if opt == nil {
		return ""
	}
	dur, ok := opt["duration"].(map[string]any)
	if !ok {
		return ""
	}
	qty := ""
	switch q := dur["quantity"].(type) {
	case float64:
		// quantity arrives as a JSON number (3 for "3 Years")
		qty = strconv.FormatFloat(q, 'f', -1, 64)
	case string:
		qty = q
	}
	caption := ""
	if dt, ok := dur["durationType"].(map[string]any); ok {
		caption, _ = dt["caption"].(string)
	}
	return strings.TrimSpace(qty + " " + caption)
}
