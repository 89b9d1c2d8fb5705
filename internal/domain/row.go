package domain

// Row is the flattened per-course record the CSV exporter emits. All
// destinations (CSV, future exports) should map from this model.
type Row struct {
	CourseID string

	// From the details API
	Provider        string
	ProviderSort    string
	Title           string
	Qualification   string
	StudyMode       string
	Duration        string
	Location        string
	InstitutionCode string
	ApplicationCode string
	ProviderURL     string

	// From the aggregate grades API (most recent aggregate record)
	MostCommonGrade  string
	MinimumGrade     string
	MaximumGrade     string
	OverallOfferRate string

	// Confirmation rate per predicted grade profile
	ConfirmationRates map[string]string
}

// FromDetail fills the detail-sourced fields of a Row.
func (r *Row) FromDetail(d Detail) {
	r.CourseID = d.ID()
	r.Provider = d.Provider()
	r.ProviderSort = d.ProviderSort()
	r.Title = d.Title()
	r.Qualification = d.Qualification()
	r.StudyMode = d.StudyMode()
	r.Duration = d.Duration()
	r.Location = d.Location()
	r.InstitutionCode = d.InstitutionCode()
	r.ApplicationCode = d.ApplicationCode()
	r.ProviderURL = d.ProviderCourseURL()
}

// FromAggregate fills the grades-sourced fields from one aggregate record.
func (r *Row) FromAggregate(g AggregateGrade) {
	r.MostCommonGrade = g.MostCommonGrade
	r.MinimumGrade = g.MinimumGrade
	r.MaximumGrade = g.MaximumGrade
	r.OverallOfferRate = g.OverallOfferRate
}
