package domain

// AggregateGrade is one historical summary row from the loggedOut grades API.
type AggregateGrade struct {
	QualificationType      string `json:"qualificationType"`
	IsAggregate            bool   `json:"isAggregate"`
	MostCommonGrade        string `json:"mostCommonGrade"`
	OverallOfferRate       string `json:"overallOfferRate"`
	MinimumGrade           string `json:"minimumGrade"`
	MaximumGrade           string `json:"maximumGrade"`
	CoursesIncluded        int    `json:"coursesIncluded"`
	StartYear              int    `json:"startYear"`
	EndYear                int    `json:"endYear"`
	ProminentQualification string `json:"prominentQualification"`
}

// GradesResponse is the loggedOut endpoint payload. A course with no
// published history answers with an empty Results list (or a plain 404),
// which is a valid outcome, not an error.
type GradesResponse struct {
	CourseID string           `json:"courseId"`
	Results  []AggregateGrade `json:"results"`
}

// ConfirmationResult is the per-course entry of a loggedIn response.
// ConfirmationRate is a percentage string; NotApplicable marks a
// course+profile combination with no match.
type ConfirmationResult struct {
	CourseID         string `json:"courseId"`
	IsAggregate      bool   `json:"isAggregate"`
	ConfirmationRate string `json:"confirmationRate"`
	NotApplicable    bool   `json:"notApplicable"`
}

// ConfirmationResponse is the loggedIn endpoint payload for one
// (qualification type, grade profile) pair across many course ids.
type ConfirmationResponse struct {
	QualificationType string               `json:"qualificationType"`
	GradeProfile      string               `json:"gradeProfile"`
	Results           []ConfirmationResult `json:"results"`
}
