package pipeline

import (
	"fmt"
	"strings"
)

// Failure records why one course id failed.
type Failure struct {
	CourseID string
	Err      error
}

// Report summarizes an acquire run. A run is considered successful when at
// least one id succeeded.
type Report struct {
	Succeeded int
	Failed    int
	Failures  []Failure
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "acquire: succeeded=%d failed=%d", r.Succeeded, r.Failed)
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", f.CourseID, f.Err)
	}
	return b.String()
}
