package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"ucas-grades/internal/domain"
)

type Config struct {
	// UCAS endpoints
	SearchBaseURL   string
	ServicesBaseURL string

	// Search criteria
	Subject           string
	Destination       string
	StudyYear         int
	PredictedGrades   []string
	QualificationType string

	// Run behavior
	OutputDir      string
	MaxSearchPages int
	MaxWorkers     int

	// SFTP (exportcsv -sftp)
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
}

func Load() Config {
	return Config{
		SearchBaseURL:   getenv("UCAS_URL", "https://digital.ucas.com"),
		ServicesBaseURL: getenv("UCAS_SERVICES_URL", "https://services.ucas.com"),

		Subject:           getenv("COURSE", "Computer Science"),
		Destination:       getenv("DESTINATION", "Undergraduate"),
		StudyYear:         getenvInt("STUDY_YEAR", time.Now().Year()+1),
		PredictedGrades:   splitList(getenv("PREDICTED_GRADES", "ABB")),
		QualificationType: getenv("QUALIFICATION_TYPE", "A_level"),

		OutputDir:      getenv("OUTPUT", "tmp"),
		MaxSearchPages: getenvInt("MAX_SEARCH_PAGES", 200),
		MaxWorkers:     getenvInt("MAX_WORKERS", 1),

		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOST_KEY", true),
	}
}

// Criteria validates the search-related fields and freezes them into a
// domain.SearchCriteria. All validation happens here, before any network call.
func (c Config) Criteria() (domain.SearchCriteria, error) {
	crit := domain.SearchCriteria{
		Subject:           strings.TrimSpace(c.Subject),
		Destination:       domain.Destination(c.Destination),
		StudyYear:         c.StudyYear,
		PredictedGrades:   c.PredictedGrades,
		QualificationType: c.QualificationType,
	}
	if err := crit.Validate(); err != nil {
		return domain.SearchCriteria{}, err
	}
	return crit, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
