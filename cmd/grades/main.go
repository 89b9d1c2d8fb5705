package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ucas-grades/internal/config"
	"ucas-grades/internal/devutil"
	"ucas-grades/internal/domain"
	"ucas-grades/internal/ucas"
)

// Debug tool: fetch and print grade data for one course id or
// coursedisplay URL.
func main() {
	var (
		rawID   = flag.String("id", "", "course id or coursedisplay URL (required)")
		profile = flag.String("profile", "", "predicted grade profile (default: first of PREDICTED_GRADES)")
	)
	flag.Parse()

	if *rawID == "" {
		log.Fatal("missing -id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := config.Load()
	crit, err := cfg.Criteria()
	if err != nil {
		log.Fatal(err)
	}

	grade := *profile
	if grade == "" {
		grade = crit.PredictedGrades[0]
	}

	id := domain.ParseCourseID(*rawID)
	client := ucas.New(cfg.SearchBaseURL, cfg.ServicesBaseURL)

	grades, err := client.HistoricGrades(ctx, id)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("historic grades for %s: %d records\n", id, len(grades.Results))
	for i, r := range grades.Results {
		fmt.Printf("%d) %v\n", i+1, devutil.Pick(r,
			"qualificationType", "mostCommonGrade", "minimumGrade", "maximumGrade",
			"overallOfferRate", "startYear", "endYear"))
	}

	rates, err := client.ConfirmationRates(ctx, []string{id}, crit.QualificationType, grade)
	if err != nil {
		log.Fatal(err)
	}

	if len(rates.Results) == 0 {
		fmt.Printf("confirmation rate at %s: not applicable\n", grade)
		return
	}
	fmt.Printf("confirmation rate at %s: %v\n", grade, devutil.Pick(rates.Results[0], "courseId", "isAggregate", "confirmationRate"))
}
