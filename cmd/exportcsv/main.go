package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"ucas-grades/internal/config"
	"ucas-grades/internal/export"
	"ucas-grades/internal/sftpclient"
	"ucas-grades/internal/store"
)

func main() {
	var (
		coursesOut = flag.String("courses-out", "", "courses csv path (default <OUTPUT>/data/courses.csv)")
		ratesOut   = flag.String("rates-out", "", "confirmation rates csv path (default <OUTPUT>/data/confirmation-rates.csv)")
		criteria   = flag.String("criteria", "", "filter criteria json path (default <OUTPUT>/data/course_filter_criteria.json)")
		uploadSFTP = flag.Bool("sftp", false, "upload the generated CSVs via SFTP")
	)
	flag.Parse()

	cfg := config.Load()
	base := filepath.Join(cfg.OutputDir, "data")

	coursesPath := orDefault(*coursesOut, filepath.Join(base, "courses.csv"))
	ratesPath := orDefault(*ratesOut, filepath.Join(base, "confirmation-rates.csv"))
	criteriaPath := orDefault(*criteria, filepath.Join(base, "course_filter_criteria.json"))

	filter, err := export.LoadFilter(criteriaPath)
	if err != nil {
		log.Fatal(err)
	}
	if filter != nil {
		log.Printf("loaded filter criteria from %s", criteriaPath)
	}

	builder := export.Builder{
		Store:  store.New(base),
		Filter: filter,
	}

	rows, err := builder.Rows()
	if err != nil {
		log.Fatal(err)
	}
	if len(rows) == 0 {
		log.Fatal("no persisted courses to export: run search + acquire first")
	}

	if err := writeCSV(coursesPath, func(f *os.File) error {
		return export.WriteCoursesCSV(f, rows)
	}); err != nil {
		log.Fatal(err)
	}
	if err := writeCSV(ratesPath, func(f *os.File) error {
		return export.WriteConfirmationRatesCSV(f, rows)
	}); err != nil {
		log.Fatal(err)
	}

	log.Printf("wrote %d courses to %s and %s", len(rows), coursesPath, ratesPath)

	if *uploadSFTP {
		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := sftpclient.UploadFiles(ctx, upCfg, coursesPath, ratesPath); err != nil {
			log.Fatal(err)
		}
		log.Printf("uploaded to sftp://%s:%d%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func writeCSV(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
