package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"ucas-grades/internal/config"
	"ucas-grades/internal/pipeline"
	"ucas-grades/internal/store"
	"ucas-grades/internal/ucas"
)

func main() {
	var (
		maxPages = flag.Int("max-pages", 0, "max search pages to fetch (0 = MAX_SEARCH_PAGES from env)")
	)
	flag.Parse()

	// timeout general grande
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	cfg := config.Load()
	crit, err := cfg.Criteria()
	if err != nil {
		log.Fatal(err)
	}

	pages := *maxPages
	if pages <= 0 {
		pages = cfg.MaxSearchPages
	}

	client := ucas.New(cfg.SearchBaseURL, cfg.ServicesBaseURL)
	st := store.New(filepath.Join(cfg.OutputDir, "data"))

	log.Printf("searching %q (%s, %d)", crit.Subject, crit.Destination, crit.StudyYear)

	path, count, err := pipeline.Search(ctx, client, st, crit, pages)
	if err != nil {
		if lerr := store.AppendErrorLog(cfg.OutputDir, client.FailedURIs()); lerr != nil {
			log.Printf("WARN: %v", lerr)
		}
		log.Fatal(err)
	}

	log.Printf("wrote %d course ids to %s", count, path)
}
