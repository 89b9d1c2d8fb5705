package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ucas-grades/internal/config"
	"ucas-grades/internal/pipeline"
	"ucas-grades/internal/store"
	"ucas-grades/internal/ucas"
)

func main() {
	var (
		workers = flag.Int("workers", 0, "parallel fetch workers (0 = MAX_WORKERS from env, default sequential)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Hour)
	defer cancel()

	cfg := config.Load()
	crit, err := cfg.Criteria()
	if err != nil {
		log.Fatal(err)
	}

	w := *workers
	if w <= 0 {
		w = cfg.MaxWorkers
	}

	client := ucas.New(cfg.SearchBaseURL, cfg.ServicesBaseURL)
	st := store.New(filepath.Join(cfg.OutputDir, "data"))

	ids, err := st.ReadIDList(crit.Subject)
	if err != nil {
		log.Fatal(err)
	}
	if len(ids) == 0 {
		log.Fatalf("no course ids at %s: run the search stage first", st.IDListPath(crit.Subject))
	}

	log.Printf("acquiring %d courses for %q (profiles=%v)", len(ids), crit.Subject, crit.PredictedGrades)

	acq := &pipeline.Acquirer{
		Client:   client,
		Store:    st,
		Criteria: crit,
		Workers:  w,
	}

	rep, err := acq.Run(ctx, ids)
	if err != nil {
		log.Fatal(err)
	}

	if lerr := store.AppendErrorLog(cfg.OutputDir, client.FailedURIs()); lerr != nil {
		log.Printf("WARN: %v", lerr)
	}

	fmt.Println(rep.String())

	if rep.Succeeded == 0 {
		os.Exit(1)
	}
}
