package main

// Audit a single URL from the command line:
//   go run ./cmd/audit https://example.com

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"web4all-backend/internal/checker"
	"web4all-backend/internal/fetch"
	"web4all-backend/internal/htmldoc"
	"web4all-backend/internal/report"
	"web4all-backend/internal/shared/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: audit <url>")
		os.Exit(2)
	}
	url := os.Args[1]

	cfg := config.Load()
	fetcher := fetch.New(cfg.FetchTimeout, cfg.FetchUserAgent)

	body, err := fetcher.Fetch(context.Background(), url)
	if err != nil {
		log.Fatalf("fetch %s: %v", url, err)
	}

	doc, err := htmldoc.Parse(bytes.NewReader(body))
	if err != nil {
		log.Fatalf("parse page: %v", err)
	}

	rep := checker.Run(doc, url)
	fmt.Print(report.Markdown(rep))
}
