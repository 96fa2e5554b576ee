// Command infidex-demo is a thin CLI wrapper around the embedded INFIDEX
// engine: it loads a JSON document file, builds the index, runs one query,
// and prints the ranked results. It exists to give the library a runnable
// entry point; per spec §1 Non-goals it is not a design focus.
//
// Usage:
//
//	go run ./cmd/infidex-demo -docs docs.json -query "dark knight" [-config config.yaml]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/infidex/infidex/internal/document"
	"github.com/infidex/infidex/internal/engine"
	"github.com/infidex/infidex/pkg/config"
	"github.com/infidex/infidex/pkg/logger"
	"github.com/infidex/infidex/pkg/metrics"
)

// inputDocument is the JSON shape of one entry in the -docs file.
type inputDocument struct {
	Key    int64  `json:"key"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Client string `json:"client_info"`
}

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	docsPath := flag.String("docs", "", "path to a JSON array of documents to index")
	query := flag.String("query", "", "query text to search for")
	maxResults := flag.Int("max-results", 10, "maximum results to print")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Metrics.Enabled {
		metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	if *docsPath == "" || *query == "" {
		fmt.Fprintln(os.Stderr, `usage: infidex-demo -docs docs.json -query "..."`)
		os.Exit(1)
	}

	docs, err := loadDocuments(*docsPath)
	if err != nil {
		slog.Error("failed to load documents", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(cfg.Engine.ToEngineConfig(), nil, slog.Default())
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := eng.IndexDocuments(ctx, docs, func(pct int) {
		slog.Debug("indexing progress", "percent", pct)
	}); err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}

	stats := eng.GetStatistics()
	slog.Info("index built",
		"documents", stats.LiveDocumentCount,
		"terms", stats.TermCount,
	)

	results, err := eng.Search(engine.SearchRequest{Text: *query, MaxResults: *maxResults})
	if err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}

	for rank, r := range results {
		fmt.Printf("%2d. key=%d score=%d\n", rank+1, r.DocumentKey, r.Score)
	}
}

func loadDocuments(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var raw []inputDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	docs := make([]document.Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, document.Document{
			Key:        d.Key,
			ClientInfo: d.Client,
			Fields: []document.Field{
				{Name: "title", Value: d.Title, Weight: document.WeightHigh, Indexable: true},
				{Name: "body", Value: d.Body, Weight: document.WeightMed, Indexable: true},
			},
		})
	}
	return docs, nil
}
