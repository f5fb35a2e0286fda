// docsearchctl is the offline companion to docsearchd: it builds index
// snapshots from JSON document files, queries existing snapshots, and prints
// corpus statistics, all without a running service.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/docwell/docsearch/internal/document"
	"github.com/docwell/docsearch/internal/engine"
	"github.com/docwell/docsearch/internal/index"
	"github.com/docwell/docsearch/internal/ingest"
	"github.com/docwell/docsearch/pkg/logger"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	logger.Setup("warn", "text")

	var err error
	switch flag.Arg(0) {
	case "index":
		err = runIndex(flag.Args()[1:])
	case "search":
		err = runSearch(flag.Args()[1:])
	case "stats":
		err = runStats(flag.Args()[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "docsearchctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: docsearchctl <command> [flags]

Commands:
  index   -in docs.json -out snapshot.json     build a snapshot from a JSON document file
  search  -snapshot snapshot.json -q "query"   run a query against a snapshot
  stats   -snapshot snapshot.json              print corpus statistics
`)
}

// runIndex reads a JSON array of documents (or an {"documents": [...]}
// wrapper), validates them, and writes a snapshot.
func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	in := fs.String("in", "", "path to a JSON file of documents")
	out := fs.String("out", "data/search_index.json", "path of the snapshot to write")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	docs, err := readDocuments(*in)
	if err != nil {
		return err
	}
	if err := ingest.ValidateBatch(docs); err != nil {
		return fmt.Errorf("validating %s: %w", *in, err)
	}

	eng := engine.New(index.New())
	count := eng.IndexDocuments(docs)
	if err := eng.SaveSnapshot(*out); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	fmt.Printf("indexed %d documents into %s\n", count, *out)
	return nil
}

// runSearch loads a snapshot and prints ranked results for one query.
func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	snapshot := fs.String("snapshot", "data/search_index.json", "path of the snapshot to query")
	q := fs.String("q", "", "query string")
	page := fs.Int("page", 1, "result page, 1-based")
	perPage := fs.Int("per-page", engine.DefaultPerPage, "results per page")
	category := fs.String("category", "", "filter by category")
	docType := fs.String("type", "", "filter by result type")
	tags := fs.String("tags", "", "filter by tags, comma separated")
	highlight := fs.Bool("highlight", false, "include highlighted fragments")
	asJSON := fs.Bool("json", false, "print the raw JSON response")
	fs.Parse(args)
	if *q == "" {
		return fmt.Errorf("-q is required")
	}

	eng := engine.New(index.New())
	if err := eng.LoadSnapshot(*snapshot); err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	query := engine.SearchQuery{
		Query:     *q,
		Page:      *page,
		PerPage:   *perPage,
		Highlight: *highlight,
		Filters:   map[string]engine.FilterValues{},
	}
	if *category != "" {
		query.Filters[engine.FilterCategory] = engine.FilterValues{*category}
	}
	if *docType != "" {
		query.Filters[engine.FilterType] = engine.FilterValues{*docType}
	}
	if *tags != "" {
		query.Filters[engine.FilterTags] = engine.FilterValues(strings.Split(*tags, ","))
	}

	resp := eng.Search(query)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("%d results (%.2f ms), page %d/%d\n\n", resp.TotalResults, resp.QueryTimeMs, resp.Page, resp.TotalPages)
	for i, result := range resp.Results {
		fmt.Printf("%2d. %s  [%.4f]\n", (resp.Page-1)*resp.PerPage+i+1, result.Title, result.Score)
		fmt.Printf("    %s\n", result.URL)
		if result.Snippet != "" {
			fmt.Printf("    %s\n", result.Snippet)
		}
		for _, hl := range result.Highlights {
			fmt.Printf("    > %s\n", hl)
		}
	}
	if len(resp.Suggestions) > 0 {
		fmt.Printf("\nDid you mean: %s\n", strings.Join(resp.Suggestions, ", "))
	}
	return nil
}

// runStats loads a snapshot and prints its corpus statistics as JSON.
func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	snapshot := fs.String("snapshot", "data/search_index.json", "path of the snapshot to inspect")
	fs.Parse(args)

	eng := engine.New(index.New())
	if err := eng.LoadSnapshot(*snapshot); err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(eng.Statistics())
}

// readDocuments accepts either a bare JSON array of documents or the same
// {"documents": [...]} wrapper the HTTP index endpoint takes.
func readDocuments(path string) ([]document.SearchDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var docs []document.SearchDocument
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}
	var wrapped struct {
		Documents []document.SearchDocument `json:"documents"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil || len(wrapped.Documents) == 0 {
		return nil, fmt.Errorf("%s: expected a JSON array of documents or a {\"documents\": [...]} object", path)
	}
	return wrapped.Documents, nil
}
