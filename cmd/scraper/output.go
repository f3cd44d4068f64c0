package main

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aluiziolira/go-scrape-listings/config"
	"github.com/aluiziolira/go-scrape-listings/pipeline"
	"github.com/aluiziolira/go-scrape-listings/search"
)

// searchOutputPaths returns the files a search for query is saved to. A path
// is empty when cfg.OutputFormat excludes its format.
func searchOutputPaths(cfg *config.Config, query string) (jsonPath, csvPath string) {
	name := "search-" + search.Slug(query)
	if cfg.OutputFormat != "csv" {
		jsonPath = filepath.Join(cfg.OutputDir, "json", name+".json")
	}
	if cfg.OutputFormat != "json" {
		csvPath = filepath.Join(cfg.OutputDir, "csv", name+".csv")
	}
	return jsonPath, csvPath
}

// crawlOutputPath names the crawl file after the start page's host and its
// last path segment, e.g. crawler/json/en.wikipedia.org-ice_cream.json.
func crawlOutputPath(cfg *config.Config, startURL string) string {
	host, name := "crawl", startURL
	if parsed, err := url.Parse(startURL); err == nil {
		if parsed.Host != "" {
			host = parsed.Host
		}
		name = path.Base(parsed.EscapedPath())
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	name = strings.ToLower(strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', ' ':
			return '_'
		}
		return r
	}, name))
	if name == "" || name == "_" {
		name = "index"
	}
	return filepath.Join(cfg.OutputDir, "crawler", "json", host+"-"+name+".json")
}

// createWriter opens the bulk scrape writer for cfg.OutputFormat. base is the
// file name without extension.
func createWriter(cfg *config.Config, base string) (pipeline.OutputWriter, []string, error) {
	csvFile := filepath.Join(cfg.OutputDir, base+".csv")
	jsonFile := filepath.Join(cfg.OutputDir, base+".json")

	var (
		w     pipeline.OutputWriter
		files []string
		err   error
	)
	switch cfg.OutputFormat {
	case "json":
		w, err = pipeline.NewJSONWriter(jsonFile)
		files = []string{jsonFile}
	case "csv":
		w, err = pipeline.NewCSVWriter(csvFile)
		files = []string{csvFile}
	case "dual":
		w, err = pipeline.NewDualWriter(csvFile, jsonFile)
		files = []string{csvFile, jsonFile}
	default:
		return nil, nil, fmt.Errorf("unsupported format: %s", cfg.OutputFormat)
	}
	if err != nil {
		return nil, nil, err
	}
	return w, files, nil
}
