// Command search is an interactive console for querying a built index
// without running the HTTP service.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Hydrohaven/cs121-A3/internal/searcher/executor"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/parser"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/snippet"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/store"
	"github.com/Hydrohaven/cs121-A3/pkg/config"
	"github.com/Hydrohaven/cs121-A3/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	dataDir := flag.String("data", "", "index data directory (overrides config)")
	limit := flag.Int("limit", 0, "max results per query (overrides config)")
	noSnippets := flag.Bool("no-snippets", false, "skip snippet extraction")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Indexer.DataDir = *dataDir
	}
	if *limit > 0 {
		cfg.Search.DefaultLimit = *limit
	}

	// Keep the console readable; warnings and errors still come through.
	logger.Setup("warn", "text")

	st, err := store.Open(cfg.Indexer.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open index at %s: %v\n", cfg.Indexer.DataDir, err)
		os.Exit(1)
	}
	defer st.Close()

	var ext *snippet.Extractor
	if !*noSnippets {
		ext = snippet.New(cfg.Search.SnippetRadius, cfg.Search.SnippetMaxLen)
	}
	exec := executor.New(st, ext)

	meta := st.Meta()
	fmt.Printf("index: %d terms, %d documents\n", st.TermCount(), meta.TotalDocs)
	fmt.Println("enter a query (AND is implicit; OR and NOT are operators), or 'quit' to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "quit" || query == "exit" {
			break
		}

		plan := parser.Parse(query)
		if len(plan.Terms) == 0 {
			fmt.Println("query has no searchable terms (stop words and single characters are dropped)")
			continue
		}

		result, err := exec.Execute(context.Background(), plan, cfg.Search.DefaultLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
			continue
		}

		if len(result.Results) == 0 {
			fmt.Printf("no results (%.2f ms)\n", result.ElapsedMs)
			continue
		}
		fmt.Printf("%d hits, showing %d (%.2f ms)\n", result.TotalHits, len(result.Results), result.ElapsedMs)
		for _, hit := range result.Results {
			fmt.Printf("%3d. [%.4f] %s\n", hit.Rank, hit.Score, hit.URL)
			if hit.Snippet != "" {
				fmt.Printf("     %s\n", hit.Snippet)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
		os.Exit(1)
	}
}
