package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// page is the on-disk shape of one crawled document.
type page struct {
	URL      string `json:"url"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// ReaderStats counts what an iteration over the corpus saw.
type ReaderStats struct {
	Yielded    int
	Unreadable int
	Duplicates int
	Empty      int
}

// Reader iterates a corpus root of crawled JSON pages. Document IDs are
// assigned sequentially in walk order, which is deterministic for a fixed
// corpus tree.
type Reader struct {
	root   string
	logger *slog.Logger
}

// NewReader creates a Reader over the given corpus root directory.
func NewReader(root string) *Reader {
	return &Reader{
		root:   root,
		logger: slog.Default().With("component", "corpus-reader"),
	}
}

// Root returns the corpus root directory.
func (r *Reader) Root() string {
	return r.root
}

// Walk yields every usable document to fn. Unreadable or malformed pages
// are skipped with a logged warning and never abort the walk; exact
// duplicate pages (same extracted text) are dropped. fn returning an error
// stops the walk and propagates the error.
func (r *Reader) Walk(ctx context.Context, fn func(doc Document) error) (ReaderStats, error) {
	var stats ReaderStats
	seen := make(map[[sha256.Size]byte]struct{})
	nextID := 0

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		text, url, readErr := readPage(path)
		if readErr != nil {
			stats.Unreadable++
			r.logger.Warn("skipping unreadable document", "path", path, "error", readErr)
			return nil
		}
		if text == "" {
			stats.Empty++
			return nil
		}
		hash := sha256.Sum256([]byte(text))
		if _, dup := seen[hash]; dup {
			stats.Duplicates++
			r.logger.Debug("skipping duplicate document", "path", path, "url", url)
			return nil
		}
		seen[hash] = struct{}{}

		doc := Document{
			ID:   nextID,
			URL:  url,
			Text: text,
			Path: path,
		}
		nextID++
		stats.Yielded++
		return fn(doc)
	})
	if err != nil {
		return stats, fmt.Errorf("walking corpus root %s: %w", r.root, err)
	}
	return stats, nil
}

// LoadText re-extracts the plain text of a single stored page, used for
// snippet extraction at query time.
func LoadText(path string) (string, error) {
	text, _, err := readPage(path)
	return text, err
}

// readPage parses one crawled JSON file and strips the HTML markup from its
// content.
func readPage(path string) (text string, url string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading page file: %w", err)
	}
	var p page
	if err := json.Unmarshal(data, &p); err != nil {
		return "", "", fmt.Errorf("parsing page file: %w", err)
	}
	if p.URL == "" {
		return "", "", fmt.Errorf("page file missing url")
	}
	text, err = stripHTML(p.Content)
	if err != nil {
		return "", "", fmt.Errorf("extracting text: %w", err)
	}
	return text, p.URL, nil
}

// stripHTML extracts the visible text of an HTML document, dropping script
// and style contents.
func stripHTML(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
