// backend/scraper/fetcher.go
package scraper

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a source page and reduces it to reviewable text. The
// pipeline only ever consumes the extracted text and the retrieval time; how
// the content is fetched is this package's concern alone.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// FetchText downloads the page at url and extracts its paragraph text.
// Paragraphs are joined with blank lines; pages without <p> elements fall
// back to the body text so plain or oddly structured pages still yield
// comparable content. Returns the extracted text and the retrieval time.
func (f *Fetcher) FetchText(url string) (string, time.Time, error) {
	retrievedAt := time.Now().UTC()

	res, err := f.client.Get(url)
	if err != nil {
		return "", retrievedAt, fmt.Errorf("failed to get URL %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", retrievedAt, fmt.Errorf("failed to get URL %s: status code %d", url, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", retrievedAt, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	text := ExtractText(doc)
	log.Printf("Scraper: fetched %s (%d bytes of extracted text).", url, len(text))
	return text, retrievedAt, nil
}

// ExtractText pulls the readable text out of a parsed document.
func ExtractText(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n")
	}

	// No paragraphs; fall back to the body, then the whole document.
	if body := doc.Find("body"); body.Length() > 0 {
		return strings.TrimSpace(body.Text())
	}
	return strings.TrimSpace(doc.Text())
}
