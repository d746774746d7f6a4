package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Transcript is a fetched page reduced to plain text.
type Transcript struct {
	Title   string
	Content string
}

type FetcherConfig struct {
	RateLimit float64 // requests per second
	Timeout   time.Duration
	UserAgent string
}

// Fetcher downloads transcript pages and strips them to readable text so
// they can be dropped into the transcripts directory and ingested.
type Fetcher struct {
	config  FetcherConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config FetcherConfig) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.UserAgent == "" {
		config.UserAgent = "motivateai-ingest/1.0"
	}

	return &Fetcher{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func New() *Fetcher {
	return NewWithConfig(FetcherConfig{})
}

// Fetch downloads one page and extracts its transcript text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Transcript, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	content := extractMainContent(doc)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("no transcript text found at %s", url)
	}

	return &Transcript{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Content: content,
	}, nil
}

// extractMainContent picks the most transcript-like region of the page and
// returns its paragraphs separated by blank lines.
func extractMainContent(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside").Remove()

	selectors := []string{
		".transcript",
		"#transcript",
		"article",
		"main",
		".content",
		"#content",
	}

	root := doc.Selection
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			root = selected.First()
			break
		}
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := cleanParagraph(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	// Pages without <p> markup fall back to the region's raw text.
	if len(paragraphs) == 0 {
		if text := cleanParagraph(root.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

func cleanParagraph(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
