// Package news collects mountain and trail notices from RSS/Atom feeds.
package news

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
)

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// Item is one published notice.
type Item struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Collector fetches and parses the configured feeds.
type Collector struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []Feed
}

// NewCollector creates a notices collector.
func NewCollector(feeds []Feed) *Collector {
	return &Collector{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

// Collect fetches all feeds. A failing feed is logged and skipped so one
// broken upstream does not empty the response.
func (c *Collector) Collect(ctx context.Context) []Item {
	var all []Item
	for _, feed := range c.feeds {
		items, err := c.collectFeed(ctx, feed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "news feed %s error: %v\n", feed.Name, err)
			continue
		}
		all = append(all, items...)
	}
	return all
}

func (c *Collector) collectFeed(ctx context.Context, feed Feed) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "ollana/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := Item{
			Title:  entry.Title,
			URL:    entry.Link,
			Source: feed.Name,
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = entry.PublishedParsed.UTC()
		}
		items = append(items, item)
	}
	return items, nil
}
