// Package scrape fetches raw listings from the upstream deals site. The rest
// of the system treats it as an opaque, possibly-failing, per-page operation.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/models"
	"github.com/dealhound/dealhound/pkg/logger"
)

// Fetcher retrieves one page of raw listings.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) ([]models.RawItem, error)
}

// Selectors maps listing fields to CSS selectors within one item node.
type Selectors struct {
	Item          string
	Title         string
	Description   string
	Price         string
	ShippingPrice string
	Image         string
	Link          string
}

// DefaultSelectors match the upstream listing markup.
var DefaultSelectors = Selectors{
	Item:          "article.thread",
	Title:         ".thread-title a",
	Description:   ".thread-description",
	Price:         ".thread-price",
	ShippingPrice: ".thread-shipping",
	Image:         ".thread-image img",
	Link:          ".thread-title a",
}

// Config configures the site fetcher. PageURL must contain one %d verb for
// the page number.
type Config struct {
	PageURL   string
	UserAgent string
	Timeout   time.Duration
	Selectors Selectors
}

// SiteFetcher scrapes listing pages with colly.
type SiteFetcher struct {
	cfg Config
	log *zap.Logger
}

// NewSiteFetcher validates the page URL template and builds a fetcher.
func NewSiteFetcher(cfg Config) (*SiteFetcher, error) {
	if !strings.Contains(cfg.PageURL, "%d") {
		return nil, fmt.Errorf("scrape: page url %q must contain a %%d page placeholder", cfg.PageURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Selectors == (Selectors{}) {
		cfg.Selectors = DefaultSelectors
	}
	return &SiteFetcher{cfg: cfg, log: logger.WithModule("scrape")}, nil
}

// FetchPage scrapes one listing page. Items missing a link are skipped; they
// cannot be given a stable identity.
func (f *SiteFetcher) FetchPage(ctx context.Context, page int) ([]models.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := colly.NewCollector(colly.AllowURLRevisit())
	collector.SetRequestTimeout(f.cfg.Timeout)
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}

	sel := f.cfg.Selectors
	var items []models.RawItem
	collector.OnHTML(sel.Item, func(e *colly.HTMLElement) {
		link, _ := e.DOM.Find(sel.Link).First().Attr("href")
		if link == "" {
			return
		}
		items = append(items, models.RawItem{
			Title:         textOf(e.DOM, sel.Title),
			Description:   textOf(e.DOM, sel.Description),
			Price:         textOf(e.DOM, sel.Price),
			ShippingPrice: textOf(e.DOM, sel.ShippingPrice),
			Image:         e.ChildAttr(sel.Image, "src"),
			Link:          e.Request.AbsoluteURL(link),
		})
	})

	var fetchErr error
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	url := fmt.Sprintf(f.cfg.PageURL, page)
	if err := collector.Visit(url); err != nil {
		return nil, fmt.Errorf("scrape: visit page %d: %w", page, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("scrape: fetch page %d: %w", page, fetchErr)
	}

	f.log.Debug("page fetched", zap.Int("page", page), zap.Int("items", len(items)))
	return items, nil
}

// textOf extracts the first match's text with runs of whitespace collapsed.
// Listing markup nests text across child nodes, so raw Text() output carries
// layout whitespace.
func textOf(node *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(node.Find(selector).First().Text()), " ")
}
