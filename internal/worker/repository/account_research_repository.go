package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-sales-insights/internal/entity"
	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/pkg/logger"
	"golang-sales-insights/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	gocache "github.com/patrickmn/go-cache"
)

const (
	googleNewsRSSFormat = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"
	summaryMaxChars     = 500
	maxArticleBytes     = 2 << 20
)

// accountResearchRepository fetches recent news about an account from
// Google News RSS and extracts readable article bodies. Results are cached
// per account with a TTL; the cache is owned by this repository and passed
// in at construction so tests can substitute one with a short TTL.
type accountResearchRepository struct {
	cfg        *config.Config
	logger     *logger.Logger
	feedParser *gofeed.Parser
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewAccountResearchRepository creates a new AccountResearchRepository.
func NewAccountResearchRepository(cfg *config.Config, log *logger.Logger, store *gocache.Cache) AccountResearchRepository {
	timeout := cfg.Research.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &accountResearchRepository{
		cfg:        cfg,
		logger:     log,
		feedParser: gofeed.NewParser(),
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
	}
}

// FetchNews returns up to maxItems recent news items about the account.
func (r *accountResearchRepository) FetchNews(ctx context.Context, account *entity.Account, maxItems int) ([]entity.AccountNews, error) {
	cacheKey := fmt.Sprintf("account-news:%d", account.ID)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]entity.AccountNews), nil
	}

	query := fmt.Sprintf("%q", account.Name)
	feedURL := fmt.Sprintf(googleNewsRSSFormat, url.QueryEscape(query))

	feed, err := r.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news feed for account %q: %w", account.Name, err)
	}

	items := make([]entity.AccountNews, 0, maxItems)
	for _, item := range feed.Items {
		if len(items) >= maxItems {
			break
		}
		news := entity.AccountNews{
			AccountID:   account.ID,
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: item.PublishedParsed,
		}
		if len(item.Authors) > 0 {
			news.Source = item.Authors[0].Name
		}
		if news.Source == "" && feed.Title != "" {
			news.Source = feed.Title
		}

		body, err := r.extractArticle(ctx, item.Link)
		if err != nil {
			r.logger.Debug("Failed to extract article body, falling back to feed description",
				logger.StringField("link", item.Link), logger.ErrorField(err))
			body = item.Description
		}
		news.Summary = utils.Truncate(strings.TrimSpace(body), summaryMaxChars)

		items = append(items, news)
	}

	r.cache.Set(cacheKey, items, gocache.DefaultExpiration)
	return items, nil
}

// extractArticle downloads the linked page and pulls out its readable text,
// preferring readability and falling back to joining paragraph nodes.
func (r *accountResearchRepository) extractArticle(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create article request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; sales-insights/1.0)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read article body: %w", err)
	}
	html := string(raw)

	if doc, err := readability.NewDocument(html); err == nil {
		if content := strings.TrimSpace(stripTags(doc.Content())); content != "" {
			return content, nil
		}
	}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse article html: %w", err)
	}
	var paragraphs []string
	gq.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return "", fmt.Errorf("no readable content found")
	}
	return strings.Join(paragraphs, "\n"), nil
}

// stripTags flattens readability's HTML output into plain text.
func stripTags(html string) string {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return gq.Text()
}
