package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/types"
)

// Scraper is the fallback news provider used when no NewsAPI key is
// configured. It scrapes Google News search listings; the listing position
// becomes the article's rank. Date filtering uses the before:/after: search
// operators, and the relevance ordering stands in for both rankings since the
// listing exposes only one.
type Scraper struct {
	timeout time.Duration
	client  *http.Client
}

// NewScraper creates a Google News scraper with the given request timeout.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchRanked implements interfaces.NewsProvider.
func (s *Scraper) FetchRanked(ctx context.Context, subject string, day time.Time, rankBy types.RankBy) ([]types.Article, error) {
	articles := []types.Article{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText("h3, h4"))
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}
		if strings.HasPrefix(link, "./articles/") {
			link = "https://news.google.com" + link[1:]
		}
		articles = append(articles, types.Article{
			Title: title,
			URL:   link,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "subject", subject, "url", r.Request.URL.String())
	})

	// after: is inclusive, before: is exclusive, so one day is [day, day+1).
	query := fmt.Sprintf("%s stock after:%s before:%s",
		subject, day.Format("2006-01-02"), day.AddDate(0, 0, 1).Format("2006-01-02"))
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		url.QueryEscape(query))

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("scrape google news: %w", err)
	}
	c.Wait()

	s.enrich(ctx, articles)

	logger.Info(ctx, "Scraped news listing", "subject", subject,
		"date", day.Format("2006-01-02"), "rank_by", string(rankBy), "articles", len(articles))
	return articles, nil
}

// enrich fills in article content by fetching each page and extracting its
// paragraph text. Failures leave the article with title only.
func (s *Scraper) enrich(ctx context.Context, articles []types.Article) {
	for i := range articles {
		if len(articles[i].Content) >= 100 {
			continue
		}
		if content := s.fetchContent(ctx, articles[i].URL); content != "" {
			articles[i].Content = content
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func (s *Scraper) fetchContent(ctx context.Context, articleURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Debug(ctx, "Failed to fetch article page", "url", articleURL, "error", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	paragraphs := []string{}
	doc.Find("article p, div.article-body p, div.content-body p, div.story-content p").
		Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
	return strings.Join(paragraphs, "\n\n")
}
