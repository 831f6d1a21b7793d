package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

const (
	GoogleSearchURL = "https://www.google.com/search"

	// ImageNotFoundURL stands in for results without a thumbnail.
	ImageNotFoundURL = "https://cdn.browshot.com/static/images/not-found.png"

	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

// ParseError reports a search page, or one result on it, that could not be read.
type ParseError struct {
	Query  string
	Item   int // zero-based result index, -1 for the page itself
	Reason string
}

func (e *ParseError) Error() string {
	if e.Item < 0 {
		return fmt.Sprintf("parse %q: %s", e.Query, e.Reason)
	}
	return fmt.Sprintf("parse %q: result %d: %s", e.Query, e.Item, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return shared.ErrParse
}

// GoogleSource scrapes the news tab of Google search results.
type GoogleSource struct {
	searchURL   string
	userAgent   string
	placeholder string
	httpClient  *http.Client
}

var _ Source = (*GoogleSource)(nil)

// GoogleOption configures a [GoogleSource].
type GoogleOption func(*GoogleSource)

// WithSearchURL points the source at another results page, such as a test server.
func WithSearchURL(u string) GoogleOption {
	return func(g *GoogleSource) {
		if u != "" {
			g.searchURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each search.
func WithUserAgent(ua string) GoogleOption {
	return func(g *GoogleSource) {
		if ua != "" {
			g.userAgent = ua
		}
	}
}

// WithPlaceholderImage sets the image used for results without a thumbnail.
func WithPlaceholderImage(u string) GoogleOption {
	return func(g *GoogleSource) {
		if u != "" {
			g.placeholder = u
		}
	}
}

// NewGoogleSource creates a source using client, or a client with a 15 second timeout when nil.
func NewGoogleSource(client *http.Client, opts ...GoogleOption) *GoogleSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	g := &GoogleSource{
		searchURL:   GoogleSearchURL,
		userAgent:   DefaultUserAgent,
		placeholder: ImageNotFoundURL,
		httpClient:  client,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGoogleSourceFromConfig builds a source from the [search] config table.
func NewGoogleSourceFromConfig(cfg shared.SearchConfig, client *http.Client) *GoogleSource {
	return NewGoogleSource(client,
		WithSearchURL(cfg.URL),
		WithUserAgent(cfg.UserAgent),
		WithPlaceholderImage(cfg.PlaceholderImage),
	)
}

// searchURLFor returns the results URL for query with the news tab selected.
func (g *GoogleSource) searchURLFor(query string) (string, error) {
	u, err := url.Parse(g.searchURL)
	if err != nil {
		return "", fmt.Errorf("%w: search url: %w", shared.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("tbm", "nws")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Search fetches and parses the news results for query.
func (g *GoogleSource) Search(ctx context.Context, query string) ([]models.NewsItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", shared.ErrInvalidInput)
	}

	target, err := g.searchURLFor(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search %q: HTTP %d", shared.ErrAPIRequest, query, resp.StatusCode)
	}

	items, err := ParseResults(resp.Body, g.placeholder)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Query = query
		}
		return nil, err
	}
	return items, nil
}

// ParseResults reads a news results page. Results without a thumbnail get placeholder as their image.
//
// A missing results container, or a result without a heading, link, or snippet, fails the whole page.
// A container with no results is an empty, successful page.
func ParseResults(r io.Reader, placeholder string) ([]models.NewsItem, error) {
	if placeholder == "" {
		placeholder = ImageNotFoundURL
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Item: -1, Reason: "invalid html: " + err.Error()}
	}

	container := doc.Find("div#ires").First()
	if container.Length() == 0 {
		return nil, &ParseError{Item: -1, Reason: "results container div#ires not found"}
	}

	results := container.Find("div.g")
	items := make([]models.NewsItem, 0, results.Length())

	var perr *ParseError
	results.EachWithBreak(func(i int, s *goquery.Selection) bool {
		item, reason := parseResult(s, placeholder)
		if reason != "" {
			perr = &ParseError{Item: i, Reason: reason}
			return false
		}
		items = append(items, item)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return items, nil
}

// parseResult extracts one result. A non-empty reason means the result is unusable.
func parseResult(s *goquery.Selection, placeholder string) (models.NewsItem, string) {
	heading := s.Find("h3").First()
	if heading.Length() == 0 {
		return models.NewsItem{}, "missing heading"
	}

	href, ok := s.Find("a").First().Attr("href")
	if !ok {
		return models.NewsItem{}, "missing link"
	}
	link, err := RecoverURL(href)
	if err != nil {
		return models.NewsItem{}, err.Error()
	}

	snippet := s.Find("div.st").First()
	if snippet.Length() == 0 {
		return models.NewsItem{}, "missing snippet"
	}

	image := placeholder
	if src, ok := s.Find("img.th").First().Attr("src"); ok && src != "" {
		image = src
	}

	return models.NewsItem{
		Title:       strings.TrimSpace(heading.Text()),
		URL:         link,
		ImageURL:    image,
		PreviewText: strings.TrimSpace(snippet.Text()),
	}, ""
}

// RecoverURL extracts the target of a search redirect link such as /url?q=https://example.com/a&sa=U.
//
// The target runs from the first "http" to the first "&" (or the end). It is percent-decoded and cut
// again at any "&" the decoding exposed, then must be an absolute http or https URL.
func RecoverURL(href string) (string, error) {
	start := strings.Index(href, "http")
	if start < 0 {
		return "", fmt.Errorf("%w: no url in link %q", shared.ErrParse, href)
	}

	raw, _, _ := strings.Cut(href[start:], "&")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: link %q: %w", shared.ErrParse, href, err)
	}
	decoded, _, _ = strings.Cut(decoded, "&")

	u, err := url.Parse(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: link %q: %w", shared.ErrParse, href, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: link %q is not an absolute http(s) url", shared.ErrParse, href)
	}
	return u.String(), nil
}
