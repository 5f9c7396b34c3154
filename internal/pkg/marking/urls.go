package marking

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/pkg/cache"
	"golang.org/x/net/html"
)

var urlPattern = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+(?:/[-\w./%?&=+#]*)?`)

const (
	// maxAnalysedChars bounds the text used for key phrase extraction
	maxAnalysedChars = 5000
	sampleChars      = 500
	maxKeyPhrases    = 10
	// maxBodyBytes bounds how much of a response body is read
	maxBodyBytes = 2 << 20
)

// ExtractURLs returns the http(s) URLs in text, in order, that parse with a scheme and host
func ExtractURLs(text string) []string {
	urls := []string{}
	for _, raw := range urlPattern.FindAllString(text, -1) {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			continue
		}
		urls = append(urls, raw)
	}
	return urls
}

// URLAnalyzer fetches and summarises web pages cited in student work
type URLAnalyzer interface {
	AnalyzeURL(ctx context.Context, rawURL string) URLAnalysis
}

// AnalyzerConfig configures an HTTPAnalyzer
type AnalyzerConfig struct {
	Timeout   time.Duration
	UserAgent string
	CacheTTL  time.Duration
}

// HTTPAnalyzer implements URLAnalyzer with net/http and an optional cache
type HTTPAnalyzer struct {
	client *http.Client
	cache  cache.Cache
	config AnalyzerConfig
	logger zerolog.Logger
}

// NewHTTPAnalyzer creates an analyzer. A nil client gets NewPublicHTTPClient with the
// configured timeout, so internal addresses cannot be fetched.
func NewHTTPAnalyzer(client *http.Client, c cache.Cache, config AnalyzerConfig, logger zerolog.Logger) *HTTPAnalyzer {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if client == nil {
		client = NewPublicHTTPClient(config.Timeout)
	}
	if c == nil {
		c = cache.NewNopCache()
	}
	return &HTTPAnalyzer{client: client, cache: c, config: config, logger: logger}
}

func urlCacheKey(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return "url_analysis:" + hex.EncodeToString(sum[:])
}

// AnalyzeURL fetches rawURL and extracts its title, paragraph text and meta description.
// Failures are reported in the returned analysis, never as an error.
func (a *HTTPAnalyzer) AnalyzeURL(ctx context.Context, rawURL string) URLAnalysis {
	key := urlCacheKey(rawURL)

	var cached URLAnalysis
	if found, err := a.cache.Get(ctx, key, &cached); err != nil {
		a.logger.Warn().Err(err).Str("url", rawURL).Msg("URL analysis cache lookup failed")
	} else if found {
		return cached
	}

	analysis, err := a.fetch(ctx, rawURL)
	if err != nil {
		a.logger.Debug().Err(err).Str("url", rawURL).Msg("URL analysis failed")
		return URLAnalysis{URL: rawURL, Error: err.Error(), Status: StatusFailed}
	}

	if a.config.CacheTTL > 0 {
		if err := a.cache.Set(ctx, key, analysis, a.config.CacheTTL); err != nil {
			a.logger.Warn().Err(err).Str("url", rawURL).Msg("Failed to cache URL analysis")
		}
	}
	return analysis
}

func (a *HTTPAnalyzer) fetch(ctx context.Context, rawURL string) (URLAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return URLAnalysis{}, fmt.Errorf("invalid url: %w", err)
	}
	if a.config.UserAgent != "" {
		req.Header.Set("User-Agent", a.config.UserAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return URLAnalysis{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return URLAnalysis{}, fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), rawURL)
	}

	page, err := parsePage(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return URLAnalysis{}, fmt.Errorf("failed to parse page: %w", err)
	}

	analysis := URLAnalysis{
		URL:             rawURL,
		Title:           page.title,
		MetaDescription: page.metaDescription,
		ContentSample:   contentSample(page.content),
	}
	if page.content != "" {
		phrases := Phrases(truncate(page.content, maxAnalysedChars))
		if len(phrases) > maxKeyPhrases {
			phrases = phrases[:maxKeyPhrases]
		}
		analysis.KeyPhrases = phrases
	}
	return analysis, nil
}

func contentSample(content string) string {
	if len([]rune(content)) > sampleChars {
		return truncate(content, sampleChars) + "..."
	}
	return content
}

type parsedPage struct {
	title           string
	content         string
	metaDescription string
}

// parsePage walks the HTML tree collecting the title, <p> text and meta description
func parsePage(r io.Reader) (parsedPage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return parsedPage{}, err
	}

	var (
		page       parsedPage
		foundTitle bool
		content    strings.Builder
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if !foundTitle {
					foundTitle = true
					page.title = strings.TrimSpace(nodeText(n))
				}
			case "p":
				content.WriteString(nodeText(n))
				content.WriteString(" ")
				// nested paragraphs are counted once
				return
			case "meta":
				if page.metaDescription == "" && strings.EqualFold(attr(n, "name"), "description") {
					page.metaDescription = attr(n, "content")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !foundTitle || page.title == "" {
		page.title = "No title"
	}
	page.content = content.String()
	return page, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
