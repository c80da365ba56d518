package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"

	"github.com/newstrail/newstrail/pkg/domain"
	"github.com/newstrail/newstrail/pkg/normalize"
)

// urlFilter decides whether a discovered link is a candidate article.
// Filters are fixed per-format configuration, not user input.
type urlFilter func(u string) bool

// siteStrategy crawls a site's article index page instead of an XML feed:
// collect links, filter them per site, then fetch and extract every candidate
// article individually
type siteStrategy struct {
	src       domain.FeedSource
	fetcher   Fetcher
	extractor Extractor
	filter    urlFilter
}

func newSiteStrategy(src domain.FeedSource, deps Deps, filter urlFilter) *siteStrategy {
	return &siteStrategy{src: src, fetcher: deps.Fetcher, extractor: deps.Extractor, filter: filter}
}

// Extract fetches the index page and walks the filtered candidate links.
// Unreachable or unparseable individual articles are logged and skipped;
// only an unreachable index aborts the cycle.
func (s *siteStrategy) Extract(ctx context.Context) ([]Entry, error) {
	index, err := s.fetcher.FetchPage(ctx, s.src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch site index %s: %w", s.src.URL, err)
	}

	candidates, err := s.collectLinks(index)
	if err != nil {
		return nil, fmt.Errorf("scan site index %s: %w", s.src.URL, err)
	}

	var entries []Entry
	for _, articleURL := range candidates {
		page, err := s.fetcher.FetchPage(ctx, articleURL)
		if err != nil {
			lgr.Printf("[ERROR] failed to fetch article %s for %s: %v", articleURL, s.src.Publisher, err)
			continue
		}
		art, err := s.extractor.Extract(articleURL, page)
		if err != nil {
			lgr.Printf("[ERROR] failed to extract article %s for %s: %v", articleURL, s.src.Publisher, err)
			continue
		}

		entries = append(entries, Entry{
			Identity: domain.ArticleIdentity{
				Title:     normalize.Normalize(art.Title),
				Publisher: s.src.Publisher,
				Link:      articleURL,
			},
			Text: "Summary: " + art.Summary + "\nText: " + art.Body,
		})
	}
	return entries, nil
}

// collectLinks extracts candidate article URLs from the index page, resolved
// to absolute form, filtered and deduplicated, in document order
func (s *siteStrategy) collectLinks(indexHTML []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(indexHTML))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(s.src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse index URL: %w", err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		if s.filter(abs) {
			links = append(links, abs)
		}
	})
	return links, nil
}

// cnnHosts are the site roots CNN articles may live under
var cnnHosts = []string{
	"https://cnn.com",
	"https://www.cnn.com",
	"https://edition.cnn.com",
	"https://cnnespanol.cnn.com",
	"https://arabic.cnn.com",
}

// cnnTopics is the coverage keyword allowlist applied to CNN URLs
var cnnTopics = []string{
	"world",
	"netanyahu",
	"palestine",
	"palestinian",
	"israel",
	"israeli",
	"gaza",
	"khameini",
	"iran",
	"syria",
	"yemen",
	"abbas",
	"idf",
	"hamas",
	"hezbollah",
	"egypt",
}

// cnnTopicPairs are keyword pairs that must both appear in the URL
var cnnTopicPairs = [][2]string{
	{"middle", "east"},
	{"west", "bank"},
}

func cnnFilter(u string) bool {
	if !hasAnyPrefix(u, cnnHosts...) {
		return false
	}
	for _, kw := range cnnTopics {
		if strings.Contains(u, kw) {
			return true
		}
	}
	for _, pair := range cnnTopicPairs {
		if strings.Contains(u, pair[0]) && strings.Contains(u, pair[1]) {
			return true
		}
	}
	return false
}

func maanFilter(u string) bool {
	return strings.HasSuffix(u, ".html")
}

func hespressFilter(u string) bool {
	return hasAnyPrefix(u, "https://www.hespress.com", "https://en.hespress.com")
}

// sameHostFilter accepts any link on the same host as the index page; used by
// the generic site crawler where no site-specific allowlist exists
func sameHostFilter(indexURL string) urlFilter {
	base, err := url.Parse(indexURL)
	if err != nil {
		return func(string) bool { return false }
	}
	return func(u string) bool {
		parsed, err := url.Parse(u)
		if err != nil {
			return false
		}
		return parsed.Host == base.Host && parsed.Path != "" && parsed.Path != "/"
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
