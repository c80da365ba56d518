package feed

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newstrail/newstrail/pkg/content"
	"github.com/newstrail/newstrail/pkg/domain"
	"github.com/newstrail/newstrail/pkg/fetch"
)

// fakeFetcher serves canned feed payloads and pages keyed by URL
type fakeFetcher struct {
	feeds map[string]string // url -> xml body
	pages map[string]string // url -> html body
}

func (f *fakeFetcher) FetchFeed(_ context.Context, feedURL string) (*fetch.FeedResponse, error) {
	body, ok := f.feeds[feedURL]
	if !ok {
		return nil, fmt.Errorf("unexpected status code 503 for feed %s", feedURL)
	}
	final, _ := url.Parse(feedURL)
	return &fetch.FeedResponse{StatusCode: 200, Body: []byte(body), FinalURL: final}, nil
}

func (f *fakeFetcher) FetchPage(_ context.Context, pageURL string) ([]byte, error) {
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("unexpected status code 404 for page %s", pageURL)
	}
	return []byte(body), nil
}

// fakeExtractor returns the page HTML as the article body verbatim
type fakeExtractor struct {
	titles    map[string]string // url -> extracted title
	summaries map[string]string // url -> extracted summary
	failing   map[string]bool
}

func (e *fakeExtractor) Extract(pageURL string, html []byte) (*content.Article, error) {
	if e.failing[pageURL] {
		return nil, fmt.Errorf("no text content extracted from %s", pageURL)
	}
	return &content.Article{
		Title:   e.titles[pageURL],
		Summary: e.summaries[pageURL],
		Body:    string(html),
	}, nil
}

func rssXML(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel><title>Feed</title><link>http://example.com</link>` + items + `</channel></rss>`
}

func TestForSource_DispatchCompleteness(t *testing.T) {
	deps := Deps{Fetcher: &fakeFetcher{}, Extractor: &fakeExtractor{}}

	tests := []struct {
		format domain.Format
		want   any
	}{
		{domain.FormatRSS, &rssStrategy{}},
		{domain.FormatERSS, &rssStrategy{}},
		{domain.FormatRDO, &rssStrategy{}},
		{domain.FormatCNN, &siteStrategy{}},
		{domain.FormatMaan, &siteStrategy{}},
		{domain.FormatHespress, &siteStrategy{}},
		{domain.FormatN3K, &siteStrategy{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			src := domain.FeedSource{URL: "http://example.com", Publisher: "Example", Format: tt.format}
			assert.IsType(t, tt.want, ForSource(src, deps))
		})
	}
}

func TestForSource_UnrecognizedFormat(t *testing.T) {
	src := domain.FeedSource{URL: "http://example.com", Publisher: "Example", Format: "telegram"}
	strategy := ForSource(src, Deps{Fetcher: &fakeFetcher{}, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRSSStrategy_RDO(t *testing.T) {
	fetcher := &fakeFetcher{feeds: map[string]string{
		"http://example.com/feed": rssXML(`
			<item><title>A</title><link>http://x/1</link><description>hello</description></item>
			<item><title>B</title><link>http://x/2</link><description>world</description></item>`),
	}}
	src := domain.FeedSource{URL: "http://example.com/feed", Publisher: "X", Format: domain.FormatRDO}
	strategy := ForSource(src, Deps{Fetcher: fetcher, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, domain.ArticleIdentity{Title: "A", Publisher: "X", Link: "http://x/1"}, entries[0].Identity)
	assert.Equal(t, "Text: hello", entries[0].Text)
	assert.Equal(t, "Text: world", entries[1].Text)
}

func TestRSSStrategy_FetchesArticlePage(t *testing.T) {
	fetcher := &fakeFetcher{
		feeds: map[string]string{
			"http://example.com/feed": rssXML(`
				<item><title>A</title><link>http://x/1</link><description>summary text</description></item>`),
		},
		pages: map[string]string{"http://x/1": "full article body"},
	}
	src := domain.FeedSource{URL: "http://example.com/feed", Publisher: "X", Format: domain.FormatRSS}
	strategy := ForSource(src, Deps{Fetcher: fetcher, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Summary: summary text\nText: full article body", entries[0].Text)
}

func TestRSSStrategy_MissingDescription(t *testing.T) {
	fetcher := &fakeFetcher{
		feeds: map[string]string{
			"http://example.com/feed": rssXML(`<item><title>A</title><link>http://x/1</link></item>`),
		},
		pages: map[string]string{"http://x/1": "body"},
	}
	src := domain.FeedSource{URL: "http://example.com/feed", Publisher: "X", Format: domain.FormatRSS}
	strategy := ForSource(src, Deps{Fetcher: fetcher, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Summary: No description provided.\nText: body", entries[0].Text)
}

func TestRSSStrategy_ERSSEmbeddedContent(t *testing.T) {
	fetcher := &fakeFetcher{
		feeds: map[string]string{
			"http://example.com/feed": rssXML(`
				<item><title>A</title><link>http://x/1</link><description>sum</description>
					<content:encoded><![CDATA[<p>embedded body</p>]]></content:encoded></item>
				<item><title>B</title><link>http://x/2</link><description>sum2</description></item>`),
		},
		pages: map[string]string{"http://x/2": "page body"},
	}
	src := domain.FeedSource{URL: "http://example.com/feed", Publisher: "X", Format: domain.FormatERSS}
	strategy := ForSource(src, Deps{Fetcher: fetcher, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// embedded content used without a page fetch, markup stripped
	assert.Equal(t, "Summary: sum\nText: embedded body", entries[0].Text)
	// no embedded content falls back to the page fetch
	assert.Equal(t, "Summary: sum2\nText: page body", entries[1].Text)
}

func TestRSSStrategy_SkipsUnreachableArticle(t *testing.T) {
	fetcher := &fakeFetcher{
		feeds: map[string]string{
			"http://example.com/feed": rssXML(`
				<item><title>Bad</title><link>http://x/down</link><description>d</description></item>
				<item><title>Good</title><link>http://x/up</link><description>d</description></item>`),
		},
		pages: map[string]string{"http://x/up": "body"},
	}
	src := domain.FeedSource{URL: "http://example.com/feed", Publisher: "X", Format: domain.FormatRSS}
	strategy := ForSource(src, Deps{Fetcher: fetcher, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Good", entries[0].Identity.Title)
}

func TestRSSStrategy_ResolvesRelativeLinks(t *testing.T) {
	fetcher := &fakeFetcher{feeds: map[string]string{
		"http://example.com/news/feed": rssXML(`<item><title>A</title><link>/articles/1</link><description>d</description></item>`),
	}}
	src := domain.FeedSource{URL: "http://example.com/news/feed", Publisher: "X", Format: domain.FormatRDO}
	strategy := ForSource(src, Deps{Fetcher: fetcher, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "http://example.com/articles/1", entries[0].Identity.Link)
}

func TestRSSStrategy_NormalizesTitle(t *testing.T) {
	fetcher := &fakeFetcher{feeds: map[string]string{
		"http://example.com/feed": rssXML(`<item><title>caf\xc3\xa9 report</title><link>http://x/1</link><description>d</description></item>`),
	}}
	src := domain.FeedSource{URL: "http://example.com/feed", Publisher: "X", Format: domain.FormatRDO}
	strategy := ForSource(src, Deps{Fetcher: fetcher, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "café report", entries[0].Identity.Title)
}

func TestRSSStrategy_FeedFetchFailure(t *testing.T) {
	src := domain.FeedSource{URL: "http://down.example.com/feed", Publisher: "X", Format: domain.FormatRSS}
	strategy := ForSource(src, Deps{Fetcher: &fakeFetcher{}, Extractor: &fakeExtractor{}})

	entries, err := strategy.Extract(context.Background())
	require.Error(t, err)
	assert.Empty(t, entries)
}
