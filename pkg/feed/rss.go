package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/newstrail/newstrail/pkg/domain"
	"github.com/newstrail/newstrail/pkg/normalize"
)

// noDescription substitutes for entries that carry no description at all
const noDescription = "No description provided."

// rssStrategy handles the three XML feed formats. All of them parse the feed
// payload the same way; they differ only in where the article text comes from:
//
//	rss  - description plus the fetched article page
//	erss - description plus embedded content when present, page fetch otherwise
//	rdo  - description only, no page fetch
type rssStrategy struct {
	src       domain.FeedSource
	fetcher   Fetcher
	extractor Extractor
	stripper  *bluemonday.Policy
}

func newRSSStrategy(src domain.FeedSource, deps Deps) *rssStrategy {
	return &rssStrategy{
		src:       src,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		stripper:  bluemonday.StrictPolicy(),
	}
}

// Extract fetches and parses the feed, then assembles one entry per item in
// the order the feed returned them
func (s *rssStrategy) Extract(ctx context.Context) ([]Entry, error) {
	resp, err := s.fetcher.FetchFeed(ctx, s.src.URL)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.src.URL, err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := resolveLink(resp.FinalURL, item.Link)
		identity := domain.ArticleIdentity{
			Title:     normalize.Normalize(item.Title),
			Publisher: s.src.Publisher,
			Link:      link,
		}

		text, err := s.assembleText(ctx, item, link)
		if err != nil {
			lgr.Printf("[ERROR] failed to read article %q from %s: %v", identity.Title, s.src.Publisher, err)
			continue
		}

		entries = append(entries, Entry{Identity: identity, Text: text})
	}
	return entries, nil
}

// assembleText builds the article text for one feed item per the format rules
func (s *rssStrategy) assembleText(ctx context.Context, item *gofeed.Item, link string) (string, error) {
	description := strings.TrimSpace(s.stripper.Sanitize(item.Description))
	if item.Description == "" {
		description = noDescription
	}

	switch {
	case s.src.Format == domain.FormatRDO:
		return "Text: " + description, nil

	case s.src.Format == domain.FormatERSS && item.Content != "":
		embedded := strings.TrimSpace(s.stripper.Sanitize(item.Content))
		return "Summary: " + description + "\nText: " + embedded, nil

	default: // rss, or erss without embedded content: pull the full page
		page, err := s.fetcher.FetchPage(ctx, link)
		if err != nil {
			return "", err
		}
		art, err := s.extractor.Extract(link, page)
		if err != nil {
			return "", err
		}
		return "Summary: " + description + "\nText: " + art.Body, nil
	}
}

// resolveLink resolves a possibly-relative entry link against the feed
// response's final URL
func resolveLink(base *url.URL, link string) string {
	if base == nil || link == "" {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
