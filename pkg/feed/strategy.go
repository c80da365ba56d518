// Package feed implements per-format extraction strategies. Each strategy
// turns one configured feed source into an ordered list of (identity, text)
// entries for the current poll cycle.
package feed

import (
	"context"

	"github.com/go-pkgz/lgr"

	"github.com/newstrail/newstrail/pkg/content"
	"github.com/newstrail/newstrail/pkg/domain"
	"github.com/newstrail/newstrail/pkg/fetch"
)

// Entry is one extracted article: its identity plus the assembled raw text
type Entry struct {
	Identity domain.ArticleIdentity
	Text     string
}

// Fetcher is the outbound HTTP surface strategies depend on
type Fetcher interface {
	FetchFeed(ctx context.Context, url string) (*fetch.FeedResponse, error)
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns downloaded article HTML into structured text
type Extractor interface {
	Extract(pageURL string, html []byte) (*content.Article, error)
}

// Strategy extracts the current set of articles for one feed source.
// A failed cycle returns an error and no entries; individual bad articles
// inside a cycle are logged and skipped instead.
type Strategy interface {
	Extract(ctx context.Context) ([]Entry, error)
}

// Deps holds the shared collaborators strategies are built from
type Deps struct {
	Fetcher   Fetcher
	Extractor Extractor
}

// ForSource selects the strategy matching the source's declared format.
// Unrecognized formats are reported once, here, and yield a strategy that
// produces nothing for the lifetime of the process.
func ForSource(src domain.FeedSource, deps Deps) Strategy {
	switch src.Format {
	case domain.FormatRSS, domain.FormatERSS, domain.FormatRDO:
		return newRSSStrategy(src, deps)
	case domain.FormatCNN:
		return newSiteStrategy(src, deps, cnnFilter)
	case domain.FormatMaan:
		return newSiteStrategy(src, deps, maanFilter)
	case domain.FormatHespress:
		return newSiteStrategy(src, deps, hespressFilter)
	case domain.FormatN3K:
		return newSiteStrategy(src, deps, sameHostFilter(src.URL))
	default:
		lgr.Printf("[ERROR] unrecognized feed format %q for publisher %s", src.Format, src.Publisher)
		return noopStrategy{}
	}
}

// noopStrategy backs unrecognized formats, contributing zero articles
type noopStrategy struct{}

func (noopStrategy) Extract(context.Context) ([]Entry, error) { return nil, nil }
