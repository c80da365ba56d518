// Package content turns downloaded article HTML into structured text.
package content

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
)

// Article is the structured result of extracting one article page
type Article struct {
	Title   string
	Summary string
	Body    string
}

// Extractor extracts article text from HTML using trafilatura
type Extractor struct{}

// NewExtractor creates a content extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the downloaded HTML of an article page. The page URL is used
// by trafilatura to resolve relative references and improve metadata detection.
func (e *Extractor) Extract(pageURL string, html []byte) (*Article, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", pageURL)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}

	result, err := trafilatura.Extract(bytes.NewReader(html), opts)
	if err != nil {
		return nil, fmt.Errorf("extract content from %s: %w", pageURL, err)
	}
	if result == nil || strings.TrimSpace(result.ContentText) == "" {
		return nil, fmt.Errorf("no text content extracted from %s", pageURL)
	}

	return &Article{
		Title:   strings.TrimSpace(result.Metadata.Title),
		Summary: strings.TrimSpace(result.Metadata.Description),
		Body:    strings.TrimSpace(result.ContentText),
	}, nil
}
