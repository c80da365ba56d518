package domain

// Format identifies the extraction strategy for a feed source
type Format string

// known feed formats; anything else is reported at startup and ignored
const (
	FormatRSS      Format = "rss"      // plain RSS, article text fetched from the linked page
	FormatERSS     Format = "erss"     // RSS with embedded content when present
	FormatRDO      Format = "rdo"      // description-only RSS, no page fetch
	FormatCNN      Format = "cnn"      // CNN site crawler with topic keyword filter
	FormatMaan     Format = "maan"     // Ma'an News site crawler
	FormatHespress Format = "hespress" // Hespress site crawler
	FormatN3K      Format = "n3k"      // generic site crawler, same-host links only
)

// FeedSource represents a single configured feed. Loaded once at startup
// and never mutated afterwards.
type FeedSource struct {
	URL       string `yaml:"url" json:"url"`
	Publisher string `yaml:"publisher" json:"publisher"`
	Format    Format `yaml:"format" json:"format"`
}
