package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>Ceasefire Talks Resume</title>
	<meta name="description" content="Negotiators returned to the table on Monday.">
</head>
<body>
	<article>
		<h1>Ceasefire Talks Resume</h1>
		<p>Negotiators returned to the table on Monday after a week-long pause.</p>
		<p>Officials described the mood as cautiously optimistic, though no agenda was published.</p>
	</article>
</body>
</html>`

	e := NewExtractor()
	art, err := e.Extract("https://example.com/news/talks", []byte(html))
	require.NoError(t, err)

	assert.Equal(t, "Ceasefire Talks Resume", art.Title)
	assert.Contains(t, art.Body, "returned to the table on Monday")
	assert.Contains(t, art.Body, "cautiously optimistic")
}

func TestExtractor_ExtractErrors(t *testing.T) {
	e := NewExtractor()

	t.Run("invalid url", func(t *testing.T) {
		_, err := e.Extract("not-a-url", []byte("<html><body><p>text</p></body></html>"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid URL")
	})

	t.Run("empty page", func(t *testing.T) {
		_, err := e.Extract("https://example.com/empty", []byte("<html><body></body></html>"))
		require.Error(t, err)
	})
}
